package controllers

import (
	"errors"
	"time"

	"attendify_go/config"
	"attendify_go/middleware"
	"attendify_go/services"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type AttendanceController struct{}

// MarkAttendance commits one attendance session. The whole submission is
// atomic: duplicates, unresolvable mappings and unknown USNs reject it with
// nothing inserted.
func (ac *AttendanceController) MarkAttendance(c *fiber.Ctx) error {
	var req services.MarkSessionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	written, err := services.MarkSession(&req)
	if err != nil {
		return respondAttendanceError(c, err)
	}

	middleware.LogActivity(c, "CREATE", "attendance", 0, fiber.Map{
		"subject_code": req.SubjectCode,
		"section":      req.Section,
		"date":         req.Date,
		"records":      written,
	})

	return c.JSON(fiber.Map{
		"message":           "Attendance marked successfully",
		"records_processed": written,
	})
}

// GetAttendanceReport returns the date-indexed presence matrix plus a CSV
// rendering for the requested filter. An empty range is a valid result and
// comes back as 404 with a message, not as an error payload.
func (ac *AttendanceController) GetAttendanceReport(c *fiber.Ctx) error {
	filter := reportFilterFromQuery(c)

	report, err := services.GetStudentReport(filter)
	if err != nil {
		return respondAttendanceError(c, err)
	}

	csvData, err := services.RenderCSV(report)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to render report"})
	}

	return c.JSON(fiber.Map{
		"dates":    report.Dates,
		"students": report.Students,
		"csv_data": string(csvData),
	})
}

// ExportAttendanceReport streams the report as a CSV or xlsx download.
func (ac *AttendanceController) ExportAttendanceReport(c *fiber.Ctx) error {
	filter := reportFilterFromQuery(c)
	format := c.Query("format", "csv")
	if format != "csv" && format != "xlsx" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "unsupported format (csv,xlsx)"})
	}

	report, err := services.GetStudentReport(filter)
	if err != nil {
		return respondAttendanceError(c, err)
	}

	var payload []byte
	contentType := "text/csv"
	if format == "csv" {
		payload, err = services.RenderCSV(report)
	} else {
		payload, err = services.RenderWorkbook(report)
		contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to render report"})
	}

	filename := services.ExportFilename(filter.SubjectCode, filter.Section, format, time.Now())

	if config.AppConfig.ArchiveExportedFiles {
		go func(f services.ReportFilter, rows int, data []byte) {
			defer func() {
				if r := recover(); r != nil {
					logrus.WithField("panic", r).Error("panic recovered while archiving report")
				}
			}()
			if _, err := services.NewReportArchiveService().ArchiveReport(&f, filename, format, rows, data); err != nil {
				logrus.WithError(err).Warn("Failed to archive exported report")
			}
		}(*filter, len(report.Students), payload)
	}

	c.Set("Content-Type", contentType)
	c.Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	return c.Send(payload)
}

// GetClassSummary returns subject-level aggregates for dashboards.
func (ac *AttendanceController) GetClassSummary(c *fiber.Ctx) error {
	department := c.Query("department")
	semester := c.Query("semester")
	subjectCode := c.Query("subject_code")
	if department == "" || semester == "" || subjectCode == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "department, semester and subject_code are required"})
	}

	summary, err := services.GetClassSummary(department, semester, subjectCode)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to compute class summary"})
	}

	return c.JSON(summary)
}

// GetFacultyReports lists the distinct subject/semester/year combinations
// with marked attendance for a department.
func (ac *AttendanceController) GetFacultyReports(c *fiber.Ctx) error {
	department := c.Query("department")
	if department == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Department is required"})
	}

	reports, err := services.ListFacultyReports(department)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch reports"})
	}

	return c.JSON(fiber.Map{"reports": reports})
}

func reportFilterFromQuery(c *fiber.Ctx) *services.ReportFilter {
	return &services.ReportFilter{
		Department:   c.Query("department"),
		AcademicYear: c.Query("academic_year", c.Query("academicYear")),
		Semester:     c.Query("semester"),
		SubjectCode:  c.Query("subject_code", c.Query("subject")),
		Section:      c.Query("section"),
		FromDate:     c.Query("from_date", c.Query("fromDate")),
		ToDate:       c.Query("to_date", c.Query("toDate")),
	}
}

// respondAttendanceError maps service errors to HTTP responses. The error
// code field lets the UI distinguish a missing mapping (admin fix) from bad
// input (caller fix).
func respondAttendanceError(c *fiber.Ctx, err error) error {
	var verr *services.ValidationError
	var uerr *services.UnknownStudentsError

	switch {
	case errors.Is(err, services.ErrDuplicateSession):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
			"code":  "duplicate_session",
		})
	case errors.Is(err, services.ErrMappingNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": err.Error(),
			"code":  "mapping_not_found",
		})
	case errors.Is(err, services.ErrNoRecords):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message":  "No records found",
			"dates":    []string{},
			"students": []interface{}{},
		})
	case errors.As(err, &uerr):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": uerr.Error(),
			"code":  "unknown_students",
			"usns":  uerr.USNs,
		})
	case errors.As(err, &verr):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": verr.Error(),
			"code":  "validation_error",
		})
	default:
		logrus.WithError(err).Error("attendance operation failed")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Internal server error"})
	}
}
