package controllers

import (
	"encoding/csv"
	"fmt"
	"io"
	"mime/multipart"
	"sort"
	"strings"

	"attendify_go/config"
	"attendify_go/database"
	"attendify_go/middleware"
	"attendify_go/models"
	"attendify_go/storage"
	"attendify_go/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type StudentController struct{}

// UploadStudents ingests a roster file (CSV or xlsx, headerless) with
// columns Semester, Name, AcademicYear, Department, USN and an optional
// trailing Section. Rows upsert by USN; malformed rows are reported, not
// fatal.
func (sc *StudentController) UploadStudents(c *fiber.Ctx) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "No file provided"})
	}

	allowed := strings.Split(config.AppConfig.AllowedExtensions, ",")
	if !utils.IsValidFileExtension(fh.Filename, allowed) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "unsupported file type (csv,xlsx,xls)"})
	}

	rows, err := rosterRows(fh)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if len(rows) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "file is empty"})
	}

	inserted := 0
	errorsList := []string{}
	var students []models.Student
	yearSet := make(map[string]struct{})
	semesterSet := make(map[string]struct{})

	err = database.DB.Transaction(func(tx *gorm.DB) error {
		for i, r := range rows {
			if len(r) < 5 {
				errorsList = append(errorsList, fmt.Sprintf("row %d: expected columns Semester, Name, AcademicYear, Department, USN", i+1))
				continue
			}
			student := models.Student{
				Semester:     utils.SanitizeString(r[0]),
				Name:         utils.SanitizeString(r[1]),
				AcademicYear: utils.SanitizeString(r[2]),
				Department:   strings.ToLower(utils.SanitizeString(r[3])),
				USN:          strings.ToUpper(utils.SanitizeString(r[4])),
			}
			if len(r) > 5 {
				student.Section = strings.ToUpper(utils.SanitizeString(r[5]))
			}

			if student.USN == "" || student.Name == "" || student.Department == "" {
				errorsList = append(errorsList, fmt.Sprintf("row %d: missing required fields", i+1))
				continue
			}
			if !utils.IsValidUSN(student.USN) {
				errorsList = append(errorsList, fmt.Sprintf("row %d: malformed USN %q", i+1, student.USN))
				continue
			}

			// Administrative re-import replaces the student row wholesale
			if err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "usn"}},
				DoUpdates: clause.AssignmentColumns([]string{"name", "department", "semester", "section", "academic_year"}),
			}).Create(&student).Error; err != nil {
				errorsList = append(errorsList, fmt.Sprintf("row %d: %v", i+1, err))
				continue
			}

			students = append(students, student)
			yearSet[student.AcademicYear] = struct{}{}
			semesterSet[student.Semester] = struct{}{}
			inserted++
		}
		return nil
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	if config.AppConfig.ArchiveExportedFiles {
		go archiveRosterFile(fh, firstDepartment(students))
	}

	middleware.LogActivity(c, "IMPORT", "students", 0, fiber.Map{
		"file_name": fh.Filename,
		"inserted":  inserted,
		"errors":    len(errorsList),
	})

	return c.JSON(fiber.Map{
		"students":      students,
		"academicYears": sortedKeys(yearSet),
		"semesters":     sortedKeys(semesterSet),
		"inserted":      inserted,
		"errors":        errorsList,
	})
}

// GetStudents returns students filtered by department, academic year and semester
func (sc *StudentController) GetStudents(c *fiber.Ctx) error {
	department := c.Query("department")
	academicYear := c.Query("academic_year", c.Query("academicYear"))
	semester := c.Query("semester")

	if department == "" || academicYear == "" || semester == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Missing required parameters"})
	}

	query := database.DB.
		Where("LOWER(department) = LOWER(?) AND academic_year = ? AND semester = ?",
			department, academicYear, semester)
	if section := c.Query("section"); section != "" {
		query = query.Where("section = ?", section)
	}

	var students []models.Student
	if err := query.Order("usn").Find(&students).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch students"})
	}

	if len(students) == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"students": []models.Student{},
			"message": fmt.Sprintf("No students found for department: %s, academic year: %s, semester: %s",
				department, academicYear, semester),
		})
	}

	return c.JSON(fiber.Map{"students": students})
}

// GetStudentMetadata returns the distinct academic years and semesters
// known for a department
func (sc *StudentController) GetStudentMetadata(c *fiber.Ctx) error {
	department := c.Query("department")
	if department == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Department is required"})
	}

	var students []models.Student
	if err := database.DB.
		Select("academic_year", "semester").
		Where("LOWER(department) = LOWER(?)", department).
		Find(&students).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch metadata"})
	}

	if len(students) == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"academicYears": []string{},
			"semesters":     []string{},
			"message":       fmt.Sprintf("No data found for department: %s", department),
		})
	}

	yearSet := make(map[string]struct{})
	semesterSet := make(map[string]struct{})
	for _, s := range students {
		yearSet[s.AcademicYear] = struct{}{}
		semesterSet[s.Semester] = struct{}{}
	}

	return c.JSON(fiber.Map{
		"academicYears": sortedKeys(yearSet),
		"semesters":     sortedKeys(semesterSet),
	})
}

// rosterRows reads the uploaded roster into raw string rows
func rosterRows(fh *multipart.FileHeader) ([][]string, error) {
	filename := strings.ToLower(fh.Filename)

	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("cannot open file")
	}
	defer f.Close()

	if strings.HasSuffix(filename, ".csv") {
		cr := csv.NewReader(f)
		cr.TrimLeadingSpace = true
		cr.FieldsPerRecord = -1
		var rows [][]string
		for {
			rec, err := cr.Read()
			if err == io.EOF {
				break
			}
			if err != nil {
				return nil, err
			}
			rows = append(rows, rec)
		}
		return rows, nil
	}

	x, err := excelize.OpenReader(f)
	if err != nil {
		return nil, err
	}
	defer x.Close()
	sht := x.GetSheetName(0)
	if sht == "" {
		sht = "Sheet1"
	}
	return x.GetRows(sht)
}

func archiveRosterFile(fh *multipart.FileHeader, department string) {
	defer func() {
		if r := recover(); r != nil {
			logrus.WithField("panic", r).Error("panic recovered while archiving roster file")
		}
	}()

	svc, err := storage.NewStorageService()
	if err != nil {
		logrus.WithError(err).Warn("Failed to init storage service for roster archive")
		return
	}
	if _, err := svc.UploadRosterFile(fh, department); err != nil {
		logrus.WithError(err).Warn("Failed to archive roster file to S3")
	}
}

func firstDepartment(students []models.Student) string {
	if len(students) == 0 {
		return "unknown"
	}
	return students[0].Department
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
