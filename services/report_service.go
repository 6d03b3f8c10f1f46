package services

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"time"

	"attendify_go/database"
	"attendify_go/models"

	"github.com/sirupsen/logrus"
)

// ReportFilter selects the population and date range for a student report.
// AcademicYear and Section are optional narrowing filters.
type ReportFilter struct {
	Department   string `json:"department" validate:"required"`
	AcademicYear string `json:"academic_year"`
	Semester     string `json:"semester" validate:"required"`
	SubjectCode  string `json:"subject_code" validate:"required"`
	Section      string `json:"section"`
	FromDate     string `json:"from_date" validate:"required,datetime=2006-01-02"`
	ToDate       string `json:"to_date" validate:"required,datetime=2006-01-02"`
}

// StudentReportRow is one student's aggregate over the queried range.
// Dates is sparse: a date missing from the map means the student has no
// record that day, which is distinct from a recorded absence.
type StudentReportRow struct {
	USN                  string          `json:"usn"`
	Name                 string          `json:"name"`
	TotalClasses         int             `json:"total_classes"`
	ClassesAttended      int             `json:"classes_attended"`
	AttendancePercentage float64         `json:"attendance_percentage"`
	Dates                map[string]bool `json:"dates"`
}

// StudentReport is the date-indexed presence matrix for a class.
type StudentReport struct {
	Dates    []string           `json:"dates"`
	Students []StudentReportRow `json:"students"`
}

// ClassSummaryResult aggregates a subject's attendance as a whole.
type ClassSummaryResult struct {
	TotalClasses      int     `json:"total_classes"`
	AverageAttendance float64 `json:"average_attendance"`
	LastUpdated       string  `json:"last_updated"`
}

// GetStudentReport computes per-student totals, percentages and the sparse
// per-date presence map for every student in the filtered population.
// Read-only. Returns ErrNoRecords when no session falls inside the range;
// that is a valid empty result, not a failure.
func GetStudentReport(filter *ReportFilter) (*StudentReport, error) {
	if err := validate.Struct(filter); err != nil {
		return nil, &ValidationError{Field: "filter", Reason: err.Error()}
	}

	recQuery := database.DB.Model(&models.AttendanceRecord{}).
		Where("department = ? AND semester = ? AND subject_code = ? AND date BETWEEN ? AND ?",
			filter.Department, filter.Semester, filter.SubjectCode, filter.FromDate, filter.ToDate)
	if filter.Section != "" {
		recQuery = recQuery.Where("section = ?", filter.Section)
	}
	if filter.AcademicYear != "" {
		recQuery = recQuery.Where("academic_year = ?", filter.AcademicYear)
	}
	var records []models.AttendanceRecord
	if err := recQuery.Find(&records).Error; err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, ErrNoRecords
	}

	stuQuery := database.DB.Model(&models.Student{}).
		Where("department = ? AND semester = ?", filter.Department, filter.Semester)
	if filter.Section != "" {
		stuQuery = stuQuery.Where("section = ?", filter.Section)
	}
	if filter.AcademicYear != "" {
		stuQuery = stuQuery.Where("academic_year = ?", filter.AcademicYear)
	}
	var students []models.Student
	if err := stuQuery.Find(&students).Error; err != nil {
		return nil, err
	}

	return buildStudentReport(students, records), nil
}

// buildStudentReport assembles the report from fetched rows. Pure; row order
// is USN ascending and date columns are chronological ascending so repeated
// runs over the same data are byte-identical downstream.
func buildStudentReport(students []models.Student, records []models.AttendanceRecord) *StudentReport {
	dateSet := make(map[string]struct{})
	byUSN := make(map[string][]models.AttendanceRecord)
	for _, r := range records {
		dateSet[r.Date] = struct{}{}
		byUSN[r.USN] = append(byUSN[r.USN], r)
	}

	dates := make([]string, 0, len(dateSet))
	for d := range dateSet {
		dates = append(dates, d)
	}
	sort.Strings(dates)

	// Students with records but no roster row (late roster re-import) still
	// show up in the matrix, with the USN echoed as the name.
	names := make(map[string]string, len(students))
	for _, s := range students {
		names[s.USN] = s.Name
	}
	usns := make([]string, 0, len(students))
	seen := make(map[string]struct{}, len(students))
	for _, s := range students {
		usns = append(usns, s.USN)
		seen[s.USN] = struct{}{}
	}
	for usn := range byUSN {
		if _, ok := seen[usn]; !ok {
			usns = append(usns, usn)
			names[usn] = usn
		}
	}
	sort.Strings(usns)

	rows := make([]StudentReportRow, 0, len(usns))
	for _, usn := range usns {
		row := StudentReportRow{
			USN:   usn,
			Name:  names[usn],
			Dates: make(map[string]bool),
		}
		for _, r := range byUSN[usn] {
			if _, dup := row.Dates[r.Date]; !dup {
				row.TotalClasses++
			}
			row.Dates[r.Date] = r.Present
			if r.Present {
				row.ClassesAttended++
			}
		}
		if row.TotalClasses > 0 {
			row.AttendancePercentage = round2(float64(row.ClassesAttended) / float64(row.TotalClasses) * 100)
		}
		rows = append(rows, row)
	}

	return &StudentReport{Dates: dates, Students: rows}
}

const classSummaryCacheTTL = 5 * time.Minute

// classSummaryKey is the Redis key caching one subject's summary. The writer
// invalidates the same key when a new session commits.
func classSummaryKey(department, semester, subjectCode string) string {
	return fmt.Sprintf("class_summary:%s:%s:%s", department, semester, subjectCode)
}

// invalidateClassSummary drops the cached summary so the next read reflects
// the session that just committed. Best effort; the TTL bounds staleness when
// Redis is unreachable.
func invalidateClassSummary(department, semester, subjectCode string) {
	rc := database.GetRedisClient()
	if rc == nil {
		return
	}
	if err := rc.Del(context.Background(), classSummaryKey(department, semester, subjectCode)).Err(); err != nil {
		logrus.WithError(err).Warn("Failed to invalidate class summary cache")
	}
}

// GetClassSummary computes subject-level aggregates: number of distinct
// session dates, mean attendance over all marks, and the most recent session
// date (today when nothing is marked yet). Results are cached in Redis for a
// few minutes since dashboards poll this endpoint.
func GetClassSummary(department, semester, subjectCode string) (*ClassSummaryResult, error) {
	cacheKey := classSummaryKey(department, semester, subjectCode)
	if rc := database.GetRedisClient(); rc != nil {
		if raw, err := rc.Get(context.Background(), cacheKey).Result(); err == nil {
			var cached ClassSummaryResult
			if json.Unmarshal([]byte(raw), &cached) == nil {
				return &cached, nil
			}
		}
	}

	var records []models.AttendanceRecord
	if err := database.DB.
		Where("department = ? AND semester = ? AND subject_code = ?", department, semester, subjectCode).
		Find(&records).Error; err != nil {
		return nil, err
	}

	summary := buildClassSummary(records, time.Now().Format("2006-01-02"))

	if rc := database.GetRedisClient(); rc != nil {
		if raw, err := json.Marshal(summary); err == nil {
			if err := rc.Set(context.Background(), cacheKey, raw, classSummaryCacheTTL).Err(); err != nil {
				logrus.WithError(err).Warn("Failed to cache class summary")
			}
		}
	}

	return summary, nil
}

// buildClassSummary is the pure aggregation over fetched rows. today is the
// fallback for LastUpdated when no session exists yet.
func buildClassSummary(records []models.AttendanceRecord, today string) *ClassSummaryResult {
	summary := &ClassSummaryResult{LastUpdated: today}
	if len(records) == 0 {
		return summary
	}

	dateSet := make(map[string]struct{})
	presentCount := 0
	last := ""
	for _, r := range records {
		dateSet[r.Date] = struct{}{}
		if r.Present {
			presentCount++
		}
		if r.Date > last {
			last = r.Date
		}
	}

	summary.TotalClasses = len(dateSet)
	summary.AverageAttendance = round2(float64(presentCount) / float64(len(records)) * 100)
	summary.LastUpdated = last
	return summary
}

// ListFacultyReports returns the distinct (subject, semester, academic year)
// combinations that have attendance marked in a department, for the faculty
// dashboard's report picker.
func ListFacultyReports(department string) ([]map[string]string, error) {
	type combo struct {
		SubjectCode  string
		Semester     string
		AcademicYear string
	}
	var combos []combo
	if err := database.DB.Model(&models.AttendanceRecord{}).
		Distinct("subject_code", "semester", "academic_year").
		Where("LOWER(department) = LOWER(?)", department).
		Order("subject_code, semester, academic_year").
		Find(&combos).Error; err != nil {
		return nil, err
	}

	out := make([]map[string]string, 0, len(combos))
	for _, c := range combos {
		out = append(out, map[string]string{
			"subject_code":  c.SubjectCode,
			"semester":      c.Semester,
			"academic_year": c.AcademicYear,
		})
	}
	return out, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
