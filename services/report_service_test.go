package services

import (
	"reflect"
	"testing"

	"attendify_go/models"
)

func record(usn, date string, present bool) models.AttendanceRecord {
	return models.AttendanceRecord{
		USN:         usn,
		Date:        date,
		SubjectCode: "B001",
		Section:     "A",
		Present:     present,
	}
}

func student(usn, name string) models.Student {
	return models.Student{USN: usn, Name: name}
}

func TestBuildStudentReportTotals(t *testing.T) {
	students := []models.Student{student("3PG22CS107", "Asha")}
	records := []models.AttendanceRecord{
		record("3PG22CS107", "2024-01-10", true),
		record("3PG22CS107", "2024-01-12", false),
	}

	report := buildStudentReport(students, records)

	if !reflect.DeepEqual(report.Dates, []string{"2024-01-10", "2024-01-12"}) {
		t.Fatalf("unexpected dates: %v", report.Dates)
	}
	if len(report.Students) != 1 {
		t.Fatalf("expected 1 row, got %d", len(report.Students))
	}

	row := report.Students[0]
	if row.TotalClasses != 2 {
		t.Errorf("expected 2 total classes, got %d", row.TotalClasses)
	}
	if row.ClassesAttended != 1 {
		t.Errorf("expected 1 class attended, got %d", row.ClassesAttended)
	}
	if row.AttendancePercentage != 50.0 {
		t.Errorf("expected 50.0%%, got %v", row.AttendancePercentage)
	}
	if present, ok := row.Dates["2024-01-10"]; !ok || !present {
		t.Errorf("expected present on 2024-01-10, got %v (ok=%v)", present, ok)
	}
	if present, ok := row.Dates["2024-01-12"]; !ok || present {
		t.Errorf("expected absent on 2024-01-12, got %v (ok=%v)", present, ok)
	}
}

func TestBuildStudentReportOrdering(t *testing.T) {
	students := []models.Student{
		student("3PG22CS109", "Charu"),
		student("3PG22CS101", "Asha"),
		student("3PG22CS105", "Bina"),
	}
	records := []models.AttendanceRecord{
		record("3PG22CS105", "2024-02-02", true),
		record("3PG22CS101", "2024-01-15", true),
		record("3PG22CS109", "2024-01-15", false),
	}

	report := buildStudentReport(students, records)

	if !reflect.DeepEqual(report.Dates, []string{"2024-01-15", "2024-02-02"}) {
		t.Fatalf("dates not chronological: %v", report.Dates)
	}

	var usns []string
	for _, s := range report.Students {
		usns = append(usns, s.USN)
	}
	if !reflect.DeepEqual(usns, []string{"3PG22CS101", "3PG22CS105", "3PG22CS109"}) {
		t.Fatalf("rows not in USN order: %v", usns)
	}
}

func TestBuildStudentReportStudentWithoutRecords(t *testing.T) {
	students := []models.Student{
		student("3PG22CS101", "Asha"),
		student("3PG22CS105", "Bina"),
	}
	records := []models.AttendanceRecord{
		record("3PG22CS101", "2024-01-15", true),
	}

	report := buildStudentReport(students, records)

	if len(report.Students) != 2 {
		t.Fatalf("expected both students in report, got %d rows", len(report.Students))
	}
	for _, row := range report.Students {
		if row.USN != "3PG22CS105" {
			continue
		}
		if row.TotalClasses != 0 || row.ClassesAttended != 0 {
			t.Errorf("expected zero totals for unmarked student, got %d/%d", row.ClassesAttended, row.TotalClasses)
		}
		if row.AttendancePercentage != 0 {
			t.Errorf("expected 0%% for zero classes, got %v", row.AttendancePercentage)
		}
		if len(row.Dates) != 0 {
			t.Errorf("expected empty date map, got %v", row.Dates)
		}
	}
}

func TestBuildStudentReportRecordWithoutRosterRow(t *testing.T) {
	records := []models.AttendanceRecord{
		record("3PG22CS199", "2024-01-15", true),
	}

	report := buildStudentReport(nil, records)

	if len(report.Students) != 1 {
		t.Fatalf("expected orphan record to produce a row, got %d", len(report.Students))
	}
	if report.Students[0].Name != "3PG22CS199" {
		t.Errorf("expected USN echoed as name, got %q", report.Students[0].Name)
	}
}

func TestBuildStudentReportPercentageRounding(t *testing.T) {
	students := []models.Student{student("3PG22CS101", "Asha")}
	records := []models.AttendanceRecord{
		record("3PG22CS101", "2024-01-01", true),
		record("3PG22CS101", "2024-01-02", true),
		record("3PG22CS101", "2024-01-03", false),
	}

	report := buildStudentReport(students, records)

	// 2/3 rounds to 66.67, not 66.66666...
	if got := report.Students[0].AttendancePercentage; got != 66.67 {
		t.Fatalf("expected 66.67, got %v", got)
	}
}

func TestBuildClassSummary(t *testing.T) {
	records := []models.AttendanceRecord{
		record("3PG22CS101", "2024-01-10", true),
		record("3PG22CS105", "2024-01-10", false),
		record("3PG22CS101", "2024-01-12", true),
		record("3PG22CS105", "2024-01-12", true),
	}

	summary := buildClassSummary(records, "2024-03-01")

	if summary.TotalClasses != 2 {
		t.Errorf("expected 2 distinct session dates, got %d", summary.TotalClasses)
	}
	if summary.AverageAttendance != 75.0 {
		t.Errorf("expected 75.0 average, got %v", summary.AverageAttendance)
	}
	if summary.LastUpdated != "2024-01-12" {
		t.Errorf("expected last session date, got %q", summary.LastUpdated)
	}
}

func TestBuildClassSummaryEmpty(t *testing.T) {
	summary := buildClassSummary(nil, "2024-03-01")

	if summary.TotalClasses != 0 {
		t.Errorf("expected 0 classes, got %d", summary.TotalClasses)
	}
	if summary.AverageAttendance != 0 {
		t.Errorf("expected 0 average for no records, got %v", summary.AverageAttendance)
	}
	if summary.LastUpdated != "2024-03-01" {
		t.Errorf("expected today fallback, got %q", summary.LastUpdated)
	}
}

func TestRound2(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{50.0, 50.0},
		{66.66666666, 66.67},
		{33.33333333, 33.33},
		{0, 0},
		{99.995, 100.0},
	}
	for _, tc := range tests {
		if got := round2(tc.in); got != tc.want {
			t.Errorf("round2(%v) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestClassSummaryKey(t *testing.T) {
	// The writer invalidates this exact key after a session commits, so
	// the reader and the writer must derive it identically.
	got := classSummaryKey("cse", "6", "B001")
	if got != "class_summary:cse:6:B001" {
		t.Errorf("classSummaryKey = %q, want class_summary:cse:6:B001", got)
	}
}
