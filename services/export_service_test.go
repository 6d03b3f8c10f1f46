package services

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func sampleReport() *StudentReport {
	return &StudentReport{
		Dates: []string{"2024-01-10", "2024-01-12"},
		Students: []StudentReportRow{
			{
				USN:                  "3PG22CS101",
				Name:                 "Asha",
				TotalClasses:         2,
				ClassesAttended:      1,
				AttendancePercentage: 50.0,
				Dates:                map[string]bool{"2024-01-10": true, "2024-01-12": false},
			},
			{
				USN:                  "3PG22CS105",
				Name:                 "Bina",
				TotalClasses:         1,
				ClassesAttended:      1,
				AttendancePercentage: 100.0,
				Dates:                map[string]bool{"2024-01-10": true},
			},
		},
	}
}

func TestReportTable(t *testing.T) {
	table := reportTable(sampleReport())

	wantHeader := []string{"USN", "Name", "2024-01-10", "2024-01-12", "Total Classes", "Classes Attended", "Attendance %"}
	if len(table) != 3 {
		t.Fatalf("expected header plus 2 rows, got %d rows", len(table))
	}
	for i, col := range wantHeader {
		if table[0][i] != col {
			t.Errorf("header column %d: expected %q, got %q", i, col, table[0][i])
		}
	}

	// Asha: present, absent
	if table[1][2] != "P" || table[1][3] != "A" {
		t.Errorf("expected P/A for first student, got %q/%q", table[1][2], table[1][3])
	}
	// Bina has no record on the second date; that is NA, not absent
	if table[2][3] != "NA" {
		t.Errorf("expected NA for unrecorded date, got %q", table[2][3])
	}
	if table[1][6] != "50.00" {
		t.Errorf("expected percentage formatted to 2 decimals, got %q", table[1][6])
	}
}

func TestRenderCSV(t *testing.T) {
	data, err := RenderCSV(sampleReport())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d: %q", len(lines), string(data))
	}
	if lines[1] != "3PG22CS101,Asha,P,A,2,1,50.00" {
		t.Errorf("unexpected first data line: %q", lines[1])
	}
	if lines[2] != "3PG22CS105,Bina,P,NA,1,1,100.00" {
		t.Errorf("unexpected second data line: %q", lines[2])
	}
}

func TestRenderCSVDeterministic(t *testing.T) {
	first, err := RenderCSV(sampleReport())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := RenderCSV(sampleReport())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.Equal(first, second) {
		t.Fatalf("repeated renders differ")
	}
}

func TestRenderWorkbook(t *testing.T) {
	data, err := RenderWorkbook(sampleReport())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(data) == 0 {
		t.Fatalf("expected workbook bytes")
	}
	// xlsx files are zip archives
	if !bytes.HasPrefix(data, []byte("PK")) {
		t.Fatalf("expected zip magic, got % x", data[:2])
	}
}

func TestExportFilename(t *testing.T) {
	now := time.Date(2024, 1, 15, 10, 30, 45, 0, time.UTC)
	got := ExportFilename("B001", "A", "csv", now)
	want := "attendance_report_B001_A_20240115_103045.csv"
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}
