package services

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"
)

// Export cell markers. The NA sentinel means "no record exists for that
// student on that date" and must never collapse into Absent.
const (
	cellPresent     = "P"
	cellAbsent      = "A"
	cellNotRecorded = "NA"
)

const exportSheet = "Attendance"

// reportTable flattens a student report into rows with a fixed column
// order: USN, Name, one column per date chronologically, then the summary
// columns. Used by both renderers so CSV and workbook cells always agree.
func reportTable(report *StudentReport) [][]string {
	header := make([]string, 0, len(report.Dates)+5)
	header = append(header, "USN", "Name")
	header = append(header, report.Dates...)
	header = append(header, "Total Classes", "Classes Attended", "Attendance %")

	rows := [][]string{header}
	for _, s := range report.Students {
		row := make([]string, 0, len(header))
		row = append(row, s.USN, s.Name)
		for _, d := range report.Dates {
			present, ok := s.Dates[d]
			switch {
			case !ok:
				row = append(row, cellNotRecorded)
			case present:
				row = append(row, cellPresent)
			default:
				row = append(row, cellAbsent)
			}
		}
		row = append(row,
			strconv.Itoa(s.TotalClasses),
			strconv.Itoa(s.ClassesAttended),
			strconv.FormatFloat(s.AttendancePercentage, 'f', 2, 64))
		rows = append(rows, row)
	}
	return rows
}

// RenderCSV renders the report matrix as delimited text. Output is
// byte-for-byte reproducible for identical input.
func RenderCSV(report *StudentReport) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	for _, row := range reportTable(report) {
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// RenderWorkbook renders the report matrix as an xlsx workbook. Present and
// absent cells get green/red shading; values are identical to the CSV
// rendering.
func RenderWorkbook(report *StudentReport) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(exportSheet)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, err
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#D9E1F2"}},
	})
	if err != nil {
		return nil, err
	}
	presentStyle, err := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#C6EFCE"}},
	})
	if err != nil {
		return nil, err
	}
	absentStyle, err := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#FFC7CE"}},
	})
	if err != nil {
		return nil, err
	}

	table := reportTable(report)
	for ri, row := range table {
		for ci, val := range row {
			cell, err := excelize.CoordinatesToCellName(ci+1, ri+1)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellValue(exportSheet, cell, val); err != nil {
				return nil, err
			}
			style := 0
			switch {
			case ri == 0:
				style = headerStyle
			case val == cellPresent:
				style = presentStyle
			case val == cellAbsent:
				style = absentStyle
			}
			if style != 0 {
				if err := f.SetCellStyle(exportSheet, cell, cell, style); err != nil {
					return nil, err
				}
			}
		}
	}

	if len(table) > 0 {
		last, err := excelize.ColumnNumberToName(len(table[0]))
		if err != nil {
			return nil, err
		}
		_ = f.SetColWidth(exportSheet, "A", last, 14)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ExportFilename builds the suggested download name,
// attendance_report_{subject}_{section}_{timestamp}.{ext}.
func ExportFilename(subjectCode, section, format string, now time.Time) string {
	return fmt.Sprintf("attendance_report_%s_%s_%s.%s",
		subjectCode, section, now.Format("20060102_150405"), format)
}
