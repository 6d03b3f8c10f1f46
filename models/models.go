package models

import (
	"database/sql/driver"
	"time"

	"gorm.io/gorm"
)

// Base model with common fields
type BaseModel struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}

// JSON field type for GORM
type JSON []byte

func (j JSON) Value() (driver.Value, error) {
	if j.IsNull() {
		return nil, nil
	}
	return string(j), nil
}

func (j *JSON) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}
	s, ok := value.([]byte)
	if !ok {
		return nil
	}
	*j = append((*j)[0:0], s...)
	return nil
}

func (j JSON) MarshalJSON() ([]byte, error) {
	if j == nil {
		return []byte("null"), nil
	}
	return j, nil
}

func (j *JSON) UnmarshalJSON(data []byte) error {
	if j == nil {
		return nil
	}
	*j = append((*j)[0:0], data...)
	return nil
}

func (j JSON) IsNull() bool {
	return len(j) == 0 || string(j) == "null"
}

// Student model. USN is the natural key; rows are replaced wholesale by
// roster re-imports and never edited in place.
type Student struct {
	BaseModel
	USN          string `json:"usn" gorm:"size:20;not null;uniqueIndex"`
	Name         string `json:"name" gorm:"size:255;not null"`
	Department   string `json:"department" gorm:"size:50;not null;index"`
	Semester     string `json:"semester" gorm:"size:10;not null"`
	Section      string `json:"section" gorm:"size:10"`
	AcademicYear string `json:"academic_year" gorm:"size:20;not null"`
}

// Faculty model
type Faculty struct {
	BaseModel
	FacultyID   string `json:"faculty_id" gorm:"size:50;not null;uniqueIndex"`
	Name        string `json:"name" gorm:"size:255;not null"`
	Email       string `json:"email" gorm:"size:255;not null;uniqueIndex"`
	Department  string `json:"department" gorm:"size:50;not null"`
	Designation string `json:"designation" gorm:"size:100;not null"`
	JoiningDate string `json:"joining_date" gorm:"size:20;not null"`
	Password    string `json:"-" gorm:"size:255;not null"`
}

// Subject catalog entry, one row per departmental offering.
type Subject struct {
	BaseModel
	Code       string `json:"code" gorm:"size:20;not null;uniqueIndex:idx_subject_dept_code"`
	Name       string `json:"name" gorm:"size:255;not null"`
	Department string `json:"department" gorm:"size:50;not null;uniqueIndex:idx_subject_dept_code"`
	Semester   string `json:"semester" gorm:"size:10"`
	Scheme     string `json:"scheme" gorm:"size:10"`
}

// SectionMapping assigns a faculty member to teach a subject to a section
// for one academic year. At most one mapping may exist per
// (department, semester, section, subject, academic year); the resolver
// prefers the highest academic year when a section was re-mapped later.
// Deleting a faculty member does not cascade here.
type SectionMapping struct {
	BaseModel
	FacultyID    string `json:"faculty_id" gorm:"size:50;not null;index"`
	Department   string `json:"department" gorm:"size:50;not null;uniqueIndex:idx_mapping_tuple"`
	Semester     string `json:"semester" gorm:"size:10;not null;uniqueIndex:idx_mapping_tuple"`
	Section      string `json:"section" gorm:"size:10;not null;uniqueIndex:idx_mapping_tuple"`
	SubjectCode  string `json:"subject_code" gorm:"size:20;not null;uniqueIndex:idx_mapping_tuple"`
	SubjectName  string `json:"subject_name" gorm:"size:255;not null"`
	AcademicYear string `json:"academic_year" gorm:"size:20;not null;uniqueIndex:idx_mapping_tuple"`
}

// AttendanceRecord is one presence mark. Rows are append-only: a session
// (all rows sharing department+semester+subject+section+date) is written
// exactly once and never updated. AcademicYear is stamped from the mapping
// resolved at write time and never re-resolved.
type AttendanceRecord struct {
	BaseModel
	USN          string `json:"usn" gorm:"size:20;not null;uniqueIndex:idx_attendance_slot"`
	Date         string `json:"date" gorm:"size:10;not null;uniqueIndex:idx_attendance_slot;index"`
	SubjectCode  string `json:"subject_code" gorm:"size:20;not null;uniqueIndex:idx_attendance_slot"`
	Section      string `json:"section" gorm:"size:10;not null;uniqueIndex:idx_attendance_slot"`
	Present      bool   `json:"present" gorm:"not null"`
	Department   string `json:"department" gorm:"size:50;not null;index"`
	Semester     string `json:"semester" gorm:"size:10;not null"`
	AcademicYear string `json:"academic_year" gorm:"size:20;not null"`
}

// Log model for activity tracking
type ActivityLog struct {
	BaseModel
	FacultyID  uint   `json:"faculty_id"`
	Action     string `json:"action" gorm:"size:100;not null"`
	Resource   string `json:"resource" gorm:"size:100;not null"`
	ResourceID uint   `json:"resource_id"`
	Details    JSON   `json:"details" gorm:"type:json"`
	IPAddress  string `json:"ip_address" gorm:"size:45"`
	UserAgent  string `json:"user_agent" gorm:"size:500"`
}

// ReportArchive tracks exported report files uploaded to S3.
type ReportArchive struct {
	BaseModel
	FileName    string `json:"file_name" gorm:"size:255;not null"`
	S3Key       string `json:"s3_key" gorm:"size:500;not null"`
	Format      string `json:"format" gorm:"size:10;not null;type:enum('csv','xlsx')"`
	SubjectCode string `json:"subject_code" gorm:"size:20;not null"`
	Section     string `json:"section" gorm:"size:10;not null"`
	FromDate    string `json:"from_date" gorm:"size:10"`
	ToDate      string `json:"to_date" gorm:"size:10"`
	RowCount    int    `json:"row_count" gorm:"not null"`
	FileSize    int64  `json:"file_size" gorm:"not null"`
	Status      string `json:"status" gorm:"size:50;not null;default:'pending';type:enum('pending','completed','failed')"` // pending, completed, failed
	Error       string `json:"error" gorm:"type:text"`
}
