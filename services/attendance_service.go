package services

import (
	"errors"
	"sort"
	"strings"
	"sync"

	"attendify_go/database"
	"attendify_go/models"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var validate = validator.New()

// PresenceEntry is one student's mark in a submitted session.
type PresenceEntry struct {
	USN     string `json:"usn" validate:"required"`
	Present bool   `json:"present"`
}

// MarkSessionRequest is a full attendance session submission.
type MarkSessionRequest struct {
	Department  string          `json:"department" validate:"required"`
	Semester    string          `json:"semester" validate:"required"`
	SubjectCode string          `json:"subject_code" validate:"required"`
	Section     string          `json:"section" validate:"required"`
	Date        string          `json:"date" validate:"required,datetime=2006-01-02"`
	Records     []PresenceEntry `json:"records" validate:"required,min=1,dive"`
}

// sessionKey identifies the uniqueness boundary of one attendance session.
func (r *MarkSessionRequest) sessionKey() string {
	return strings.Join([]string{r.Department, r.Semester, r.SubjectCode, r.Section, r.Date}, "|")
}

// sessionLocks serializes concurrent submissions for the same session key so
// two callers cannot both pass the duplicate check and both insert. Entries
// are per session tuple; sessions are marked once, so the map stays small.
var sessionLocks sync.Map

// sessionStore abstracts the reads and the insert behind MarkSession so the
// guard sequence can run against any backing store.
type sessionStore interface {
	sessionExists(department, semester, subjectCode, section, date string) (bool, error)
	activeMapping(department, semester, subjectCode, section string) (*models.SectionMapping, error)
	unknownUSNs(usns []string) ([]string, error)
	insertSession(rows []models.AttendanceRecord) error
}

// gormSessionStore is the production store over the global DB handle.
type gormSessionStore struct{}

func (gormSessionStore) sessionExists(department, semester, subjectCode, section, date string) (bool, error) {
	return SessionExists(department, semester, subjectCode, section, date)
}

func (gormSessionStore) activeMapping(department, semester, subjectCode, section string) (*models.SectionMapping, error) {
	return ResolveMapping(department, semester, subjectCode, section)
}

func (gormSessionStore) unknownUSNs(usns []string) ([]string, error) {
	return missingUSNs(usns)
}

func (gormSessionStore) insertSession(rows []models.AttendanceRecord) error {
	return database.DB.Transaction(func(tx *gorm.DB) error {
		return tx.Create(&rows).Error
	})
}

// MarkSession validates and commits one attendance session as a single
// transaction. All-or-nothing: a duplicate session, an unresolvable mapping
// or any unknown USN rejects the whole submission with nothing inserted.
// Returns the number of records written.
func MarkSession(req *MarkSessionRequest) (int, error) {
	lock, _ := sessionLocks.LoadOrStore(req.sessionKey(), &sync.Mutex{})
	mu := lock.(*sync.Mutex)
	mu.Lock()
	defer mu.Unlock()

	return markSession(gormSessionStore{}, req)
}

// markSession runs the guard sequence: validate, duplicate check, mapping
// resolution, USN check, insert. Rows are only built after every guard
// passes, so a rejection leaves the store untouched.
func markSession(store sessionStore, req *MarkSessionRequest) (int, error) {
	if err := validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return 0, &ValidationError{Field: strings.ToLower(verrs[0].Field()), Reason: verrs[0].Tag()}
		}
		return 0, &ValidationError{Field: "request", Reason: err.Error()}
	}

	exists, err := store.sessionExists(req.Department, req.Semester, req.SubjectCode, req.Section, req.Date)
	if err != nil {
		return 0, err
	}
	if exists {
		return 0, ErrDuplicateSession
	}

	mapping, err := store.activeMapping(req.Department, req.Semester, req.SubjectCode, req.Section)
	if err != nil {
		return 0, err
	}

	usns := make([]string, 0, len(req.Records))
	for _, r := range req.Records {
		usns = append(usns, r.USN)
	}
	missing, err := store.unknownUSNs(usns)
	if err != nil {
		return 0, err
	}
	if len(missing) > 0 {
		return 0, &UnknownStudentsError{USNs: missing}
	}

	rows := make([]models.AttendanceRecord, 0, len(req.Records))
	for _, r := range req.Records {
		rows = append(rows, models.AttendanceRecord{
			USN:          r.USN,
			Date:         req.Date,
			SubjectCode:  req.SubjectCode,
			Section:      req.Section,
			Present:      r.Present,
			Department:   req.Department,
			Semester:     req.Semester,
			AcademicYear: mapping.AcademicYear,
		})
	}

	if err := store.insertSession(rows); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// Race on the uniqueness constraint: another writer committed
			// this session between our check and the insert.
			logrus.WithFields(logrus.Fields{
				"subject_code": req.SubjectCode,
				"section":      req.Section,
				"date":         req.Date,
			}).Warn("concurrent attendance submission lost the race on the session key")
			return 0, ErrDuplicateSession
		}
		return 0, err
	}

	invalidateClassSummary(req.Department, req.Semester, req.SubjectCode)

	return len(rows), nil
}

// SessionExists reports whether any attendance record exists for the
// session key.
func SessionExists(department, semester, subjectCode, section, date string) (bool, error) {
	var count int64
	err := database.DB.Model(&models.AttendanceRecord{}).
		Where("department = ? AND semester = ? AND subject_code = ? AND section = ? AND date = ?",
			department, semester, subjectCode, section, date).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// missingUSNs returns, sorted, the submitted USNs that have no student row.
func missingUSNs(usns []string) ([]string, error) {
	var known []string
	if err := database.DB.Model(&models.Student{}).
		Where("usn IN ?", usns).
		Pluck("usn", &known).Error; err != nil {
		return nil, err
	}

	knownSet := make(map[string]struct{}, len(known))
	for _, u := range known {
		knownSet[u] = struct{}{}
	}

	seen := make(map[string]struct{}, len(usns))
	var missing []string
	for _, u := range usns {
		if _, ok := knownSet[u]; ok {
			continue
		}
		if _, dup := seen[u]; dup {
			continue
		}
		seen[u] = struct{}{}
		missing = append(missing, u)
	}
	sort.Strings(missing)
	return missing, nil
}
