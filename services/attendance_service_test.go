package services

import (
	"errors"
	"testing"

	"attendify_go/models"

	"gorm.io/gorm"
)

// fakeSessionStore drives the guard sequence without a database. A marked
// session is visible to the duplicate check on the next call.
type fakeSessionStore struct {
	mapping     *models.SectionMapping
	unknown     []string
	insertErr   error
	inserted    []models.AttendanceRecord
	insertCalls int
}

func (s *fakeSessionStore) sessionExists(_, _, _, _, _ string) (bool, error) {
	return len(s.inserted) > 0, nil
}

func (s *fakeSessionStore) activeMapping(_, _, _, _ string) (*models.SectionMapping, error) {
	if s.mapping == nil {
		return nil, ErrMappingNotFound
	}
	return s.mapping, nil
}

func (s *fakeSessionStore) unknownUSNs(_ []string) ([]string, error) {
	return s.unknown, nil
}

func (s *fakeSessionStore) insertSession(rows []models.AttendanceRecord) error {
	s.insertCalls++
	if s.insertErr != nil {
		return s.insertErr
	}
	s.inserted = append(s.inserted, rows...)
	return nil
}

func sessionRequest(records ...PresenceEntry) *MarkSessionRequest {
	return &MarkSessionRequest{
		Department:  "cse",
		Semester:    "6",
		SubjectCode: "B001",
		Section:     "A",
		Date:        "2024-01-10",
		Records:     records,
	}
}

func classMapping() *models.SectionMapping {
	return &models.SectionMapping{
		FacultyID:    "FAC101",
		Department:   "cse",
		Semester:     "6",
		Section:      "A",
		SubjectCode:  "B001",
		SubjectName:  "Compiler Design",
		AcademicYear: "2024-2025",
	}
}

func TestMarkSessionSecondSubmissionRejected(t *testing.T) {
	store := &fakeSessionStore{mapping: classMapping()}
	req := sessionRequest(
		PresenceEntry{USN: "3PG22CS101", Present: true},
		PresenceEntry{USN: "3PG22CS102", Present: false},
	)

	written, err := markSession(store, req)
	if err != nil {
		t.Fatalf("first submission: unexpected error %v", err)
	}
	if written != 2 {
		t.Fatalf("first submission wrote %d records, want 2", written)
	}

	written, err = markSession(store, req)
	if !errors.Is(err, ErrDuplicateSession) {
		t.Fatalf("second submission: got error %v, want ErrDuplicateSession", err)
	}
	if written != 0 {
		t.Errorf("second submission reported %d written records, want 0", written)
	}
	if len(store.inserted) != 2 {
		t.Errorf("store holds %d records after rejected resubmission, want 2", len(store.inserted))
	}
	if store.insertCalls != 1 {
		t.Errorf("insert was attempted %d times, want 1", store.insertCalls)
	}
}

func TestMarkSessionUnknownStudentRejectsWholeSession(t *testing.T) {
	store := &fakeSessionStore{
		mapping: classMapping(),
		unknown: []string{"3PG22CS999"},
	}
	req := sessionRequest(
		PresenceEntry{USN: "3PG22CS101", Present: true},
		PresenceEntry{USN: "3PG22CS999", Present: true},
	)

	written, err := markSession(store, req)
	var unknownErr *UnknownStudentsError
	if !errors.As(err, &unknownErr) {
		t.Fatalf("got error %v, want UnknownStudentsError", err)
	}
	if len(unknownErr.USNs) != 1 || unknownErr.USNs[0] != "3PG22CS999" {
		t.Errorf("unknown USNs = %v, want [3PG22CS999]", unknownErr.USNs)
	}
	if written != 0 {
		t.Errorf("written = %d, want 0", written)
	}
	if store.insertCalls != 0 {
		t.Errorf("insert was attempted %d times, want 0", store.insertCalls)
	}
	if len(store.inserted) != 0 {
		t.Errorf("store holds %d records after rejection, want 0", len(store.inserted))
	}
}

func TestMarkSessionRequiresMapping(t *testing.T) {
	store := &fakeSessionStore{}
	req := sessionRequest(PresenceEntry{USN: "3PG22CS101", Present: true})

	_, err := markSession(store, req)
	if !errors.Is(err, ErrMappingNotFound) {
		t.Fatalf("got error %v, want ErrMappingNotFound", err)
	}
	if store.insertCalls != 0 {
		t.Errorf("insert was attempted %d times, want 0", store.insertCalls)
	}
}

func TestMarkSessionStampsMappingYear(t *testing.T) {
	store := &fakeSessionStore{mapping: classMapping()}
	req := sessionRequest(
		PresenceEntry{USN: "3PG22CS101", Present: true},
		PresenceEntry{USN: "3PG22CS102", Present: false},
	)

	written, err := markSession(store, req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if written != 2 {
		t.Fatalf("written = %d, want 2", written)
	}
	for _, row := range store.inserted {
		if row.AcademicYear != "2024-2025" {
			t.Errorf("row %s academic year = %q, want 2024-2025", row.USN, row.AcademicYear)
		}
		if row.Department != "cse" || row.Semester != "6" || row.SubjectCode != "B001" || row.Section != "A" {
			t.Errorf("row %s carries wrong session key fields: %+v", row.USN, row)
		}
		if row.Date != "2024-01-10" {
			t.Errorf("row %s date = %q, want 2024-01-10", row.USN, row.Date)
		}
	}
	if !store.inserted[0].Present || store.inserted[1].Present {
		t.Errorf("presence marks not preserved: %v, %v", store.inserted[0].Present, store.inserted[1].Present)
	}
}

func TestMarkSessionLostInsertRaceReportsDuplicate(t *testing.T) {
	store := &fakeSessionStore{
		mapping:   classMapping(),
		insertErr: gorm.ErrDuplicatedKey,
	}
	req := sessionRequest(PresenceEntry{USN: "3PG22CS101", Present: true})

	written, err := markSession(store, req)
	if !errors.Is(err, ErrDuplicateSession) {
		t.Fatalf("got error %v, want ErrDuplicateSession", err)
	}
	if written != 0 {
		t.Errorf("written = %d, want 0", written)
	}
}

func TestMarkSessionValidatesInput(t *testing.T) {
	tests := []struct {
		name string
		req  *MarkSessionRequest
	}{
		{
			name: "malformed date",
			req: &MarkSessionRequest{
				Department: "cse", Semester: "6", SubjectCode: "B001", Section: "A",
				Date:    "10-01-2024",
				Records: []PresenceEntry{{USN: "3PG22CS101", Present: true}},
			},
		},
		{
			name: "empty records",
			req: &MarkSessionRequest{
				Department: "cse", Semester: "6", SubjectCode: "B001", Section: "A",
				Date: "2024-01-10",
			},
		},
		{
			name: "missing subject code",
			req: &MarkSessionRequest{
				Department: "cse", Semester: "6", Section: "A",
				Date:    "2024-01-10",
				Records: []PresenceEntry{{USN: "3PG22CS101", Present: true}},
			},
		},
		{
			name: "record without usn",
			req: &MarkSessionRequest{
				Department: "cse", Semester: "6", SubjectCode: "B001", Section: "A",
				Date:    "2024-01-10",
				Records: []PresenceEntry{{Present: true}},
			},
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			store := &fakeSessionStore{mapping: classMapping()}
			_, err := markSession(store, tc.req)
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("got error %v, want ValidationError", err)
			}
			if store.insertCalls != 0 {
				t.Errorf("insert was attempted %d times, want 0", store.insertCalls)
			}
		})
	}
}
