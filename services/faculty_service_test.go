package services

import (
	"errors"
	"testing"

	"attendify_go/models"

	"gorm.io/gorm"
)

type fakeFacultyStore struct {
	faculty    *models.Faculty
	findErr    error
	mappings   int64
	countErr   error
	countedKey string
	deleted    bool
}

func (s *fakeFacultyStore) facultyByRowID(_ uint) (*models.Faculty, error) {
	if s.findErr != nil {
		return nil, s.findErr
	}
	return s.faculty, nil
}

func (s *fakeFacultyStore) mappingCountByCode(facultyID string) (int64, error) {
	s.countedKey = facultyID
	return s.mappings, s.countErr
}

func (s *fakeFacultyStore) deleteFaculty(_ *models.Faculty) error {
	s.deleted = true
	return nil
}

func facultyRow() *models.Faculty {
	return &models.Faculty{
		BaseModel: models.BaseModel{ID: 7},
		FacultyID: "FAC101",
		Name:      "Dr. Rao",
	}
}

func TestRemoveFacultyDeletesDespiteMappings(t *testing.T) {
	store := &fakeFacultyStore{faculty: facultyRow(), mappings: 3}

	faculty, orphaned, err := removeFaculty(store, 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !store.deleted {
		t.Fatal("faculty was not deleted")
	}
	if orphaned != 3 {
		t.Errorf("orphaned mappings = %d, want 3", orphaned)
	}
	if faculty.FacultyID != "FAC101" {
		t.Errorf("returned faculty code = %q, want FAC101", faculty.FacultyID)
	}
}

func TestRemoveFacultyCountsMappingsByCode(t *testing.T) {
	// Mappings reference the faculty code string, so the count must use
	// that key and not the numeric row ID.
	store := &fakeFacultyStore{faculty: facultyRow()}

	if _, _, err := removeFaculty(store, 7); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if store.countedKey != "FAC101" {
		t.Errorf("mapping count keyed on %q, want FAC101", store.countedKey)
	}
}

func TestRemoveFacultyNotFound(t *testing.T) {
	store := &fakeFacultyStore{findErr: gorm.ErrRecordNotFound}

	_, _, err := removeFaculty(store, 99)
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("got error %v, want gorm.ErrRecordNotFound", err)
	}
	if store.deleted {
		t.Error("delete ran for a missing faculty")
	}
}

func TestRemoveFacultyCountFailureStillDeletes(t *testing.T) {
	store := &fakeFacultyStore{faculty: facultyRow(), countErr: errors.New("count failed")}

	_, orphaned, err := removeFaculty(store, 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !store.deleted {
		t.Fatal("faculty was not deleted")
	}
	if orphaned != 0 {
		t.Errorf("orphaned mappings = %d, want 0 when the count fails", orphaned)
	}
}
