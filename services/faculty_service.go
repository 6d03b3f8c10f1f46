package services

import (
	"attendify_go/database"
	"attendify_go/models"
)

// facultyStore abstracts the lookups and the delete behind RemoveFaculty.
type facultyStore interface {
	facultyByRowID(id uint) (*models.Faculty, error)
	mappingCountByCode(facultyID string) (int64, error)
	deleteFaculty(f *models.Faculty) error
}

type gormFacultyStore struct{}

func (gormFacultyStore) facultyByRowID(id uint) (*models.Faculty, error) {
	var f models.Faculty
	if err := database.DB.First(&f, id).Error; err != nil {
		return nil, err
	}
	return &f, nil
}

func (gormFacultyStore) mappingCountByCode(facultyID string) (int64, error) {
	var count int64
	err := database.DB.Model(&models.SectionMapping{}).
		Where("faculty_id = ?", facultyID).
		Count(&count).Error
	return count, err
}

func (gormFacultyStore) deleteFaculty(f *models.Faculty) error {
	return database.DB.Delete(f).Error
}

// RemoveFaculty deletes a faculty account. Section mappings are never
// cascaded or blocked on: rows keep the faculty code as a dangling reference.
// The count of such rows is returned so callers can log it.
func RemoveFaculty(id uint) (*models.Faculty, int64, error) {
	return removeFaculty(gormFacultyStore{}, id)
}

func removeFaculty(store facultyStore, id uint) (*models.Faculty, int64, error) {
	f, err := store.facultyByRowID(id)
	if err != nil {
		return nil, 0, err
	}

	// Mappings store the faculty code, not the row ID. The count is
	// informational and never blocks the delete.
	orphaned, err := store.mappingCountByCode(f.FacultyID)
	if err != nil {
		orphaned = 0
	}

	if err := store.deleteFaculty(f); err != nil {
		return nil, 0, err
	}
	return f, orphaned, nil
}
