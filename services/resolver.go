package services

import (
	"attendify_go/database"
	"attendify_go/models"
)

// ResolveMapping finds the currently-active section mapping for the given
// keys. A section may be re-mapped across academic years; the row with the
// highest academic year wins. Returns ErrMappingNotFound when no mapping
// exists.
func ResolveMapping(department, semester, subjectCode, section string) (*models.SectionMapping, error) {
	var mappings []models.SectionMapping
	if err := database.DB.
		Where("department = ? AND semester = ? AND subject_code = ? AND section = ?",
			department, semester, subjectCode, section).
		Find(&mappings).Error; err != nil {
		return nil, err
	}

	m := latestMapping(mappings)
	if m == nil {
		return nil, ErrMappingNotFound
	}
	return m, nil
}

// latestMapping picks the mapping with the maximal academic year. Academic
// years are comparable strings ("2023" or "2023-2024"), so plain string
// comparison orders them. Ties are not expected; if present the lowest row
// ID wins so the choice stays deterministic.
func latestMapping(mappings []models.SectionMapping) *models.SectionMapping {
	var best *models.SectionMapping
	for i := range mappings {
		m := &mappings[i]
		switch {
		case best == nil:
			best = m
		case m.AcademicYear > best.AcademicYear:
			best = m
		case m.AcademicYear == best.AcademicYear && m.ID < best.ID:
			best = m
		}
	}
	return best
}
