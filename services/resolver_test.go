package services

import (
	"testing"

	"attendify_go/models"
)

func mapping(id uint, year string) models.SectionMapping {
	m := models.SectionMapping{AcademicYear: year}
	m.ID = id
	return m
}

func TestLatestMapping(t *testing.T) {
	tests := []struct {
		name     string
		mappings []models.SectionMapping
		expID    uint
	}{
		{
			name:     "single mapping",
			mappings: []models.SectionMapping{mapping(1, "2023-2024")},
			expID:    1,
		},
		{
			name: "highest academic year wins",
			mappings: []models.SectionMapping{
				mapping(1, "2022-2023"),
				mapping(2, "2024-2025"),
				mapping(3, "2023-2024"),
			},
			expID: 2,
		},
		{
			name: "order of rows does not matter",
			mappings: []models.SectionMapping{
				mapping(5, "2024-2025"),
				mapping(1, "2022-2023"),
			},
			expID: 5,
		},
		{
			name: "tie broken by lowest id",
			mappings: []models.SectionMapping{
				mapping(7, "2024-2025"),
				mapping(3, "2024-2025"),
			},
			expID: 3,
		},
		{
			name: "plain year compares against ranged year",
			mappings: []models.SectionMapping{
				mapping(1, "2023"),
				mapping(2, "2024"),
			},
			expID: 2,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			got := latestMapping(tc.mappings)
			if got == nil {
				t.Fatalf("expected a mapping, got nil")
			}
			if got.ID != tc.expID {
				t.Fatalf("expected mapping %d, got %d (year %s)", tc.expID, got.ID, got.AcademicYear)
			}
		})
	}
}

func TestLatestMappingEmpty(t *testing.T) {
	if got := latestMapping(nil); got != nil {
		t.Fatalf("expected nil for empty input, got %+v", got)
	}
}
