package controllers

import (
	"strings"

	"attendify_go/database"
	"attendify_go/middleware"
	"attendify_go/models"
	"attendify_go/utils"

	"github.com/gofiber/fiber/v2"
)

type MappingController struct{}

// CreateMappingRequest represents the section mapping request body
type CreateMappingRequest struct {
	FacultyID    string `json:"faculty_id" validate:"required"`
	Department   string `json:"department" validate:"required"`
	Semester     string `json:"semester" validate:"required"`
	Section      string `json:"section" validate:"required"`
	SubjectCode  string `json:"subject_code" validate:"required"`
	SubjectName  string `json:"subject_name" validate:"required"`
	AcademicYear string `json:"academic_year" validate:"required"`
}

// CreateMapping assigns a faculty member to a section for one academic year
func (mc *MappingController) CreateMapping(c *fiber.Ctx) error {
	var req CreateMappingRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if req.FacultyID == "" || req.Department == "" || req.Semester == "" ||
		req.Section == "" || req.SubjectCode == "" || req.AcademicYear == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Missing required fields",
		})
	}
	if !utils.IsValidAcademicYear(req.AcademicYear) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Academic year must look like 2024 or 2024-2025",
		})
	}

	var faculty models.Faculty
	if err := database.DB.Where("faculty_id = ?", req.FacultyID).First(&faculty).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Faculty not found",
		})
	}

	mapping := models.SectionMapping{
		FacultyID:    req.FacultyID,
		Department:   strings.ToLower(req.Department),
		Semester:     req.Semester,
		Section:      strings.ToUpper(req.Section),
		SubjectCode:  strings.ToUpper(req.SubjectCode),
		SubjectName:  req.SubjectName,
		AcademicYear: req.AcademicYear,
	}

	var count int64
	database.DB.Model(&models.SectionMapping{}).
		Where("department = ? AND semester = ? AND section = ? AND subject_code = ? AND academic_year = ?",
			mapping.Department, mapping.Semester, mapping.Section, mapping.SubjectCode, mapping.AcademicYear).
		Count(&count)
	if count > 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Section mapping already exists",
		})
	}

	if err := database.DB.Create(&mapping).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create section mapping",
		})
	}

	middleware.LogActivity(c, "CREATE", "section_mappings", mapping.ID, fiber.Map{
		"faculty_id":    mapping.FacultyID,
		"subject_code":  mapping.SubjectCode,
		"section":       mapping.Section,
		"academic_year": mapping.AcademicYear,
	})

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Section mapping created successfully",
		"mapping": mapping,
	})
}

// GetMappings lists section mappings, filtered by any query parameters given
func (mc *MappingController) GetMappings(c *fiber.Ctx) error {
	query := database.DB.Model(&models.SectionMapping{})

	if department := c.Query("department"); department != "" {
		query = query.Where("LOWER(department) = LOWER(?)", department)
	}
	if semester := c.Query("semester"); semester != "" {
		query = query.Where("semester = ?", semester)
	}
	if section := c.Query("section"); section != "" {
		query = query.Where("section = ?", section)
	}
	if facultyID := c.Query("faculty_id", c.Query("facultyId")); facultyID != "" {
		query = query.Where("faculty_id = ?", facultyID)
	}
	if year := c.Query("academic_year", c.Query("academicYear")); year != "" {
		query = query.Where("academic_year = ?", year)
	}

	var mappings []models.SectionMapping
	if err := query.Order("academic_year DESC, subject_code, section").Find(&mappings).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch section mappings"})
	}

	// Attach faculty names so the listing is readable without a second call
	facultyIDs := make([]string, 0, len(mappings))
	for _, m := range mappings {
		facultyIDs = append(facultyIDs, m.FacultyID)
	}
	names := map[string]string{}
	if len(facultyIDs) > 0 {
		var faculties []models.Faculty
		database.DB.Where("faculty_id IN ?", facultyIDs).Find(&faculties)
		for _, f := range faculties {
			names[f.FacultyID] = f.Name
		}
	}

	result := make([]fiber.Map, 0, len(mappings))
	for _, m := range mappings {
		result = append(result, fiber.Map{
			"id":            m.ID,
			"faculty_id":    m.FacultyID,
			"faculty_name":  names[m.FacultyID],
			"department":    m.Department,
			"semester":      m.Semester,
			"section":       m.Section,
			"subject_code":  m.SubjectCode,
			"subject_name":  m.SubjectName,
			"academic_year": m.AcademicYear,
		})
	}

	return c.JSON(fiber.Map{"mappings": result})
}

// DeleteMapping removes a section mapping. Existing attendance rows keep the
// academic year they were stamped with.
func (mc *MappingController) DeleteMapping(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid mapping ID"})
	}

	var mapping models.SectionMapping
	if err := database.DB.First(&mapping, id).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Section mapping not found"})
	}

	if err := database.DB.Delete(&mapping).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to delete section mapping"})
	}

	middleware.LogActivity(c, "DELETE", "section_mappings", mapping.ID, fiber.Map{
		"subject_code":  mapping.SubjectCode,
		"section":       mapping.Section,
		"academic_year": mapping.AcademicYear,
	})

	return c.JSON(fiber.Map{"message": "Section mapping deleted successfully"})
}
