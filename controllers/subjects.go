package controllers

import (
	"attendify_go/database"
	"attendify_go/models"

	"github.com/gofiber/fiber/v2"
)

type SubjectController struct{}

// GetSubjects returns the subject catalog for one department
func (sc *SubjectController) GetSubjects(c *fiber.Ctx) error {
	department := c.Params("department")
	if department == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Department is required"})
	}

	query := database.DB.Where("LOWER(department) = LOWER(?)", department)
	if semester := c.Query("semester"); semester != "" {
		query = query.Where("semester = ?", semester)
	}

	var subjects []models.Subject
	if err := query.Order("semester, code").Find(&subjects).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch subjects"})
	}

	if len(subjects) == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"subjects": []models.Subject{},
			"message":  "No subjects found for department: " + department,
		})
	}

	return c.JSON(fiber.Map{"subjects": subjects})
}

// GetDepartments returns the distinct departments present in the subject catalog
func (sc *SubjectController) GetDepartments(c *fiber.Ctx) error {
	var departments []string
	if err := database.DB.Model(&models.Subject{}).
		Distinct("department").
		Order("department").
		Pluck("department", &departments).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch departments"})
	}

	return c.JSON(fiber.Map{"departments": departments})
}
