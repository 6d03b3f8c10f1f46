package controllers

import (
	"errors"
	"strings"
	"time"

	"attendify_go/database"
	"attendify_go/middleware"
	"attendify_go/models"
	"attendify_go/services"
	"attendify_go/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type FacultyController struct{}

// LoginRequest represents the login request body
type LoginRequest struct {
	FacultyID string `json:"faculty_id" validate:"required"`
	Password  string `json:"password" validate:"required"`
}

// RegisterFacultyRequest represents the faculty registration request body
type RegisterFacultyRequest struct {
	FacultyID   string `json:"faculty_id" validate:"required,min=3,max=50"`
	Name        string `json:"name" validate:"required"`
	Email       string `json:"email" validate:"email"`
	Password    string `json:"password" validate:"required,min=6"`
	Department  string `json:"department" validate:"required"`
	Designation string `json:"designation"`
	JoiningDate string `json:"joining_date"`
}

// Login authenticates a faculty member and returns a JWT token
func (fc *FacultyController) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	var faculty models.Faculty
	if err := database.DB.Where("faculty_id = ?", req.FacultyID).First(&faculty).Error; err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Invalid credentials",
		})
	}

	if err := utils.CheckPassword(req.Password, faculty.Password); err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Invalid credentials",
		})
	}

	token, err := middleware.GenerateToken(&faculty)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to generate token",
		})
	}

	middleware.LogActivity(c, "LOGIN", "auth", faculty.ID, fiber.Map{
		"faculty_id":  faculty.FacultyID,
		"designation": faculty.Designation,
	})

	return c.JSON(fiber.Map{
		"message": "Login successful",
		"token":   token,
		"faculty": fiber.Map{
			"id":          faculty.ID,
			"faculty_id":  faculty.FacultyID,
			"name":        faculty.Name,
			"email":       faculty.Email,
			"department":  faculty.Department,
			"designation": faculty.Designation,
		},
	})
}

// Logout invalidates the current JWT by storing it in Redis blacklist for 24 hours
func (fc *FacultyController) Logout(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Missing authorization header"})
	}

	tokenString := strings.TrimPrefix(authHeader, "Bearer ")
	if tokenString == authHeader {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid authorization header format"})
	}

	if err := middleware.RevokeToken(tokenString); err != nil {
		middleware.LogActivity(c, "LOGOUT", "auth", 0, fiber.Map{"error": err.Error()})
	}

	if faculty, err := middleware.GetCurrentFaculty(c); err == nil {
		middleware.LogActivity(c, "LOGOUT", "auth", faculty.ID, fiber.Map{"faculty_id": faculty.FacultyID})
	} else {
		middleware.LogActivity(c, "LOGOUT", "auth", 0, fiber.Map{"note": "anonymous or token invalid"})
	}

	return c.JSON(fiber.Map{"message": "Logged out successfully"})
}

// Register creates a new faculty account (admin only)
func (fc *FacultyController) Register(c *fiber.Ctx) error {
	var req RegisterFacultyRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	var existing models.Faculty
	if err := database.DB.Where("faculty_id = ?", req.FacultyID).First(&existing).Error; err == nil {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "Faculty ID already exists",
		})
	}
	if req.Email != "" {
		if err := database.DB.Where("email = ?", req.Email).First(&existing).Error; err == nil {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error": "Email already exists",
			})
		}
	}

	hashedPassword, err := utils.HashPassword(req.Password)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to hash password",
		})
	}

	designation := req.Designation
	if designation == "" {
		designation = "Faculty"
	}
	joiningDate := req.JoiningDate
	if joiningDate == "" {
		joiningDate = time.Now().Format("2006-01-02")
	}

	faculty := models.Faculty{
		FacultyID:   req.FacultyID,
		Name:        req.Name,
		Email:       req.Email,
		Password:    hashedPassword,
		Department:  strings.ToLower(req.Department),
		Designation: designation,
		JoiningDate: joiningDate,
	}

	if err := database.DB.Create(&faculty).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create faculty",
		})
	}

	middleware.LogActivity(c, "CREATE", "faculties", faculty.ID, fiber.Map{
		"faculty_id":  faculty.FacultyID,
		"designation": faculty.Designation,
	})

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Faculty created successfully",
		"faculty": faculty,
	})
}

// GetFaculties returns faculty members, optionally filtered by department
func (fc *FacultyController) GetFaculties(c *fiber.Ctx) error {
	query := database.DB.Model(&models.Faculty{})
	if department := c.Query("department"); department != "" {
		query = query.Where("LOWER(department) = LOWER(?)", department)
	}

	var faculties []models.Faculty
	if err := query.Order("name").Find(&faculties).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch faculties"})
	}

	return c.JSON(fiber.Map{"faculties": faculties})
}

// GetProfile returns the current faculty member's profile
func (fc *FacultyController) GetProfile(c *fiber.Ctx) error {
	faculty, err := middleware.GetCurrentFaculty(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Faculty not found",
		})
	}

	return c.JSON(fiber.Map{"faculty": faculty})
}

// ChangePassword allows faculty members to change their password
func (fc *FacultyController) ChangePassword(c *fiber.Ctx) error {
	faculty, err := middleware.GetCurrentFaculty(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Faculty not found",
		})
	}

	var req struct {
		CurrentPassword string `json:"current_password" validate:"required"`
		NewPassword     string `json:"new_password" validate:"required,min=6"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if err := utils.CheckPassword(req.CurrentPassword, faculty.Password); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Current password is incorrect",
		})
	}

	hashedPassword, err := utils.HashPassword(req.NewPassword)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to hash password",
		})
	}

	if err := database.DB.Model(faculty).Update("password", hashedPassword).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to update password",
		})
	}

	middleware.LogActivity(c, "UPDATE", "faculties", faculty.ID, fiber.Map{
		"action": "password_change",
	})

	return c.JSON(fiber.Map{"message": "Password changed successfully"})
}

// DeleteFaculty removes a faculty account (admin only). Section mappings
// referencing the faculty are left in place as dangling references.
func (fc *FacultyController) DeleteFaculty(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid faculty ID"})
	}

	faculty, orphaned, err := services.RemoveFaculty(uint(id))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Faculty not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to delete faculty"})
	}

	if orphaned > 0 {
		logrus.WithFields(logrus.Fields{
			"faculty_id": faculty.FacultyID,
			"mappings":   orphaned,
		}).Warn("Deleted faculty still referenced by section mappings")
	}

	middleware.LogActivity(c, "DELETE", "faculties", faculty.ID, fiber.Map{
		"faculty_id":        faculty.FacultyID,
		"orphaned_mappings": orphaned,
	})

	return c.JSON(fiber.Map{"message": "Faculty deleted successfully"})
}
