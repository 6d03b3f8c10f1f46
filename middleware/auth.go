package middleware

import (
	"context"
	"strings"
	"time"

	"attendify_go/config"
	"attendify_go/database"
	"attendify_go/models"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
)

type Claims struct {
	ID          uint   `json:"id"`
	FacultyID   string `json:"faculty_id"`
	Department  string `json:"department"`
	Designation string `json:"designation"`
	jwt.RegisteredClaims
}

// GenerateToken creates a new JWT token for a faculty member
func GenerateToken(faculty *models.Faculty) (string, error) {
	claims := &Claims{
		ID:          faculty.ID,
		FacultyID:   faculty.FacultyID,
		Department:  faculty.Department,
		Designation: faculty.Designation,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(config.AppConfig.JWTExpiresIn)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			NotBefore: jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(config.AppConfig.JWTSecret))
}

func blacklistKey(tokenString string) string {
	return "blacklist:jwt:" + tokenString
}

// RevokeToken blacklists a JWT for the remainder of its lifetime. No-op
// without Redis; the token then stays valid until its own expiry.
func RevokeToken(tokenString string) error {
	rc := database.GetRedisClient()
	if rc == nil {
		return nil
	}
	return rc.Set(context.Background(), blacklistKey(tokenString), "1", 24*time.Hour).Err()
}

// isTokenBlacklisted reports whether a token was revoked by logout. Fails
// open when Redis is unreachable so auth keeps working without it.
func isTokenBlacklisted(tokenString string) bool {
	rc := database.GetRedisClient()
	if rc == nil {
		return false
	}
	n, err := rc.Exists(context.Background(), blacklistKey(tokenString)).Result()
	return err == nil && n > 0
}

// JWTMiddleware validates JWT tokens
func JWTMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		// Get token from Authorization header
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Missing authorization header",
			})
		}

		// Extract token from "Bearer <token>"
		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid authorization header format",
			})
		}

		// Reject tokens revoked by logout
		if isTokenBlacklisted(tokenString) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Token has been revoked",
			})
		}

		// Parse and validate token
		token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
			return []byte(config.AppConfig.JWTSecret), nil
		})

		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid token",
			})
		}

		claims, ok := token.Claims.(*Claims)
		if !ok || !token.Valid {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid token claims",
			})
		}

		// Verify the faculty member still exists
		var faculty models.Faculty
		if err := database.DB.Where("faculty_id = ?", claims.FacultyID).First(&faculty).Error; err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Faculty not found",
			})
		}

		// Store faculty info in context
		c.Locals("faculty", &faculty)
		c.Locals("claims", claims)

		return c.Next()
	}
}

// RequireDesignation middleware checks if the faculty holds one of the
// given designations
func RequireDesignation(designations ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, ok := c.Locals("claims").(*Claims)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Missing user claims",
			})
		}

		for _, d := range designations {
			if strings.EqualFold(claims.Designation, d) {
				return c.Next()
			}
		}

		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "Insufficient permissions",
		})
	}
}

// RequireAdmin middleware allows only administrative designations
func RequireAdmin() fiber.Handler {
	return RequireDesignation("Admin", "HOD", "Principal")
}

// GetCurrentFaculty returns the current authenticated faculty member
func GetCurrentFaculty(c *fiber.Ctx) (*models.Faculty, error) {
	faculty, ok := c.Locals("faculty").(*models.Faculty)
	if !ok {
		return nil, fiber.NewError(fiber.StatusUnauthorized, "Faculty not found in context")
	}
	return faculty, nil
}

// GetCurrentClaims returns the current JWT claims
func GetCurrentClaims(c *fiber.Ctx) (*Claims, error) {
	claims, ok := c.Locals("claims").(*Claims)
	if !ok {
		return nil, fiber.NewError(fiber.StatusUnauthorized, "Claims not found in context")
	}
	return claims, nil
}
