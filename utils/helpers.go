package utils

import (
	"crypto/rand"
	"encoding/hex"
	"regexp"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// HashPassword hashes a password using bcrypt
func HashPassword(password string) (string, error) {
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashedBytes), nil
}

// CheckPassword compares a password with its hash
func CheckPassword(password, hash string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}

// GenerateRandomString generates a random string of specified length
func GenerateRandomString(length int) (string, error) {
	bytes := make([]byte, length/2)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}

// usnPattern matches university seat numbers like 3PG22CS107:
// digit, college code, two-digit year, branch code, three-digit serial.
var usnPattern = regexp.MustCompile(`^[0-9][A-Z]{2}[0-9]{2}[A-Z]{2,3}[0-9]{3}$`)

// IsValidUSN checks whether a string is a well-formed seat number
func IsValidUSN(usn string) bool {
	return usnPattern.MatchString(strings.ToUpper(strings.TrimSpace(usn)))
}

// academicYearPattern accepts "2023" or "2023-2024"
var academicYearPattern = regexp.MustCompile(`^[0-9]{4}(-[0-9]{4})?$`)

// IsValidAcademicYear checks an academic year label
func IsValidAcademicYear(year string) bool {
	return academicYearPattern.MatchString(strings.TrimSpace(year))
}

// IsValidFileExtension checks if file extension is allowed
func IsValidFileExtension(filename string, allowedExtensions []string) bool {
	if filename == "" {
		return false
	}

	parts := strings.Split(filename, ".")
	if len(parts) < 2 {
		return false
	}

	ext := strings.ToLower(parts[len(parts)-1])

	for _, allowedExt := range allowedExtensions {
		if ext == strings.ToLower(allowedExt) {
			return true
		}
	}
	return false
}

// SanitizeString removes dangerous characters from string
func SanitizeString(input string) string {
	// Remove null bytes and control characters
	input = strings.ReplaceAll(input, "\x00", "")

	// Trim whitespace
	input = strings.TrimSpace(input)

	return input
}
