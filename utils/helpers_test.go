package utils

import "testing"

func TestIsValidUSN(t *testing.T) {
	tests := []struct {
		name  string
		input string
		valid bool
	}{
		{"standard usn", "3PG22CS107", true},
		{"three letter branch", "3PG22CSE107", true},
		{"lowercase accepted", "3pg22cs107", true},
		{"surrounding whitespace", " 3PG22CS107 ", true},
		{"too short", "3PG22CS", false},
		{"missing leading digit", "PG22CS107", false},
		{"empty", "", false},
		{"garbage", "hello", false},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			if got := IsValidUSN(tc.input); got != tc.valid {
				t.Fatalf("IsValidUSN(%q) = %v, want %v", tc.input, got, tc.valid)
			}
		})
	}
}

func TestIsValidAcademicYear(t *testing.T) {
	tests := []struct {
		input string
		valid bool
	}{
		{"2024", true},
		{"2023-2024", true},
		{" 2024 ", true},
		{"24", false},
		{"2024-25", false},
		{"", false},
		{"year", false},
	}

	for _, tc := range tests {
		if got := IsValidAcademicYear(tc.input); got != tc.valid {
			t.Errorf("IsValidAcademicYear(%q) = %v, want %v", tc.input, got, tc.valid)
		}
	}
}

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("secret123")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if hash == "secret123" {
		t.Fatalf("password stored in plain text")
	}
	if err := CheckPassword("secret123", hash); err != nil {
		t.Errorf("correct password rejected: %v", err)
	}
	if err := CheckPassword("wrong", hash); err == nil {
		t.Errorf("wrong password accepted")
	}
}

func TestIsValidFileExtension(t *testing.T) {
	allowed := []string{"csv", "xlsx", "xls"}

	tests := []struct {
		filename string
		valid    bool
	}{
		{"roster.csv", true},
		{"roster.XLSX", true},
		{"roster.xls", true},
		{"roster.pdf", false},
		{"roster", false},
		{"", false},
	}

	for _, tc := range tests {
		if got := IsValidFileExtension(tc.filename, allowed); got != tc.valid {
			t.Errorf("IsValidFileExtension(%q) = %v, want %v", tc.filename, got, tc.valid)
		}
	}
}

func TestSanitizeString(t *testing.T) {
	if got := SanitizeString("  hello\x00world  "); got != "helloworld" {
		t.Errorf("unexpected sanitized value: %q", got)
	}
}
