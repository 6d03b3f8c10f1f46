package services

import (
	"errors"
	"testing"
)

func TestUnknownStudentsErrorMessage(t *testing.T) {
	err := &UnknownStudentsError{USNs: []string{"3PG22CS998", "3PG22CS999"}}
	want := "invalid USNs: 3PG22CS998, 3PG22CS999"
	if err.Error() != want {
		t.Fatalf("expected %q, got %q", want, err.Error())
	}
}

func TestValidationErrorMessage(t *testing.T) {
	err := &ValidationError{Field: "date", Reason: "datetime"}
	if err.Error() != "invalid date: datetime" {
		t.Fatalf("unexpected message: %q", err.Error())
	}
}

func TestSentinelErrorsDistinct(t *testing.T) {
	sentinels := []error{ErrDuplicateSession, ErrMappingNotFound, ErrNoRecords}
	for i, a := range sentinels {
		for j, b := range sentinels {
			if i != j && errors.Is(a, b) {
				t.Fatalf("sentinel %d matches sentinel %d", i, j)
			}
		}
	}
}

func TestSessionKey(t *testing.T) {
	req := &MarkSessionRequest{
		Department:  "cse",
		Semester:    "6",
		SubjectCode: "B001",
		Section:     "A",
		Date:        "2024-01-10",
	}
	if got := req.sessionKey(); got != "cse|6|B001|A|2024-01-10" {
		t.Fatalf("unexpected session key: %q", got)
	}
}
