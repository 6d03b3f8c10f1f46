package services

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for the attendance write/read paths. Controllers map these
// to HTTP status codes; none of them is retried.
var (
	// ErrDuplicateSession means attendance already exists for the
	// (department, semester, subject, section, date) key.
	ErrDuplicateSession = errors.New("attendance already marked for this date")

	// ErrMappingNotFound means no section mapping resolves for the given
	// keys. Administrative fix required, distinct from input validation.
	ErrMappingNotFound = errors.New("no section mapping found; ask an admin to map this section")

	// ErrNoRecords is the valid-empty report result, not a failure.
	ErrNoRecords = errors.New("no records found")
)

// ValidationError flags malformed or missing input fields. Caller's fault;
// nothing is committed.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// UnknownStudentsError carries the full set of USNs in a submission that do
// not exist in the students table. The whole session is rejected.
type UnknownStudentsError struct {
	USNs []string
}

func (e *UnknownStudentsError) Error() string {
	return "invalid USNs: " + strings.Join(e.USNs, ", ")
}
