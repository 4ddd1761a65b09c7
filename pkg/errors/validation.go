package errors

import (
	"strconv"

	"github.com/google/uuid"
)

// MaxListLimit caps how many reports a single listing may return.
const MaxListLimit = 100

// ValidateReportID checks that id is a well-formed report UUID.
func ValidateReportID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidInput, "report ID cannot be empty")
	}
	if _, err := uuid.Parse(id); err != nil {
		return Wrap(ErrCodeInvalidInput, err, "invalid report ID %q", id)
	}
	return nil
}

// ParseLimit parses a listing limit. An empty string yields def; values
// above MaxListLimit are clamped.
func ParseLimit(s string, def int) (int, error) {
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, Wrap(ErrCodeInvalidInput, err, "invalid limit %q", s)
	}
	if n <= 0 {
		return 0, New(ErrCodeInvalidInput, "limit must be positive, got %d", n)
	}
	return min(n, MaxListLimit), nil
}
