package repository

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when no entry has the requested id.
	ErrNotFound = errors.New("entry not found")
	// ErrQuery wraps every engine failure other than a lost connection.
	// The driver detail is logged, never returned.
	ErrQuery = errors.New("query failed")
)

// ValidationError names the first required field that is missing or empty.
type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("Missing required field: %s", e.Field)
}
