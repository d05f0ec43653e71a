package database

import (
	"database/sql"
	"errors"
	"fmt"
)

// ErrConnection matches (via errors.Is) every failure to reach any engine.
var ErrConnection = errors.New("database connection failed")

// ErrNoRows is returned by QueryOne when the query matched nothing.
var ErrNoRows = sql.ErrNoRows

// ConnectionError reports that no engine could be reached. Primary is nil
// when the primary engine was not attempted (already switched or forced).
type ConnectionError struct {
	Primary  error
	Fallback error
}

func (e *ConnectionError) Error() string {
	if e.Primary == nil {
		return fmt.Sprintf("%v: fallback: %v", ErrConnection, e.Fallback)
	}
	return fmt.Sprintf("%v: primary: %v; fallback: %v", ErrConnection, e.Primary, e.Fallback)
}

func (e *ConnectionError) Unwrap() []error {
	errs := []error{ErrConnection}
	if e.Primary != nil {
		errs = append(errs, e.Primary)
	}
	if e.Fallback != nil {
		errs = append(errs, e.Fallback)
	}
	return errs
}
