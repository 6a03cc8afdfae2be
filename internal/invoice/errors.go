package invoice

import (
	"errors"
	"fmt"
)

var ErrNotFound = errors.New("invoice not found")

// ValidationError names the first metadata field that failed and a message for the user.
type ValidationError struct {
	Field  string
	Reason string
	Name   string // display name of the offending file
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}
