package models

import (
	"errors"
	"fmt"
)

// ErrValidation matches every *ValidationError via errors.Is.
var ErrValidation = errors.New("userdb/models: validation failed")

// ValidationError reports input rejected before any statement is sent:
// an unknown column, a missing required value, or a value of the wrong type.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s: %s", ErrValidation, e.Reason)
	}
	return fmt.Sprintf("%s: %s: %s", ErrValidation, e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// IsValidation reports whether err is or wraps a *ValidationError.
func IsValidation(err error) bool { return errors.Is(err, ErrValidation) }
