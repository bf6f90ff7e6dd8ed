package quotes

import (
	"errors"
	"strings"
)

var ErrValidation = errors.New("validation failed")

// ValidationError carries the user-facing messages produced while checking a
// request.
type ValidationError struct {
	Messages              []string
	RequiresDirectContact bool
}

func (e *ValidationError) Error() string {
	return ErrValidation.Error() + ": " + strings.Join(e.Messages, "; ")
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}
