package domain

import (
	"errors"
	"fmt"
)

// ErrConstructionFailure matches every ConstructionError via errors.Is.
var ErrConstructionFailure = errors.New("construction failure")

// ConstructionError reports that a bundle could not be built. No partial
// bundle accompanies it.
type ConstructionError struct {
	Bundle string
	Err    error
}

// NewConstructionError wraps err as a construction failure of the named bundle.
func NewConstructionError(bundle string, err error) *ConstructionError {
	return &ConstructionError{Bundle: bundle, Err: err}
}

func (e *ConstructionError) Error() string {
	return fmt.Sprintf("build %s bundle: %v", e.Bundle, e.Err)
}

func (e *ConstructionError) Unwrap() []error {
	return []error{ErrConstructionFailure, e.Err}
}
