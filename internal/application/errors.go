package application

import (
	"errors"
	"maps"
	"slices"
	"strings"
)

var (
	// ErrInvalidCredential is returned by SessionGate.Authenticate when the
	// presented admin secret does not match.
	ErrInvalidCredential = errors.New("invalid credential")

	// ErrForbidden is returned by gated VaultService operations when the
	// caller holds no valid admin session.
	ErrForbidden = errors.New("forbidden")
)

// ValidationError reports input fields that failed validation. Problems are
// keyed by field name.
type ValidationError struct {
	Problems map[string]string
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Problems))
	for _, field := range slices.Sorted(maps.Keys(e.Problems)) {
		parts = append(parts, field+": "+e.Problems[field])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) add(field, problem string) {
	if e.Problems == nil {
		e.Problems = make(map[string]string)
	}
	e.Problems[field] = problem
}

// errOrNil returns e as an error if any problems were recorded.
func (e *ValidationError) errOrNil() error {
	if len(e.Problems) == 0 {
		return nil
	}
	return e
}
