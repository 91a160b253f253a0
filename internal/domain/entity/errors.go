package entity

import (
	"errors"
	"fmt"
)

// Sentinel errors for domain layer operations.
var (
	// ErrConfig indicates a fatal configuration problem. A run aborts
	// before any fetch when configuration is invalid.
	ErrConfig = errors.New("invalid configuration")

	// ErrFormat indicates raw content could not be decoded as the source's
	// declared format. The source is skipped; the run continues.
	ErrFormat = errors.New("content does not decode as declared format")

	// ErrNotFound indicates that a requested entity was not found.
	ErrNotFound = errors.New("entity not found")
)

// ValidationError represents a validation error with detailed field information.
// It implements the error interface and provides context about which field failed validation.
type ValidationError struct {
	Field   string
	Message string
}

// Error returns a formatted error message for the validation error.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error on field '%s': %s", e.Field, e.Message)
}

// Unwrap makes validation errors match ErrConfig via errors.Is, since every
// validation failure at load time is a configuration error.
func (e *ValidationError) Unwrap() error {
	return ErrConfig
}
