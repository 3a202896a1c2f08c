package market

import (
	"errors"
	"fmt"
)

// Error classes shared by the scenario, pricing and hedging packages.
// Classify with errors.Is.
var (
	ErrValidation        = errors.New("validation error")
	ErrExpiredInstrument = errors.New("expired instrument")
	ErrNumericDegeneracy = errors.New("numeric degeneracy")
)

// ValidationError reports a bad configuration value.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s %s", ErrValidation, e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// Invalid is shorthand for &ValidationError{Field: field, Reason: reason}.
func Invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}
