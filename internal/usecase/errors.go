package usecase

import (
	"errors"
	"fmt"
)

// Rejection reasons surfaced to callers of every service in this package.
const (
	ReasonInvalidInput       = "invalid_input"
	ReasonConflict           = "conflict"
	ReasonPersistenceFailure = "persistence_failure"
	ReasonNotFound           = "not_found"
	ReasonForbidden          = "forbidden"
	ReasonCarMisconfigured   = "car_misconfigured"
)

var (
	ErrInvalidInput = errors.New(ReasonInvalidInput)
	ErrConflict     = errors.New(ReasonConflict)
	ErrPersistence  = errors.New(ReasonPersistenceFailure)
	ErrNotFound     = errors.New(ReasonNotFound)
	ErrForbidden    = errors.New(ReasonForbidden)

	// ErrCarMisconfigured marks stored car settings that cannot be evaluated, e.g. a bad discount schedule.
	ErrCarMisconfigured = errors.New(ReasonCarMisconfigured)
)

// ReasonOf returns the reason code carried by err, or "" when err is nil or unclassified.
func ReasonOf(err error) string {
	for _, kind := range []error{ErrInvalidInput, ErrConflict, ErrNotFound, ErrForbidden, ErrPersistence, ErrCarMisconfigured} {
		if errors.Is(err, kind) {
			return kind.Error()
		}
	}
	return ""
}

func invalidInput(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

// rejectedInput keeps the underlying cause matchable with errors.Is.
func rejectedInput(err error) error {
	return fmt.Errorf("%w: %w", ErrInvalidInput, err)
}

func notFound(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrNotFound, fmt.Sprintf(format, args...))
}

func persistence(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrPersistence, op, err)
}
