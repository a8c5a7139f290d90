package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for common error conditions
var (
	// ErrNotFound indicates that a requested resource was not found
	ErrNotFound = errors.New("resource not found")

	// ErrInvalidInput indicates that input validation failed
	ErrInvalidInput = errors.New("invalid input")

	// ErrConfigurationMissing indicates a required named configuration value is absent
	ErrConfigurationMissing = errors.New("configuration missing")

	// ErrCapabilityUnavailable indicates the target capability could not be reached
	ErrCapabilityUnavailable = errors.New("capability unavailable")

	// ErrCapabilityError indicates the target capability was reached but failed
	ErrCapabilityError = errors.New("capability error")

	// ErrMalformedReasoning indicates generated text did not match a required pattern
	ErrMalformedReasoning = errors.New("malformed reasoning")

	// ErrReasoningDidNotConverge indicates the reasoning loop hit its iteration cap
	ErrReasoningDidNotConverge = errors.New("reasoning did not converge")
)

// CapabilityError is returned by a capability client when a generate, execute or
// delegate call fails. It matches ErrCapabilityUnavailable or ErrCapabilityError
// under errors.Is depending on Unavailable.
type CapabilityError struct {
	Kind        string
	Name        string
	Unavailable bool
	Err         error
}

func (e *CapabilityError) Error() string {
	state := "failed"
	if e.Unavailable {
		state = "unavailable"
	}
	if e.Err == nil {
		return fmt.Sprintf("%s capability %q %s", e.Kind, e.Name, state)
	}
	return fmt.Sprintf("%s capability %q %s: %v", e.Kind, e.Name, state, e.Err)
}

func (e *CapabilityError) Unwrap() error {
	return e.Err
}

// Is reports whether target is the sentinel matching this failure class.
func (e *CapabilityError) Is(target error) bool {
	if e.Unavailable {
		return target == ErrCapabilityUnavailable
	}
	return target == ErrCapabilityError
}

// IsCapabilityFailure reports whether err came from a capability call of either class.
func IsCapabilityFailure(err error) bool {
	var ce *CapabilityError
	return errors.As(err, &ce)
}
