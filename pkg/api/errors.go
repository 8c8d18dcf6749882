package api

import (
	"errors"
	"fmt"
)

// ServiceNotProvidedError is the only failure the interpreter itself
// originates: a requested token has no entry in the environment of the
// current run. It signals a wiring defect (a deployment or configuration
// bug) and must never be retried.
type ServiceNotProvidedError struct {
	Name string
}

func (e *ServiceNotProvidedError) Error() string {
	return "service not provided: " + e.Name
}

// NewServiceNotProvidedError returns the failure raised when token name has
// no environment entry.
func NewServiceNotProvidedError(name string) error {
	return &ServiceNotProvidedError{Name: name}
}

// IsServiceNotProvided returns (tokenName, true) if err indicates a missing
// environment entry, possibly wrapped.
func IsServiceNotProvided(err error) (string, bool) {
	var e *ServiceNotProvidedError
	if errors.As(err, &e) {
		return e.Name, true
	}
	return "", false
}

// ResolutionTypeError reports a payload or result that violates the
// suspension protocol: a value that cannot be driven, a nil sequence, or a
// resolved value whose dynamic type does not match what the requesting code
// expects. Well-formed authoring never produces it; it exists so protocol
// violations surface as distinguishable failures instead of crashing the
// interpreter silently.
type ResolutionTypeError struct {
	Reason string
	Value  any
}

func (e *ResolutionTypeError) Error() string {
	return fmt.Sprintf("resolution type error: %s (got %T)", e.Reason, e.Value)
}

// IsResolutionTypeError reports whether err is a ResolutionTypeError,
// possibly wrapped.
func IsResolutionTypeError(err error) bool {
	var e *ResolutionTypeError
	return errors.As(err, &e)
}
