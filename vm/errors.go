package vm

import (
	"errors"
	"fmt"
)

// Object model errors.
var (
	ErrDuplicateRegistration   = errors.New("representation already registered")
	ErrUnknownRepresentation   = errors.New("unknown representation")
	ErrAllocationFailure       = errors.New("allocation failure")
	ErrMissingRequiredArgument = errors.New("missing required argument")
	ErrRegistrySealed          = errors.New("representation registry is sealed")
	ErrWrongRepresentation     = errors.New("wrong representation")
	ErrMethodNotFound          = errors.New("method not found")
	ErrTypeObject              = errors.New("operation not valid on a type object")
)

// BootstrapError reports which bootstrap step failed. Startup cannot
// continue past one of these.
type BootstrapError struct {
	Step string
	Err  error
}

func (e *BootstrapError) Error() string {
	return fmt.Sprintf("bootstrap step %q failed: %v", e.Step, e.Err)
}

func (e *BootstrapError) Unwrap() error { return e.Err }

// wrongRepr builds an ErrWrongRepresentation naming what was expected.
func wrongRepr(what string, want string, got *Object) error {
	return fmt.Errorf("%w: %s must be %s, got %s", ErrWrongRepresentation, what, want, got.ReprName())
}
