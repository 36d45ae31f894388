package solver

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsatisfiable is returned when a required constraint cannot be
	// satisfied together with the required constraints already present.
	ErrUnsatisfiable = errors.New("unsatisfiable required constraint")

	// ErrDuplicateConstraint is returned when adding a constraint that is
	// already part of the solver.
	ErrDuplicateConstraint = errors.New("duplicate constraint")

	// ErrUnknownConstraint is returned when removing a constraint that is
	// not part of the solver.
	ErrUnknownConstraint = errors.New("unknown constraint")

	// ErrDuplicateEditVariable is returned when a variable is registered as
	// an edit variable twice.
	ErrDuplicateEditVariable = errors.New("duplicate edit variable")

	// ErrUnknownEditVariable is returned when removing or suggesting a value
	// for a variable that is not an edit variable.
	ErrUnknownEditVariable = errors.New("unknown edit variable")

	// ErrBadRequiredStrength is returned when an edit variable is registered
	// with Required strength. Edit variables must be overridable.
	ErrBadRequiredStrength = errors.New("edit variable strength must be below required")

	// ErrInternal signals a broken solver invariant (unbounded objective,
	// failed dual optimization). It indicates a bug, not a caller error.
	ErrInternal = errors.New("internal solver error")
)

// UnsatisfiableError reports the required constraint that could not be
// added. It wraps ErrUnsatisfiable.
type UnsatisfiableError struct {
	Constraint *Constraint
}

// Error implements the error interface.
func (e *UnsatisfiableError) Error() string {
	return fmt.Sprintf("%s: %s", ErrUnsatisfiable, e.Constraint)
}

// Unwrap returns ErrUnsatisfiable for errors.Is compatibility.
func (e *UnsatisfiableError) Unwrap() error { return ErrUnsatisfiable }
