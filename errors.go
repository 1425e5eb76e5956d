package hinge

import (
	"errors"
	"fmt"

	"github.com/akmonengine/hinge/actor"
	"github.com/akmonengine/hinge/constraint"
)

// Domain errors, match them with errors.Is.
var (
	// ErrInvalidMass indicates a non-positive mass or a degenerate collider.
	ErrInvalidMass = actor.ErrInvalidMass

	// ErrInvalidConfig indicates a non-positive substep count or malformed joint parameters.
	ErrInvalidConfig = constraint.ErrInvalidConfig

	// ErrDanglingReference indicates a handle to a removed (or never added) body or constraint.
	ErrDanglingReference = errors.New("hinge: dangling reference")
)

type (
	InvalidMassError   = actor.InvalidMassError
	InvalidConfigError = constraint.InvalidConfigError
)

// DanglingReferenceError names the stale handle
type DanglingReferenceError struct {
	Body       BodyHandle
	Constraint ConstraintHandle
}

func (e *DanglingReferenceError) Error() string {
	switch {
	case e.Constraint.id != 0 && e.Body != WorldAnchor:
		return fmt.Sprintf("hinge: %v references removed %v", e.Constraint, e.Body)
	case e.Constraint.id != 0:
		return fmt.Sprintf("hinge: unknown %v", e.Constraint)
	}
	return fmt.Sprintf("hinge: unknown %v", e.Body)
}

func (e *DanglingReferenceError) Unwrap() error {
	return ErrDanglingReference
}
