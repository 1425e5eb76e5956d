package actor

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// ErrInvalidMass is matched by every *InvalidMassError through errors.Is
var ErrInvalidMass = errors.New("actor: invalid mass")

// InvalidMassError reports a non-positive, non-finite or degenerate mass setup
type InvalidMassError struct {
	Shape  ShapeType
	Mass   float64
	Reason string
}

func (e *InvalidMassError) Error() string {
	return fmt.Sprintf("actor: invalid mass for %s (mass=%g): %s", e.Shape, e.Mass, e.Reason)
}

func (e *InvalidMassError) Unwrap() error {
	return ErrInvalidMass
}

// MassSource tells the builder where the mass comes from
type MassSource int

const (
	MassFromDensity MassSource = iota
	MassExplicit
)

// MassSpec is either a density (kg/m³) or an explicit total mass (kg)
type MassSpec struct {
	Source MassSource
	Value  float64
}

// Density builds a density-based MassSpec
func Density(density float64) MassSpec {
	return MassSpec{Source: MassFromDensity, Value: density}
}

// Mass builds an explicit MassSpec, it overrides the shape volume
func Mass(mass float64) MassSpec {
	return MassSpec{Source: MassExplicit, Value: mass}
}

// MassProperties holds the derived mass data of a collider, in body-local space
type MassProperties struct {
	Mass           float64
	InverseMass    float64
	CenterOfMass   mgl64.Vec3
	Inertia        mgl64.Mat3
	InverseInertia mgl64.Mat3
}

// ComputeMassProperties derives mass and inertia from a shape and a density.
// Degenerate (zero or infinite volume) shapes are rejected.
func ComputeMassProperties(shape ShapeInterface, density float64) (MassProperties, error) {
	if shape == nil {
		return MassProperties{}, &InvalidMassError{Reason: "missing collider shape"}
	}

	volume := shape.Volume()
	if !(volume > 0) || math.IsInf(volume, 0) {
		return MassProperties{}, &InvalidMassError{
			Shape:  shape.Type(),
			Mass:   shape.ComputeMass(density),
			Reason: fmt.Sprintf("degenerate collider volume %g", volume),
		}
	}

	return fromMass(shape, shape.ComputeMass(density))
}

// ExplicitMassProperties uses a given total mass, the shape only distributes it.
// A zero-volume shape is accepted: its null principal moments lock rotation on
// the matching axes.
func ExplicitMassProperties(shape ShapeInterface, mass float64) (MassProperties, error) {
	if shape == nil {
		return MassProperties{}, &InvalidMassError{Mass: mass, Reason: "missing collider shape"}
	}

	return fromMass(shape, mass)
}

// ImmovableMassProperties describes an infinite mass, used by Static and Kinematic bodies
func ImmovableMassProperties(shape ShapeInterface) MassProperties {
	properties := MassProperties{Mass: math.Inf(1)}
	if shape != nil {
		properties.CenterOfMass = shape.CenterOfMass()
	}

	return properties
}

// MassPropertiesFor dispatches on the body type: only Dynamic bodies get a finite mass
func MassPropertiesFor(bodyType BodyType, shape ShapeInterface, spec MassSpec) (MassProperties, error) {
	if bodyType != BodyTypeDynamic {
		return ImmovableMassProperties(shape), nil
	}

	switch spec.Source {
	case MassExplicit:
		return ExplicitMassProperties(shape, spec.Value)
	default:
		return ComputeMassProperties(shape, spec.Value)
	}
}

func fromMass(shape ShapeInterface, mass float64) (MassProperties, error) {
	if !(mass > 0) || math.IsInf(mass, 0) {
		return MassProperties{}, &InvalidMassError{
			Shape:  shape.Type(),
			Mass:   mass,
			Reason: "mass must be positive and finite",
		}
	}

	inertia := shape.ComputeInertia(mass)

	return MassProperties{
		Mass:           mass,
		InverseMass:    1.0 / mass,
		CenterOfMass:   shape.CenterOfMass(),
		Inertia:        inertia,
		InverseInertia: invertInertia(inertia),
	}, nil
}

// invertInertia inverts a principal (diagonal) tensor axis by axis, a zero moment
// gives a zero inverse. Full tensors fall back to a regular inverse.
func invertInertia(inertia mgl64.Mat3) mgl64.Mat3 {
	const epsilon = 1e-12

	diagonal := true
	for col := 0; col < 3; col++ {
		for row := 0; row < 3; row++ {
			if row != col && math.Abs(inertia.At(row, col)) > epsilon {
				diagonal = false
			}
		}
	}

	if !diagonal {
		if math.Abs(inertia.Det()) < epsilon {
			return mgl64.Mat3{}
		}
		return inertia.Inv()
	}

	var inverse mgl64.Vec3
	for i := 0; i < 3; i++ {
		if moment := inertia.At(i, i); moment > epsilon {
			inverse[i] = 1.0 / moment
		}
	}

	return mgl64.Diag3(inverse)
}
