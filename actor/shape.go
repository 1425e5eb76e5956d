package actor

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// ShapeType represents the type of collider shape
type ShapeType int

const (
	ShapeTypeSphere ShapeType = iota
	ShapeTypeBox
	ShapeTypeCapsule
	ShapeTypeCylinder
	ShapeTypePlane
)

func (s ShapeType) String() string {
	switch s {
	case ShapeTypeSphere:
		return "sphere"
	case ShapeTypeBox:
		return "box"
	case ShapeTypeCapsule:
		return "capsule"
	case ShapeTypeCylinder:
		return "cylinder"
	case ShapeTypePlane:
		return "plane"
	}
	return "unknown"
}

// ShapeInterface is the interface that all collider shapes must implement.
// Shapes only describe volume and mass distribution; contact generation
// lives outside of this module.
type ShapeInterface interface {
	Type() ShapeType
	// Volume in m³. Zero means the shape is degenerate for density-based mass.
	Volume() float64
	// ComputeMass calculates the mass of the shape given a density
	ComputeMass(density float64) float64
	// ComputeInertia returns the body-local inertia tensor about the centre of mass
	ComputeInertia(mass float64) mgl64.Mat3
	// CenterOfMass in body-local space
	CenterOfMass() mgl64.Vec3
}

// Box represents an oriented box collider
// The box is defined by its half-extents (half-width, half-height, half-depth)
type Box struct {
	HalfExtents mgl64.Vec3
}

func (b *Box) Type() ShapeType { return ShapeTypeBox }

func (b *Box) Volume() float64 {
	// Volume = 8 * hx * hy * hz (full dimensions are 2*halfExtents)
	return 8.0 * math.Abs(b.HalfExtents.X()*b.HalfExtents.Y()*b.HalfExtents.Z())
}

// ComputeMass calculates mass data for the box
func (b *Box) ComputeMass(density float64) float64 {
	return density * b.Volume()
}

func (b *Box) ComputeInertia(mass float64) mgl64.Mat3 {
	x := b.HalfExtents.X() * 2
	y := b.HalfExtents.Y() * 2
	z := b.HalfExtents.Z() * 2

	// I = (m/12) * (d1² + d2²)
	factor := mass / 12.0

	return mgl64.Diag3(mgl64.Vec3{
		factor * (y*y + z*z),
		factor * (x*x + z*z),
		factor * (x*x + y*y),
	})
}

func (b *Box) CenterOfMass() mgl64.Vec3 { return mgl64.Vec3{} }

// Sphere represents a spherical collider
type Sphere struct {
	Radius float64
}

func (s *Sphere) Type() ShapeType { return ShapeTypeSphere }

func (s *Sphere) Volume() float64 {
	return (4.0 / 3.0) * math.Pi * math.Pow(math.Abs(s.Radius), 3)
}

func (s *Sphere) ComputeMass(density float64) float64 {
	return density * s.Volume()
}

func (s *Sphere) ComputeInertia(mass float64) mgl64.Mat3 {
	// I = (2/5) * m * r²
	i := (2.0 / 5.0) * mass * s.Radius * s.Radius

	return mgl64.Diag3(mgl64.Vec3{i, i, i})
}

func (s *Sphere) CenterOfMass() mgl64.Vec3 { return mgl64.Vec3{} }

// Capsule is a cylinder capped by two hemispheres, aligned with the local Y axis
type Capsule struct {
	Radius     float64
	HalfHeight float64 // half length of the cylindrical section
}

func (c *Capsule) Type() ShapeType { return ShapeTypeCapsule }

func (c *Capsule) Volume() float64 {
	r := math.Abs(c.Radius)
	h := 2 * math.Abs(c.HalfHeight)

	return math.Pi*r*r*h + (4.0/3.0)*math.Pi*r*r*r
}

func (c *Capsule) ComputeMass(density float64) float64 {
	return density * c.Volume()
}

// ComputeInertia splits the mass between the cylinder and the two caps,
// with the caps shifted by the parallel axis theorem.
func (c *Capsule) ComputeInertia(mass float64) mgl64.Mat3 {
	volume := c.Volume()
	if volume == 0 {
		return mgl64.Mat3{}
	}

	r := c.Radius
	h := 2 * c.HalfHeight
	cylinderVolume := math.Pi * r * r * h
	mc := mass * cylinderVolume / volume
	mh := mass - mc // both hemispheres

	iy := mc*r*r/2 + mh*2*r*r/5
	ixz := mc*(3*r*r+h*h)/12 + mh*(2*r*r/5+h*h/4+3*h*r/8)

	return mgl64.Diag3(mgl64.Vec3{ixz, iy, ixz})
}

func (c *Capsule) CenterOfMass() mgl64.Vec3 { return mgl64.Vec3{} }

// Cylinder aligned with the local Y axis
type Cylinder struct {
	Radius     float64
	HalfHeight float64
}

func (c *Cylinder) Type() ShapeType { return ShapeTypeCylinder }

func (c *Cylinder) Volume() float64 {
	return math.Pi * c.Radius * c.Radius * 2 * math.Abs(c.HalfHeight)
}

func (c *Cylinder) ComputeMass(density float64) float64 {
	return density * c.Volume()
}

func (c *Cylinder) ComputeInertia(mass float64) mgl64.Mat3 {
	r := c.Radius
	h := 2 * c.HalfHeight
	ixz := mass * (3*r*r + h*h) / 12

	return mgl64.Diag3(mgl64.Vec3{ixz, mass * r * r / 2, ixz})
}

func (c *Cylinder) CenterOfMass() mgl64.Vec3 { return mgl64.Vec3{} }

// Plane represents an infinite plane collider
// The plane is defined by the equation: Normal · p + Distance = 0
type Plane struct {
	Normal   mgl64.Vec3 // Plane normal (must be normalized)
	Distance float64    // Plane constant (signed distance from origin)
}

func (p *Plane) Type() ShapeType { return ShapeTypePlane }

// Volume is infinite: a plane can only be used with Static/Kinematic bodies
// or an explicit mass override.
func (p *Plane) Volume() float64 {
	return math.Inf(1)
}

func (p *Plane) ComputeMass(density float64) float64 {
	return math.Inf(1)
}

func (p *Plane) ComputeInertia(mass float64) mgl64.Mat3 {
	return mgl64.Mat3{}
}

func (p *Plane) CenterOfMass() mgl64.Vec3 { return mgl64.Vec3{} }
