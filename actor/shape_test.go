package actor

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

// =============================================================================
// Volume Tests
// =============================================================================

func TestShape_Volume(t *testing.T) {
	tests := []struct {
		name  string
		shape ShapeInterface
		want  float64
	}{
		{"unit box", &Box{HalfExtents: mgl64.Vec3{0.5, 0.5, 0.5}}, 1.0},
		{"flat box", &Box{HalfExtents: mgl64.Vec3{1, 0, 1}}, 0.0},
		{"negative extents", &Box{HalfExtents: mgl64.Vec3{-1, 1, 1}}, 8.0},
		{"unit sphere", &Sphere{Radius: 1}, 4.0 / 3.0 * math.Pi},
		{"point sphere", &Sphere{Radius: 0}, 0.0},
		{"capsule", &Capsule{Radius: 1, HalfHeight: 1}, 2*math.Pi + 4.0/3.0*math.Pi},
		{"capsule without cylinder", &Capsule{Radius: 1, HalfHeight: 0}, 4.0 / 3.0 * math.Pi},
		{"cylinder", &Cylinder{Radius: 1, HalfHeight: 0.5}, math.Pi},
		{"disc", &Cylinder{Radius: 1, HalfHeight: 0}, 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.shape.Volume(); !almostEqual(got, tt.want, 1e-10) {
				t.Errorf("Volume() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPlane_InfiniteVolume(t *testing.T) {
	plane := &Plane{Normal: mgl64.Vec3{0, 1, 0}}

	if !math.IsInf(plane.Volume(), 1) {
		t.Errorf("Volume() = %v, want +Inf", plane.Volume())
	}
	if !math.IsInf(plane.ComputeMass(1), 1) {
		t.Errorf("ComputeMass() = %v, want +Inf", plane.ComputeMass(1))
	}
	if plane.ComputeInertia(1) != (mgl64.Mat3{}) {
		t.Errorf("ComputeInertia() = %v, want zero", plane.ComputeInertia(1))
	}
}

// =============================================================================
// Mass Tests
// =============================================================================

func TestShape_ComputeMass(t *testing.T) {
	tests := []struct {
		name    string
		shape   ShapeInterface
		density float64
		want    float64
	}{
		{"box", &Box{HalfExtents: mgl64.Vec3{1, 1, 1}}, 2.0, 16.0},
		{"sphere", &Sphere{Radius: 1}, 3.0, 4 * math.Pi},
		{"cylinder", &Cylinder{Radius: 2, HalfHeight: 1}, 0.5, 4 * math.Pi},
		{"zero density", &Box{HalfExtents: mgl64.Vec3{1, 1, 1}}, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.shape.ComputeMass(tt.density); !almostEqual(got, tt.want, 1e-10) {
				t.Errorf("ComputeMass(%v) = %v, want %v", tt.density, got, tt.want)
			}
		})
	}
}

// =============================================================================
// Inertia Tests
// =============================================================================

func TestBox_ComputeInertia(t *testing.T) {
	box := &Box{HalfExtents: mgl64.Vec3{1, 2, 3}}
	mass := 12.0

	inertia := box.ComputeInertia(mass)

	// full dimensions 2, 4, 6
	want := mgl64.Vec3{16 + 36, 4 + 36, 4 + 16}
	got := mgl64.Vec3{inertia.At(0, 0), inertia.At(1, 1), inertia.At(2, 2)}
	if !vec3AlmostEqual(got, want, 1e-10) {
		t.Errorf("diagonal = %v, want %v", got, want)
	}
	if inertia.At(0, 1) != 0 || inertia.At(1, 2) != 0 || inertia.At(0, 2) != 0 {
		t.Errorf("off-diagonal terms should be zero, got %v", inertia)
	}
}

func TestSphere_ComputeInertia(t *testing.T) {
	sphere := &Sphere{Radius: 2}

	inertia := sphere.ComputeInertia(5)

	want := 2.0 / 5.0 * 5 * 4
	for i := 0; i < 3; i++ {
		if !almostEqual(inertia.At(i, i), want, 1e-10) {
			t.Errorf("I[%d][%d] = %v, want %v", i, i, inertia.At(i, i), want)
		}
	}
}

func TestCapsule_ComputeInertia(t *testing.T) {
	t.Run("degenerates to a sphere", func(t *testing.T) {
		capsule := &Capsule{Radius: 1, HalfHeight: 0}
		sphere := &Sphere{Radius: 1}

		got := capsule.ComputeInertia(3)
		want := sphere.ComputeInertia(3)
		for i := 0; i < 3; i++ {
			if !almostEqual(got.At(i, i), want.At(i, i), 1e-10) {
				t.Errorf("I[%d][%d] = %v, want %v", i, i, got.At(i, i), want.At(i, i))
			}
		}
	})

	t.Run("long axis is the easiest to spin", func(t *testing.T) {
		capsule := &Capsule{Radius: 0.2, HalfHeight: 1}

		inertia := capsule.ComputeInertia(1)
		if inertia.At(1, 1) >= inertia.At(0, 0) {
			t.Errorf("Iy = %v should be lower than Ix = %v", inertia.At(1, 1), inertia.At(0, 0))
		}
		if !almostEqual(inertia.At(0, 0), inertia.At(2, 2), 1e-12) {
			t.Errorf("Ix = %v, Iz = %v, want equal", inertia.At(0, 0), inertia.At(2, 2))
		}
	})
}

func TestCylinder_ComputeInertia(t *testing.T) {
	cylinder := &Cylinder{Radius: 1, HalfHeight: 1}

	inertia := cylinder.ComputeInertia(6)

	if !almostEqual(inertia.At(1, 1), 3, 1e-10) {
		t.Errorf("Iy = %v, want 3", inertia.At(1, 1))
	}
	// m(3r² + h²)/12 with h = 2
	if !almostEqual(inertia.At(0, 0), 3.5, 1e-10) {
		t.Errorf("Ix = %v, want 3.5", inertia.At(0, 0))
	}
}

func TestShapeType_String(t *testing.T) {
	tests := []struct {
		shape ShapeType
		want  string
	}{
		{ShapeTypeSphere, "sphere"},
		{ShapeTypeBox, "box"},
		{ShapeTypeCapsule, "capsule"},
		{ShapeTypeCylinder, "cylinder"},
		{ShapeTypePlane, "plane"},
		{ShapeType(42), "unknown"},
	}

	for _, tt := range tests {
		if got := tt.shape.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}
