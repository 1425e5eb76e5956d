package constraint

import (
	"errors"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func TestNewAngleLimit(t *testing.T) {
	tests := []struct {
		name     string
		min, max float64
		wantErr  bool
	}{
		{"symmetric", -1, 1, false},
		{"single angle", 0.5, 0.5, false},
		{"inverted", 1, -1, true},
		{"NaN", math.NaN(), 1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewAngleLimit(tt.min, tt.max)
			if tt.wantErr != (err != nil) {
				t.Fatalf("error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("error = %v, want ErrInvalidConfig", err)
			}
		})
	}
}

func TestSignedAngle(t *testing.T) {
	axis := mgl64.Vec3{0, 0, 1}
	from := mgl64.Vec3{1, 0, 0}

	tests := []struct {
		name string
		to   mgl64.Vec3
		want float64
	}{
		{"same direction", mgl64.Vec3{1, 0, 0}, 0},
		{"quarter turn", mgl64.Vec3{0, 1, 0}, math.Pi / 2},
		{"negative quarter turn", mgl64.Vec3{0, -1, 0}, -math.Pi / 2},
		{"half turn", mgl64.Vec3{-1, 0, 0}, math.Pi},
		{"scaled vector", mgl64.Vec3{0, 5, 0}, math.Pi / 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SignedAngle(axis, from, tt.to); math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("SignedAngle() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSignedAngle_IgnoresAxialComponent(t *testing.T) {
	tests := []struct {
		name     string
		axis     mgl64.Vec3
		from, to mgl64.Vec3
		want     float64
	}{
		{"tilted quarter turn", mgl64.Vec3{0, 0, 1}, mgl64.Vec3{1, 0, 1}, mgl64.Vec3{0, 1, 1}, math.Pi / 2},
		{"tilted half turn", mgl64.Vec3{0, 0, 1}, mgl64.Vec3{1, 0, 2}, mgl64.Vec3{-1, 0, 1}, math.Pi},
		{"opposite tilts", mgl64.Vec3{0, 0, 1}, mgl64.Vec3{1, 0, 3}, mgl64.Vec3{1, 0, -3}, 0},
		{"scaled axis", mgl64.Vec3{0, 0, 2}, mgl64.Vec3{1, 0, 0}, mgl64.Vec3{1, 1, 0}, math.Pi / 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SignedAngle(tt.axis, tt.from, tt.to); math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("SignedAngle() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSignedAngle_Continuous(t *testing.T) {
	axis := mgl64.Vec3{0, 0, 1}
	from := mgl64.Vec3{1, 0, 0}

	previous := 0.0
	for i := 1; i < 300; i++ {
		angle := float64(i) * 0.01
		to := mgl64.QuatRotate(angle, axis).Rotate(from)

		got := SignedAngle(axis, from, to)
		if math.Abs(got-angle) > 1e-9 {
			t.Fatalf("SignedAngle at %v = %v", angle, got)
		}
		if got < previous {
			t.Fatalf("angle decreased from %v to %v", previous, got)
		}
		previous = got
	}
}

func TestWrapAngle(t *testing.T) {
	tests := []struct {
		angle, want float64
	}{
		{0, 0},
		{math.Pi, math.Pi},
		{-math.Pi, math.Pi},
		{3 * math.Pi / 2, -math.Pi / 2},
		{-3 * math.Pi / 2, math.Pi / 2},
		{4*math.Pi + 0.5, 0.5},
	}

	for _, tt := range tests {
		if got := WrapAngle(tt.angle); math.Abs(got-tt.want) > 1e-12 {
			t.Errorf("WrapAngle(%v) = %v, want %v", tt.angle, got, tt.want)
		}
	}
}

func TestAngleLimit_Deviation(t *testing.T) {
	limit := AngleLimit{Min: -1, Max: 1}

	tests := []struct {
		name       string
		angle      float64
		want       float64
		wantActive bool
	}{
		{"inside", 0.5, 0, false},
		{"on max bound", 1.0, 0, false},
		{"on min bound", -1.0, 0, false},
		{"past max", 1.2, 0.2, true},
		{"past min", -1.5, -0.5, true},
		{"opposite side", math.Pi, math.Pi - 1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, active := limit.Deviation(tt.angle)
			if active != tt.wantActive {
				t.Errorf("active = %v, want %v", active, tt.wantActive)
			}
			if math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("Deviation(%v) = %v, want %v", tt.angle, got, tt.want)
			}
		})
	}
}

func TestAngleLimit_UnwrapAcrossPi(t *testing.T) {
	// range straddling the ±π discontinuity
	limit := AngleLimit{Min: 2.5, Max: 3.5}

	unwrapped := limit.Unwrap(-3.0)
	if math.Abs(unwrapped-(2*math.Pi-3.0)) > 1e-12 {
		t.Errorf("Unwrap(-3) = %v, want %v", unwrapped, 2*math.Pi-3.0)
	}
	if _, active := limit.Deviation(-3.0); active {
		t.Error("-3 rad is inside [2.5, 3.5] once unwrapped")
	}
}
