package systems

import (
	"math"
	"testing"

	"github.com/lixenwraith/pitch-fighter/components"
)

func newTestMovement() Movement {
	return NewMovement(SteerProfile(), IdleProfile(), 768, 60)
}

// TestSteerFarTarget verifies full speed and tilt beyond the scale distance
func TestSteerFarTarget(t *testing.T) {
	m := newTestMovement()
	p := components.NewPlayer(120, 384)

	m.Steer(p, 88, true)

	if p.VelocityY != -400 {
		t.Errorf("Expected vy -400, got %f", p.VelocityY)
	}
	if p.Angle != -20 {
		t.Errorf("Expected angle -20, got %f", p.Angle)
	}
	if want := 384 - 400.0/60; math.Abs(p.Y-want) > 1e-9 {
		t.Errorf("Expected y %f, got %f", want, p.Y)
	}
}

// TestSteerProportional verifies speed scales with distance inside the scale band
func TestSteerProportional(t *testing.T) {
	m := newTestMovement()
	p := components.NewPlayer(120, 300)

	m.Steer(p, 350, true)

	if math.Abs(p.VelocityY-200) > 1e-9 {
		t.Errorf("Expected vy 200, got %f", p.VelocityY)
	}
	if math.Abs(p.Angle-10) > 1e-9 {
		t.Errorf("Expected angle 10, got %f", p.Angle)
	}
}

// TestSteerDampingSnaps verifies damping inside tolerance ends at exactly zero
func TestSteerDampingSnaps(t *testing.T) {
	m := newTestMovement()
	p := components.NewPlayer(120, 300)
	p.VelocityY = -10
	p.Angle = 3

	expected := []float64{-8, -6.4, -5.12, 0}
	for i, want := range expected {
		m.Steer(p, 300, true)
		if math.Abs(p.VelocityY-want) > 1e-9 {
			t.Fatalf("Step %d: expected vy %f, got %f", i, want, p.VelocityY)
		}
	}

	for i := 0; i < 20; i++ {
		m.Steer(p, 300, true)
	}
	if p.VelocityY != 0 || p.Angle != 0 {
		t.Errorf("Expected exact zero after damping, got vy %f angle %f", p.VelocityY, p.Angle)
	}
}

// TestSteerIdleRecenters verifies unvoiced ticks pull weakly toward the midpoint
func TestSteerIdleRecenters(t *testing.T) {
	m := newTestMovement()
	p := components.NewPlayer(120, 100)

	m.Steer(p, 384, false)
	if p.VelocityY != 200 {
		t.Errorf("Expected idle vy 200, got %f", p.VelocityY)
	}
	if p.Angle != 15 {
		t.Errorf("Expected idle angle 15, got %f", p.Angle)
	}

	prev := math.Abs(384 - p.Y)
	for i := 0; i < 600; i++ {
		m.Steer(p, 384, false)
		d := math.Abs(384 - p.Y)
		if d > prev+1e-9 {
			t.Fatalf("Tick %d: distance grew from %f to %f", i, prev, d)
		}
		prev = d
	}
	if prev > IdleProfile().Tolerance {
		t.Errorf("Expected to settle within idle tolerance, distance %f", prev)
	}
	if p.VelocityY != 0 {
		t.Errorf("Expected idle velocity to settle at zero, got %f", p.VelocityY)
	}
}

func TestSteerClampsToField(t *testing.T) {
	m := newTestMovement()
	p := components.NewPlayer(120, 2)
	p.VelocityY = -1000

	// Within tolerance so the damped velocity still pushes past the edge
	m.Steer(p, 0, true)
	if p.Y != 0 {
		t.Errorf("Expected y clamped to 0, got %f", p.Y)
	}
}

func TestProfileValidate(t *testing.T) {
	if err := SteerProfile().Validate(); err != nil {
		t.Errorf("Steer profile invalid: %v", err)
	}
	if err := IdleProfile().Validate(); err != nil {
		t.Errorf("Idle profile invalid: %v", err)
	}

	bad := SteerProfile()
	bad.VelocityDamping = 1
	if bad.Validate() == nil {
		t.Error("Expected damping of 1 to be rejected")
	}
	bad = SteerProfile()
	bad.Scale = 0
	if bad.Validate() == nil {
		t.Error("Expected zero scale to be rejected")
	}
}
