package systems

import (
	"fmt"
	"math"

	"github.com/lixenwraith/pitch-fighter/components"
	"github.com/lixenwraith/pitch-fighter/parameter"
	"github.com/lixenwraith/pitch-fighter/vmath"
)

// Profile is one steering law parameter set
type Profile struct {
	MaxSpeed  float64 `toml:"max_speed"`
	Tolerance float64 `toml:"tolerance"`
	Scale     float64 `toml:"scale"`
	MaxTilt   float64 `toml:"max_tilt"`

	VelocityDamping float64 `toml:"velocity_damping"`
	AngleDamping    float64 `toml:"angle_damping"`
	VelocitySnap    float64 `toml:"velocity_snap"`
	AngleSnap       float64 `toml:"angle_snap"`
}

// SteerProfile is the voiced profile
func SteerProfile() Profile {
	return Profile{
		MaxSpeed:        parameter.SteerMaxSpeed,
		Tolerance:       parameter.SteerTolerance,
		Scale:           parameter.SteerScale,
		MaxTilt:         parameter.SteerMaxTilt,
		VelocityDamping: parameter.SteerVelocityDamping,
		AngleDamping:    parameter.SteerAngleDamping,
		VelocitySnap:    parameter.SteerVelocitySnap,
		AngleSnap:       parameter.SteerAngleSnap,
	}
}

// IdleProfile is the weaker re-centering profile used on unvoiced ticks
func IdleProfile() Profile {
	return Profile{
		MaxSpeed:        parameter.IdleMaxSpeed,
		Tolerance:       parameter.IdleTolerance,
		Scale:           parameter.IdleScale,
		MaxTilt:         parameter.IdleMaxTilt,
		VelocityDamping: parameter.IdleVelocityDamping,
		AngleDamping:    parameter.IdleAngleDamping,
		VelocitySnap:    parameter.IdleVelocitySnap,
		AngleSnap:       parameter.IdleAngleSnap,
	}
}

// Validate rejects profiles that cannot converge
func (p Profile) Validate() error {
	switch {
	case p.MaxSpeed <= 0:
		return errInvalid("max_speed", p.MaxSpeed)
	case p.Tolerance < 0:
		return errInvalid("tolerance", p.Tolerance)
	case p.Scale <= 0:
		return errInvalid("scale", p.Scale)
	case p.MaxTilt < 0:
		return errInvalid("max_tilt", p.MaxTilt)
	case p.VelocityDamping < 0 || p.VelocityDamping >= 1:
		return errInvalid("velocity_damping", p.VelocityDamping)
	case p.AngleDamping < 0 || p.AngleDamping >= 1:
		return errInvalid("angle_damping", p.AngleDamping)
	}
	return nil
}

// Movement steers the player toward a target row each tick
type Movement struct {
	Voiced Profile
	Idle   Profile

	// Height bounds the integrated position
	Height float64
	// DT is the fixed tick duration in seconds
	DT float64
}

// NewMovement creates the movement system for a field height and tick rate
func NewMovement(voiced, idle Profile, height float64, tickRate int) Movement {
	return Movement{Voiced: voiced, Idle: idle, Height: height, DT: 1 / float64(tickRate)}
}

// Steer applies the steering law and integrates one tick
// voiced selects the profile; unvoiced callers pass the midpoint as target
func (m Movement) Steer(p *components.Player, target float64, voiced bool) {
	prof := m.Idle
	if voiced {
		prof = m.Voiced
	}

	distance := target - p.Y
	if math.Abs(distance) > prof.Tolerance {
		factor := math.Min(math.Abs(distance)/prof.Scale, 1)
		dir := vmath.Sign(distance)
		p.VelocityY = dir * factor * prof.MaxSpeed
		p.Angle = dir * math.Min(factor*prof.MaxTilt, prof.MaxTilt)
	} else {
		p.VelocityY = vmath.Damp(p.VelocityY, prof.VelocityDamping, prof.VelocitySnap)
		p.Angle = vmath.Damp(p.Angle, prof.AngleDamping, prof.AngleSnap)
	}

	p.Y = vmath.Clamp(p.Y+p.VelocityY*m.DT, 0, m.Height)
}

func errInvalid(field string, v float64) error {
	return fmt.Errorf("movement %s invalid: %v", field, v)
}
