package components

import (
	"github.com/lixenwraith/pitch-fighter/parameter"
	"github.com/lixenwraith/pitch-fighter/vmath"
)

// Player is the pitch-steered fighter, one per session
type Player struct {
	X, Y      float64
	VelocityY float64

	// Angle is the visual lean in degrees, positive tilts down
	Angle float64

	Health int
	Score  int
}

// NewPlayer creates a fighter at full health
func NewPlayer(x, y float64) *Player {
	return &Player{X: x, Y: y, Health: parameter.HealthMax}
}

// Alpha is the health ratio used for opacity
func (p *Player) Alpha() float64 {
	return float64(p.Health) / parameter.HealthMax
}

// Damage subtracts amount and clamps at zero, returns the health actually removed
func (p *Player) Damage(amount int) int {
	if amount <= 0 {
		return 0
	}
	before := p.Health
	p.Health = vmath.ClampInt(p.Health-amount, 0, parameter.HealthMax)
	return before - p.Health
}

// Dead reports whether health is exhausted
func (p *Player) Dead() bool {
	return p.Health <= 0
}

// Box returns the player hitbox
func (p *Player) Box() vmath.Box {
	return vmath.BoxAt(p.X, p.Y, parameter.PlayerHalfWidth, parameter.PlayerHalfHeight)
}
