package components

import (
	"github.com/lixenwraith/pitch-fighter/parameter"
	"github.com/lixenwraith/pitch-fighter/vmath"
)

// Kind tags the variant of a spawned object
type Kind uint8

const (
	KindCollectible Kind = iota
	KindHazard
)

func (k Kind) String() string {
	switch k {
	case KindCollectible:
		return "collectible"
	case KindHazard:
		return "hazard"
	default:
		return "unknown"
	}
}

// ObjectID is the arena slot index
type ObjectID int

// Object is a pooled spawn, collectible plasma or hazard obstacle
type Object struct {
	ID    ObjectID
	Kind  Kind
	X, Y  float64
	Alive bool

	// PitchTag is the note name a collectible belongs to, empty when untagged
	PitchTag string

	// Value is the score for collectibles or damage for hazards
	Value int

	// Spin is the hazard rotation in degrees
	Spin float64
}

// Radius returns the kind-specific collision half extent
func (o *Object) Radius() float64 {
	if o.Kind == KindHazard {
		return parameter.HazardRadius
	}
	return parameter.CollectibleRadius
}

// Box returns the object hitbox
func (o *Object) Box() vmath.Box {
	r := o.Radius()
	return vmath.BoxAt(o.X, o.Y, r, r)
}

// reset clears all fields except the slot identity
func (o *Object) reset() {
	id := o.ID
	*o = Object{ID: id}
}
