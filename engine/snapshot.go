package engine

import "github.com/lixenwraith/pitch-fighter/components"

// Snapshot is a read-only copy of engine state for presentation
type Snapshot struct {
	Session   uint64
	State     string
	Ticks     uint64
	Capturing bool
	Reference float64

	Score     int
	Health    int
	Alpha     float64
	Y         float64
	VelocityY float64
	Angle     float64

	Collectibles int
	Hazards      int
	Board        map[string]int
}

// Snapshot copies the current state, zero before the first Start
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	snap := Snapshot{
		Capturing: e.capturing,
		Reference: e.reference,
	}
	s := e.session
	if s == nil {
		return snap
	}

	p := s.Player
	snap.Session = s.ID
	snap.State = s.State()
	snap.Ticks = s.ticks
	snap.Score = p.Score
	snap.Health = p.Health
	snap.Alpha = p.Alpha()
	snap.Y = p.Y
	snap.VelocityY = p.VelocityY
	snap.Angle = p.Angle
	snap.Collectibles = s.Pool.Live(components.KindCollectible)
	snap.Hazards = s.Pool.Live(components.KindHazard)
	snap.Board = s.Board.Snapshot()
	return snap
}
