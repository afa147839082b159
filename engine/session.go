package engine

import (
	_ "embed"
	"fmt"

	"github.com/lixenwraith/pitch-fighter/analysis"
	"github.com/lixenwraith/pitch-fighter/components"
	"github.com/lixenwraith/pitch-fighter/engine/fsm"
	"github.com/lixenwraith/pitch-fighter/event"
	"github.com/lixenwraith/pitch-fighter/systems"
)

//go:embed gamestate.toml
var defaultGraph []byte

// Session states declared in gamestate.toml
const (
	StateBooting  = "Booting"
	StatePlaying  = "Playing"
	StateGameOver = "GameOver"
)

// Session is one run from Booting to GameOver
// Only the tick goroutine mutates it
type Session struct {
	ID      uint64
	Player  *components.Player
	Board   *components.ScoreBoard
	Pool    *components.Pool
	History *analysis.History

	machine   *fsm.Machine[*Session]
	spawner   *systems.Spawner
	collision systems.Collision

	ticks    uint64
	state    string
	frozen   bool
	degraded bool
	gameOver bool

	emit func(t event.EventType, payload any)
}

// State returns the active state name
func (s *Session) State() string {
	return s.machine.CurrentState()
}

// Ticks returns the number of ticks the session has run
func (s *Session) Ticks() uint64 {
	return s.ticks
}

// Frozen reports whether the session stopped mutating after game over
func (s *Session) Frozen() bool {
	return s.frozen
}

// newMachine builds the state machine with the session guards and actions
func newMachine(graph []byte) (*fsm.Machine[*Session], error) {
	m := fsm.NewMachine[*Session]()

	m.RegisterGuard("HealthDepleted", func(s *Session) bool {
		return s.Player.Dead()
	})

	m.RegisterAction("AnnounceState", func(s *Session, _ any) {
		prev := s.state
		s.state = s.machine.CurrentState()
		s.emit(event.EventStateChanged, &event.StatePayload{State: s.state, Previous: prev})
	})
	m.RegisterAction("FreezeSession", func(s *Session, _ any) {
		s.frozen = true
	})
	m.RegisterAction("EmitEvent", func(s *Session, args any) {
		ea, ok := args.(*fsm.EmitEventArgs)
		if !ok {
			return
		}
		if ea.Type != event.EventGameOver {
			s.emit(ea.Type, nil)
			return
		}
		if s.gameOver {
			return
		}
		s.gameOver = true
		s.emit(event.EventGameOver, &event.GameOverPayload{
			FinalScore: s.Player.Score,
			Health:     s.Player.Health,
			Board:      s.Board.Snapshot(),
			Summary:    s.History.Summarize(),
			Ticks:      s.ticks,
		})
	})

	if err := m.LoadConfig(graph); err != nil {
		return nil, fmt.Errorf("load game state graph: %w", err)
	}
	return m, nil
}
