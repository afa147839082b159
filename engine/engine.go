// Package engine runs the pitch-driven game loop: it pulls audio frames,
// detects pitch, steers the player, resolves collisions and drives the
// session state machine. Callers interact through commands and read events
// from the event queue.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/lixenwraith/pitch-fighter/analysis"
	"github.com/lixenwraith/pitch-fighter/capture"
	"github.com/lixenwraith/pitch-fighter/components"
	"github.com/lixenwraith/pitch-fighter/config"
	"github.com/lixenwraith/pitch-fighter/event"
	"github.com/lixenwraith/pitch-fighter/mapping"
	"github.com/lixenwraith/pitch-fighter/note"
	"github.com/lixenwraith/pitch-fighter/pitch"
	"github.com/lixenwraith/pitch-fighter/status"
	"github.com/lixenwraith/pitch-fighter/systems"
)

var (
	// ErrNotGameOver rejects Restart and Exit outside the GameOver state
	ErrNotGameOver = errors.New("session is not over")
	// ErrExited rejects every command after Exit
	ErrExited = errors.New("engine exited")
	// ErrStartCanceled reports a Start abandoned by Stop while the source was opening
	ErrStartCanceled = errors.New("start canceled")
)

// Option customizes an Engine
type Option func(*Engine)

// WithLogger sets the logger, slog.Default when unset
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithQueue sets the queue events are pushed to
func WithQueue(q *event.EventQueue) Option {
	return func(e *Engine) { e.queue = q }
}

// WithRegistry sets the registry metrics are published to
func WithRegistry(r *status.Registry) Option {
	return func(e *Engine) { e.reg = r }
}

// WithSeed fixes the spawn seed, session n uses seed+n-1
func WithSeed(seed uint64) Option {
	return func(e *Engine) { e.seed = seed }
}

// WithGraph replaces the embedded session state graph
func WithGraph(graph []byte) Option {
	return func(e *Engine) { e.graph = graph }
}

// Engine owns the detector, the active session and the capture source
// All state is guarded by mu; the scheduler and command callers serialize through it
type Engine struct {
	cfg    config.Config
	src    capture.Source
	logger *slog.Logger
	queue  *event.EventQueue
	reg    *status.Registry
	seed   uint64
	graph  []byte

	mu        sync.Mutex
	reference float64
	table     *note.Table
	detector  *pitch.Detector
	mapper    mapping.Mapper
	movement  systems.Movement
	session   *Session
	sessions  uint64
	capturing bool
	exited    bool

	// In-flight source open, Stop cancels it
	opening      bool
	openCanceled bool
	cancelOpen   context.CancelFunc
	buf       []float64

	lastVoiced bool
	lastNote   string

	statTicks     *atomic.Int64
	statVoiced    *atomic.Int64
	statUnvoiced  *atomic.Int64
	statSpawned   *atomic.Int64
	statDropped   *atomic.Int64
	statFrequency *status.AtomicFloat
	statNote      *status.AtomicString
	statState     *status.AtomicString
	statDegraded  *atomic.Bool
}

// New validates cfg and builds an engine reading from src
// A nil src runs every session in idle-only mode
func New(cfg config.Config, src capture.Source, opts ...Option) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	e := &Engine{
		cfg:   cfg,
		src:   src,
		graph: defaultGraph,
		seed:  cfg.Game.Seed,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = slog.Default()
	}
	if e.queue == nil {
		e.queue = event.NewEventQueue()
	}
	if e.reg == nil {
		e.reg = status.NewRegistry()
	}
	if e.seed == 0 {
		e.seed = uint64(time.Now().UnixNano())
	}

	// Reject a broken graph now rather than at Start
	if _, err := newMachine(e.graph); err != nil {
		return nil, err
	}

	table, err := note.Build(cfg.Tuning.ReferenceHz, cfg.Tuning.Range)
	if err != nil {
		return nil, err
	}
	detector, err := pitch.NewDetector(cfg.Detector, table)
	if err != nil {
		return nil, err
	}

	e.reference = cfg.Tuning.ReferenceHz
	e.table = table
	e.detector = detector
	e.mapper = cfg.Mapper()
	e.movement = systems.NewMovement(cfg.Movement.Steer, cfg.Movement.Idle, cfg.Game.Height, cfg.Game.TickRateHz)
	e.buf = make([]float64, cfg.Audio.BufferSize)

	e.statTicks = e.reg.Ints.Get(status.KeyTicks)
	e.statVoiced = e.reg.Ints.Get(status.KeyVoiced)
	e.statUnvoiced = e.reg.Ints.Get(status.KeyUnvoiced)
	e.statSpawned = e.reg.Ints.Get(status.KeySpawned)
	e.statDropped = e.reg.Ints.Get(status.KeyEventsDropped)
	e.statFrequency = e.reg.Floats.Get(status.KeyFrequency)
	e.statNote = e.reg.Strings.Get(status.KeyNote)
	e.statState = e.reg.Strings.Get(status.KeyState)
	e.statDegraded = e.reg.Bools.Get(status.KeyCaptureDegraded)

	return e, nil
}

// Queue returns the event queue
func (e *Engine) Queue() *event.EventQueue {
	return e.queue
}

// Registry returns the metrics registry
func (e *Engine) Registry() *status.Registry {
	return e.reg
}

// Start acquires the capture source and moves the session out of Booting
// A capture failure is returned wrapped but the session still runs in idle-only mode
// Start while another Start is opening the source is a no-op
func (e *Engine) Start(ctx context.Context) error {
	e.mu.Lock()
	if e.exited {
		e.mu.Unlock()
		return ErrExited
	}
	if e.capturing || e.opening {
		e.mu.Unlock()
		return nil
	}
	openCtx, cancel := context.WithCancel(ctx)
	e.opening, e.openCanceled, e.cancelOpen = true, false, cancel
	e.mu.Unlock()

	// Acquisition blocks, ticks keep running meanwhile
	openErr := e.openSource(openCtx)
	cancel()

	e.mu.Lock()
	defer e.mu.Unlock()

	canceled := e.openCanceled
	e.opening, e.openCanceled, e.cancelOpen = false, false, nil

	if e.exited || canceled {
		if openErr == nil {
			_ = e.src.Close()
		}
		if e.exited {
			return ErrExited
		}
		e.logger.Info("capture start canceled")
		return ErrStartCanceled
	}

	// Same reference and range give an identical table
	table, err := note.Build(e.reference, e.cfg.Tuning.Range)
	if err != nil {
		return err
	}
	e.table = table
	e.detector.SetTable(table)
	e.lastVoiced, e.lastNote = false, ""

	if e.session == nil {
		if err := e.newSession(); err != nil {
			return err
		}
	}
	s := e.session

	if openErr != nil {
		e.logger.Warn("capture unavailable, idle-only mode", "error", openErr)
		e.emit(s, event.EventCaptureFailed, &event.ErrorPayload{Err: openErr})
		e.emit(s, event.EventCaptureUnavailable, &event.CapturePayload{Backend: describe(e.src)})
		s.machine.HandleEvent(s, event.EventCaptureUnavailable)
		return fmt.Errorf("start capture: %w", openErr)
	}

	e.capturing = true
	e.logger.Info("capture started", "backend", describe(e.src))
	e.emit(s, event.EventCaptureReady, &event.CapturePayload{Backend: describe(e.src)})
	s.machine.HandleEvent(s, event.EventCaptureReady)
	return nil
}

func (e *Engine) openSource(ctx context.Context) error {
	if e.src == nil {
		return fmt.Errorf("%w: no source configured", capture.ErrCaptureUnavailable)
	}
	if timeout := e.cfg.OpenTimeout(); timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return e.src.Open(ctx)
}

// Stop releases the capture source and clears detector state, the session is kept
// Stop during an in-flight Start cancels the open and leaves capture off
func (e *Engine) Stop() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.exited {
		return ErrExited
	}
	if e.opening {
		e.openCanceled = true
		e.cancelOpen()
		return nil
	}
	if !e.capturing {
		return nil
	}
	e.capturing = false
	e.detector.Reset()
	e.lastVoiced, e.lastNote = false, ""
	e.statNote.Store("")
	e.statFrequency.Store(0)

	if err := e.src.Close(); err != nil {
		return fmt.Errorf("close capture: %w", err)
	}
	e.logger.Info("capture stopped")
	return nil
}

// SetTuning rebuilds the note table for a new A4 reference
// An invalid reference is rejected and the previous tuning kept
func (e *Engine) SetTuning(hz float64) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.exited {
		return ErrExited
	}
	table, err := note.Build(hz, e.cfg.Tuning.Range)
	if err != nil {
		return err
	}

	e.reference = hz
	e.table = table
	e.detector.SetTable(table)
	e.lastVoiced, e.lastNote = false, ""

	e.logger.Info("tuning changed", "reference", hz)
	e.emit(e.session, event.EventTuningChanged, &event.TuningPayload{Reference: hz})
	return nil
}

// Restart replaces a finished session with a fresh one
func (e *Engine) Restart() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.exited {
		return ErrExited
	}
	if e.session == nil || e.session.State() != StateGameOver {
		return ErrNotGameOver
	}

	e.detector.Reset()
	e.lastVoiced, e.lastNote = false, ""
	if err := e.newSession(); err != nil {
		return err
	}

	s := e.session
	trigger := event.EventCaptureUnavailable
	if e.capturing {
		trigger = event.EventCaptureReady
	}
	s.machine.HandleEvent(s, trigger)
	return nil
}

// Exit ends a finished session and terminates the engine
func (e *Engine) Exit() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.exited {
		return ErrExited
	}
	if e.session == nil || e.session.State() != StateGameOver {
		return ErrNotGameOver
	}
	return e.shutdown()
}

// Close terminates the engine regardless of session state
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.exited {
		return nil
	}
	return e.shutdown()
}

func (e *Engine) shutdown() error {
	e.exited = true
	if e.opening {
		e.cancelOpen()
	}
	var err error
	if e.capturing {
		e.capturing = false
		err = e.src.Close()
	}
	e.logger.Info("engine exited")
	return err
}

// Exited reports whether Exit or Close ran
func (e *Engine) Exited() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.exited
}

func (e *Engine) newSession() error {
	m, err := newMachine(e.graph)
	if err != nil {
		return err
	}

	e.sessions++
	id := e.sessions
	g := e.cfg.Game

	s := &Session{
		ID:      id,
		Player:  components.NewPlayer(g.PlayerX, e.mapper.Midpoint()),
		Board:   components.NewScoreBoard(),
		Pool:    components.NewPool(g.MaxCollectibles, g.MaxHazards),
		History: analysis.NewHistory(0, 0),
		machine: m,
		spawner: systems.NewSpawner(e.cfg.SpawnRules(), e.mapper, g.Width, g.TickRateHz, e.seed+id-1),
	}
	s.emit = func(t event.EventType, payload any) { e.emit(s, t, payload) }
	e.session = s

	if err := m.Init(s); err != nil {
		return fmt.Errorf("init session state: %w", err)
	}
	e.statDegraded.Store(false)
	e.logger.Info("session created", "session", id)
	return nil
}

func (e *Engine) emit(s *Session, t event.EventType, payload any) {
	ev := event.GameEvent{Type: t, Payload: payload}
	if s != nil {
		ev.Session = s.ID
		ev.Tick = s.ticks
		if t == event.EventStateChanged {
			if sp, ok := payload.(*event.StatePayload); ok {
				e.statState.Store(sp.State)
			}
		}
	}
	e.queue.Push(ev)
}

// describe names a source for events and logs
func describe(src capture.Source) string {
	switch s := src.(type) {
	case nil:
		return "none"
	case *capture.Fallback:
		if active := s.Active(); active != nil {
			return describe(active)
		}
		return "auto"
	case interface{ BackendName() string }:
		return s.BackendName()
	default:
		return fmt.Sprintf("%T", src)
	}
}
