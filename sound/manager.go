// Package sound plays short feedback effects for game events.
package sound

import (
	"log/slog"
	"sync"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"

	"github.com/lixenwraith/pitch-fighter/config"
	"github.com/lixenwraith/pitch-fighter/event"
	"github.com/lixenwraith/pitch-fighter/parameter"
)

const sampleRate = beep.SampleRate(parameter.SoundSampleRate)

// Manager owns the speaker mixer and turns events into effects
// Every method is safe when the speaker never initialized
type Manager struct {
	mu          sync.Mutex
	cfg         config.SoundConfig
	logger      *slog.Logger
	mixer       *beep.Mixer
	initialized bool
	played      int
}

// NewManager creates a manager, nothing plays until Init
func NewManager(cfg config.SoundConfig, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{cfg: cfg, logger: logger, mixer: &beep.Mixer{}}
}

// Init opens the speaker, failure leaves the manager silent
func (m *Manager) Init() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.initialized || !m.cfg.Enabled {
		return nil
	}
	if err := speaker.Init(sampleRate, sampleRate.N(parameter.SoundBufferLength)); err != nil {
		m.logger.Warn("sound disabled", "error", err)
		return err
	}
	speaker.Play(m.mixer)
	m.initialized = true
	return nil
}

// Close silences every playing effect
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.initialized {
		return
	}
	speaker.Lock()
	m.mixer.Clear()
	speaker.Unlock()
	m.initialized = false
}

// Active returns the number of effects still mixing
func (m *Manager) Active() int {
	speaker.Lock()
	defer speaker.Unlock()
	return m.mixer.Len()
}

// Played returns how many effects were started
func (m *Manager) Played() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.played
}

func (m *Manager) play(s beep.Streamer) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.initialized || s == nil {
		return
	}
	speaker.Lock()
	m.mixer.Add(s)
	speaker.Unlock()
	m.played++
}

// EventTypes implements event.Handler
func (m *Manager) EventTypes() []event.EventType {
	return []event.EventType{event.EventCollected, event.EventHealthChanged, event.EventGameOver}
}

// HandleEvent implements event.Handler
func (m *Manager) HandleEvent(ev event.GameEvent) {
	switch ev.Type {
	case event.EventCollected:
		p, ok := ev.Payload.(*event.CollectPayload)
		if !ok || p.Note.Frequency <= 0 {
			return
		}
		m.play(Chime(p.Note.Frequency, m.cfg.Volume, sampleRate))
	case event.EventHealthChanged:
		if p, ok := ev.Payload.(*event.HealthPayload); ok && p.Damage > 0 {
			m.play(Buzz(m.cfg.Volume, sampleRate))
		}
	case event.EventGameOver:
		m.play(Sweep(m.cfg.Volume, sampleRate))
	}
}
