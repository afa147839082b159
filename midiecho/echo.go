// Package midiecho mirrors detected notes onto a MIDI output.
package midiecho

import (
	"log/slog"
	"strings"
	"sync"

	"gitlab.com/gomidi/midi/v2"

	"github.com/lixenwraith/pitch-fighter/config"
	"github.com/lixenwraith/pitch-fighter/event"
)

// ExcludedPorts are virtual ports never selected automatically
var ExcludedPorts = []string{"Midi Through", "Through Port", "Dummy"}

// SendFunc delivers one message to the output port
type SendFunc func(midi.Message) error

// Echo holds at most one sounding note and follows the singer
type Echo struct {
	mu       sync.Mutex
	send     SendFunc
	logger   *slog.Logger
	channel  uint8
	velocity uint8
	key      int // sounding key, -1 when silent
	errors   int
}

// New creates an echo writing through send
func New(cfg config.MIDIConfig, send SendFunc, logger *slog.Logger) *Echo {
	if logger == nil {
		logger = slog.Default()
	}
	return &Echo{
		send:     send,
		logger:   logger,
		channel:  uint8(cfg.Channel),
		velocity: uint8(cfg.Velocity),
		key:      -1,
	}
}

// Sounding returns the active key
func (e *Echo) Sounding() (int, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.key, e.key >= 0
}

// Errors returns how many sends failed
func (e *Echo) Errors() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.errors
}

// EventTypes implements event.Handler
func (e *Echo) EventTypes() []event.EventType {
	return []event.EventType{event.EventNoteChanged, event.EventGameOver}
}

// HandleEvent implements event.Handler
func (e *Echo) HandleEvent(ev event.GameEvent) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if ev.Type == event.EventGameOver {
		e.release()
		return
	}

	p, ok := ev.Payload.(*event.NotePayload)
	if !ok {
		return
	}
	if !p.Voiced || p.Note.MIDI < 0 || p.Note.MIDI > 127 {
		e.release()
		return
	}
	if p.Note.MIDI == e.key {
		return
	}
	e.release()
	if e.write(midi.NoteOn(e.channel, uint8(p.Note.MIDI), e.velocity)) {
		e.key = p.Note.MIDI
	}
}

// Close silences the sounding note
func (e *Echo) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.release()
}

func (e *Echo) release() {
	if e.key < 0 {
		return
	}
	e.write(midi.NoteOff(e.channel, uint8(e.key)))
	e.key = -1
}

func (e *Echo) write(msg midi.Message) bool {
	if err := e.send(msg); err != nil {
		e.errors++
		e.logger.Warn("midi send failed", "msg", msg.String(), "error", err)
		return false
	}
	return true
}

// SelectPort picks the first non-excluded port whose name contains pattern
// An empty pattern matches any port
func SelectPort(names []string, pattern string) (int, bool) {
	for i, name := range names {
		if excluded(name) {
			continue
		}
		if pattern == "" || containsCI(name, pattern) {
			return i, true
		}
	}
	return -1, false
}

func excluded(name string) bool {
	for _, pat := range ExcludedPorts {
		if containsCI(name, pat) {
			return true
		}
	}
	return false
}

func containsCI(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}
