package engine

import (
	"github.com/lixenwraith/pitch-fighter/capture"
	"github.com/lixenwraith/pitch-fighter/event"
	"github.com/lixenwraith/pitch-fighter/pitch"
)

// Tick advances the session by one fixed step
// Order: detection, mapping, movement, spawn and advance, collision, state machine
func (e *Engine) Tick() {
	e.mu.Lock()
	defer e.mu.Unlock()

	s := e.session
	if e.exited || s == nil {
		return
	}
	s.ticks++
	e.statTicks.Add(1)

	reading := e.read(s)
	e.observe(s, reading)

	if s.State() == StatePlaying && !s.frozen {
		target := e.mapper.Target(e.table, reading.Note, reading.Voiced)
		e.movement.Steer(s.Player, target, reading.Voiced)

		spawned := s.spawner.Spawn(s.Pool, e.table)
		if n := spawned.Collectibles + spawned.Hazards; n > 0 {
			e.statSpawned.Add(int64(n))
		}
		s.spawner.Advance(s.Pool)

		e.collide(s)

		if reading.Voiced {
			s.History.Record(reading.Frequency, reading.Note.Frequency, reading.Note.Name, reading.Cents)
		}
	}

	s.machine.Update(s)
	e.statDropped.Store(int64(e.queue.Dropped()))
}

// read pulls one frame, a failing source degrades the session to unvoiced ticks
func (e *Engine) read(s *Session) pitch.Reading {
	if !e.capturing {
		return e.detector.NoFrame()
	}

	frame, err := capture.ReadFrame(e.src, e.buf)
	if err != nil {
		if !s.degraded {
			s.degraded = true
			e.statDegraded.Store(true)
			e.logger.Warn("capture degraded, continuing unvoiced", "error", err)
			e.emit(s, event.EventInputDegraded, &event.ErrorPayload{Err: err})
		}
		return e.detector.NoFrame()
	}
	if frame.Empty() {
		return e.detector.NoFrame()
	}
	return e.detector.Detect(frame.Samples, frame.SampleRate)
}

// observe updates pitch metrics and emits a note event when voicing or note changes
func (e *Engine) observe(s *Session, r pitch.Reading) {
	if r.Voiced {
		e.statVoiced.Add(1)
		e.statFrequency.Store(r.Frequency)
		e.statNote.Store(r.Note.Name)
	} else {
		e.statUnvoiced.Add(1)
		e.statFrequency.Store(0)
		e.statNote.Store("")
	}

	if r.Voiced == e.lastVoiced && r.Note.Name == e.lastNote {
		return
	}
	e.lastVoiced, e.lastNote = r.Voiced, r.Note.Name

	e.emit(s, event.EventNoteChanged, &event.NotePayload{
		Voiced:    r.Voiced,
		Note:      r.Note,
		Cents:     r.Cents,
		Frequency: r.Frequency,
		Target:    e.mapper.Target(e.table, r.Note, r.Voiced),
	})
}

func (e *Engine) collide(s *Session) {
	res := s.collision.Resolve(s.Player, s.Pool, s.Board)

	if res.DamageTaken > 0 {
		e.emit(s, event.EventHealthChanged, &event.HealthPayload{
			Health: s.Player.Health,
			Alpha:  s.Player.Alpha(),
			Damage: res.DamageTaken,
		})
	}

	for _, tag := range res.Tags {
		entry, _ := e.table.Lookup(tag)
		e.emit(s, event.EventCollected, &event.CollectPayload{
			Note:  entry,
			Value: e.cfg.Game.CollectibleValue,
		})
	}

	if res.ScoreGained > 0 {
		e.emit(s, event.EventScoreUpdated, &event.ScorePayload{
			Score: s.Player.Score,
			Board: s.Board.Snapshot(),
		})
	}
}
