package event

import (
	"github.com/lixenwraith/pitch-fighter/analysis"
	"github.com/lixenwraith/pitch-fighter/note"
)

// CapturePayload names the backend involved in a capture transition
type CapturePayload struct {
	Backend string
}

// ErrorPayload carries a non-fatal error
type ErrorPayload struct {
	Err error
}

// StatePayload carries the new and previous state names
type StatePayload struct {
	State    string
	Previous string
}

// ScorePayload carries the player score and a board snapshot
type ScorePayload struct {
	Score int
	Board map[string]int
}

// HealthPayload carries health and its opacity ratio
type HealthPayload struct {
	Health int
	Alpha  float64
	Damage int
}

// CollectPayload identifies a collected note
type CollectPayload struct {
	Note  note.Entry
	Value int
}

// GameOverPayload is the terminal session summary
type GameOverPayload struct {
	FinalScore int
	Health     int
	Board      map[string]int
	Summary    analysis.Summary
	Ticks      uint64
}

// NotePayload describes the current voicing
type NotePayload struct {
	Voiced    bool
	Note      note.Entry
	Cents     int
	Frequency float64
	Target    float64
}

// TuningPayload carries the active reference
type TuningPayload struct {
	Reference float64
}
