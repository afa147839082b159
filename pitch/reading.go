package pitch

import (
	"fmt"

	"github.com/lixenwraith/pitch-fighter/note"
)

// Reason explains why a reading carries no pitch
type Reason uint8

const (
	// ReasonNone marks a voiced reading
	ReasonNone Reason = iota
	// ReasonNoFrame means the source had no new samples this tick
	ReasonNoFrame
	// ReasonSilent means RMS fell below the noise floor
	ReasonSilent
	// ReasonNoCorrelation means no lag cleared the minimum correlation
	ReasonNoCorrelation
	// ReasonOutOfBand means the estimate fell outside the sanity band
	ReasonOutOfBand
	// ReasonNoteOutOfRange means the resolved note lies outside the accepted note band
	ReasonNoteOutOfRange
)

func (r Reason) String() string {
	switch r {
	case ReasonNone:
		return "voiced"
	case ReasonNoFrame:
		return "no-frame"
	case ReasonSilent:
		return "silent"
	case ReasonNoCorrelation:
		return "no-correlation"
	case ReasonOutOfBand:
		return "out-of-band"
	case ReasonNoteOutOfRange:
		return "note-out-of-range"
	default:
		return fmt.Sprintf("reason(%d)", r)
	}
}

// Reading is the result of one detection tick
// Frequency, Note and Cents are zero unless Voiced
type Reading struct {
	Voiced         bool
	Frequency      float64
	Note           note.Entry
	Cents          int
	SignalStrength float64
	Correlation    float64
	Reason         Reason
}

// Unvoiced builds a pitchless reading carrying the measured signal strength
func Unvoiced(reason Reason, strength float64) Reading {
	return Reading{Reason: reason, SignalStrength: strength}
}

func (r Reading) String() string {
	if !r.Voiced {
		return fmt.Sprintf("-- (%s, rms %.3f)", r.Reason, r.SignalStrength)
	}
	return fmt.Sprintf("%s %+dc %.1fHz", r.Note.Name, r.Cents, r.Frequency)
}
