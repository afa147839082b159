// Package note builds equal-temperament note tables for a tuning reference
// and resolves frequencies to their nearest table entry.
package note

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/lixenwraith/pitch-fighter/parameter"
)

// midiA4 anchors the tuning reference
const midiA4 = 69

var (
	ErrInvalidTuning = errors.New("tuning reference out of range")
	ErrInvalidRange  = errors.New("note range out of bounds")
)

var names = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

// Entry is one immutable row of a note table
type Entry struct {
	Name      string
	Frequency float64
	MIDI      int
}

func (e Entry) String() string {
	return fmt.Sprintf("%s (%.2fHz)", e.Name, e.Frequency)
}

// Range selects the span of a table by its lowest MIDI note and octave count
type Range struct {
	Low     int `toml:"low"`
	Octaves int `toml:"octaves"`
}

// DefaultRange is C2 through B4
func DefaultRange() Range {
	return Range{Low: parameter.NoteTableLowMIDI, Octaves: parameter.NoteTableOctaves}
}

// Validate checks the octave span and that the range stays inside MIDI 0-127
func (r Range) Validate() error {
	if r.Octaves < parameter.NoteTableMinOctaves || r.Octaves > parameter.NoteTableMaxOctaves {
		return fmt.Errorf("%w: %d octaves, want %d-%d", ErrInvalidRange, r.Octaves,
			parameter.NoteTableMinOctaves, parameter.NoteTableMaxOctaves)
	}
	if r.Low < 0 || r.Low+r.Octaves*12 > 128 {
		return fmt.Errorf("%w: low note %d", ErrInvalidRange, r.Low)
	}
	return nil
}

// ValidateReference rejects tuning references outside the permitted band
func ValidateReference(reference float64) error {
	if math.IsNaN(reference) || reference < parameter.TuningMin || reference > parameter.TuningMax {
		return fmt.Errorf("%w: %.2fHz, want %.0f-%.0fHz", ErrInvalidTuning, reference,
			parameter.TuningMin, parameter.TuningMax)
	}
	return nil
}

// Frequency returns the equal-temperament frequency of a MIDI note for a given A4 reference
func Frequency(midi int, reference float64) float64 {
	return reference * math.Exp2(float64(midi-midiA4)/12.0)
}

// Name returns the sharp note name with octave, e.g. 69 -> "A4"
func Name(midi int) string {
	if midi < 0 {
		return "?"
	}
	return names[midi%12] + strconv.Itoa(midi/12-1)
}

// ParseName converts a name like "C#3" into its MIDI number
func ParseName(name string) (int, bool) {
	name = strings.TrimSpace(name)
	if len(name) < 2 {
		return 0, false
	}

	// Split pitch class and octave at the first digit or minus sign
	split := 1
	if len(name) > 2 && name[1] == '#' {
		split = 2
	}
	pitchClass := strings.ToUpper(name[:1]) + name[1:split]
	octave, err := strconv.Atoi(name[split:])
	if err != nil {
		return 0, false
	}

	for i, n := range names {
		if n == pitchClass {
			midi := (octave+1)*12 + i
			if midi < 0 || midi > 127 {
				return 0, false
			}
			return midi, true
		}
	}
	return 0, false
}
