package pitch

import (
	"errors"
	"fmt"

	"github.com/lixenwraith/pitch-fighter/parameter"
)

// Config holds detector thresholds and bands
type Config struct {
	MinFreq float64 `toml:"min_freq_hz"`
	MaxFreq float64 `toml:"max_freq_hz"`

	SanityMin float64 `toml:"sanity_min_hz"`
	SanityMax float64 `toml:"sanity_max_hz"`

	NoteMin float64 `toml:"note_freq_lower_bound"`
	NoteMax float64 `toml:"note_freq_upper_bound"`

	NoiseFloor           float64 `toml:"noise_floor"`
	EarlyExitCorrelation float64 `toml:"early_exit_correlation"`
	MinCorrelation       float64 `toml:"min_correlation"`
	MinLag               int     `toml:"min_lag"`
	Window               int     `toml:"window"`
}

// DefaultConfig returns the stock detector configuration
func DefaultConfig() Config {
	return Config{
		MinFreq:              parameter.DetectorMinFreq,
		MaxFreq:              parameter.DetectorMaxFreq,
		SanityMin:            parameter.DetectorSanityMin,
		SanityMax:            parameter.DetectorSanityMax,
		NoteMin:              parameter.DetectorNoteMin,
		NoteMax:              parameter.DetectorNoteMax,
		NoiseFloor:           parameter.DetectorNoiseFloor,
		EarlyExitCorrelation: parameter.DetectorEarlyExitCorrelation,
		MinCorrelation:       parameter.DetectorMinCorrelation,
		MinLag:               parameter.DetectorMinLag,
		Window:               parameter.DetectorWindow,
	}
}

// Validate reports every inconsistent field
func (c Config) Validate() error {
	var errs []error
	if c.MinFreq <= 0 || c.MaxFreq <= c.MinFreq {
		errs = append(errs, fmt.Errorf("search band %.2f-%.2fHz is empty", c.MinFreq, c.MaxFreq))
	}
	if c.SanityMax <= c.SanityMin {
		errs = append(errs, fmt.Errorf("sanity band %.2f-%.2fHz is empty", c.SanityMin, c.SanityMax))
	}
	if c.NoteMax < c.NoteMin {
		errs = append(errs, fmt.Errorf("note band %.2f-%.2fHz is inverted", c.NoteMin, c.NoteMax))
	}
	if c.NoiseFloor < 0 {
		errs = append(errs, fmt.Errorf("noise floor %.4f is negative", c.NoiseFloor))
	}
	if c.MinCorrelation < 0 || c.MinCorrelation > 1 {
		errs = append(errs, fmt.Errorf("min correlation %.2f outside 0-1", c.MinCorrelation))
	}
	if c.EarlyExitCorrelation < c.MinCorrelation || c.EarlyExitCorrelation > 1 {
		errs = append(errs, fmt.Errorf("early exit correlation %.2f outside %.2f-1", c.EarlyExitCorrelation, c.MinCorrelation))
	}
	if c.MinLag < 1 {
		errs = append(errs, fmt.Errorf("min lag %d must be positive", c.MinLag))
	}
	if c.Window < 2*c.MinLag {
		errs = append(errs, fmt.Errorf("window %d shorter than twice the min lag", c.Window))
	}
	return errors.Join(errs...)
}

// MinFrame is the shortest frame the detector analyses at sampleRate
// Two periods of MinFreq, capped at Window
func (c Config) MinFrame(sampleRate int) int {
	if c.MinFreq <= 0 || sampleRate <= 0 {
		return c.Window
	}
	return min(2*int(float64(sampleRate)/c.MinFreq), c.Window)
}
