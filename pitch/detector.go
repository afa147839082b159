// Package pitch estimates the fundamental frequency of a sample frame by
// time-domain autocorrelation and resolves it against a note table.
package pitch

import (
	"fmt"
	"math"

	"github.com/lixenwraith/pitch-fighter/note"
	"github.com/lixenwraith/pitch-fighter/parameter"
)

// Detector turns one frame into at most one reading per tick
// Not safe for concurrent use; owned by the tick goroutine
type Detector struct {
	cfg   Config
	table *note.Table

	// Last voiced note, cleared on every unvoiced tick
	lastGood note.Entry
	hasLast  bool

	// Reused energy prefix buffer
	prefix []float64
}

// NewDetector validates cfg and binds the detector to a note table
func NewDetector(cfg Config, table *note.Table) (*Detector, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("detector config: %w", err)
	}
	if table == nil || table.Len() == 0 {
		return nil, fmt.Errorf("detector requires a note table")
	}
	return &Detector{cfg: cfg, table: table}, nil
}

// Config returns the active configuration
func (d *Detector) Config() Config { return d.cfg }

// Table returns the active note table
func (d *Detector) Table() *note.Table { return d.table }

// SetTable swaps the note table and drops the last good note
func (d *Detector) SetTable(t *note.Table) {
	d.table = t
	d.Reset()
}

// Reset clears all transient state
func (d *Detector) Reset() {
	d.lastGood = note.Entry{}
	d.hasLast = false
}

// LastGood returns the note of the most recent voiced tick
func (d *Detector) LastGood() (note.Entry, bool) {
	return d.lastGood, d.hasLast
}

// NoFrame records a tick without new samples
func (d *Detector) NoFrame() Reading {
	d.Reset()
	return Unvoiced(ReasonNoFrame, 0)
}

// Detect analyses one frame
// Only the trailing Window samples are correlated; frames shorter than MinFrame count as no frame
func (d *Detector) Detect(samples []float64, sampleRate int) Reading {
	if len(samples) == 0 || sampleRate <= 0 || len(samples) < d.cfg.MinFrame(sampleRate) {
		return d.NoFrame()
	}

	n := len(samples)
	if n > d.cfg.Window {
		samples = samples[n-d.cfg.Window:]
		n = d.cfg.Window
	}

	strength := SignalStrength(samples)
	if strength < d.cfg.NoiseFloor {
		return d.reject(ReasonSilent, strength, 0)
	}

	lag, score := d.searchLag(samples, sampleRate)
	if lag == 0 || score < d.cfg.MinCorrelation {
		return d.reject(ReasonNoCorrelation, strength, score)
	}

	freq := float64(sampleRate) / float64(lag)
	if freq <= d.cfg.SanityMin || freq >= d.cfg.SanityMax {
		return d.reject(ReasonOutOfBand, strength, score)
	}

	closest := d.table.Closest(freq)
	if closest.Frequency < d.cfg.NoteMin || closest.Frequency > d.cfg.NoteMax {
		return d.reject(ReasonNoteOutOfRange, strength, score)
	}

	d.lastGood = closest
	d.hasLast = true

	return Reading{
		Voiced:         true,
		Frequency:      freq,
		Note:           closest,
		Cents:          Cents(freq, closest.Frequency),
		SignalStrength: strength,
		Correlation:    score,
		Reason:         ReasonNone,
	}
}

func (d *Detector) reject(reason Reason, strength, score float64) Reading {
	d.Reset()
	r := Unvoiced(reason, strength)
	r.Correlation = score
	return r
}

// searchLag returns the chosen lag and its normalized correlation, lag 0 when the band is empty
// Scans upward and stops at the first peak once any score clears the early exit threshold
func (d *Detector) searchLag(x []float64, sampleRate int) (int, float64) {
	n := len(x)

	kMin := int(float64(sampleRate) / d.cfg.MaxFreq)
	if kMin < d.cfg.MinLag {
		kMin = d.cfg.MinLag
	}
	// Every lag keeps at least half the frame in overlap
	kMax := int(float64(sampleRate) / d.cfg.MinFreq)
	if kMax > n/2 {
		kMax = n / 2
	}
	if kMin > kMax {
		return 0, 0
	}

	// prefix[i] is the energy of x[:i]
	if cap(d.prefix) < n+1 {
		d.prefix = make([]float64, n+1)
	}
	prefix := d.prefix[:n+1]
	for i, v := range x {
		prefix[i+1] = prefix[i] + v*v
	}
	if prefix[n] == 0 {
		return 0, 0
	}

	bestLag := 0
	best := math.Inf(-1)
	prev := math.Inf(-1)
	armed := false

	for k := kMin; k <= kMax; k++ {
		var sum float64
		for i := 0; i < n-k; i++ {
			sum += x[i] * x[i+k]
		}

		var score float64
		if norm := math.Sqrt(prefix[n-k] * (prefix[n] - prefix[k])); norm > 0 {
			score = sum / norm
		}

		if score > best {
			best = score
			bestLag = k
		}
		if armed && score < prev {
			break
		}
		if score > d.cfg.EarlyExitCorrelation {
			armed = true
		}
		prev = score
	}

	return bestLag, best
}

// SignalStrength is the root-mean-square of the samples
func SignalStrength(samples []float64) float64 {
	if len(samples) == 0 {
		return 0
	}
	var sum float64
	for _, v := range samples {
		sum += v * v
	}
	return math.Sqrt(sum / float64(len(samples)))
}

// Cents returns the floored offset of detected from reference in cents
func Cents(detected, reference float64) int {
	if detected <= 0 || reference <= 0 {
		return 0
	}
	return int(math.Floor(1200*math.Log2(detected/reference) + parameter.CentsEpsilon))
}
