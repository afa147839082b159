// Package analysis keeps a bounded history of voiced readings and summarizes
// a player's pitch control over a session.
package analysis

import (
	"math"

	"github.com/lixenwraith/pitch-fighter/parameter"
)

// Sample is one voiced reading retained in history
type Sample struct {
	Frequency float64
	Note      string
	Cents     int
	Accuracy  int
}

// Range is the lowest and highest frequency observed
type Range struct {
	Min float64
	Max float64
}

// Summary describes the retained history
type Summary struct {
	Samples          int
	AverageFrequency float64
	DominantNote     string
	// Stability is 100 minus the coefficient of variation in percent, floored at 0
	Stability int
	// AccuracyScore is the mean per-sample accuracy against the resolved note
	AccuracyScore int
	Range         Range
}

// History is a fixed-size ring of the most recent voiced samples
// Not safe for concurrent use
type History struct {
	samples   []Sample
	next      int
	full      bool
	tolerance float64
}

// NewHistory creates a ring holding size samples scored against tolerance cents
func NewHistory(size int, tolerance float64) *History {
	if size <= 0 {
		size = parameter.AnalysisHistorySize
	}
	if tolerance <= 0 {
		tolerance = parameter.AnalysisDefaultTolerance
	}
	return &History{samples: make([]Sample, size), tolerance: tolerance}
}

// Record adds a voiced reading, the oldest sample is dropped when full
func (h *History) Record(freq, noteFreq float64, name string, cents int) {
	h.samples[h.next] = Sample{
		Frequency: freq,
		Note:      name,
		Cents:     cents,
		Accuracy:  Accuracy(noteFreq, freq, h.tolerance),
	}
	h.next++
	if h.next == len(h.samples) {
		h.next = 0
		h.full = true
	}
}

// Len returns the number of retained samples
func (h *History) Len() int {
	if h.full {
		return len(h.samples)
	}
	return h.next
}

// Reset drops all samples
func (h *History) Reset() {
	h.next = 0
	h.full = false
}

// Samples returns retained samples oldest first
func (h *History) Samples() []Sample {
	n := h.Len()
	out := make([]Sample, 0, n)
	if h.full {
		out = append(out, h.samples[h.next:]...)
	}
	out = append(out, h.samples[:h.next]...)
	return out
}

// Summarize computes statistics over the retained samples
// The dominant note is the most frequent, ties go to the note seen first
func (h *History) Summarize() Summary {
	samples := h.Samples()
	if len(samples) == 0 {
		return Summary{}
	}

	var sum, accSum float64
	rng := Range{Min: math.Inf(1), Max: math.Inf(-1)}
	counts := make(map[string]int)
	order := make([]string, 0, 8)

	for _, s := range samples {
		sum += s.Frequency
		accSum += float64(s.Accuracy)
		rng.Min = math.Min(rng.Min, s.Frequency)
		rng.Max = math.Max(rng.Max, s.Frequency)
		if counts[s.Note] == 0 {
			order = append(order, s.Note)
		}
		counts[s.Note]++
	}

	n := float64(len(samples))
	avg := sum / n

	var variance float64
	for _, s := range samples {
		d := s.Frequency - avg
		variance += d * d
	}
	stdDev := math.Sqrt(variance / n)

	dominant := order[0]
	for _, name := range order[1:] {
		if counts[name] > counts[dominant] {
			dominant = name
		}
	}

	return Summary{
		Samples:          len(samples),
		AverageFrequency: avg,
		DominantNote:     dominant,
		Stability:        int(math.Round(math.Max(0, 100-stdDev/avg*100))),
		AccuracyScore:    int(math.Round(accSum / n)),
		Range:            rng,
	}
}

// Accuracy scores actual against target as 100 minus the cents error over tolerance, floored at 0
func Accuracy(target, actual, toleranceCents float64) int {
	if target <= 0 || actual <= 0 || toleranceCents <= 0 {
		return 0
	}
	cents := math.Abs(1200 * math.Log2(actual/target))
	return int(math.Round(math.Max(0, 100-cents/toleranceCents*100)))
}
