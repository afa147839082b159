package sound

import (
	"math"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"

	"github.com/lixenwraith/pitch-fighter/parameter"
)

// WaveType defines oscillator wave shapes
type WaveType int

const (
	WaveSine WaveType = iota
	WaveSquare
	WaveSaw
)

// oscillator generates a fixed-length wave whose frequency may glide
type oscillator struct {
	from, to float64
	phase    float64
	duration int
	position int
	wave     WaveType
	rate     beep.SampleRate
}

// NewOscillator creates a constant-frequency oscillator
func NewOscillator(freq float64, duration time.Duration, wave WaveType, rate beep.SampleRate) beep.Streamer {
	return NewGlide(freq, freq, duration, wave, rate)
}

// NewGlide creates an oscillator sliding exponentially from one frequency to another
func NewGlide(from, to float64, duration time.Duration, wave WaveType, rate beep.SampleRate) beep.Streamer {
	return &oscillator{
		from:     from,
		to:       to,
		duration: rate.N(duration),
		wave:     wave,
		rate:     rate,
	}
}

// freqAt returns the instantaneous frequency at sample pos
func (o *oscillator) freqAt(pos int) float64 {
	if o.from == o.to || o.duration <= 1 || o.from <= 0 || o.to <= 0 {
		return o.from
	}
	t := float64(pos) / float64(o.duration-1)
	return o.from * math.Pow(o.to/o.from, t)
}

func (o *oscillator) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		if o.position >= o.duration {
			return i, i > 0
		}

		var val float64
		switch o.wave {
		case WaveSine:
			val = math.Sin(2 * math.Pi * o.phase)
		case WaveSquare:
			if o.phase < 0.5 {
				val = 1.0
			} else {
				val = -1.0
			}
		case WaveSaw:
			val = 2.0 * (o.phase - 0.5)
		}

		samples[i][0] = val
		samples[i][1] = val

		o.phase += o.freqAt(o.position) / float64(o.rate)
		o.phase -= math.Floor(o.phase)
		o.position++
	}
	return len(samples), true
}

func (o *oscillator) Err() error { return nil }

// envelope applies linear attack and release to a stream
type envelope struct {
	streamer       beep.Streamer
	position       int
	attackSamples  int
	releaseSamples int
	totalSamples   int
}

// NewEnvelope shapes s with an attack ramp and a release tail over duration
func NewEnvelope(s beep.Streamer, duration, attack, release time.Duration, rate beep.SampleRate) beep.Streamer {
	total := rate.N(duration)
	att := min(rate.N(attack), total)
	rel := min(rate.N(release), total-att)
	return &envelope{
		streamer:       s,
		attackSamples:  att,
		releaseSamples: rel,
		totalSamples:   total,
	}
}

func (e *envelope) Stream(samples [][2]float64) (n int, ok bool) {
	n, ok = e.streamer.Stream(samples)

	releaseStart := e.totalSamples - e.releaseSamples
	for i := 0; i < n; i++ {
		if e.position >= e.totalSamples {
			return i, i > 0
		}

		vol := 1.0
		if e.position < e.attackSamples {
			vol = float64(e.position) / float64(e.attackSamples)
		}
		if e.releaseSamples > 0 && e.position >= releaseStart {
			vol = math.Max(float64(e.totalSamples-e.position)/float64(e.releaseSamples), 0)
		}

		samples[i][0] *= vol
		samples[i][1] *= vol
		e.position++
	}
	return n, ok
}

func (e *envelope) Err() error { return e.streamer.Err() }

// newVolume scales a stream linearly, zero or less is silent
func newVolume(s beep.Streamer, vol float64) beep.Streamer {
	if vol <= 0 {
		return &effects.Volume{Streamer: s, Base: 2, Volume: 0, Silent: true}
	}
	return &effects.Volume{Streamer: s, Base: 2, Volume: math.Log2(vol)}
}

// Chime is the pickup sound at the collected note's pitch with an octave overtone
func Chime(freq, volume float64, rate beep.SampleRate) beep.Streamer {
	d := parameter.CollectChimeDuration
	fund := NewEnvelope(NewOscillator(freq, d, WaveSine, rate), d, 5*time.Millisecond, 80*time.Millisecond, rate)
	over := NewEnvelope(NewOscillator(2*freq, d, WaveSine, rate), d, 5*time.Millisecond, 40*time.Millisecond, rate)
	mixed := beep.Mix(newVolume(fund, 0.7), newVolume(over, 0.3))
	return newVolume(mixed, volume)
}

// Buzz is the low saw burst played on a hazard hit
func Buzz(volume float64, rate beep.SampleRate) beep.Streamer {
	d := parameter.HitBuzzDuration
	osc := NewOscillator(parameter.HitBuzzFrequency, d, WaveSaw, rate)
	return newVolume(NewEnvelope(osc, d, 10*time.Millisecond, 60*time.Millisecond, rate), volume)
}

// Sweep is the descending game over glide
func Sweep(volume float64, rate beep.SampleRate) beep.Streamer {
	d := parameter.GameOverSweepDuration
	osc := NewGlide(parameter.GameOverSweepFrom, parameter.GameOverSweepTo, d, WaveSquare, rate)
	return newVolume(NewEnvelope(osc, d, 10*time.Millisecond, 300*time.Millisecond, rate), volume*0.5)
}
