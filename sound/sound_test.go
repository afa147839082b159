package sound

import (
	"math"
	"testing"
	"time"

	"github.com/gopxl/beep"

	"github.com/lixenwraith/pitch-fighter/config"
	"github.com/lixenwraith/pitch-fighter/event"
	"github.com/lixenwraith/pitch-fighter/note"
	"github.com/lixenwraith/pitch-fighter/parameter"
)

// drain streams s to completion and returns the left channel
func drain(t *testing.T, s beep.Streamer) []float64 {
	t.Helper()
	var out []float64
	buf := make([][2]float64, 512)
	for i := 0; i < 1000; i++ {
		n, ok := s.Stream(buf)
		for _, v := range buf[:n] {
			out = append(out, v[0])
		}
		if !ok {
			return out
		}
	}
	t.Fatal("streamer did not terminate")
	return nil
}

func peak(samples []float64) float64 {
	p := 0.0
	for _, v := range samples {
		p = math.Max(p, math.Abs(v))
	}
	return p
}

func TestEffectLengths(t *testing.T) {
	tests := []struct {
		name     string
		streamer beep.Streamer
		duration time.Duration
	}{
		{"chime", Chime(440, 1, sampleRate), parameter.CollectChimeDuration},
		{"buzz", Buzz(1, sampleRate), parameter.HitBuzzDuration},
		{"sweep", Sweep(1, sampleRate), parameter.GameOverSweepDuration},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			samples := drain(t, tt.streamer)
			if want := sampleRate.N(tt.duration); len(samples) != want {
				t.Errorf("Expected %d samples, got %d", want, len(samples))
			}
			if p := peak(samples); p == 0 || p > 1.0001 {
				t.Errorf("Expected audible output within [-1, 1], peak %f", p)
			}
		})
	}
}

func TestEnvelopeEdges(t *testing.T) {
	d := 100 * time.Millisecond
	s := NewEnvelope(NewOscillator(0, d, WaveSquare, sampleRate), d, 10*time.Millisecond, 10*time.Millisecond, sampleRate)
	samples := drain(t, s)

	if samples[0] != 0 {
		t.Errorf("Expected silent first sample, got %f", samples[0])
	}
	if mid := samples[len(samples)/2]; mid != 1 {
		t.Errorf("Expected full level in sustain, got %f", mid)
	}
	if last := samples[len(samples)-1]; last <= 0 || last > 0.01 {
		t.Errorf("Expected release tail near zero, got %f", last)
	}
}

func TestGlideEndpoints(t *testing.T) {
	o := NewGlide(440, 55, time.Second, WaveSine, sampleRate).(*oscillator)
	if f := o.freqAt(0); f != 440 {
		t.Errorf("Expected start 440, got %f", f)
	}
	if f := o.freqAt(o.duration - 1); math.Abs(f-55) > 1e-9 {
		t.Errorf("Expected end 55, got %f", f)
	}
	if f := o.freqAt(o.duration / 2); f >= 440 || f <= 55 {
		t.Errorf("Expected midpoint between endpoints, got %f", f)
	}
}

func TestSilentVolume(t *testing.T) {
	if p := peak(drain(t, Buzz(0, sampleRate))); p != 0 {
		t.Errorf("Expected silence at zero volume, peak %f", p)
	}
}

func TestManagerUninitialized(t *testing.T) {
	m := NewManager(config.SoundConfig{Enabled: false, Volume: 0.5}, nil)
	if err := m.Init(); err != nil {
		t.Fatalf("Disabled Init should be a no-op, got %v", err)
	}

	m.HandleEvent(event.GameEvent{Type: event.EventGameOver})
	if m.Played() != 0 || m.Active() != 0 {
		t.Errorf("Expected nothing played without a speaker")
	}
	m.Close()
}

func TestManagerRouting(t *testing.T) {
	m := NewManager(config.SoundConfig{Enabled: true, Volume: 0.5}, nil)
	// Mixer without a speaker
	m.initialized = true

	a4 := note.Entry{Name: "A4", Frequency: 440, MIDI: 69}
	events := []event.GameEvent{
		{Type: event.EventCollected, Payload: &event.CollectPayload{Note: a4, Value: 1000}},
		{Type: event.EventCollected, Payload: &event.CollectPayload{}},
		{Type: event.EventHealthChanged, Payload: &event.HealthPayload{Health: 50, Damage: 50}},
		{Type: event.EventHealthChanged, Payload: &event.HealthPayload{Health: 50}},
		{Type: event.EventGameOver, Payload: &event.GameOverPayload{}},
		{Type: event.EventScoreUpdated},
	}

	q := event.NewEventQueue()
	r := event.NewRouter(q)
	r.Register(m)
	for _, ev := range events {
		q.Push(ev)
	}
	r.DispatchAll()

	if m.Played() != 3 || m.Active() != 3 {
		t.Errorf("Expected chime, buzz and sweep, got played=%d active=%d", m.Played(), m.Active())
	}

	m.Close()
	if m.Active() != 0 {
		t.Errorf("Expected mixer cleared, got %d", m.Active())
	}
}
