package capture

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/generators"
	"github.com/gopxl/beep/wav"
)

// Loader produces a fresh streamer and an optional release func for it
type Loader func() (beep.Streamer, func() error, error)

// StreamerSource pulls a fixed number of samples from a beep.Streamer per Latest call
// Playback advances with the tick rate rather than the wall clock
// Each Open after a Close starts a new stream from the loader
type StreamerSource struct {
	load       Loader
	sampleRate int
	perPull    int
	ring       *Ring

	mu       sync.Mutex
	streamer beep.Streamer
	closer   func() error
	open     bool
	ended    bool
	pull     [][2]float64
	mono     []float64
}

// NewStreamerSource wraps load; each Latest advances sampleRate/tickRate samples
func NewStreamerSource(load Loader, sampleRate, tickRate, ringSize int) *StreamerSource {
	per := max(sampleRate/max(tickRate, 1), 1)
	return &StreamerSource{
		load:       load,
		sampleRate: sampleRate,
		perPull:    per,
		ring:       NewRing(ringSize),
		pull:       make([][2]float64, per),
		mono:       make([]float64, per),
	}
}

// OpenWAV decodes a WAV file into a streamer source at the file's own rate
// The file is decoded up front and again on every reopen
func OpenWAV(path string, tickRate, ringSize int) (*StreamerSource, error) {
	s, format, err := decodeWAV(path)
	if err != nil {
		return nil, err
	}
	load := func() (beep.Streamer, func() error, error) {
		s, _, err := decodeWAV(path)
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	}

	src := NewStreamerSource(load, int(format.SampleRate), tickRate, ringSize)
	src.streamer = s
	src.closer = s.Close
	return src, nil
}

func decodeWAV(path string) (beep.StreamSeekCloser, beep.Format, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, beep.Format{}, fmt.Errorf("%w: %w", ErrCaptureUnavailable, err)
	}
	s, format, err := wav.Decode(f)
	if err != nil {
		_ = f.Close()
		return nil, beep.Format{}, fmt.Errorf("%w: decode %s: %w", ErrCaptureUnavailable, path, err)
	}
	return s, format, nil
}

// Tone is an endless sine source at freq scaled by amplitude
func Tone(freq, amplitude float64, sampleRate, tickRate, ringSize int) (*StreamerSource, error) {
	load := func() (beep.Streamer, func() error, error) {
		sine, err := generators.SineTone(beep.SampleRate(sampleRate), freq)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: tone %gHz: %w", ErrCaptureUnavailable, freq, err)
		}
		gain := &effects.Gain{Streamer: sine}
		if amplitude > 0 && amplitude != 1 {
			// Gain multiplies by 1+Gain
			gain.Gain = amplitude - 1
		}
		return gain, nil, nil
	}

	s, _, err := load()
	if err != nil {
		return nil, err
	}
	src := NewStreamerSource(load, sampleRate, tickRate, ringSize)
	src.streamer = s
	return src, nil
}

// Open starts pulling, loading a new stream if the previous one was closed
func (s *StreamerSource) Open(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrCaptureUnavailable, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.open {
		return nil
	}
	if s.streamer == nil {
		st, closer, err := s.load()
		if err != nil {
			return err
		}
		s.streamer = st
		s.closer = closer
		s.ring.Reset()
	}
	s.ended = false
	s.open = true
	return nil
}

// Latest streams one tick of audio, downmixes it to mono and returns the newest window
// A finished streamer reports ErrSourceClosed
func (s *StreamerSource) Latest(dst []float64) (int, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.open {
		return 0, s.sampleRate, ErrSourceClosed
	}
	if s.ended {
		return 0, s.sampleRate, fmt.Errorf("%w: stream ended", ErrSourceClosed)
	}

	n, ok := s.streamer.Stream(s.pull)
	for i := 0; i < n; i++ {
		s.mono[i] = (s.pull[i][0] + s.pull[i][1]) / 2
	}
	s.ring.Write(s.mono[:n])

	if !ok {
		s.ended = true
		if err := s.streamer.Err(); err != nil {
			return 0, s.sampleRate, fmt.Errorf("%w: %w", ErrSourceClosed, err)
		}
		if n == 0 {
			return 0, s.sampleRate, fmt.Errorf("%w: stream ended", ErrSourceClosed)
		}
	}
	return s.ring.Latest(dst), s.sampleRate, nil
}

// Close stops pulling and releases the current stream
func (s *StreamerSource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.open = false
	s.streamer = nil
	if s.closer != nil {
		err := s.closer()
		s.closer = nil
		return err
	}
	return nil
}
