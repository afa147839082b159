package capture

import (
	"context"
	"sync"
)

// Scripted replays a fixed frame sequence, one frame per Latest call
type Scripted struct {
	SampleRate int
	Frames     [][]float64

	// Loop restarts the sequence, otherwise an exhausted script yields EndErr or empty frames
	Loop   bool
	EndErr error

	// OpenErr is returned by every Open
	OpenErr error

	mu     sync.Mutex
	next   int
	open   bool
	opens  int
	closes int
}

// NewScripted creates a script of frames at sampleRate
func NewScripted(sampleRate int, frames ...[]float64) *Scripted {
	return &Scripted{SampleRate: sampleRate, Frames: frames}
}

// Repeat builds a script of n copies of frame
func Repeat(sampleRate int, frame []float64, n int) *Scripted {
	frames := make([][]float64, n)
	for i := range frames {
		frames[i] = frame
	}
	return NewScripted(sampleRate, frames...)
}

func (s *Scripted) Open(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.opens++
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.OpenErr != nil {
		return s.OpenErr
	}
	s.open = true
	return nil
}

func (s *Scripted) Latest(dst []float64) (int, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.open {
		return 0, s.SampleRate, ErrSourceClosed
	}
	if s.next >= len(s.Frames) {
		if !s.Loop || len(s.Frames) == 0 {
			return 0, s.SampleRate, s.EndErr
		}
		s.next = 0
	}

	frame := s.Frames[s.next]
	s.next++
	if len(frame) > len(dst) {
		frame = frame[len(frame)-len(dst):]
	}
	return copy(dst, frame), s.SampleRate, nil
}

func (s *Scripted) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.open {
		s.closes++
	}
	s.open = false
	return nil
}

// Counts returns how often the script was opened and closed
func (s *Scripted) Counts() (opens, closes int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.opens, s.closes
}
