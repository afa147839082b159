// Package capture provides the audio sources the engine pulls frames from.
// Every source exposes the newest samples through a non-blocking Latest call;
// producers run on their own goroutine and write into a Ring.
package capture

import (
	"context"
	"errors"
)

var (
	// ErrCaptureUnavailable means no source could be opened
	ErrCaptureUnavailable = errors.New("audio capture unavailable")
	// ErrCaptureDenied means the platform refused microphone access
	ErrCaptureDenied = errors.New("audio capture denied")
	// ErrSourceClosed is returned by Latest after Close or once a finite source ends
	ErrSourceClosed = errors.New("audio source closed")
)

// Source is a pull-based audio input
type Source interface {
	// Open acquires the input, it is the only blocking call
	Open(ctx context.Context) error
	// Latest copies up to len(dst) of the newest samples into dst, oldest first
	// n == 0 means nothing new arrived since the previous call
	Latest(dst []float64) (n, sampleRate int, err error)
	// Close releases the input, safe to call more than once
	Close() error
}

// Frame is one tick's worth of normalized mono samples in [-1, 1]
// Samples alias the caller's buffer and are valid until the next read
type Frame struct {
	Samples    []float64
	SampleRate int
}

// Empty reports a tick without audio
func (f Frame) Empty() bool {
	return len(f.Samples) == 0
}

// ReadFrame pulls the newest samples from src into buf
func ReadFrame(src Source, buf []float64) (Frame, error) {
	n, sr, err := src.Latest(buf)
	if err != nil {
		return Frame{}, err
	}
	return Frame{Samples: buf[:n], SampleRate: sr}, nil
}

// NormalizeU8 converts unsigned 8-bit PCM to [-1, 1) and returns the count written
func NormalizeU8(dst []float64, src []byte) int {
	n := min(len(dst), len(src))
	for i := 0; i < n; i++ {
		dst[i] = (float64(src[i]) - 128) / 128
	}
	return n
}
