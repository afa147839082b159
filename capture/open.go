package capture

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/lixenwraith/pitch-fighter/config"
	"github.com/lixenwraith/pitch-fighter/parameter"
)

// ToneAmplitude is the level of the synthetic tone backend
const ToneAmplitude = 0.5

// Fallback opens the first source in order that succeeds
type Fallback struct {
	sources []Source

	mu     sync.Mutex
	active Source
}

// NewFallback creates a source trying each of sources in order
func NewFallback(sources ...Source) *Fallback {
	return &Fallback{sources: sources}
}

func (f *Fallback) Open(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.active != nil {
		return nil
	}

	var errs []error
	for _, s := range f.sources {
		err := s.Open(ctx)
		if err == nil {
			f.active = s
			return nil
		}
		errs = append(errs, err)
		if ctx.Err() != nil {
			break
		}
	}

	err := errors.Join(errs...)
	if errors.Is(err, ErrCaptureDenied) {
		return err
	}
	if !errors.Is(err, ErrCaptureUnavailable) {
		err = fmt.Errorf("%w: %w", ErrCaptureUnavailable, err)
	}
	return err
}

func (f *Fallback) Latest(dst []float64) (int, int, error) {
	f.mu.Lock()
	active := f.active
	f.mu.Unlock()
	if active == nil {
		return 0, 0, ErrSourceClosed
	}
	return active.Latest(dst)
}

func (f *Fallback) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.active == nil {
		return nil
	}
	err := f.active.Close()
	f.active = nil
	return err
}

// Active returns the opened source, nil before Open
func (f *Fallback) Active() Source {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.active
}

// Open builds the source selected by audio.backend
// auto prefers the microphone device and falls back to a recorder process
func Open(cfg config.Config, logger *slog.Logger) (Source, error) {
	if logger == nil {
		logger = slog.Default()
	}
	a := cfg.Audio
	ringSize := max(a.SampleRate*parameter.CaptureRingSeconds, a.BufferSize)

	switch a.Backend {
	case config.BackendAuto:
		return NewFallback(
			NewDeviceSource(a.SampleRate, ringSize, logger),
			NewProcessSource(commandBackend(a.Command), a.SampleRate, ringSize, logger),
		), nil
	case config.BackendDevice:
		return NewDeviceSource(a.SampleRate, ringSize, logger), nil
	case config.BackendProcess:
		return NewProcessSource(commandBackend(a.Command), a.SampleRate, ringSize, logger), nil
	case config.BackendFile:
		src, err := OpenWAV(a.WAVPath, cfg.Game.TickRateHz, ringSize)
		if err != nil {
			return nil, err
		}
		return src, nil
	case config.BackendTone:
		src, err := Tone(a.ToneHz, ToneAmplitude, a.SampleRate, cfg.Game.TickRateHz, ringSize)
		if err != nil {
			return nil, err
		}
		return src, nil
	default:
		return nil, fmt.Errorf("%w: unknown backend %q", ErrCaptureUnavailable, a.Backend)
	}
}

// commandBackend turns an explicit recorder command line into a Backend, empty means detect
func commandBackend(command string) *Backend {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return nil
	}
	return &Backend{Name: fields[0], Path: fields[0], Args: fields[1:]}
}
