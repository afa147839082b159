package capture

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/gen2brain/malgo"
)

// DeviceSource captures the default microphone through miniaudio
// Samples arrive as unsigned 8-bit mono and are normalized in the data callback
type DeviceSource struct {
	sampleRate int
	ring       *Ring
	logger     *slog.Logger

	mu      sync.Mutex
	mctx    *malgo.AllocatedContext
	device  *malgo.Device
	open    bool
	stopped atomic.Bool
}

// NewDeviceSource creates a microphone source retaining ringSize samples
func NewDeviceSource(sampleRate, ringSize int, logger *slog.Logger) *DeviceSource {
	if logger == nil {
		logger = slog.Default()
	}
	return &DeviceSource{
		sampleRate: sampleRate,
		ring:       NewRing(ringSize),
		logger:     logger,
	}
}

// Open initializes the backend context and starts the capture device
// Cancelling ctx abandons the attempt, a device that opens late is closed again
func (s *DeviceSource) Open(ctx context.Context) error {
	s.mu.Lock()
	if s.open {
		s.mu.Unlock()
		return nil
	}
	s.mu.Unlock()

	done := make(chan error, 1)
	go func() { done <- s.start() }()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		go func() {
			if err := <-done; err == nil {
				_ = s.Close()
			}
		}()
		return fmt.Errorf("%w: %w", ErrCaptureUnavailable, ctx.Err())
	}
}

func (s *DeviceSource) start() error {
	mctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, func(msg string) {
		s.logger.Debug("malgo", "msg", strings.TrimSpace(msg))
	})
	if err != nil {
		return fmt.Errorf("%w: init context: %w", ErrCaptureUnavailable, err)
	}

	cfg := malgo.DefaultDeviceConfig(malgo.Capture)
	cfg.Capture.Format = malgo.FormatU8
	cfg.Capture.Channels = 1
	cfg.SampleRate = uint32(s.sampleRate)

	callbacks := malgo.DeviceCallbacks{
		Data: func(_, input []byte, _ uint32) {
			s.ring.WriteU8(input)
		},
		Stop: func() {
			s.stopped.Store(true)
		},
	}

	device, err := malgo.InitDevice(mctx.Context, cfg, callbacks)
	if err != nil {
		_ = mctx.Uninit()
		mctx.Free()
		return classify(fmt.Errorf("init device: %w", err))
	}
	if err := device.Start(); err != nil {
		device.Uninit()
		_ = mctx.Uninit()
		mctx.Free()
		return classify(fmt.Errorf("start device: %w", err))
	}

	s.mu.Lock()
	s.mctx = mctx
	s.device = device
	s.open = true
	s.stopped.Store(false)
	s.mu.Unlock()

	s.logger.Info("capture device started", "sample_rate", s.sampleRate)
	return nil
}

// Latest returns the newest samples; a device stopped by the platform reports ErrSourceClosed
func (s *DeviceSource) Latest(dst []float64) (int, int, error) {
	s.mu.Lock()
	open := s.open
	s.mu.Unlock()

	if !open {
		return 0, s.sampleRate, ErrSourceClosed
	}
	if s.stopped.Load() {
		return 0, s.sampleRate, fmt.Errorf("%w: device stopped", ErrSourceClosed)
	}
	return s.ring.Latest(dst), s.sampleRate, nil
}

func (s *DeviceSource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.open {
		return nil
	}
	s.open = false

	// Uninit stops the device, the Stop callback no longer matters
	s.device.Uninit()
	err := s.mctx.Uninit()
	s.mctx.Free()
	s.device, s.mctx = nil, nil
	s.ring.Reset()
	return err
}

// classify maps platform refusals to ErrCaptureDenied, everything else to ErrCaptureUnavailable
func classify(err error) error {
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "denied") || strings.Contains(msg, "permission") {
		return fmt.Errorf("%w: %w", ErrCaptureDenied, err)
	}
	return fmt.Errorf("%w: %w", ErrCaptureUnavailable, err)
}
