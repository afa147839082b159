package capture

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"strconv"
	"sync"
)

// ErrNoCaptureBackend means no recording tool was found on PATH
var ErrNoCaptureBackend = errors.New("no capture backend found")

// Backend is an external recorder writing raw unsigned 8-bit mono PCM to stdout
type Backend struct {
	Name string
	Path string
	Args []string
}

// lookPath is replaced in tests
var lookPath = exec.LookPath

// DetectBackend searches for a recording tool
// Priority: parec > pw-record > arecord > rec (sox)
func DetectBackend(sampleRate int) (*Backend, error) {
	rate := strconv.Itoa(sampleRate)

	candidates := []Backend{
		// PulseAudio, also served by pipewire-pulse
		{Name: "parec", Args: []string{
			"--raw", "--format=u8", "--rate=" + rate, "--channels=1", "--latency-msec=20",
		}},
		// PipeWire native
		{Name: "pw-record", Args: []string{
			"--format=u8", "--rate=" + rate, "--channels=1", "-",
		}},
		// ALSA
		{Name: "arecord", Args: []string{
			"-t", "raw", "-f", "U8", "-r", rate, "-c", "1", "-q",
		}},
		// SoX
		{Name: "rec", Args: []string{
			"-q", "-t", "raw", "-e", "unsigned-integer", "-b", "8", "-c", "1", "-r", rate, "-",
		}},
	}

	for _, c := range candidates {
		if path, err := lookPath(c.Name); err == nil {
			c.Path = path
			return &c, nil
		}
	}
	return nil, ErrNoCaptureBackend
}

// ProcessSource reads PCM from a recorder process
type ProcessSource struct {
	backend    *Backend
	sampleRate int
	ring       *Ring
	logger     *slog.Logger

	mu     sync.Mutex
	cmd  *exec.Cmd
	err  error
	open bool
	wg   sync.WaitGroup
}

// NewProcessSource creates a source for backend, nil detects one at Open
func NewProcessSource(backend *Backend, sampleRate, ringSize int, logger *slog.Logger) *ProcessSource {
	if logger == nil {
		logger = slog.Default()
	}
	return &ProcessSource{
		backend:    backend,
		sampleRate: sampleRate,
		ring:       NewRing(ringSize),
		logger:     logger,
	}
}

// Open starts the recorder and its reader goroutine
func (s *ProcessSource) Open(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrCaptureUnavailable, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.open {
		return nil
	}

	if s.backend == nil {
		b, err := DetectBackend(s.sampleRate)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrCaptureUnavailable, err)
		}
		s.backend = b
	}

	// Not bound to ctx, which only covers acquisition
	cmd := exec.Command(s.backend.Path, s.backend.Args...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("%w: %s stdout: %w", ErrCaptureUnavailable, s.backend.Name, err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("%w: start %s: %w", ErrCaptureUnavailable, s.backend.Name, err)
	}

	s.cmd = cmd
	s.err = nil
	s.open = true

	s.wg.Add(1)
	go s.readLoop(stdout)

	s.logger.Info("capture process started", "backend", s.backend.Name, "path", s.backend.Path)
	return nil
}

func (s *ProcessSource) readLoop(r io.Reader) {
	defer s.wg.Done()

	buf := make([]byte, 1024)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			s.ring.WriteU8(buf[:n])
		}
		if err != nil {
			s.mu.Lock()
			if s.open {
				s.err = fmt.Errorf("%w: %s: %w", ErrSourceClosed, s.backend.Name, err)
			}
			s.mu.Unlock()
			return
		}
	}
}

// Latest returns the newest samples, a dead recorder reports its read error
func (s *ProcessSource) Latest(dst []float64) (int, int, error) {
	s.mu.Lock()
	open, err := s.open, s.err
	s.mu.Unlock()

	if !open {
		return 0, s.sampleRate, ErrSourceClosed
	}
	if err != nil {
		return 0, s.sampleRate, err
	}
	return s.ring.Latest(dst), s.sampleRate, nil
}

// Close kills the recorder and waits for the reader to exit
func (s *ProcessSource) Close() error {
	s.mu.Lock()
	if !s.open {
		s.mu.Unlock()
		return nil
	}
	s.open = false
	cmd := s.cmd
	s.mu.Unlock()

	if cmd.Process != nil {
		_ = cmd.Process.Kill()
	}
	s.wg.Wait()
	_ = cmd.Wait()
	s.ring.Reset()
	return nil
}

// BackendName returns the active recorder, empty before Open
func (s *ProcessSource) BackendName() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.backend == nil {
		return ""
	}
	return s.backend.Name
}
