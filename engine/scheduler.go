package engine

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/lixenwraith/pitch-fighter/parameter"
)

// ErrSchedulerStopped is returned by Do after Stop
var ErrSchedulerStopped = errors.New("scheduler stopped")

// Scheduler runs a tick function at a fixed rate with drift correction
// Commands submitted through Do run on the scheduler goroutine between ticks
type Scheduler struct {
	clock Clock
	tick  func()

	tickInterval     time.Duration
	nextTickDeadline time.Time
	tickCount        atomic.Uint64
	mu               sync.Mutex

	commands chan command
	stopChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
	running  atomic.Bool
}

type command struct {
	fn   func() error
	done chan error
}

// NewScheduler creates a scheduler calling tick tickRate times per second of clock time
func NewScheduler(tick func(), tickRate int, clock Clock) *Scheduler {
	if clock == nil {
		clock = NewTimeProvider()
	}
	if tickRate <= 0 {
		tickRate = parameter.TickRate
	}
	return &Scheduler{
		clock:        clock,
		tick:         tick,
		tickInterval: time.Second / time.Duration(tickRate),
		commands:     make(chan command, parameter.CommandQueueSize),
		stopChan:     make(chan struct{}),
	}
}

// Interval returns the tick interval
func (s *Scheduler) Interval() time.Duration {
	return s.tickInterval
}

// TickCount returns the number of ticks run
func (s *Scheduler) TickCount() uint64 {
	return s.tickCount.Load()
}

// Running reports whether the loop is active
func (s *Scheduler) Running() bool {
	return s.running.Load()
}

// Start begins the loop, later calls are no-ops
func (s *Scheduler) Start() {
	if s.running.CompareAndSwap(false, true) {
		s.wg.Add(1)
		Go(s.loop)
	}
}

// Stop halts the loop and waits for it to exit
// Pending commands fail with ErrSchedulerStopped
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopChan)
		if s.running.CompareAndSwap(true, false) {
			s.wg.Wait()
		}
		for {
			select {
			case c := <-s.commands:
				c.done <- ErrSchedulerStopped
			default:
				return
			}
		}
	})
}

// Do runs fn on the scheduler goroutine and returns its error
// Before Start fn runs on the caller's goroutine
func (s *Scheduler) Do(fn func() error) error {
	select {
	case <-s.stopChan:
		return ErrSchedulerStopped
	default:
	}
	if !s.running.Load() {
		return fn()
	}

	c := command{fn: fn, done: make(chan error, 1)}
	select {
	case s.commands <- c:
	case <-s.stopChan:
		return ErrSchedulerStopped
	}
	select {
	case err := <-c.done:
		return err
	case <-s.stopChan:
		// The loop may have taken the command just before stopping
		select {
		case err := <-c.done:
			return err
		default:
			return ErrSchedulerStopped
		}
	}
}

func (s *Scheduler) loop() {
	defer s.wg.Done()

	s.mu.Lock()
	s.nextTickDeadline = s.clock.Now().Add(s.tickInterval)
	s.mu.Unlock()

	timer := time.NewTimer(0)
	if !timer.Stop() {
		select {
		case <-timer.C:
		default:
		}
	}
	defer timer.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case c := <-s.commands:
			c.done <- c.fn()
			continue
		default:
		}

		now := s.clock.Now()
		s.mu.Lock()
		deadline := s.nextTickDeadline
		s.mu.Unlock()

		var sleep time.Duration
		if !now.Before(deadline) {
			s.tick()
			s.tickCount.Add(1)

			s.mu.Lock()
			s.nextTickDeadline = s.nextTickDeadline.Add(s.tickInterval)
			// Too far behind: resync instead of bursting
			if now.Sub(s.nextTickDeadline) > s.tickInterval*parameter.SchedulerMaxBehind {
				s.nextTickDeadline = now.Add(s.tickInterval)
			}
			deadline = s.nextTickDeadline
			s.mu.Unlock()

			sleep = deadline.Sub(s.clock.Now())
		} else {
			sleep = deadline.Sub(now)
		}

		if sleep <= 0 {
			continue
		}

		timer.Reset(sleep)
		select {
		case <-timer.C:
		case c := <-s.commands:
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			c.done <- c.fn()
		case <-s.stopChan:
			return
		}
	}
}
