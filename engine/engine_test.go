package engine

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/lixenwraith/pitch-fighter/capture"
	"github.com/lixenwraith/pitch-fighter/components"
	"github.com/lixenwraith/pitch-fighter/config"
	"github.com/lixenwraith/pitch-fighter/event"
	"github.com/lixenwraith/pitch-fighter/note"
)

const testRate = 44100

func sine(freq, amp float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = amp * math.Sin(2*math.Pi*freq*float64(i)/testRate)
	}
	return out
}

// testConfig disables spawning and uses a responsive steering profile
func testConfig() config.Config {
	cfg := config.Default()
	cfg.Game.CollectibleChance = 0
	cfg.Game.HazardChance = 0
	cfg.Movement.Steer.MaxSpeed = 3000
	cfg.Movement.Steer.Scale = 125
	cfg.Movement.Steer.VelocityDamping = 0.7
	return cfg
}

func newTestEngine(t *testing.T, cfg config.Config, src capture.Source) *Engine {
	t.Helper()
	e, err := New(cfg, src, WithSeed(1))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return e
}

func loopSource(frame []float64) *capture.Scripted {
	s := capture.NewScripted(testRate, frame)
	s.Loop = true
	return s
}

func countEvents(events []event.GameEvent, t event.EventType) int {
	n := 0
	for _, ev := range events {
		if ev.Type == t {
			n++
		}
	}
	return n
}

func TestStartTransitionsToPlaying(t *testing.T) {
	e := newTestEngine(t, testConfig(), loopSource(make([]float64, 4096)))

	if snap := e.Snapshot(); snap.State != "" {
		t.Errorf("Expected no session before Start, got %s", snap.State)
	}
	e.Tick() // no session, no effect

	if err := e.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if snap := e.Snapshot(); snap.State != StatePlaying || !snap.Capturing {
		t.Fatalf("Expected Playing with capture, got %+v", snap)
	}

	events := e.Queue().Consume()
	if countEvents(events, event.EventCaptureReady) != 1 || countEvents(events, event.EventStateChanged) != 2 {
		t.Errorf("Expected CaptureReady and two state changes, got %v", events)
	}
	last := events[len(events)-1].Payload.(*event.StatePayload)
	if last.State != StatePlaying || last.Previous != StateBooting {
		t.Errorf("Unexpected state payload %+v", last)
	}
}

func TestCaptureUnavailableRunsIdle(t *testing.T) {
	src := capture.NewScripted(testRate)
	src.OpenErr = capture.ErrCaptureDenied
	e := newTestEngine(t, testConfig(), src)

	err := e.Start(context.Background())
	if !errors.Is(err, capture.ErrCaptureDenied) {
		t.Fatalf("Expected wrapped denial, got %v", err)
	}
	if snap := e.Snapshot(); snap.State != StatePlaying || snap.Capturing {
		t.Fatalf("Expected idle-only Playing, got %+v", snap)
	}

	events := e.Queue().Consume()
	if countEvents(events, event.EventCaptureFailed) != 1 || countEvents(events, event.EventCaptureUnavailable) != 1 {
		t.Errorf("Expected failure and unavailable events, got %v", events)
	}

	// Nil source behaves the same
	e = newTestEngine(t, testConfig(), nil)
	if err := e.Start(context.Background()); !errors.Is(err, capture.ErrCaptureUnavailable) {
		t.Errorf("Expected ErrCaptureUnavailable for nil source, got %v", err)
	}
}

// TestA4Convergence sings a steady A4 and expects the player inside tolerance of its row within ten ticks
func TestA4Convergence(t *testing.T) {
	cfg := testConfig()
	e := newTestEngine(t, cfg, loopSource(sine(440, 0.5, 4096)))
	if err := e.Start(context.Background()); err != nil {
		t.Fatal(err)
	}

	a4, ok := e.table.Lookup("A4")
	if !ok {
		t.Fatal("A4 missing from table")
	}
	target := e.mapper.Target(e.table, a4, true)
	wantTarget := cfg.Game.Margin + (1-33.0/35.0)*(cfg.Game.Height-2*cfg.Game.Margin)
	if math.Abs(target-wantTarget) > 1e-9 {
		t.Fatalf("Expected A4 row %f, got %f", wantTarget, target)
	}

	for i := 0; i < 10; i++ {
		e.Tick()
	}
	snap := e.Snapshot()
	if d := math.Abs(snap.Y - target); d > cfg.Movement.Steer.Tolerance {
		t.Fatalf("Expected y within %f of %f after 10 ticks, got %f", cfg.Movement.Steer.Tolerance, target, snap.Y)
	}

	for i := 0; i < 50; i++ {
		e.Tick()
		if d := math.Abs(e.Snapshot().Y - target); d > cfg.Movement.Steer.Tolerance {
			t.Fatalf("Player left the row at tick %d: y=%f", 11+i, e.Snapshot().Y)
		}
	}

	last, ok := e.detector.LastGood()
	if !ok || last.Name != "A4" {
		t.Errorf("Expected LastGood A4, got %v %v", last, ok)
	}

	events := e.Queue().Consume()
	if n := countEvents(events, event.EventNoteChanged); n != 1 {
		t.Errorf("Expected a single note change for a steady tone, got %d", n)
	}
	if e.Registry().Ints.Get("pitch.voiced").Load() != 60 {
		t.Errorf("Expected 60 voiced ticks, got %d", e.Registry().Ints.Get("pitch.voiced").Load())
	}
}

// TestSilenceHoldsMidpoint runs twenty silent ticks from the midpoint
func TestSilenceHoldsMidpoint(t *testing.T) {
	e := newTestEngine(t, testConfig(), loopSource(make([]float64, 4096)))
	if err := e.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	mid := e.mapper.Midpoint()

	for i := 0; i < 20; i++ {
		e.Tick()
	}
	snap := e.Snapshot()
	if snap.Y != mid || snap.VelocityY != 0 {
		t.Errorf("Expected rest at midpoint %f, got y=%f vy=%f", mid, snap.Y, snap.VelocityY)
	}
	if snap.State != StatePlaying || snap.Health != 100 {
		t.Errorf("Unexpected state after silence %+v", snap)
	}
	if _, ok := e.detector.LastGood(); ok {
		t.Error("Expected no LastGood after silence")
	}
}

// TestSilenceRecentersFromEdge drifts back toward the midpoint on unvoiced ticks
func TestSilenceRecentersFromEdge(t *testing.T) {
	e := newTestEngine(t, testConfig(), loopSource(make([]float64, 4096)))
	if err := e.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	e.session.Player.Y = 100
	mid := e.mapper.Midpoint()

	prev := math.Abs(mid - 100)
	for i := 0; i < 20; i++ {
		e.Tick()
		d := math.Abs(mid - e.Snapshot().Y)
		if d > prev {
			t.Fatalf("Distance to midpoint grew at tick %d: %f > %f", i+1, d, prev)
		}
		prev = d
	}
}

// TestShortNoiseFramesStayIdle loops a short noise frame and expects the player to rest at the midpoint
func TestShortNoiseFramesStayIdle(t *testing.T) {
	state := uint64(88172645463325252)
	frame := make([]float64, testRate/60)
	for i := range frame {
		state ^= state << 13
		state ^= state >> 7
		state ^= state << 17
		frame[i] = float64(state%2000)/2000 - 0.5
	}

	e := newTestEngine(t, testConfig(), loopSource(frame))
	if err := e.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	mid := e.mapper.Midpoint()

	for i := 0; i < 20; i++ {
		e.Tick()
	}
	if n := e.Registry().Ints.Get("pitch.voiced").Load(); n != 0 {
		t.Errorf("Expected no voiced ticks on noise, got %d", n)
	}
	if _, ok := e.detector.LastGood(); ok {
		t.Error("Expected no LastGood on noise")
	}
	if snap := e.Snapshot(); snap.Y != mid {
		t.Errorf("Expected rest at midpoint %f, got %f", mid, snap.Y)
	}
}

func placeAtPlayer(s *Session, kind components.Kind, value int, tag string) {
	o := s.Pool.Acquire(kind)
	o.X, o.Y, o.Value, o.PitchTag = s.Player.X, s.Player.Y, value, tag
}

// TestTwoHazardsSingleGameOver hits twice for 50 and expects one game over on the second tick
func TestTwoHazardsSingleGameOver(t *testing.T) {
	e := newTestEngine(t, testConfig(), loopSource(make([]float64, 4096)))
	if err := e.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	_ = e.Queue().Consume()
	s := e.session

	placeAtPlayer(s, components.KindHazard, 50, "")
	placeAtPlayer(s, components.KindCollectible, 1000, "A4")
	e.Tick()

	if s.Player.Health != 50 || s.Player.Score != 1000 || s.State() != StatePlaying {
		t.Fatalf("After first hit: health %d score %d state %s", s.Player.Health, s.Player.Score, s.State())
	}

	placeAtPlayer(s, components.KindHazard, 50, "")
	placeAtPlayer(s, components.KindCollectible, 1000, "C3")
	e.Tick()

	if s.State() != StateGameOver || s.Player.Health != 0 {
		t.Fatalf("Expected GameOver at zero health, got %s health %d", s.State(), s.Player.Health)
	}

	for i := 0; i < 10; i++ {
		e.Tick()
	}

	events := e.Queue().Consume()
	if n := countEvents(events, event.EventGameOver); n != 1 {
		t.Fatalf("Expected exactly one GameOver, got %d", n)
	}
	if n := countEvents(events, event.EventHealthChanged); n != 2 {
		t.Errorf("Expected two health changes, got %d", n)
	}

	var over *event.GameOverPayload
	var overTick uint64
	for _, ev := range events {
		if ev.Type == event.EventGameOver {
			over = ev.Payload.(*event.GameOverPayload)
			overTick = ev.Tick
		}
	}
	if overTick != 2 {
		t.Errorf("Expected GameOver on tick 2, got %d", overTick)
	}
	if over.FinalScore != 1000 || over.Health != 0 {
		t.Errorf("Expected final score 1000 at health 0, got %+v", over)
	}
	if over.Board["A4"] != 1000 || len(over.Board) != 1 {
		t.Errorf("Unexpected board %v", over.Board)
	}

	// Frozen: nothing spawns or moves
	if !s.Frozen() || s.Player.Score != 1000 {
		t.Error("Expected session frozen with score unchanged")
	}
}

func TestRestartAndExitGating(t *testing.T) {
	e := newTestEngine(t, testConfig(), loopSource(make([]float64, 4096)))

	if err := e.Restart(); !errors.Is(err, ErrNotGameOver) {
		t.Errorf("Expected ErrNotGameOver before start, got %v", err)
	}
	if err := e.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	if err := e.Restart(); !errors.Is(err, ErrNotGameOver) {
		t.Errorf("Expected ErrNotGameOver while playing, got %v", err)
	}
	if err := e.Exit(); !errors.Is(err, ErrNotGameOver) {
		t.Errorf("Expected ErrNotGameOver for Exit while playing, got %v", err)
	}

	first := e.session
	first.Player.Damage(100)
	e.Tick()
	if first.State() != StateGameOver {
		t.Fatalf("Expected GameOver, got %s", first.State())
	}

	if err := e.Restart(); err != nil {
		t.Fatalf("Restart failed: %v", err)
	}
	snap := e.Snapshot()
	if snap.Session != first.ID+1 || snap.State != StatePlaying || snap.Health != 100 || snap.Score != 0 || len(snap.Board) != 0 {
		t.Errorf("Expected a fresh playing session, got %+v", snap)
	}

	e.session.Player.Damage(100)
	e.Tick()
	if err := e.Exit(); err != nil {
		t.Fatalf("Exit failed: %v", err)
	}
	if !e.Exited() {
		t.Error("Expected engine exited")
	}
	for name, err := range map[string]error{
		"start":   e.Start(context.Background()),
		"stop":    e.Stop(),
		"tuning":  e.SetTuning(441),
		"restart": e.Restart(),
		"exit":    e.Exit(),
	} {
		if !errors.Is(err, ErrExited) {
			t.Errorf("%s: expected ErrExited, got %v", name, err)
		}
	}
}

func TestStopStartIdempotent(t *testing.T) {
	src := loopSource(sine(440, 0.5, 4096))
	e := newTestEngine(t, testConfig(), src)

	if err := e.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	if err := e.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	e.Tick()
	if _, ok := e.detector.LastGood(); !ok {
		t.Fatal("Expected a voiced reading before Stop")
	}
	before := e.table.Entries()

	if err := e.Stop(); err != nil {
		t.Fatal(err)
	}
	if err := e.Stop(); err != nil {
		t.Fatal(err)
	}
	if err := e.Start(context.Background()); err != nil {
		t.Fatal(err)
	}

	after := e.table.Entries()
	if len(before) != len(after) {
		t.Fatalf("Table length changed %d -> %d", len(before), len(after))
	}
	for i := range before {
		if before[i] != after[i] {
			t.Fatalf("Entry %d changed: %v -> %v", i, before[i], after[i])
		}
	}
	if _, ok := e.detector.LastGood(); ok {
		t.Error("Expected LastGood cleared after Stop/Start")
	}
	if opens, closes := src.Counts(); opens != 2 || closes != 1 {
		t.Errorf("Expected 2 opens and 1 close, got %d/%d", opens, closes)
	}
}

// gatedSource blocks Open until released or canceled
type gatedSource struct {
	*capture.Scripted
	entered chan struct{}
	release chan struct{}
}

func newGatedSource(frame []float64) *gatedSource {
	return &gatedSource{
		Scripted: loopSource(frame),
		entered:  make(chan struct{}, 4),
		release:  make(chan struct{}),
	}
}

func (g *gatedSource) Open(ctx context.Context) error {
	g.entered <- struct{}{}
	select {
	case <-g.release:
	case <-ctx.Done():
		return ctx.Err()
	}
	return g.Scripted.Open(ctx)
}

func startAsync(e *Engine) <-chan error {
	done := make(chan error, 1)
	go func() { done <- e.Start(context.Background()) }()
	return done
}

// TestConcurrentStartCoalesces issues a second Start while the first is opening
func TestConcurrentStartCoalesces(t *testing.T) {
	src := newGatedSource(sine(440, 0.5, 4096))
	e := newTestEngine(t, testConfig(), src)

	done := startAsync(e)
	<-src.entered

	if err := e.Start(context.Background()); err != nil {
		t.Fatalf("Expected overlapping Start to be a no-op, got %v", err)
	}
	close(src.release)
	if err := <-done; err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	if opens, _ := src.Counts(); opens != 1 {
		t.Errorf("Expected a single open, got %d", opens)
	}
	if n := countEvents(e.Queue().Consume(), event.EventCaptureReady); n != 1 {
		t.Errorf("Expected one CaptureReady, got %d", n)
	}
	if !e.Snapshot().Capturing {
		t.Error("Expected capture on")
	}
}

// TestStopCancelsPendingStart stops while the source is opening and expects capture to stay off
func TestStopCancelsPendingStart(t *testing.T) {
	src := newGatedSource(sine(440, 0.5, 4096))
	e := newTestEngine(t, testConfig(), src)

	done := startAsync(e)
	<-src.entered

	if err := e.Stop(); err != nil {
		t.Fatalf("Stop during open failed: %v", err)
	}
	if err := <-done; !errors.Is(err, ErrStartCanceled) {
		t.Fatalf("Expected ErrStartCanceled, got %v", err)
	}
	if e.Snapshot().Capturing {
		t.Error("Expected capture off after a canceled Start")
	}
	if n := countEvents(e.Queue().Consume(), event.EventCaptureReady); n != 0 {
		t.Errorf("Expected no CaptureReady, got %d", n)
	}

	// A later Start opens normally
	close(src.release)
	if err := e.Start(context.Background()); err != nil {
		t.Fatalf("Start after cancel failed: %v", err)
	}
	if snap := e.Snapshot(); !snap.Capturing || snap.State != StatePlaying {
		t.Errorf("Expected Playing with capture, got %+v", snap)
	}
}

// TestCloseCancelsPendingStart shuts down while the source is opening
func TestCloseCancelsPendingStart(t *testing.T) {
	src := newGatedSource(sine(440, 0.5, 4096))
	e := newTestEngine(t, testConfig(), src)

	done := startAsync(e)
	<-src.entered

	if err := e.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if err := <-done; !errors.Is(err, ErrExited) {
		t.Fatalf("Expected ErrExited, got %v", err)
	}
	if e.Snapshot().Capturing {
		t.Error("Expected capture off after Close")
	}
}

func TestSetTuning(t *testing.T) {
	e := newTestEngine(t, testConfig(), loopSource(make([]float64, 4096)))

	if err := e.SetTuning(450); !errors.Is(err, note.ErrInvalidTuning) {
		t.Errorf("Expected ErrInvalidTuning, got %v", err)
	}
	if e.Snapshot().Reference != 440 {
		t.Errorf("Expected previous tuning kept")
	}

	if err := e.SetTuning(432); err != nil {
		t.Fatal(err)
	}
	a4, _ := e.table.Lookup("A4")
	if a4.Frequency != 432 || e.detector.Table() != e.table {
		t.Errorf("Expected detector on the 432 table, A4=%f", a4.Frequency)
	}

	// Start keeps the active reference
	if err := e.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	if a4, _ := e.table.Lookup("A4"); a4.Frequency != 432 {
		t.Errorf("Expected Start to keep 432, got %f", a4.Frequency)
	}

	events := e.Queue().Consume()
	if countEvents(events, event.EventTuningChanged) != 1 {
		t.Error("Expected one tuning event")
	}
}

func TestInputDegradedOnce(t *testing.T) {
	src := capture.Repeat(testRate, sine(440, 0.5, 4096), 3)
	src.EndErr = capture.ErrSourceClosed
	e := newTestEngine(t, testConfig(), src)
	if err := e.Start(context.Background()); err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 10; i++ {
		e.Tick()
	}

	events := e.Queue().Consume()
	if n := countEvents(events, event.EventInputDegraded); n != 1 {
		t.Errorf("Expected a single degraded event, got %d", n)
	}
	if !e.Registry().Bools.Get("capture.degraded").Load() {
		t.Error("Expected degraded metric set")
	}
	if snap := e.Snapshot(); snap.State != StatePlaying {
		t.Errorf("Expected game to keep running, got %s", snap.State)
	}
}

func TestSpawningDeterministic(t *testing.T) {
	cfg := config.Default()
	run := func() (int, int) {
		e := newTestEngine(t, cfg, loopSource(make([]float64, 4096)))
		_ = e.Start(context.Background())
		for i := 0; i < 300; i++ {
			e.Tick()
		}
		snap := e.Snapshot()
		return snap.Collectibles, snap.Hazards
	}

	c1, h1 := run()
	c2, h2 := run()
	if c1 != c2 || h1 != h2 {
		t.Errorf("Expected identical runs, got %d/%d vs %d/%d", c1, h1, c2, h2)
	}
	if c1 == 0 || h1 == 0 {
		t.Errorf("Expected spawns over 300 ticks, got %d collectibles %d hazards", c1, h1)
	}
}

func TestNewRejectsInvalid(t *testing.T) {
	cfg := config.Default()
	cfg.Tuning.ReferenceHz = 500
	if _, err := New(cfg, nil); !errors.Is(err, note.ErrInvalidTuning) {
		t.Errorf("Expected invalid tuning, got %v", err)
	}

	if _, err := New(config.Default(), nil, WithGraph([]byte(`initial = "Nowhere"`))); err == nil {
		t.Error("Expected graph error")
	}
}
