package fsm

import (
	"errors"
	"reflect"
	"testing"

	"github.com/lixenwraith/pitch-fighter/event"
)

type testCtx struct {
	health int
	log    []string
	emits  []event.EventType
}

const testGraph = `
initial = "Booting"

[states.Booting]
on_enter = [{ action = "Log" }]
on_exit = [{ action = "Log" }]
transitions = [
  { trigger = "CaptureReady", target = "Playing" },
  { trigger = "CaptureUnavailable", target = "Playing" },
]

[states.Session]

[states.Playing]
parent = "Session"
on_enter = [{ action = "Log" }]
transitions = [{ trigger = "Tick", target = "GameOver", guard = "HealthDepleted" }]

[states.GameOver]
parent = "Session"
on_enter = [{ action = "Log" }, { action = "EmitEvent", event = "GameOver" }]
`

func newTestMachine(t *testing.T, graph string) (*Machine[*testCtx], error) {
	t.Helper()
	m := NewMachine[*testCtx]()
	m.RegisterGuard("HealthDepleted", func(c *testCtx) bool { return c.health <= 0 })
	m.RegisterAction("Log", func(c *testCtx, _ any) {
		c.log = append(c.log, m.CurrentState())
	})
	m.RegisterAction("EmitEvent", func(c *testCtx, args any) {
		c.emits = append(c.emits, args.(*EmitEventArgs).Type)
	})
	return m, m.LoadConfig([]byte(graph))
}

func TestMachineFlow(t *testing.T) {
	m, err := newTestMachine(t, testGraph)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	ctx := &testCtx{health: 100}

	if err := m.Init(ctx); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	if m.CurrentState() != "Booting" {
		t.Fatalf("Expected Booting, got %s", m.CurrentState())
	}

	// Tick does nothing in Booting
	if m.Update(ctx) {
		t.Error("Expected no tick transition from Booting")
	}

	if !m.HandleEvent(ctx, event.EventCaptureUnavailable) {
		t.Fatal("Expected CaptureUnavailable to fire")
	}
	if m.CurrentState() != "Playing" || !m.InState("Session") {
		t.Fatalf("Expected Playing inside Session, got %s", m.CurrentState())
	}

	for i := 0; i < 5; i++ {
		if m.Update(ctx) {
			t.Fatal("Expected no transition with health remaining")
		}
	}
	if m.TicksInState() != 5 {
		t.Errorf("Expected 5 ticks in state, got %d", m.TicksInState())
	}

	ctx.health = 0
	if !m.Update(ctx) {
		t.Fatal("Expected HealthDepleted transition")
	}
	if m.CurrentState() != "GameOver" {
		t.Fatalf("Expected GameOver, got %s", m.CurrentState())
	}

	// Terminal state ignores everything
	if m.Update(ctx) || m.HandleEvent(ctx, event.EventCaptureReady) {
		t.Error("Expected GameOver to have no outgoing transitions")
	}

	// Booting exit logs while still in Booting, Playing→GameOver shares the Session ancestor
	wantLog := []string{"Booting", "Booting", "Playing", "GameOver"}
	if !reflect.DeepEqual(ctx.log, wantLog) {
		t.Errorf("Expected log %v, got %v", wantLog, ctx.log)
	}
	if len(ctx.emits) != 1 || ctx.emits[0] != event.EventGameOver {
		t.Errorf("Expected exactly one GameOver emit, got %v", ctx.emits)
	}
}

func TestMachineReset(t *testing.T) {
	m, err := newTestMachine(t, testGraph)
	if err != nil {
		t.Fatal(err)
	}
	ctx := &testCtx{}
	if err := m.Init(ctx); err != nil {
		t.Fatal(err)
	}
	m.HandleEvent(ctx, event.EventCaptureReady)
	m.Update(ctx)
	if m.CurrentState() != "GameOver" {
		t.Fatalf("Expected GameOver, got %s", m.CurrentState())
	}

	if err := m.Reset(ctx); err != nil {
		t.Fatal(err)
	}
	if m.CurrentState() != "Booting" || m.TicksInState() != 0 {
		t.Errorf("Expected fresh Booting after Reset, got %s", m.CurrentState())
	}
}

func TestLoadConfigErrors(t *testing.T) {
	tests := []struct {
		name  string
		graph string
		want  error
	}{
		{"no initial", `[states.A]`, ErrNoInitialState},
		{"unknown initial", "initial = \"Nope\"\n[states.A]", ErrUnknownState},
		{"unknown parent", "initial = \"A\"\n[states.A]\nparent = \"Ghost\"", ErrUnknownState},
		{"unknown target", "initial = \"A\"\n[states.A]\ntransitions = [{ trigger = \"Tick\", target = \"B\" }]", ErrUnknownState},
		{"unknown trigger", "initial = \"A\"\n[states.A]\ntransitions = [{ trigger = \"Bogus\", target = \"A\" }]", ErrUnknownEvent},
		{"unknown guard", "initial = \"A\"\n[states.A]\ntransitions = [{ trigger = \"Tick\", target = \"A\", guard = \"Nope\" }]", ErrUnknownGuard},
		{"unknown action", "initial = \"A\"\n[states.A]\non_enter = [{ action = \"Nope\" }]", ErrUnknownAction},
		{"emit without event", "initial = \"A\"\n[states.A]\non_enter = [{ action = \"EmitEvent\" }]", ErrUnknownEvent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newTestMachine(t, tt.graph)
			if !errors.Is(err, tt.want) {
				t.Errorf("Expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestLoadConfigRejectsUnknownKeys(t *testing.T) {
	_, err := newTestMachine(t, "initial = \"A\"\n[states.A]\nonenter = []")
	if err == nil {
		t.Error("Expected error for misspelled key")
	}
}

func TestProgrammaticGraph(t *testing.T) {
	m := NewMachine[*testCtx]()
	m.AddState(StateRoot, "Root", StateNone)
	m.AddState(2, "A", StateRoot)
	m.AddState(3, "B", StateRoot)
	m.AddTransition(2, Transition[*testCtx]{TargetID: 3, Event: event.EventNoteChanged})
	m.SetInitial(2)

	ctx := &testCtx{}
	if err := m.Init(ctx); err != nil {
		t.Fatal(err)
	}
	if !m.HandleEvent(ctx, event.EventNoteChanged) || m.CurrentState() != "B" {
		t.Errorf("Expected transition to B, got %s", m.CurrentState())
	}
	if id, ok := m.GetStateID("B"); !ok || id != 3 {
		t.Errorf("Expected id 3 for B, got %d", id)
	}
}

func TestCompilePathsCycle(t *testing.T) {
	m := NewMachine[*testCtx]()
	m.AddState(2, "A", 3)
	m.AddState(3, "B", 2)
	if err := m.CompilePaths(); err == nil {
		t.Error("Expected cycle error")
	}
}
