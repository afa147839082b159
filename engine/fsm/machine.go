package fsm

import (
	"fmt"

	"github.com/lixenwraith/pitch-fighter/event"
)

func NewMachine[T any]() *Machine[T] {
	return &Machine[T]{
		nodes:     make(map[StateID]*Node[T]),
		guardReg:  make(map[string]GuardFunc[T]),
		actionReg: make(map[string]ActionFunc[T]),
	}
}

// RegisterGuard makes a predicate available to LoadConfig
func (m *Machine[T]) RegisterGuard(name string, fn GuardFunc[T]) {
	m.guardReg[name] = fn
}

// RegisterAction makes a side effect available to LoadConfig
func (m *Machine[T]) RegisterAction(name string, fn ActionFunc[T]) {
	m.actionReg[name] = fn
}

// Init enters the initial state, running OnEnter from root down
func (m *Machine[T]) Init(ctx T) error {
	if m.initialID == StateNone {
		return ErrNoInitialState
	}
	node, ok := m.nodes[m.initialID]
	if !ok {
		return fmt.Errorf("initial state id %d: %w", m.initialID, ErrUnknownState)
	}
	if node.Path == nil {
		if err := m.CompilePaths(); err != nil {
			return err
		}
	}

	m.activeID = m.initialID
	m.ticksInState = 0
	m.activePath = append(m.activePath[:0], node.Path...)
	for _, id := range m.activePath {
		runActions(ctx, m.nodes[id].OnEnter)
	}
	return nil
}

// Update evaluates Tick transitions from the leaf upward
// Returns true when a transition fired
func (m *Machine[T]) Update(ctx T) bool {
	if m.activeID == StateNone {
		return false
	}
	m.ticksInState++
	return m.fire(ctx, 0)
}

// HandleEvent evaluates transitions triggered by et from the leaf upward
// Returns true when a transition fired
func (m *Machine[T]) HandleEvent(ctx T, et event.EventType) bool {
	if m.activeID == StateNone || et == 0 {
		return false
	}
	return m.fire(ctx, et)
}

func (m *Machine[T]) fire(ctx T, et event.EventType) bool {
	for curr := m.activeID; curr != StateNone; {
		node := m.nodes[curr]
		for _, t := range node.Transitions {
			if t.Event != et {
				continue
			}
			if t.Guard == nil || t.Guard(ctx) {
				m.transition(ctx, t.TargetID)
				return true
			}
		}
		curr = node.ParentID
	}
	return false
}

// transition exits up to the lowest common ancestor then enters down to target
func (m *Machine[T]) transition(ctx T, targetID StateID) {
	if m.activeID == targetID {
		return
	}
	target, ok := m.nodes[targetID]
	if !ok {
		panic(fmt.Sprintf("fsm: transition to unknown state id %d", targetID))
	}

	lca := -1
	for i := 0; i < len(m.activePath) && i < len(target.Path); i++ {
		if m.activePath[i] != target.Path[i] {
			break
		}
		lca = i
	}

	for i := len(m.activePath) - 1; i > lca; i-- {
		runActions(ctx, m.nodes[m.activePath[i]].OnExit)
	}

	// Active state moves before OnEnter so actions observe the new state
	m.activeID = targetID
	m.ticksInState = 0
	m.activePath = append(m.activePath[:0], target.Path...)

	for i := lca + 1; i < len(target.Path); i++ {
		runActions(ctx, m.nodes[target.Path[i]].OnEnter)
	}
}

// Reset exits every active state and re-enters the initial one
func (m *Machine[T]) Reset(ctx T) error {
	for i := len(m.activePath) - 1; i >= 0; i-- {
		runActions(ctx, m.nodes[m.activePath[i]].OnExit)
	}
	m.activeID = StateNone
	m.activePath = m.activePath[:0]
	return m.Init(ctx)
}

// Current returns the active leaf, StateNone before Init
func (m *Machine[T]) Current() StateID {
	return m.activeID
}

// CurrentState returns the active leaf name, empty before Init
func (m *Machine[T]) CurrentState() string {
	if node, ok := m.nodes[m.activeID]; ok {
		return node.Name
	}
	return ""
}

// InState reports whether name is the active leaf or one of its ancestors
func (m *Machine[T]) InState(name string) bool {
	for _, id := range m.activePath {
		if m.nodes[id].Name == name {
			return true
		}
	}
	return false
}

// TicksInState counts Update calls since the last transition
func (m *Machine[T]) TicksInState() uint64 {
	return m.ticksInState
}

func runActions[T any](ctx T, actions []Action[T]) {
	for _, a := range actions {
		a.Func(ctx, a.Args)
	}
}
