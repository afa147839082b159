// Package fsm is a small hierarchical state machine whose graph is loaded from
// TOML and whose guards and actions are registered by name.
package fsm

import (
	"errors"

	"github.com/lixenwraith/pitch-fighter/event"
)

// StateID identifies a node in the graph
type StateID int

const (
	StateNone StateID = 0
	StateRoot StateID = 1
)

// Trigger name for transitions evaluated on every Update
const TickTrigger = "Tick"

var (
	ErrNoInitialState = errors.New("fsm: no initial state")
	ErrUnknownState   = errors.New("fsm: unknown state")
	ErrUnknownGuard   = errors.New("fsm: unknown guard")
	ErrUnknownAction  = errors.New("fsm: unknown action")
	ErrUnknownEvent   = errors.New("fsm: unknown event")
	ErrNotInitialized = errors.New("fsm: machine not initialized")
)

// Machine runs a state graph over a context of type T
// T is handed to every guard and action, the engine passes its session
type Machine[T any] struct {
	nodes     map[StateID]*Node[T]
	initialID StateID

	activeID     StateID
	activePath   []StateID
	ticksInState uint64

	guardReg  map[string]GuardFunc[T]
	actionReg map[string]ActionFunc[T]
}

// Node is one state with its lifecycle actions and outgoing transitions
type Node[T any] struct {
	ID       StateID
	Name     string
	ParentID StateID

	// Root to this node, used for LCA lookup
	Path []StateID

	OnEnter []Action[T]
	OnExit  []Action[T]

	// Evaluated in declaration order
	Transitions []Transition[T]
}

// Transition links a node to a target
type Transition[T any] struct {
	TargetID StateID
	Event    event.EventType // 0 = Tick
	Guard    GuardFunc[T]    // nil = always
}

// Action is a registered function with arguments compiled at load time
type Action[T any] struct {
	Name string
	Func ActionFunc[T]
	Args any
}

type GuardFunc[T any] func(ctx T) bool

type ActionFunc[T any] func(ctx T, args any)

// EmitEventArgs is the compiled argument of the EmitEvent action
type EmitEventArgs struct {
	Type event.EventType
}
