package fsm

import (
	"fmt"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/lixenwraith/pitch-fighter/event"
)

// Action name with compiled event arguments
const emitEventAction = "EmitEvent"

// LoadConfig decodes a TOML graph and replaces the current one
// Every state, guard, action and event reference is resolved; unknown keys are rejected
func (m *Machine[T]) LoadConfig(data []byte) error {
	var cfg RootConfig
	md, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return fmt.Errorf("fsm: decode config: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return fmt.Errorf("fsm: unknown config keys: %s", strings.Join(keys, ", "))
	}
	if cfg.States == nil {
		cfg.States = make(map[string]*StateConfig)
	}

	m.nodes = make(map[StateID]*Node[T])
	m.activeID = StateNone
	m.activePath = m.activePath[:0]
	m.ticksInState = 0

	m.AddState(StateRoot, "Root", StateNone)
	nameToID := map[string]StateID{"Root": StateRoot}
	if _, ok := cfg.States["Root"]; !ok {
		cfg.States["Root"] = &StateConfig{}
	}

	// Sorted names give stable ids across loads
	names := make([]string, 0, len(cfg.States))
	for name := range cfg.States {
		if name != "Root" {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	for i, name := range names {
		nameToID[name] = StateID(i + 2)
	}

	for name, sc := range cfg.States {
		if sc == nil {
			sc = &StateConfig{}
		}
		id := nameToID[name]

		node := m.nodes[StateRoot]
		if id != StateRoot {
			parent := sc.Parent
			if parent == "" {
				parent = "Root"
			}
			parentID, ok := nameToID[parent]
			if !ok {
				return fmt.Errorf("state %q parent %q: %w", name, parent, ErrUnknownState)
			}
			node = m.AddState(id, name, parentID)
		}

		if node.OnEnter, err = m.compileActions(sc.OnEnter); err != nil {
			return fmt.Errorf("state %q on_enter: %w", name, err)
		}
		if node.OnExit, err = m.compileActions(sc.OnExit); err != nil {
			return fmt.Errorf("state %q on_exit: %w", name, err)
		}
		if err := m.compileTransitions(node, sc.Transitions, nameToID); err != nil {
			return fmt.Errorf("state %q: %w", name, err)
		}
	}

	if err := m.CompilePaths(); err != nil {
		return err
	}

	if cfg.InitialState == "" {
		return ErrNoInitialState
	}
	initialID, ok := nameToID[cfg.InitialState]
	if !ok {
		return fmt.Errorf("initial state %q: %w", cfg.InitialState, ErrUnknownState)
	}
	m.initialID = initialID
	return nil
}

func (m *Machine[T]) compileActions(configs []ActionConfig) ([]Action[T], error) {
	actions := make([]Action[T], 0, len(configs))
	for _, ac := range configs {
		fn, ok := m.actionReg[ac.Action]
		if !ok {
			return nil, fmt.Errorf("action %q: %w", ac.Action, ErrUnknownAction)
		}

		var args any
		if ac.Action == emitEventAction {
			et, ok := event.GetEventType(ac.Event)
			if !ok || et == 0 {
				return nil, fmt.Errorf("%s event %q: %w", emitEventAction, ac.Event, ErrUnknownEvent)
			}
			args = &EmitEventArgs{Type: et}
		}

		actions = append(actions, Action[T]{Name: ac.Action, Func: fn, Args: args})
	}
	return actions, nil
}

func (m *Machine[T]) compileTransitions(node *Node[T], configs []TransitionConfig, nameToID map[string]StateID) error {
	for _, tc := range configs {
		targetID, ok := nameToID[tc.Target]
		if !ok {
			return fmt.Errorf("transition target %q: %w", tc.Target, ErrUnknownState)
		}

		var et event.EventType
		if tc.Trigger != TickTrigger {
			et, ok = event.GetEventType(tc.Trigger)
			if !ok {
				return fmt.Errorf("transition trigger %q: %w", tc.Trigger, ErrUnknownEvent)
			}
		}

		var guard GuardFunc[T]
		if tc.Guard != "" {
			if guard, ok = m.guardReg[tc.Guard]; !ok {
				return fmt.Errorf("transition guard %q: %w", tc.Guard, ErrUnknownGuard)
			}
		}

		node.Transitions = append(node.Transitions, Transition[T]{
			TargetID: targetID,
			Event:    et,
			Guard:    guard,
		})
	}
	return nil
}

// GetStateID resolves a state name
func (m *Machine[T]) GetStateID(name string) (StateID, bool) {
	for id, node := range m.nodes {
		if node.Name == name {
			return id, true
		}
	}
	return StateNone, false
}
