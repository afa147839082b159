package fsm

// RootConfig is the top-level graph document
type RootConfig struct {
	InitialState string                  `toml:"initial"`
	States       map[string]*StateConfig `toml:"states"`
}

// StateConfig describes one state
type StateConfig struct {
	Parent      string             `toml:"parent"`
	OnEnter     []ActionConfig     `toml:"on_enter"`
	OnExit      []ActionConfig     `toml:"on_exit"`
	Transitions []TransitionConfig `toml:"transitions"`
}

// TransitionConfig describes one outgoing edge
type TransitionConfig struct {
	Trigger string `toml:"trigger"` // event name or "Tick"
	Target  string `toml:"target"`
	Guard   string `toml:"guard"`
}

// ActionConfig names a registered action
type ActionConfig struct {
	Action string `toml:"action"`
	Event  string `toml:"event"` // EmitEvent only
}
