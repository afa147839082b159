package event

// EventType represents the type of game event
// Zero is reserved for the state machine tick trigger
type EventType int

const (
	// === Capture Events ===

	// EventCaptureReady signals the audio source opened
	// Trigger: Engine.Start | Consumer: state machine | Payload: *CapturePayload
	EventCaptureReady EventType = iota + 1

	// EventCaptureUnavailable signals the source could not be opened, the session runs idle-only
	// Trigger: Engine.Start | Consumer: state machine, front end | Payload: *CapturePayload
	EventCaptureUnavailable

	// EventCaptureFailed reports a capture open error to the caller
	// Trigger: Engine.Start | Consumer: front end | Payload: *ErrorPayload
	EventCaptureFailed

	// EventInputDegraded fires once per session when the source fails mid-session
	// Trigger: Engine.Tick | Consumer: front end | Payload: *ErrorPayload
	EventInputDegraded

	// === Session Events ===

	// EventStateChanged fires on every state machine transition
	// Trigger: state machine OnEnter | Consumer: front end | Payload: *StatePayload
	EventStateChanged

	// EventScoreUpdated fires when a collectible is picked up
	// Trigger: collision | Consumer: front end | Payload: *ScorePayload
	EventScoreUpdated

	// EventHealthChanged fires when a hazard hits
	// Trigger: collision | Consumer: front end, sound | Payload: *HealthPayload
	EventHealthChanged

	// EventCollected fires per collected plasma with its note
	// Trigger: collision | Consumer: sound | Payload: *CollectPayload
	EventCollected

	// EventGameOver fires exactly once per session
	// Trigger: GameOver OnEnter | Consumer: front end, sound | Payload: *GameOverPayload
	EventGameOver

	// === Pitch Events ===

	// EventNoteChanged fires when the detected note or voicing changes
	// Trigger: Engine.Tick | Consumer: front end, MIDI echo | Payload: *NotePayload
	EventNoteChanged

	// EventTuningChanged fires after a successful retune
	// Trigger: Engine.SetTuning | Consumer: front end | Payload: *TuningPayload
	EventTuningChanged
)

// GameEvent is a queued event stamped with its session and tick
type GameEvent struct {
	Type    EventType
	Payload any
	Session uint64
	Tick    uint64
}
