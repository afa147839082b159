package parameter

import "time"

// Loop Timing
const (
	// FrameUpdateInterval is the front end redraw interval (~30 FPS, status text only)
	FrameUpdateInterval = 33 * time.Millisecond

	// SchedulerMaxBehind is how many tick intervals the scheduler may lag before resyncing its deadline
	SchedulerMaxBehind = 2

	// CommandQueueSize is the scheduler mailbox capacity
	CommandQueueSize = 32
)

// Event Queue
const (
	// EventQueueSize is the fixed capacity of the event ring buffer
	EventQueueSize = 1024

	// EventBufferMask is the bitmask for fast modulo operations (1024 - 1)
	EventBufferMask = 1023
)

// Logging
const (
	LogDir      = "logs"
	LogFileName = "pitch-fighter.log"

	// LogMaxSize triggers rotation of the debug log on startup
	LogMaxSize = 10 * 1024 * 1024
)
