package event

import (
	"strings"
	"sync"
)

var (
	registryOnce sync.Once
	nameToType   map[string]EventType
	typeToName   map[EventType]string
)

func initRegistry() {
	nameToType = make(map[string]EventType)
	typeToName = make(map[EventType]string)

	register := func(name string, et EventType) {
		nameToType[name] = et
		typeToName[et] = name
	}

	register("CaptureReady", EventCaptureReady)
	register("CaptureUnavailable", EventCaptureUnavailable)
	register("CaptureFailed", EventCaptureFailed)
	register("InputDegraded", EventInputDegraded)
	register("StateChanged", EventStateChanged)
	register("ScoreUpdated", EventScoreUpdated)
	register("HealthChanged", EventHealthChanged)
	register("Collected", EventCollected)
	register("GameOver", EventGameOver)
	register("NoteChanged", EventNoteChanged)
	register("TuningChanged", EventTuningChanged)
}

// GetEventType resolves a trigger name, "Tick" maps to zero
func GetEventType(name string) (EventType, bool) {
	if strings.EqualFold(name, "Tick") {
		return 0, true
	}
	registryOnce.Do(initRegistry)
	et, ok := nameToType[name]
	return et, ok
}

// GetEventName returns the registered name of et
func GetEventName(et EventType) string {
	if et == 0 {
		return "Tick"
	}
	registryOnce.Do(initRegistry)
	if name, ok := typeToName[et]; ok {
		return name
	}
	return "Unknown"
}

func (et EventType) String() string {
	return GetEventName(et)
}
