// Package status holds lock-free counters and gauges shared between the tick
// goroutine and the front end.
package status

import (
	"fmt"
	"strconv"
	"sync/atomic"
)

// Metric keys written by the engine
const (
	KeyTicks           = "engine.ticks"
	KeyVoiced          = "pitch.voiced"
	KeyUnvoiced        = "pitch.unvoiced"
	KeyFrequency       = "pitch.frequency"
	KeyNote            = "pitch.note"
	KeyCaptureDegraded = "capture.degraded"
	KeySpawned         = "game.spawned"
	KeyState           = "game.state"
	KeyEventsDropped   = "events.dropped"
)

// Registry groups metric maps by value type
type Registry struct {
	Bools   *MetricMap[atomic.Bool]
	Ints    *MetricMap[atomic.Int64]
	Floats  *MetricMap[AtomicFloat]
	Strings *MetricMap[AtomicString]
}

func NewRegistry() *Registry {
	return &Registry{
		Bools:   NewMetricMap[atomic.Bool](),
		Ints:    NewMetricMap[atomic.Int64](),
		Floats:  NewMetricMap[AtomicFloat](),
		Strings: NewMetricMap[AtomicString](),
	}
}

func (r *Registry) TotalCount() int {
	return r.Bools.Count() + r.Ints.Count() + r.Floats.Count() + r.Strings.Count()
}

// Snapshot formats every metric as text keyed by metric name
func (r *Registry) Snapshot() map[string]string {
	out := make(map[string]string, r.TotalCount())
	r.Bools.FormatInto(out, func(v *atomic.Bool) string { return strconv.FormatBool(v.Load()) })
	r.Ints.FormatInto(out, func(v *atomic.Int64) string { return strconv.FormatInt(v.Load(), 10) })
	r.Floats.FormatInto(out, func(v *AtomicFloat) string { return fmt.Sprintf("%.2f", v.Load()) })
	r.Strings.FormatInto(out, (*AtomicString).Load)
	return out
}
