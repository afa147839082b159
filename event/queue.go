package event

import (
	"sync/atomic"

	"github.com/lixenwraith/pitch-fighter/parameter"
)

// EventQueue is a lock-free MPSC ring of game events
// Push may run on any goroutine, Consume only on the dispatching one
// A full ring overwrites its oldest events and counts them as dropped
type EventQueue struct {
	events    [parameter.EventQueueSize]GameEvent
	published [parameter.EventQueueSize]atomic.Bool
	head      atomic.Uint64
	tail      atomic.Uint64
	dropped   atomic.Uint64
}

func NewEventQueue() *EventQueue {
	return &EventQueue{}
}

// Push claims a slot by CAS on tail, then publishes it
func (eq *EventQueue) Push(ev GameEvent) {
	for {
		slot := eq.tail.Load()
		next := slot + 1
		if !eq.tail.CompareAndSwap(slot, next) {
			continue
		}

		idx := slot & parameter.EventBufferMask
		eq.events[idx] = ev
		eq.published[idx].Store(true) // after the write

		head := eq.head.Load()
		if next-head > parameter.EventQueueSize {
			oldest := next - parameter.EventQueueSize
			if eq.head.CompareAndSwap(head, oldest) {
				eq.dropped.Add(oldest - head)
			}
		}
		return
	}
}

// Consume returns the published events in FIFO order
// It stops at the first slot still being written, the rest arrive next call
func (eq *EventQueue) Consume() []GameEvent {
	for {
		head := eq.head.Load()
		tail := eq.tail.Load()
		if tail == head {
			return nil
		}

		n := tail - head
		if n > parameter.EventQueueSize {
			head = tail - parameter.EventQueueSize
			n = parameter.EventQueueSize
		}

		batch := make([]GameEvent, 0, n)
		for i := uint64(0); i < n; i++ {
			idx := (head + i) & parameter.EventBufferMask
			if !eq.published[idx].Load() {
				break
			}
			batch = append(batch, eq.events[idx])
			eq.published[idx].Store(false)
		}

		if eq.head.CompareAndSwap(head, head+uint64(len(batch))) {
			if len(batch) == 0 {
				return nil
			}
			return batch
		}
	}
}

// Len returns the approximate number of pending events
func (eq *EventQueue) Len() int {
	head, tail := eq.head.Load(), eq.tail.Load()
	if tail <= head {
		return 0
	}
	return int(min(tail-head, parameter.EventQueueSize))
}

// Dropped returns how many events were overwritten before being consumed
func (eq *EventQueue) Dropped() uint64 {
	return eq.dropped.Load()
}
