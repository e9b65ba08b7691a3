package sim

import (
	"sync"
	"sync/atomic"
)

// An EventClock owns the logical time of a run and the append-only event log.
//
// Every component receives the clock at construction and emits its events
// through it. Tick assignment, log append, and hook delivery happen under a
// single lock, so the order of the log is the order of the ticks. Hooks must
// not emit events themselves.
type EventClock struct {
	HookableBase

	lock        sync.Mutex
	now         atomic.Uint64
	log         []Event
	idGenerator IDGenerator
	keepLog     bool
	closed      bool
}

// NewEventClock creates a clock that starts at tick 0 and keeps the full
// event log in memory.
func NewEventClock() *EventClock {
	return &EventClock{
		idGenerator: NewSequentialIDGenerator(),
		keepLog:     true,
	}
}

// NewDiscardingClock creates a clock that still counts ticks and invokes its
// hooks but does not keep the log in memory. It serves offline runs that only
// care about counters.
func NewDiscardingClock() *EventClock {
	c := NewEventClock()
	c.keepLog = false
	return c
}

// WithIDGenerator replaces the generator that assigns event IDs.
func (c *EventClock) WithIDGenerator(g IDGenerator) *EventClock {
	c.idGenerator = g
	return c
}

// Now returns the tick of the latest emitted event.
func (c *EventClock) Now() VTick {
	return VTick(c.now.Load())
}

// Emit assigns the next tick to the event, appends it to the log, and
// notifies the hooks. A time already carried by the event is kept when it is
// after the current tick; an earlier one is replaced by the next tick. The
// stored event is returned.
func (c *EventClock) Emit(evt Event) Event {
	c.lock.Lock()
	defer c.lock.Unlock()

	if uint64(evt.Time) > c.now.Load() {
		c.now.Store(uint64(evt.Time))
	} else {
		evt.Time = VTick(c.now.Add(1))
	}

	if evt.ID == "" {
		evt.ID = c.idGenerator.Generate()
	}

	if c.keepLog {
		c.log = append(c.log, evt)
	}

	c.InvokeHook(HookCtx{
		Domain: c,
		Pos:    HookPosEventEmitted,
		Item:   evt,
	})

	return evt
}

// Events returns a copy of the log.
func (c *EventClock) Events() []Event {
	c.lock.Lock()
	defer c.lock.Unlock()

	events := make([]Event, len(c.log))
	copy(events, c.log)

	return events
}

// EventsSince returns a copy of the events whose time is after the given
// tick.
func (c *EventClock) EventsSince(t VTick) []Event {
	c.lock.Lock()
	defer c.lock.Unlock()

	var events []Event
	for _, e := range c.log {
		if e.Time > t {
			events = append(events, e)
		}
	}

	return events
}

// CountByType returns how many events of each type are in the log.
func (c *EventClock) CountByType() map[EventType]int {
	c.lock.Lock()
	defer c.lock.Unlock()

	counts := make(map[EventType]int)
	for _, e := range c.log {
		counts[e.Type]++
	}

	return counts
}

// Close notifies the hooks that the run has ended so that sinks can flush.
// Calling Close more than once has no effect.
func (c *EventClock) Close() {
	c.lock.Lock()
	defer c.lock.Unlock()

	if c.closed {
		return
	}

	c.closed = true
	c.InvokeHook(HookCtx{
		Domain: c,
		Pos:    HookPosClockClose,
	})
}
