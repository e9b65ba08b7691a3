package tracing

import (
	"encoding/json"

	"github.com/sarchlab/vmsim/datarecording"
	"github.com/sarchlab/vmsim/sim"
)

// EventTable is the table that a DBRecorder writes to.
const EventTable = "events"

// EventEntry is the row of an event. The fields shared by most event types
// get their own columns; the complete detail is kept as JSON.
type EventEntry struct {
	ID         string
	Time       uint64
	Type       string
	PID        int64
	GlobalPage int64
	Frame      int64
	Detail     string
}

// DBRecorder is a clock hook that records events into a DataRecorder.
type DBRecorder struct {
	recorder datarecording.DataRecorder
}

// NewDBRecorder creates the event table in the recorder.
func NewDBRecorder(recorder datarecording.DataRecorder) *DBRecorder {
	recorder.CreateTable(EventTable, EventEntry{})

	return &DBRecorder{recorder: recorder}
}

// Func records emitted events and flushes when the clock closes.
func (r *DBRecorder) Func(ctx sim.HookCtx) {
	switch ctx.Pos {
	case sim.HookPosEventEmitted:
		r.recorder.InsertData(EventTable, entryOf(ctx.Item.(sim.Event)))
	case sim.HookPosClockClose:
		r.recorder.Flush()
	}
}

// entryOf fills the shared columns, using -1 when the event lacks them.
func entryOf(evt sim.Event) EventEntry {
	detail, err := json.Marshal(evt.Detail)
	if err != nil {
		panic(err)
	}

	return EventEntry{
		ID:         evt.ID,
		Time:       uint64(evt.Time),
		Type:       string(evt.Type),
		PID:        column(evt, "pid"),
		GlobalPage: column(evt, "global_page", "page", "virtual_page"),
		Frame:      column(evt, "frame"),
		Detail:     string(detail),
	}
}

func column(evt sim.Event, keys ...string) int64 {
	for _, key := range keys {
		if v, ok := evt.Uint(key); ok {
			return int64(v)
		}
	}

	return -1
}
