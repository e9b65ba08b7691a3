package sim

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// VTick is the logical time of the simulation. Every emitted event consumes
// exactly one tick.
type VTick uint64

// EventType names the kind of an event, for example "page_fault".
type EventType string

// An Event is an immutable record in the event log.
//
// The JSON form is a single flat object that holds the time, the type, and
// all the detail fields. Consumers must tolerate event types they do not
// know.
type Event struct {
	ID     string
	Time   VTick
	Type   EventType
	Detail map[string]any
}

// NewEvent creates an event of the given type. The detail is given as
// alternating key and value arguments.
func NewEvent(t EventType, kv ...any) Event {
	if len(kv)%2 != 0 {
		panic("event detail must be given as key-value pairs")
	}

	evt := Event{
		Type:   t,
		Detail: make(map[string]any, len(kv)/2),
	}

	for i := 0; i < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			panic(fmt.Sprintf("event detail key %v is not a string", kv[i]))
		}

		evt.Detail[key] = kv[i+1]
	}

	return evt
}

// Get returns a detail field.
func (e Event) Get(key string) (any, bool) {
	v, ok := e.Detail[key]
	return v, ok
}

// Uint returns a numeric detail field as an uint64. Emitters store plain
// integer kinds, and decoded events hold int64 values.
func (e Event) Uint(key string) (uint64, bool) {
	v, ok := e.Detail[key]
	if !ok {
		return 0, false
	}

	return toUint64(v)
}

// MarshalJSON flattens the event into one object with sorted keys.
func (e Event) MarshalJSON() ([]byte, error) {
	m := make(map[string]any, len(e.Detail)+3)
	for k, v := range e.Detail {
		m[k] = v
	}

	m["time"] = uint64(e.Time)
	m["type"] = string(e.Type)

	if e.ID != "" {
		m["id"] = e.ID
	}

	return json.Marshal(m)
}

// UnmarshalJSON restores an event from its flat form. Fields other than id,
// time, and type are kept in the detail map as decoded by encoding/json.
func (e *Event) UnmarshalJSON(data []byte) error {
	m := make(map[string]any)

	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()

	err := decoder.Decode(&m)
	if err != nil {
		return err
	}

	*e = Event{Detail: make(map[string]any)}

	for k, v := range m {
		switch k {
		case "id":
			s, _ := v.(string)
			e.ID = s
		case "type":
			s, ok := v.(string)
			if !ok {
				return fmt.Errorf("event type %v is not a string", v)
			}
			e.Type = EventType(s)
		case "time":
			t, ok := toUint64(v)
			if !ok {
				return fmt.Errorf("event time %v is not a tick", v)
			}
			e.Time = VTick(t)
		default:
			e.Detail[k] = normalizeNumber(v)
		}
	}

	return nil
}

func normalizeNumber(v any) any {
	n, ok := v.(json.Number)
	if !ok {
		return v
	}

	if i, err := n.Int64(); err == nil {
		return i
	}

	if f, err := n.Float64(); err == nil {
		return f
	}

	return n.String()
}

func toUint64(v any) (uint64, bool) {
	switch n := v.(type) {
	case uint64:
		return n, true
	case uint32:
		return uint64(n), true
	case uint:
		return uint64(n), true
	case int:
		return uint64(n), n >= 0
	case int64:
		return uint64(n), n >= 0
	case int32:
		return uint64(n), n >= 0
	case float64:
		return uint64(n), n >= 0
	case json.Number:
		i, err := n.Int64()
		return uint64(i), err == nil && i >= 0
	}

	return 0, false
}
