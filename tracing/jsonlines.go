// Package tracing provides hooks that persist the event log.
package tracing

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/tebeka/atexit"

	"github.com/sarchlab/vmsim/sim"
)

// JSONLinesWriter is a clock hook that writes every event as one JSON object
// per line.
type JSONLinesWriter struct {
	lock   sync.Mutex
	w      *bufio.Writer
	closer io.Closer
	closed bool
}

// NewJSONLinesWriter creates the file at path, replacing any previous log,
// and registers a flush at program exit.
func NewJSONLinesWriter(path string) (*JSONLinesWriter, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}

	fmt.Fprintf(os.Stderr, "Recording events in %s\n", path)

	t := &JSONLinesWriter{
		w:      bufio.NewWriter(f),
		closer: f,
	}

	atexit.Register(func() { t.Close() })

	return t, nil
}

// NewJSONLinesWriterTo writes to w. Closing the writer only flushes it.
func NewJSONLinesWriterTo(w io.Writer) *JSONLinesWriter {
	return &JSONLinesWriter{w: bufio.NewWriter(w)}
}

// Func writes emitted events and closes the writer when the clock closes.
func (t *JSONLinesWriter) Func(ctx sim.HookCtx) {
	switch ctx.Pos {
	case sim.HookPosEventEmitted:
		t.write(ctx.Item.(sim.Event))
	case sim.HookPosClockClose:
		if err := t.Close(); err != nil {
			panic(err)
		}
	}
}

func (t *JSONLinesWriter) write(evt sim.Event) {
	t.lock.Lock()
	defer t.lock.Unlock()

	if t.closed {
		return
	}

	b, err := json.Marshal(evt)
	if err != nil {
		panic(err)
	}

	b = append(b, '\n')

	_, err = t.w.Write(b)
	if err != nil {
		panic(err)
	}
}

// Flush writes the buffered lines.
func (t *JSONLinesWriter) Flush() error {
	t.lock.Lock()
	defer t.lock.Unlock()

	if t.closed {
		return nil
	}

	return t.w.Flush()
}

// Close flushes and closes the underlying file. Later events are dropped.
func (t *JSONLinesWriter) Close() error {
	t.lock.Lock()
	defer t.lock.Unlock()

	if t.closed {
		return nil
	}

	t.closed = true

	err := t.w.Flush()
	if t.closer != nil {
		err = errors.Join(err, t.closer.Close())
	}

	return err
}

// ReadJSONLines decodes an event log written by a JSONLinesWriter. Blank
// lines are skipped.
func ReadJSONLines(r io.Reader) ([]sim.Event, error) {
	var events []sim.Event

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	line := 0
	for scanner.Scan() {
		line++

		if len(scanner.Bytes()) == 0 {
			continue
		}

		var evt sim.Event
		if err := json.Unmarshal(scanner.Bytes(), &evt); err != nil {
			return nil, fmt.Errorf("event log line %d: %w", line, err)
		}

		events = append(events, evt)
	}

	return events, scanner.Err()
}

// ReadJSONLinesFile decodes the event log at path.
func ReadJSONLinesFile(path string) ([]sim.Event, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return ReadJSONLines(f)
}
