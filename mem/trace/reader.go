package trace

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/sarchlab/vmsim/mem/vm"
)

// ErrMissingColumn is returned when the header lacks a required column.
var ErrMissingColumn = errors.New("missing column")

var requiredColumns = []string{
	ColumnTime,
	ColumnPID,
	ColumnMode,
	ColumnSegment,
	ColumnSegmentOffset,
	ColumnAccessType,
}

// A Reader decodes records from a CSV stream.
type Reader struct {
	csv     *csv.Reader
	columns map[string]int
	line    int
}

// NewReader creates a Reader and consumes the header.
func NewReader(r io.Reader) (*Reader, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("reading trace header: %w", err)
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.ToLower(strings.TrimSpace(name))] = i
	}

	for _, name := range requiredColumns {
		if _, ok := columns[name]; !ok {
			return nil, fmt.Errorf("trace header: %w %q", ErrMissingColumn, name)
		}
	}

	return &Reader{csv: cr, columns: columns, line: 1}, nil
}

// Read returns the next record. It returns io.EOF after the last one.
func (r *Reader) Read() (Record, error) {
	fields, err := r.csv.Read()
	if err != nil {
		return Record{}, err
	}

	r.line++

	rec, err := r.parse(fields)
	if err != nil {
		return Record{}, fmt.Errorf("trace line %d: %w", r.line, err)
	}

	return rec, nil
}

func (r *Reader) field(fields []string, name string) (string, error) {
	i := r.columns[name]
	if i >= len(fields) {
		return "", fmt.Errorf("%w %q", ErrMissingColumn, name)
	}

	return strings.TrimSpace(fields[i]), nil
}

func (r *Reader) uintField(
	fields []string,
	name string,
	bits int,
) (uint64, error) {
	s, err := r.field(fields, name)
	if err != nil {
		return 0, err
	}

	v, err := strconv.ParseUint(s, 10, bits)
	if err != nil {
		return 0, fmt.Errorf("column %s: %w", name, err)
	}

	return v, nil
}

func (r *Reader) parse(fields []string) (Record, error) {
	var rec Record

	t, err := r.uintField(fields, ColumnTime, 64)
	if err != nil {
		return rec, err
	}

	pid, err := r.uintField(fields, ColumnPID, 32)
	if err != nil {
		return rec, err
	}

	seg, err := r.uintField(fields, ColumnSegment, 32)
	if err != nil {
		return rec, err
	}

	offset, err := r.uintField(fields, ColumnSegmentOffset, 64)
	if err != nil {
		return rec, err
	}

	modeField, err := r.field(fields, ColumnMode)
	if err != nil {
		return rec, err
	}

	mode, err := vm.ParseTranslationMode(modeField)
	if err != nil {
		return rec, err
	}

	accessField, err := r.field(fields, ColumnAccessType)
	if err != nil {
		return rec, err
	}

	access, err := vm.ParseAccessType(accessField)
	if err != nil {
		return rec, err
	}

	return Record{
		Time:    t,
		PID:     vm.PID(pid),
		Mode:    mode,
		Segment: vm.SegmentID(seg),
		Offset:  offset,
		Access:  access,
	}, nil
}

// ReadAll decodes every record of the stream.
func ReadAll(r io.Reader) ([]Record, error) {
	reader, err := NewReader(r)
	if err != nil {
		return nil, err
	}

	var records []Record
	for {
		rec, err := reader.Read()
		if errors.Is(err, io.EOF) {
			return records, nil
		}

		if err != nil {
			return nil, err
		}

		records = append(records, rec)
	}
}

// ReadFile decodes the trace file at path.
func ReadFile(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return ReadAll(f)
}
