// Package trace reads memory access traces.
//
// A trace is a CSV file whose header names the columns time, pid, mode,
// segment, segment_offset, and access_type. Columns may appear in any order
// and extra columns are ignored.
package trace

import (
	"sort"

	"github.com/sarchlab/vmsim/mem/vm"
)

// Column names of a trace file.
const (
	ColumnTime          = "time"
	ColumnPID           = "pid"
	ColumnMode          = "mode"
	ColumnSegment       = "segment"
	ColumnSegmentOffset = "segment_offset"
	ColumnAccessType    = "access_type"
)

// A Record is one access of a trace.
type Record struct {
	Time    uint64
	PID     vm.PID
	Mode    vm.TranslationMode
	Segment vm.SegmentID
	Offset  uint64
	Access  vm.AccessType
}

// PIDs returns the distinct processes of the records in ascending order.
func PIDs(records []Record) []vm.PID {
	seen := make(map[vm.PID]bool)
	pids := make([]vm.PID, 0)

	for _, r := range records {
		if !seen[r.PID] {
			seen[r.PID] = true
			pids = append(pids, r.PID)
		}
	}

	sort.Slice(pids, func(i, j int) bool { return pids[i] < pids[j] })

	return pids
}
