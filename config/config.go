// Package config holds the options of a simulation run.
package config

import (
	"fmt"
	"time"

	"github.com/sarchlab/vmsim/mem/allocator"
	"github.com/sarchlab/vmsim/mem/vm/replacement"
)

// Spec is the full set of options of a run.
type Spec struct {
	FramesCount        int
	PageSize           uint64
	Policy             replacement.Policy
	AllocatorAlgo      allocator.Strategy
	AddressSpaceSize   uint64
	DefaultSegmentSize uint64
	DiskLatency        time.Duration
	TLBEntries         int

	// EventLog is the JSON-lines file that receives the events. Empty
	// disables it.
	EventLog string

	// RecordDB is the SQLite file that receives the events. Empty disables
	// it.
	RecordDB string
}

// Defaults returns the options used when nothing is configured.
func Defaults() Spec {
	return Spec{
		FramesCount:        4,
		PageSize:           4096,
		Policy:             replacement.LRU,
		AllocatorAlgo:      allocator.FirstFit,
		AddressSpaceSize:   1 << 20,
		DefaultSegmentSize: 32 * 1024,
		DiskLatency:        0,
		TLBEntries:         8,
		EventLog:           "events.log",
	}
}

// Validate checks that the options describe a runnable simulation.
func (s Spec) Validate() error {
	if s.FramesCount <= 0 {
		return fmt.Errorf("frames count must be > 0, got %d", s.FramesCount)
	}

	if s.PageSize == 0 || s.PageSize&(s.PageSize-1) != 0 {
		return fmt.Errorf("page size must be a power of 2, got %d", s.PageSize)
	}

	if _, err := replacement.ParsePolicy(string(s.Policy)); err != nil {
		return err
	}

	if _, err := allocator.ParseStrategy(string(s.AllocatorAlgo)); err != nil {
		return err
	}

	if s.AddressSpaceSize < s.PageSize {
		return fmt.Errorf("address space size %d is smaller than a page",
			s.AddressSpaceSize)
	}

	if s.DefaultSegmentSize == 0 || s.DefaultSegmentSize > s.AddressSpaceSize {
		return fmt.Errorf("default segment size %d does not fit the address space",
			s.DefaultSegmentSize)
	}

	if s.DiskLatency < 0 {
		return fmt.Errorf("disk latency must not be negative, got %s",
			s.DiskLatency)
	}

	if s.TLBEntries < 0 {
		return fmt.Errorf("TLB entries must not be negative, got %d",
			s.TLBEntries)
	}

	return nil
}
