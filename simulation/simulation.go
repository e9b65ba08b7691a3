// Package simulation assembles the engines of a run and replays traces
// through them.
package simulation

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/sarchlab/vmsim/config"
	"github.com/sarchlab/vmsim/datarecording"
	"github.com/sarchlab/vmsim/mem/trace"
	"github.com/sarchlab/vmsim/mem/vm"
	"github.com/sarchlab/vmsim/mem/vm/demand"
	"github.com/sarchlab/vmsim/mem/vm/mmu"
	"github.com/sarchlab/vmsim/mem/vm/paging"
	"github.com/sarchlab/vmsim/mem/vm/segmentation"
	"github.com/sarchlab/vmsim/mem/vm/tlb"
	"github.com/sarchlab/vmsim/monitoring"
	"github.com/sarchlab/vmsim/sim"
	"github.com/sarchlab/vmsim/tracing"
)

// DefaultSegment is the segment created for every process of a trace.
const DefaultSegment vm.SegmentID = 0

// A Summary counts what happened during a replay.
type Summary struct {
	Accesses   uint64
	Faults     uint64
	SegFaults  uint64
	TLBHits    uint64
	TLBMisses  uint64
	Evictions  uint64
	Writebacks uint64
	Frames     int
}

// A Simulation owns the clock, the event sinks, and the engines of a run.
type Simulation struct {
	id   string
	spec config.Spec

	clock    *sim.EventClock
	eventLog *tracing.JSONLinesWriter
	recorder datarecording.DataRecorder
	monitor  *monitoring.Monitor

	ownsRecorder bool

	segmentation *segmentation.Comp
	paging       *paging.Comp
	tlb          *tlb.Comp
	demand       *demand.Comp
	mmu          *mmu.Comp
}

// ID returns the unique ID of the run.
func (s *Simulation) ID() string {
	return s.id
}

// Spec returns the options of the run.
func (s *Simulation) Spec() config.Spec {
	return s.spec
}

// Clock returns the clock of the run.
func (s *Simulation) Clock() *sim.EventClock {
	return s.clock
}

// Segmentation returns the segmentation engine.
func (s *Simulation) Segmentation() *segmentation.Comp {
	return s.segmentation
}

// Paging returns the paging engine.
func (s *Simulation) Paging() *paging.Comp {
	return s.paging
}

// TLB returns the TLB, or nil if the run has none.
func (s *Simulation) TLB() *tlb.Comp {
	return s.tlb
}

// Demand returns the demand controller.
func (s *Simulation) Demand() *demand.Comp {
	return s.demand
}

// MMU returns the MMU.
func (s *Simulation) MMU() *mmu.Comp {
	return s.mmu
}

// DataRecorder returns the recorder of the run, or nil.
func (s *Simulation) DataRecorder() datarecording.DataRecorder {
	return s.recorder
}

// Components returns all the engines of the run.
func (s *Simulation) Components() []monitoring.Component {
	comps := []monitoring.Component{
		s.segmentation,
		s.paging,
		s.demand,
		s.mmu,
	}

	if s.tlb != nil {
		comps = append(comps, s.tlb)
	}

	return comps
}

// Run creates the default segment of every process of the records and
// replays the records in time order. Accesses that fault in segmentation are
// counted and skipped; any other error stops the replay.
func (s *Simulation) Run(
	ctx context.Context,
	records []trace.Record,
) (Summary, error) {
	for _, pid := range trace.PIDs(records) {
		_, err := s.segmentation.CreateSegment(
			pid, DefaultSegment, s.spec.DefaultSegmentSize)
		if err != nil && !errors.Is(err, vm.ErrSegmentExists) {
			return Summary{}, fmt.Errorf("creating segment of pid %d: %w",
				pid, err)
		}
	}

	ordered := make([]trace.Record, len(records))
	copy(ordered, records)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Time < ordered[j].Time
	})

	var bar *monitoring.ProgressBar
	if s.monitor != nil {
		bar = s.monitor.CreateProgressBar("Replay", uint64(len(ordered)))
		defer s.monitor.CompleteProgressBar(bar)
	}

	for _, r := range ordered {
		if err := ctx.Err(); err != nil {
			return s.summary(), err
		}

		if err := s.replay(ctx, r); err != nil {
			return s.summary(), err
		}

		if bar != nil {
			bar.IncrementFinished(1)
		}
	}

	summary := s.summary()
	s.clock.Emit(vm.AnalyticsSummaryEvent(
		summary.Accesses, summary.Faults, summary.Frames))

	return summary, nil
}

func (s *Simulation) replay(ctx context.Context, r trace.Record) error {
	_, err := s.mmu.Access(ctx, mmu.Request{
		PID:     r.PID,
		Segment: r.Segment,
		Offset:  r.Offset,
		Mode:    r.Mode,
		Access:  r.Access,
	})

	var trErr *vm.TranslationError
	if errors.As(err, &trErr) {
		return nil
	}

	if err != nil {
		return fmt.Errorf("replaying access at time %d: %w", r.Time, err)
	}

	return nil
}

func (s *Simulation) summary() Summary {
	mmuStats := s.mmu.Stats()
	pagingStats := s.paging.Stats()

	return Summary{
		Accesses:   mmuStats.Accesses,
		Faults:     mmuStats.Faults,
		SegFaults:  mmuStats.SegFaults,
		TLBHits:    mmuStats.TLBHits,
		TLBMisses:  mmuStats.TLBMisses,
		Evictions:  pagingStats.Evictions,
		Writebacks: pagingStats.Writebacks,
		Frames:     s.paging.FramesCount(),
	}
}

// Close ends the run. The sinks flush, and a recorder opened from the
// options is closed.
func (s *Simulation) Close() error {
	s.clock.Close()

	if s.ownsRecorder {
		return s.recorder.Close()
	}

	return nil
}
