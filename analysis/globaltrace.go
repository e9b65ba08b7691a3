package analysis

import (
	"github.com/sarchlab/vmsim/mem/trace"
	"github.com/sarchlab/vmsim/mem/vm"
	"github.com/sarchlab/vmsim/mem/vm/segmentation"
	"github.com/sarchlab/vmsim/sim"
)

// BuildGlobalTrace maps the records to global pages. Every process gets
// segment 0 of segmentSize bytes, created in ascending pid order, and every
// record is translated in paged mode regardless of its own mode.
func BuildGlobalTrace(
	records []trace.Record,
	spec segmentation.Spec,
	segmentSize uint64,
) ([]vm.GlobalPageID, error) {
	engine := segmentation.MakeBuilder().
		WithSimulation(sim.NewDiscardingClock()).
		WithSpec(spec).
		Build("OfflineSegmentation")

	for _, pid := range trace.PIDs(records) {
		if _, err := engine.CreateSegment(pid, 0, segmentSize); err != nil {
			return nil, err
		}
	}

	pages := make([]vm.GlobalPageID, 0, len(records))
	for _, r := range records {
		tr, err := engine.Translate(r.PID, r.Segment, r.Offset, vm.ModePaged)
		if err != nil {
			return nil, err
		}

		pages = append(pages, tr.GlobalPage)
	}

	return pages, nil
}
