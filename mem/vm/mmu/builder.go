package mmu

import (
	"github.com/sarchlab/vmsim/mem/vm/demand"
	"github.com/sarchlab/vmsim/mem/vm/paging"
	"github.com/sarchlab/vmsim/mem/vm/segmentation"
	"github.com/sarchlab/vmsim/mem/vm/tlb"
	"github.com/sarchlab/vmsim/sim"
)

// A Builder can build MMUs.
type Builder struct {
	simulation   *sim.EventClock
	segmentation *segmentation.Comp
	pagingEngine *paging.Comp
	demand       *demand.Comp
	tlb          *tlb.Comp
}

// MakeBuilder creates a new builder.
func MakeBuilder() Builder {
	return Builder{}
}

// WithSimulation sets the clock that the MMU emits events through.
func (b Builder) WithSimulation(clock *sim.EventClock) Builder {
	b.simulation = clock
	return b
}

// WithSegmentation sets the engine that translates segment offsets.
func (b Builder) WithSegmentation(s *segmentation.Comp) Builder {
	b.segmentation = s
	return b
}

// WithPagingEngine sets the paging engine whose evictions invalidate the
// TLB.
func (b Builder) WithPagingEngine(e *paging.Comp) Builder {
	b.pagingEngine = e
	return b
}

// WithDemandController sets the controller that brings pages in.
func (b Builder) WithDemandController(d *demand.Comp) Builder {
	b.demand = d
	return b
}

// WithTLB sets the TLB. Without one, every paged access goes to the demand
// controller directly.
func (b Builder) WithTLB(t *tlb.Comp) Builder {
	b.tlb = t
	return b
}

// Build creates an MMU.
func (b Builder) Build(name string) *Comp {
	b.mustBeComplete(name)

	c := &Comp{
		name:         name,
		clock:        b.simulation,
		segmentation: b.segmentation,
		demand:       b.demand,
		tlb:          b.tlb,
	}

	if b.tlb != nil {
		b.pagingEngine.AcceptHook(&tlbInvalidator{tlb: b.tlb})
	}

	return c
}

func (b Builder) mustBeComplete(name string) {
	switch {
	case b.simulation == nil:
		panic(name + ": simulation clock is required")
	case b.segmentation == nil:
		panic(name + ": segmentation engine is required")
	case b.demand == nil:
		panic(name + ": demand controller is required")
	case b.tlb != nil && b.pagingEngine == nil:
		panic(name + ": a TLB needs the paging engine for invalidation")
	}
}
