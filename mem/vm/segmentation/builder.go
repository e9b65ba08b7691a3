package segmentation

import (
	"github.com/sarchlab/vmsim/mem/allocator"
	"github.com/sarchlab/vmsim/sim"
)

// A Builder can build segmentation engines.
type Builder struct {
	simulation *sim.EventClock
	spec       Spec
}

// MakeBuilder returns a Builder with the default spec.
func MakeBuilder() Builder {
	return Builder{spec: defaults()}
}

// WithSimulation sets the clock that the engine emits events through.
func (b Builder) WithSimulation(clock *sim.EventClock) Builder {
	b.simulation = clock
	return b
}

// WithSpec sets the spec.
func (b Builder) WithSpec(spec Spec) Builder {
	b.spec = spec
	return b
}

// Build creates the segmentation engine.
func (b Builder) Build(name string) *Comp {
	if err := b.spec.validate(); err != nil {
		panic(name + ": " + err.Error())
	}

	if b.simulation == nil {
		panic(name + ": simulation clock is required")
	}

	return &Comp{
		name:      name,
		clock:     b.simulation,
		spec:      b.spec,
		allocator: allocator.New(b.spec.AddressSpaceSize),
		registry:  NewRegistry(),
		segments:  make(map[segmentKey]Segment),
	}
}
