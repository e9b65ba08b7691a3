package tlb

import (
	"github.com/sarchlab/vmsim/mem/vm/tlb/internal"
	"github.com/sarchlab/vmsim/sim"
)

// A Builder can build TLBs.
type Builder struct {
	simulation *sim.EventClock
	spec       Spec
}

// MakeBuilder returns a Builder with the default spec.
func MakeBuilder() Builder {
	return Builder{spec: defaults()}
}

// WithSimulation sets the clock that the TLB emits events through.
func (b Builder) WithSimulation(clock *sim.EventClock) Builder {
	b.simulation = clock
	return b
}

// WithSpec sets the spec.
func (b Builder) WithSpec(spec Spec) Builder {
	b.spec = spec
	return b
}

// WithNumEntries sets the capacity of the TLB.
func (b Builder) WithNumEntries(n int) Builder {
	b.spec.NumEntries = n
	return b
}

// Build creates a TLB.
func (b Builder) Build(name string) *Comp {
	if err := b.spec.validate(); err != nil {
		panic(name + ": " + err.Error())
	}

	if b.simulation == nil {
		panic(name + ": simulation clock is required")
	}

	return &Comp{
		name:  name,
		clock: b.simulation,
		spec:  b.spec,
		set:   internal.NewSet(b.spec.NumEntries),
	}
}
