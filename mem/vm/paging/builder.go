package paging

import (
	"github.com/sarchlab/vmsim/mem/vm"
	"github.com/sarchlab/vmsim/mem/vm/physmem"
	"github.com/sarchlab/vmsim/mem/vm/replacement"
	"github.com/sarchlab/vmsim/sim"
)

// A Builder can build paging engines.
type Builder struct {
	simulation *sim.EventClock
	spec       Spec
	replacer   replacement.Replacer
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

// WithReplacer overrides the replacer that the policy would create.
func (b Builder) WithReplacer(r replacement.Replacer) Builder {
	b.replacer = r
	return b
}

// Build creates the paging engine.
func (b Builder) Build(name string) *Comp {
	if err := b.spec.validate(); err != nil {
		panic(name + ": " + err.Error())
	}

	if b.simulation == nil {
		panic(name + ": simulation clock is required")
	}

	physBuilder := physmem.MakeBuilder().
		WithSpec(physmem.Spec{
			FramesCount: b.spec.FramesCount,
			Policy:      b.spec.Policy,
		})
	if b.replacer != nil {
		physBuilder = physBuilder.WithReplacer(b.replacer)
	}

	return &Comp{
		name:      name,
		clock:     b.simulation,
		spec:      b.spec,
		pageTable: vm.NewPageTable(),
		physical:  physBuilder.Build(name + ".PhysicalMemory"),
		owners:    make(map[vm.GlobalPageID]vm.PID),
	}
}
