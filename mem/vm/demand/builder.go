package demand

import (
	"time"

	"github.com/sarchlab/vmsim/sim"
)

// A Builder can build demand controllers.
type Builder struct {
	simulation *sim.EventClock
	engine     PageLoader
	spec       Spec
}

// MakeBuilder returns a Builder with the default spec.
func MakeBuilder() Builder {
	return Builder{spec: defaults()}
}

// WithSimulation sets the clock that the controller emits events through.
func (b Builder) WithSimulation(clock *sim.EventClock) Builder {
	b.simulation = clock
	return b
}

// WithPagingEngine sets the engine that performs the loads.
func (b Builder) WithPagingEngine(engine PageLoader) Builder {
	b.engine = engine
	return b
}

// WithSpec sets the spec.
func (b Builder) WithSpec(spec Spec) Builder {
	b.spec = spec
	return b
}

// WithDiskLatency sets the simulated disk latency.
func (b Builder) WithDiskLatency(d time.Duration) Builder {
	b.spec.DiskLatency = d
	return b
}

// Build creates the demand controller.
func (b Builder) Build(name string) *Comp {
	if err := b.spec.validate(); err != nil {
		panic(name + ": " + err.Error())
	}

	if b.simulation == nil {
		panic(name + ": simulation clock is required")
	}

	if b.engine == nil {
		panic(name + ": paging engine is required")
	}

	return &Comp{
		name:   name,
		clock:  b.simulation,
		engine: b.engine,
		spec:   b.spec,
	}
}
