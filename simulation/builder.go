package simulation

import (
	"io"
	"log"

	"github.com/rs/xid"

	"github.com/sarchlab/vmsim/config"
	"github.com/sarchlab/vmsim/datarecording"
	"github.com/sarchlab/vmsim/mem/vm/demand"
	"github.com/sarchlab/vmsim/mem/vm/mmu"
	"github.com/sarchlab/vmsim/mem/vm/paging"
	"github.com/sarchlab/vmsim/mem/vm/segmentation"
	"github.com/sarchlab/vmsim/mem/vm/tlb"
	"github.com/sarchlab/vmsim/monitoring"
	"github.com/sarchlab/vmsim/sim"
	"github.com/sarchlab/vmsim/tracing"
)

// Builder can be used to build a simulation.
type Builder struct {
	spec           config.Spec
	logger         *log.Logger
	eventLogWriter io.Writer
	recorder       datarecording.DataRecorder
	monitor        *monitoring.Monitor
}

// MakeBuilder creates a new builder with the default options.
func MakeBuilder() Builder {
	return Builder{
		spec: config.Defaults(),
	}
}

// WithSpec sets the options of the run.
func (b Builder) WithSpec(spec config.Spec) Builder {
	b.spec = spec
	return b
}

// WithLogger prints every event to the logger.
func (b Builder) WithLogger(logger *log.Logger) Builder {
	b.logger = logger
	return b
}

// WithEventLogWriter writes the JSON-lines event log to w instead of the
// file named by the options.
func (b Builder) WithEventLogWriter(w io.Writer) Builder {
	b.eventLogWriter = w
	return b
}

// WithDataRecorder records the events with the given recorder instead of the
// database named by the options.
func (b Builder) WithDataRecorder(r datarecording.DataRecorder) Builder {
	b.recorder = r
	return b
}

// WithMonitor exposes the simulation through the monitor.
func (b Builder) WithMonitor(m *monitoring.Monitor) Builder {
	b.monitor = m
	return b
}

// Build builds the simulation. It fails if the options are invalid or if
// the event log cannot be created.
func (b Builder) Build() (*Simulation, error) {
	if err := b.spec.Validate(); err != nil {
		return nil, err
	}

	s := &Simulation{
		id:      xid.New().String(),
		spec:    b.spec,
		clock:   sim.NewEventClock(),
		monitor: b.monitor,
	}

	if err := b.attachSinks(s); err != nil {
		return nil, err
	}

	b.buildComponents(s)

	if s.monitor != nil {
		s.monitor.RegisterClock(s.clock)

		for _, c := range s.Components() {
			s.monitor.RegisterComponent(c)
		}
	}

	return s, nil
}

func (b Builder) attachSinks(s *Simulation) error {
	switch {
	case b.eventLogWriter != nil:
		s.eventLog = tracing.NewJSONLinesWriterTo(b.eventLogWriter)
	case b.spec.EventLog != "":
		w, err := tracing.NewJSONLinesWriter(b.spec.EventLog)
		if err != nil {
			return err
		}

		s.eventLog = w
	}

	if s.eventLog != nil {
		s.clock.AcceptHook(s.eventLog)
	}

	s.recorder = b.recorder
	if s.recorder == nil && b.spec.RecordDB != "" {
		s.recorder = datarecording.New(b.spec.RecordDB)
		s.ownsRecorder = true
	}

	if s.recorder != nil {
		s.clock.AcceptHook(tracing.NewDBRecorder(s.recorder))
	}

	if b.logger != nil {
		s.clock.AcceptHook(sim.NewEventLogger(b.logger))
	}

	return nil
}

func (b Builder) buildComponents(s *Simulation) {
	s.segmentation = segmentation.MakeBuilder().
		WithSimulation(s.clock).
		WithSpec(segmentation.Spec{
			AddressSpaceSize: b.spec.AddressSpaceSize,
			PageSize:         b.spec.PageSize,
			Strategy:         b.spec.AllocatorAlgo,
		}).
		Build("Segmentation")

	s.paging = paging.MakeBuilder().
		WithSimulation(s.clock).
		WithSpec(paging.Spec{
			FramesCount: b.spec.FramesCount,
			PageSize:    b.spec.PageSize,
			Policy:      b.spec.Policy,
		}).
		Build("Paging")

	s.demand = demand.MakeBuilder().
		WithSimulation(s.clock).
		WithPagingEngine(s.paging).
		WithDiskLatency(b.spec.DiskLatency).
		Build("Demand")

	mmuBuilder := mmu.MakeBuilder().
		WithSimulation(s.clock).
		WithSegmentation(s.segmentation).
		WithPagingEngine(s.paging).
		WithDemandController(s.demand)

	if b.spec.TLBEntries > 0 {
		s.tlb = tlb.MakeBuilder().
			WithSimulation(s.clock).
			WithNumEntries(b.spec.TLBEntries).
			Build("TLB")
		mmuBuilder = mmuBuilder.WithTLB(s.tlb)
	}

	s.mmu = mmuBuilder.Build("MMU")
}
