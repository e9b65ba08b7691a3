package simulation

import (
	"bytes"
	"context"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/vmsim/config"
	"github.com/sarchlab/vmsim/datarecording"
	"github.com/sarchlab/vmsim/mem/trace"
	"github.com/sarchlab/vmsim/mem/vm"
	"github.com/sarchlab/vmsim/mem/vm/replacement"
	"github.com/sarchlab/vmsim/monitoring"
	"github.com/sarchlab/vmsim/sim"
	"github.com/sarchlab/vmsim/tracing"
)

func paged(time uint64, pid vm.PID, seg vm.SegmentID, offset uint64) trace.Record {
	return trace.Record{
		Time:    time,
		PID:     pid,
		Mode:    vm.ModePaged,
		Segment: seg,
		Offset:  offset,
		Access:  vm.AccessRead,
	}
}

func detail(e sim.Event, key string) uint64 {
	v, ok := e.Uint(key)
	Expect(ok).To(BeTrue(), key)
	return v
}

var _ = Describe("Simulation", func() {
	var (
		spec   config.Spec
		logBuf *bytes.Buffer
		s      *Simulation
	)

	BeforeEach(func() {
		spec = config.Defaults()
		spec.FramesCount = 2
		spec.Policy = replacement.LRU
		spec.EventLog = ""
		logBuf = new(bytes.Buffer)
	})

	AfterEach(func() {
		if s != nil {
			Expect(s.Close()).To(Succeed())
			s = nil
		}
	})

	build := func(b Builder) *Simulation {
		built, err := b.Build()
		Expect(err).ToNot(HaveOccurred())
		return built
	}

	It("should reject invalid options", func() {
		spec.FramesCount = 0

		_, err := MakeBuilder().WithSpec(spec).Build()

		Expect(err).To(HaveOccurred())
	})

	It("should leave the TLB out when it has no entries", func() {
		spec.TLBEntries = 0

		s = build(MakeBuilder().WithSpec(spec))

		Expect(s.TLB()).To(BeNil())
		Expect(s.Components()).To(HaveLen(4))
	})

	It("should replay a trace in time order and summarize it", func() {
		s = build(MakeBuilder().WithSpec(spec).WithEventLogWriter(logBuf))

		records := []trace.Record{
			paged(4, 1, 0, 0),
			paged(1, 1, 0, 0),
			paged(2, 1, 0, 4096),
			paged(3, 1, 0, 8192),
			paged(5, 1, 7, 0),
		}

		summary, err := s.Run(context.Background(), records)

		Expect(err).ToNot(HaveOccurred())
		Expect(summary.Accesses).To(Equal(uint64(5)))
		Expect(summary.Faults).To(Equal(uint64(4)))
		Expect(summary.SegFaults).To(Equal(uint64(1)))
		Expect(summary.Evictions).To(Equal(uint64(2)))
		Expect(summary.Frames).To(Equal(2))

		seg, ok := s.Segmentation().Segment(1, DefaultSegment)
		Expect(ok).To(BeTrue())
		Expect(seg.Limit).To(Equal(spec.DefaultSegmentSize))

		Expect(s.Close()).To(Succeed())
		events, err := tracing.ReadJSONLines(logBuf)
		Expect(err).ToNot(HaveOccurred())

		last := events[len(events)-1]
		Expect(last.Type).To(Equal(vm.EventAnalyticsSummary))
		Expect(detail(last, "total_accesses")).To(Equal(uint64(5)))
		Expect(detail(last, "total_page_faults")).To(Equal(uint64(4)))
		Expect(detail(last, "frames")).To(Equal(uint64(2)))
		s = nil
	})

	It("should keep the event log in tick order", func() {
		s = build(MakeBuilder().WithSpec(spec))

		_, err := s.Run(context.Background(), []trace.Record{
			paged(1, 1, 0, 0),
			paged(2, 2, 0, 0),
			paged(3, 1, 0, 4096),
		})
		Expect(err).ToNot(HaveOccurred())

		events := s.Clock().Events()
		for i, e := range events {
			Expect(e.Time).To(Equal(sim.VTick(i + 1)))
		}
	})

	It("should stop when the context is cancelled", func() {
		s = build(MakeBuilder().WithSpec(spec))

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		summary, err := s.Run(ctx, []trace.Record{paged(1, 1, 0, 0)})

		Expect(err).To(MatchError(context.Canceled))
		Expect(summary.Accesses).To(BeZero())
	})

	It("should record the events into the database", func() {
		spec.RecordDB = filepath.Join(GinkgoT().TempDir(), "run")
		s = build(MakeBuilder().WithSpec(spec))

		_, err := s.Run(context.Background(), []trace.Record{
			paged(1, 1, 0, 0),
		})
		Expect(err).ToNot(HaveOccurred())
		Expect(s.Close()).To(Succeed())

		reader, err := datarecording.NewReader(spec.RecordDB)
		Expect(err).ToNot(HaveOccurred())
		defer reader.Close()

		reader.MapTable(tracing.EventTable, tracing.EventEntry{})
		results, total, err := reader.Query(context.Background(),
			tracing.EventTable,
			datarecording.QueryParams{
				Where: "Type = ?",
				Args:  []any{string(vm.EventPageFault)},
			})

		Expect(err).ToNot(HaveOccurred())
		Expect(total).To(Equal(1))
		Expect(results[0].(*tracing.EventEntry).PID).To(Equal(int64(1)))
		s = nil
	})

	It("should expose its components and progress through a monitor", func() {
		monitor := monitoring.NewMonitor()
		s = build(MakeBuilder().WithSpec(spec).WithMonitor(monitor))

		_, err := s.Run(context.Background(), []trace.Record{
			paged(1, 1, 0, 0),
		})

		Expect(err).ToNot(HaveOccurred())
		Expect(s.Components()).To(HaveLen(5))
	})
})
