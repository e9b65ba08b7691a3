package segmentation

import (
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/vmsim/mem/allocator"
	"github.com/sarchlab/vmsim/mem/vm"
	"github.com/sarchlab/vmsim/sim"
)

var _ = Describe("Segmentation engine", func() {
	var (
		clock  *sim.EventClock
		engine *Comp
	)

	BeforeEach(func() {
		clock = sim.NewEventClock()
		engine = MakeBuilder().
			WithSimulation(clock).
			WithSpec(Spec{
				AddressSpaceSize: 64 * 1024,
				PageSize:         4096,
				Strategy:         allocator.FirstFit,
			}).
			Build("Seg")
	})

	It("should reject bad specs", func() {
		Expect(func() {
			MakeBuilder().WithSimulation(clock).
				WithSpec(Spec{AddressSpaceSize: 1 << 20, PageSize: 3000,
					Strategy: allocator.FirstFit}).
				Build("Seg")
		}).To(Panic())
		Expect(func() {
			MakeBuilder().WithSimulation(clock).
				WithSpec(Spec{AddressSpaceSize: 1024, PageSize: 4096,
					Strategy: allocator.FirstFit}).
				Build("Seg")
		}).To(Panic())
		Expect(func() {
			MakeBuilder().WithSimulation(clock).
				WithSpec(Spec{AddressSpaceSize: 1 << 20, PageSize: 4096,
					Strategy: "next_fit"}).
				Build("Seg")
		}).To(Panic())
	})

	It("should round segments to pages and reserve their ids", func() {
		s, err := engine.CreateSegment(1, 0, 5000)

		Expect(err).NotTo(HaveOccurred())
		Expect(s).To(Equal(Segment{PID: 1, ID: 0, Base: 0, Limit: 8192}))
		Expect(engine.Registry().Len()).To(Equal(2))

		events := clock.Events()
		Expect(events).To(HaveLen(1))
		Expect(events[0].Type).To(Equal(vm.EventSegmentAlloc))
		Expect(events[0].Detail["allocator"]).To(Equal("first_fit"))
		limit, _ := events[0].Uint("limit")
		Expect(limit).To(Equal(uint64(8192)))
	})

	It("should place segments one after another", func() {
		engine.CreateSegment(1, 0, 4096)
		s, err := engine.CreateSegment(2, 0, 4096)

		Expect(err).NotTo(HaveOccurred())
		Expect(s.Base).To(Equal(uint64(4096)))

		page, ok := engine.Registry().Lookup(2, 0, 0)
		Expect(ok).To(BeTrue())
		Expect(page).To(Equal(vm.GlobalPageID(2)))
	})

	It("should refuse duplicates", func() {
		engine.CreateSegment(1, 0, 4096)

		_, err := engine.CreateSegment(1, 0, 4096)

		Expect(errors.Is(err, vm.ErrSegmentExists)).To(BeTrue())
		Expect(engine.Segments()).To(HaveLen(1))
	})

	It("should fail when nothing fits", func() {
		_, err := engine.CreateSegment(1, 0, 128*1024)
		Expect(errors.Is(err, vm.ErrAllocationFailed)).To(BeTrue())

		_, err = engine.CreateSegment(1, 1, 0)
		Expect(errors.Is(err, vm.ErrAllocationFailed)).To(BeTrue())

		Expect(clock.Events()).To(BeEmpty())
	})

	Context("when translating", func() {
		BeforeEach(func() {
			engine.CreateSegment(3, 0, 4096)
			engine.CreateSegment(1, 2, 8192)
		})

		It("should return base plus offset in flat mode", func() {
			tr, err := engine.Translate(1, 2, 100, vm.ModeFlat)

			Expect(err).NotTo(HaveOccurred())
			Expect(tr).To(Equal(Translation{Mode: vm.ModeFlat, PhysAddr: 4196}))

			last := clock.Events()[2]
			Expect(last.Type).To(Equal(vm.EventSegTranslate))
			Expect(last.Detail["status"]).To(Equal("ok"))
			phys, _ := last.Uint("phys_addr")
			Expect(phys).To(Equal(uint64(4196)))
		})

		It("should return the global page in paged mode", func() {
			tr, err := engine.Translate(1, 2, 4096+17, vm.ModePaged)

			Expect(err).NotTo(HaveOccurred())
			Expect(tr).To(Equal(Translation{
				Mode:       vm.ModePaged,
				GlobalPage: 3,
				PageOffset: 17,
			}))

			last := clock.Events()[2]
			page, _ := last.Uint("virtual_page")
			Expect(page).To(Equal(uint64(3)))
		})

		DescribeTable("failures",
			func(pid vm.PID, seg vm.SegmentID, offset uint64,
				mode vm.TranslationMode, want error,
			) {
				_, err := engine.Translate(pid, seg, offset, mode)

				Expect(errors.Is(err, want)).To(BeTrue())

				var terr *vm.TranslationError
				Expect(errors.As(err, &terr)).To(BeTrue())
				Expect(terr.PID).To(Equal(pid))
				Expect(terr.Segment).To(Equal(seg))
				Expect(terr.Offset).To(Equal(offset))

				events := clock.Events()
				Expect(events[len(events)-1].Type).To(Equal(vm.EventSegFault))
			},
			Entry("unknown segment", vm.PID(9), vm.SegmentID(0), uint64(0),
				vm.ModePaged, vm.ErrSegmentNotFound),
			Entry("offset at limit", vm.PID(1), vm.SegmentID(2), uint64(8192),
				vm.ModeFlat, vm.ErrOffsetOutOfBounds),
			Entry("unknown mode", vm.PID(3), vm.SegmentID(0), uint64(1),
				vm.TranslationMode("tlb-only"), vm.ErrUnknownTranslationMode),
		)
	})
})
