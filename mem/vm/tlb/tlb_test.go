package tlb

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"

	"github.com/sarchlab/vmsim/mem/vm"
	"github.com/sarchlab/vmsim/sim"
)

var _ = Describe("TLB", func() {
	var (
		clock *sim.EventClock
		tlb   *Comp
	)

	BeforeEach(func() {
		clock = sim.NewEventClock()
		tlb = MakeBuilder().
			WithSimulation(clock).
			WithNumEntries(2).
			Build("TLB")
	})

	It("should panic on a bad spec", func() {
		Expect(func() {
			MakeBuilder().WithSimulation(clock).WithNumEntries(0).Build("TLB")
		}).To(Panic())
		Expect(func() { MakeBuilder().Build("TLB") }).To(Panic())
	})

	It("should miss on an empty TLB", func() {
		_, found := tlb.Lookup(1, 5)

		Expect(found).To(BeFalse())
		events := clock.Events()
		Expect(events).To(HaveLen(1))
		Expect(events[0].Type).To(Equal(vm.EventTLBMiss))
	})

	It("should evict the least recently used entry", func() {
		tlb.Insert(1, 5, 0)
		tlb.Insert(1, 6, 1)
		tlb.Insert(1, 7, 2)

		_, found := tlb.Lookup(1, 5)
		Expect(found).To(BeFalse())

		frame, found := tlb.Lookup(1, 6)
		Expect(found).To(BeTrue())
		Expect(frame).To(Equal(vm.FrameID(1)))

		frame, found = tlb.Lookup(1, 7)
		Expect(found).To(BeTrue())
		Expect(frame).To(Equal(vm.FrameID(2)))

		Expect(clock.CountByType()).To(Equal(map[sim.EventType]int{
			vm.EventTLBMiss: 1,
			vm.EventTLBHit:  2,
		}))
	})

	It("should refresh recency on lookup", func() {
		tlb.Insert(1, 5, 0)
		tlb.Insert(1, 6, 1)
		tlb.Lookup(1, 5)
		tlb.Insert(1, 7, 2)

		_, found := tlb.Lookup(1, 6)
		Expect(found).To(BeFalse())
		_, found = tlb.Lookup(1, 5)
		Expect(found).To(BeTrue())
	})

	It("should refresh a cached page on insert", func() {
		tlb.Insert(1, 5, 0)
		tlb.Insert(1, 6, 1)
		tlb.Insert(1, 5, 3)
		tlb.Insert(1, 7, 2)

		Expect(tlb.Len()).To(Equal(2))
		frame, found := tlb.Lookup(1, 5)
		Expect(found).To(BeTrue())
		Expect(frame).To(Equal(vm.FrameID(3)))
	})

	It("should invalidate and flush", func() {
		tlb.Insert(1, 5, 0)
		tlb.Insert(1, 6, 1)

		Expect(tlb.Invalidate(5)).To(BeTrue())
		Expect(tlb.Invalidate(5)).To(BeFalse())
		_, found := tlb.Lookup(1, 5)
		Expect(found).To(BeFalse())

		tlb.Flush()
		Expect(tlb.Len()).To(Equal(0))
	})

	Context("with a mocked set", func() {
		var (
			mockCtrl *gomock.Controller
			set      *MockSet
		)

		BeforeEach(func() {
			mockCtrl = gomock.NewController(GinkgoT())
			set = NewMockSet(mockCtrl)
			tlb.set = set
		})

		AfterEach(func() {
			mockCtrl.Finish()
		})

		It("should take the evicted way for a new page", func() {
			gomock.InOrder(
				set.EXPECT().Lookup(vm.GlobalPageID(9)).Return(0, vm.FrameID(0), false),
				set.EXPECT().Evict().Return(1, true),
				set.EXPECT().Update(1, vm.GlobalPageID(9), vm.FrameID(4)),
				set.EXPECT().Visit(1),
			)

			tlb.Insert(2, 9, 4)
		})

		It("should visit the way on a hit", func() {
			set.EXPECT().Lookup(vm.GlobalPageID(9)).Return(1, vm.FrameID(4), true)
			set.EXPECT().Visit(1)

			frame, found := tlb.Lookup(2, 9)

			Expect(found).To(BeTrue())
			Expect(frame).To(Equal(vm.FrameID(4)))
		})
	})
})
