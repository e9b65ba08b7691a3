package replacement

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/vmsim/mem/vm"
)

func fill(r Replacer, n int) {
	for i := 0; i < n; i++ {
		r.Add(vm.FrameID(i), vm.GlobalPageID(i+10))
	}
}

func victim(r Replacer) (vm.FrameID, vm.GlobalPageID) {
	f, p, err := r.PickVictim()
	Expect(err).NotTo(HaveOccurred())
	return f, p
}

var _ = Describe("Policy", func() {
	It("should parse policies", func() {
		p, err := ParsePolicy("clock")
		Expect(err).NotTo(HaveOccurred())
		Expect(p).To(Equal(Clock))

		_, err = ParsePolicy("MRU")
		Expect(err).To(HaveOccurred())
	})

	It("should build the replacer of each policy", func() {
		Expect(New(FIFO, 2)).To(BeAssignableToTypeOf(&FIFOReplacer{}))
		Expect(New(LRU, 2)).To(BeAssignableToTypeOf(&LRUReplacer{}))
		Expect(New(Clock, 2)).To(BeAssignableToTypeOf(&ClockReplacer{}))
		Expect(func() { New("MRU", 2) }).To(Panic())
	})

	DescribeTable("exhaustion",
		func(r Replacer) {
			_, _, err := r.PickVictim()
			Expect(err).To(MatchError(vm.ErrReplacerExhausted))
		},
		Entry("fifo", Replacer(NewFIFOReplacer())),
		Entry("lru", Replacer(NewLRUReplacer())),
		Entry("clock", Replacer(NewClockReplacer(3))),
	)
})

var _ = Describe("FIFOReplacer", func() {
	var r *FIFOReplacer

	BeforeEach(func() {
		r = NewFIFOReplacer()
		fill(r, 3)
	})

	It("should evict in insertion order and ignore touches", func() {
		r.Touch(0, 10)

		f, p := victim(r)
		Expect(f).To(Equal(vm.FrameID(0)))
		Expect(p).To(Equal(vm.GlobalPageID(10)))
	})

	It("should requeue a replaced frame at the back", func() {
		f, _ := victim(r)
		r.Replace(f, 20)

		f, _ = victim(r)
		Expect(f).To(Equal(vm.FrameID(1)))
		r.Replace(f, 21)

		f, _ = victim(r)
		Expect(f).To(Equal(vm.FrameID(2)))
		r.Replace(f, 22)

		f, p := victim(r)
		Expect(f).To(Equal(vm.FrameID(0)))
		Expect(p).To(Equal(vm.GlobalPageID(20)))
	})

	It("should remove frames", func() {
		r.Remove(0)

		Expect(r.Len()).To(Equal(2))
		f, _ := victim(r)
		Expect(f).To(Equal(vm.FrameID(1)))
	})
})

var _ = Describe("LRUReplacer", func() {
	var r *LRUReplacer

	BeforeEach(func() {
		r = NewLRUReplacer()
		fill(r, 3)
	})

	It("should evict the least recently used", func() {
		r.Touch(0, 10)

		f, p := victim(r)
		Expect(f).To(Equal(vm.FrameID(1)))
		Expect(p).To(Equal(vm.GlobalPageID(11)))
	})

	It("should make a replaced frame most recently used", func() {
		f, _ := victim(r)
		r.Replace(f, 30)
		r.Touch(1, 11)

		f, _ = victim(r)
		Expect(f).To(Equal(vm.FrameID(2)))
	})

	It("should ignore touches of untracked frames", func() {
		r.Touch(7, 1)

		Expect(r.Len()).To(Equal(3))
	})

	It("should remove frames", func() {
		r.Remove(0)
		r.Remove(0)

		Expect(r.Len()).To(Equal(2))
		f, _ := victim(r)
		Expect(f).To(Equal(vm.FrameID(1)))
	})
})

var _ = Describe("ClockReplacer", func() {
	var r *ClockReplacer

	BeforeEach(func() {
		r = NewClockReplacer(3)
		fill(r, 3)
	})

	It("should evict the frame under the hand after clearing all bits", func() {
		f, p := victim(r)

		Expect(f).To(Equal(vm.FrameID(0)))
		Expect(p).To(Equal(vm.GlobalPageID(10)))
		Expect(r.Hand()).To(Equal(vm.FrameID(1)))
	})

	It("should give touched frames a second chance", func() {
		f, _ := victim(r)
		r.Replace(f, 20)
		Expect(r.Hand()).To(Equal(vm.FrameID(1)))

		r.Touch(1, 11)
		// Bits: 0=1 (replaced), 1=1 (touched), 2=0 (cleared by the sweep).
		f, p := victim(r)
		Expect(f).To(Equal(vm.FrameID(2)))
		Expect(p).To(Equal(vm.GlobalPageID(12)))
	})

	It("should skip free slots", func() {
		r.Remove(0)
		Expect(r.Len()).To(Equal(2))

		f, _ := victim(r)
		Expect(f).To(Equal(vm.FrameID(1)))
	})

	It("should panic on frames out of range", func() {
		Expect(func() { r.Add(3, 1) }).To(Panic())
	})
})
