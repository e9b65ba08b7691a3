package segmentation

import (
	"sync"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/vmsim/mem/vm"
)

var _ = Describe("Registry", func() {
	var r *Registry

	BeforeEach(func() {
		r = NewRegistry()
	})

	It("should hand out contiguous ids from 1", func() {
		Expect(r.Reserve(1, 0, 0)).To(Equal(vm.GlobalPageID(1)))
		Expect(r.Reserve(1, 0, 1)).To(Equal(vm.GlobalPageID(2)))
		Expect(r.Reserve(2, 0, 0)).To(Equal(vm.GlobalPageID(3)))
		Expect(r.Len()).To(Equal(3))
	})

	It("should be idempotent", func() {
		first := r.Reserve(4, 2, 7)
		r.Reserve(4, 2, 8)

		Expect(r.Reserve(4, 2, 7)).To(Equal(first))
		Expect(r.Len()).To(Equal(2))
	})

	It("should look up without reserving", func() {
		_, ok := r.Lookup(1, 1, 1)
		Expect(ok).To(BeFalse())
		Expect(r.Len()).To(Equal(0))

		id := r.Reserve(1, 1, 1)
		found, ok := r.Lookup(1, 1, 1)
		Expect(ok).To(BeTrue())
		Expect(found).To(Equal(id))
	})

	It("should not hand out duplicates under concurrency", func() {
		var wg sync.WaitGroup
		for g := 0; g < 8; g++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for p := uint64(0); p < 100; p++ {
					r.Reserve(1, 0, p)
				}
			}()
		}
		wg.Wait()

		seen := make(map[vm.GlobalPageID]bool)
		for p := uint64(0); p < 100; p++ {
			id, ok := r.Lookup(1, 0, p)
			Expect(ok).To(BeTrue())
			Expect(seen[id]).To(BeFalse())
			seen[id] = true
			Expect(id).To(BeNumerically(">=", 1))
			Expect(id).To(BeNumerically("<=", 100))
		}
	})
})
