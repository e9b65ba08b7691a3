package sim

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("IDGenerator", func() {
	It("should count from 1 when sequential", func() {
		g := NewSequentialIDGenerator()

		Expect(g.Generate()).To(Equal("1"))
		Expect(g.Generate()).To(Equal("2"))
	})

	It("should not repeat when parallel", func() {
		g := NewParallelIDGenerator()
		seen := make(map[string]bool)

		for i := 0; i < 100; i++ {
			id := g.Generate()
			Expect(seen).ToNot(HaveKey(id))
			seen[id] = true
		}
	})
})
