package physmem

import (
	"github.com/sarchlab/vmsim/mem/vm"
	"github.com/sarchlab/vmsim/mem/vm/replacement"
)

// A Builder can build physical memories.
type Builder struct {
	spec     Spec
	replacer replacement.Replacer
}

// MakeBuilder returns a Builder with the default spec.
func MakeBuilder() Builder {
	return Builder{spec: defaults()}
}

// WithSpec sets the spec.
func (b Builder) WithSpec(spec Spec) Builder {
	b.spec = spec
	return b
}

// WithReplacer overrides the replacer that the policy in the spec would
// create.
func (b Builder) WithReplacer(r replacement.Replacer) Builder {
	b.replacer = r
	return b
}

// Build creates the physical memory.
func (b Builder) Build(name string) *Comp {
	if err := b.spec.validate(); err != nil {
		panic(name + ": " + err.Error())
	}

	c := &Comp{
		name:   name,
		frames: make([]vm.GlobalPageID, b.spec.FramesCount),
		owners: make(map[vm.GlobalPageID]vm.FrameID),
	}

	for i := 0; i < b.spec.FramesCount; i++ {
		c.freeList = append(c.freeList, vm.FrameID(i))
	}

	c.replacer = b.replacer
	if c.replacer == nil {
		c.replacer = replacement.New(b.spec.Policy, b.spec.FramesCount)
	}

	return c
}
