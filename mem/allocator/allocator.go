// Package allocator manages a linear address space as a partition of free
// and allocated blocks.
package allocator

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Strategy selects which free block serves an allocation.
type Strategy string

// Placement strategies.
const (
	FirstFit Strategy = "first_fit"
	BestFit  Strategy = "best_fit"
	WorstFit Strategy = "worst_fit"
)

// ParseStrategy accepts the strategy names in either case.
func ParseStrategy(s string) (Strategy, error) {
	st := Strategy(strings.ToLower(strings.TrimSpace(s)))
	switch st {
	case FirstFit, BestFit, WorstFit:
		return st, nil
	}

	return "", fmt.Errorf("unknown allocator strategy %q", s)
}

// A Block is a contiguous range of the address space.
type Block struct {
	Base uint64
	Size uint64
}

// End returns the first address after the block.
func (b Block) End() uint64 {
	return b.Base + b.Size
}

// An Allocator hands out blocks of a fixed-size address space.
//
// The free list is kept sorted by base, and no two free blocks are ever
// adjacent, since Free coalesces.
type Allocator struct {
	sync.Mutex

	spaceSize uint64
	free      []Block
	allocated map[uint64]uint64
}

// New creates an allocator over [0, spaceSize).
func New(spaceSize uint64) *Allocator {
	a := &Allocator{
		spaceSize: spaceSize,
		allocated: make(map[uint64]uint64),
	}

	if spaceSize > 0 {
		a.free = []Block{{Base: 0, Size: spaceSize}}
	}

	return a
}

// SpaceSize returns the size of the managed address space.
func (a *Allocator) SpaceSize() uint64 {
	return a.spaceSize
}

// Allocate dispatches to the placement strategy.
func (a *Allocator) Allocate(s Strategy, size uint64) (uint64, bool) {
	switch s {
	case FirstFit:
		return a.FirstFit(size)
	case BestFit:
		return a.BestFit(size)
	case WorstFit:
		return a.WorstFit(size)
	}

	panic(fmt.Sprintf("unknown allocator strategy %q", s))
}

// FirstFit takes the lowest-based free block that is large enough.
func (a *Allocator) FirstFit(size uint64) (uint64, bool) {
	a.Lock()
	defer a.Unlock()

	if size == 0 {
		return 0, false
	}

	for i, b := range a.free {
		if b.Size >= size {
			return a.take(i, size), true
		}
	}

	return 0, false
}

// BestFit takes the smallest free block that is large enough. Equal sizes
// resolve to the lowest base.
func (a *Allocator) BestFit(size uint64) (uint64, bool) {
	a.Lock()
	defer a.Unlock()

	if size == 0 {
		return 0, false
	}

	best := -1
	for i, b := range a.free {
		if b.Size < size {
			continue
		}

		if best < 0 || b.Size < a.free[best].Size {
			best = i
		}
	}

	if best < 0 {
		return 0, false
	}

	return a.take(best, size), true
}

// WorstFit takes the largest free block that is large enough. Equal sizes
// resolve to the lowest base.
func (a *Allocator) WorstFit(size uint64) (uint64, bool) {
	a.Lock()
	defer a.Unlock()

	if size == 0 {
		return 0, false
	}

	worst := -1
	for i, b := range a.free {
		if b.Size < size {
			continue
		}

		if worst < 0 || b.Size > a.free[worst].Size {
			worst = i
		}
	}

	if worst < 0 {
		return 0, false
	}

	return a.take(worst, size), true
}

func (a *Allocator) take(i int, size uint64) uint64 {
	b := a.free[i]
	a.allocated[b.Base] = size

	if b.Size == size {
		a.free = append(a.free[:i], a.free[i+1:]...)
	} else {
		a.free[i] = Block{Base: b.Base + size, Size: b.Size - size}
	}

	return b.Base
}

// Free returns an allocated block to the free list and merges it with its
// free neighbors. It returns false if base is not the base of an allocated
// block.
func (a *Allocator) Free(base uint64) bool {
	a.Lock()
	defer a.Unlock()

	size, ok := a.allocated[base]
	if !ok {
		return false
	}

	delete(a.allocated, base)

	i := sort.Search(len(a.free), func(i int) bool {
		return a.free[i].Base > base
	})

	a.free = append(a.free, Block{})
	copy(a.free[i+1:], a.free[i:])
	a.free[i] = Block{Base: base, Size: size}

	if i+1 < len(a.free) && a.free[i].End() == a.free[i+1].Base {
		a.free[i].Size += a.free[i+1].Size
		a.free = append(a.free[:i+1], a.free[i+2:]...)
	}

	if i > 0 && a.free[i-1].End() == a.free[i].Base {
		a.free[i-1].Size += a.free[i].Size
		a.free = append(a.free[:i], a.free[i+1:]...)
	}

	return true
}

// FreeBlocks returns the free blocks sorted by base.
func (a *Allocator) FreeBlocks() []Block {
	a.Lock()
	defer a.Unlock()

	blocks := make([]Block, len(a.free))
	copy(blocks, a.free)

	return blocks
}

// AllocatedBlocks returns the allocated blocks sorted by base.
func (a *Allocator) AllocatedBlocks() []Block {
	a.Lock()
	defer a.Unlock()

	blocks := make([]Block, 0, len(a.allocated))
	for base, size := range a.allocated {
		blocks = append(blocks, Block{Base: base, Size: size})
	}

	sort.Slice(blocks, func(i, j int) bool {
		return blocks[i].Base < blocks[j].Base
	})

	return blocks
}
