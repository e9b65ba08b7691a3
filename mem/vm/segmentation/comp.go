// Package segmentation maps segment offsets to physical addresses or to
// global pages.
//
// Segments are carved out of a single address space by an allocator. Every
// page of a segment gets its global page ID when the segment is created, so
// the IDs only depend on the order of segment creation.
package segmentation

import (
	"fmt"
	"sort"
	"sync"

	"github.com/sarchlab/vmsim/mem/allocator"
	"github.com/sarchlab/vmsim/mem/vm"
	"github.com/sarchlab/vmsim/sim"
)

// A Segment is a contiguous range of the address space owned by a process.
type Segment struct {
	PID   vm.PID
	ID    vm.SegmentID
	Base  uint64
	Limit uint64
}

// A Translation is the result of a successful translation. PhysAddr is set
// in flat mode, GlobalPage and PageOffset in paged mode.
type Translation struct {
	Mode       vm.TranslationMode
	PhysAddr   uint64
	GlobalPage vm.GlobalPageID
	PageOffset uint64
}

type segmentKey struct {
	pid vm.PID
	seg vm.SegmentID
}

// Comp is a segmentation engine.
type Comp struct {
	sync.Mutex

	name      string
	clock     *sim.EventClock
	spec      Spec
	allocator *allocator.Allocator
	registry  *Registry
	segments  map[segmentKey]Segment
}

// Name returns the name of the engine.
func (c *Comp) Name() string {
	return c.name
}

// PageSize returns the page size that segments are rounded to.
func (c *Comp) PageSize() uint64 {
	return c.spec.PageSize
}

// Registry returns the global page registry of the engine.
func (c *Comp) Registry() *Registry {
	return c.registry
}

// CreateSegment allocates a segment of at least sizeBytes, rounded up to
// whole pages, and reserves the global page IDs of all its pages.
func (c *Comp) CreateSegment(
	pid vm.PID,
	seg vm.SegmentID,
	sizeBytes uint64,
) (Segment, error) {
	c.Lock()
	defer c.Unlock()

	key := segmentKey{pid: pid, seg: seg}
	if _, exists := c.segments[key]; exists {
		return Segment{}, fmt.Errorf("pid %d segment %d: %w",
			pid, seg, vm.ErrSegmentExists)
	}

	size := c.roundUp(sizeBytes)

	base, ok := c.allocator.Allocate(c.spec.Strategy, size)
	if !ok {
		return Segment{}, fmt.Errorf("pid %d segment %d of %d bytes: %w",
			pid, seg, size, vm.ErrAllocationFailed)
	}

	s := Segment{PID: pid, ID: seg, Base: base, Limit: size}
	c.segments[key] = s

	c.clock.Emit(vm.SegmentAllocEvent(pid, seg, base, size,
		string(c.spec.Strategy)))

	for page := uint64(0); page < size/c.spec.PageSize; page++ {
		c.registry.Reserve(pid, seg, page)
	}

	return s, nil
}

func (c *Comp) roundUp(size uint64) uint64 {
	return (size + c.spec.PageSize - 1) / c.spec.PageSize * c.spec.PageSize
}

// Translate maps an offset of a segment according to the mode. Failures emit
// seg_fault and return a *vm.TranslationError.
func (c *Comp) Translate(
	pid vm.PID,
	seg vm.SegmentID,
	offset uint64,
	mode vm.TranslationMode,
) (Translation, error) {
	c.Lock()
	defer c.Unlock()

	s, found := c.segments[segmentKey{pid: pid, seg: seg}]
	if !found {
		return Translation{}, c.fault(pid, seg, offset, vm.ErrSegmentNotFound)
	}

	if offset >= s.Limit {
		return Translation{}, c.fault(pid, seg, offset, vm.ErrOffsetOutOfBounds)
	}

	switch mode {
	case vm.ModeFlat:
		phys := s.Base + offset
		c.clock.Emit(vm.SegTranslateFlatEvent(pid, seg, offset, phys))

		return Translation{Mode: mode, PhysAddr: phys}, nil
	case vm.ModePaged:
		pageInSeg := offset / c.spec.PageSize
		pageOffset := offset % c.spec.PageSize

		page, ok := c.registry.Lookup(pid, seg, pageInSeg)
		if !ok {
			panic(fmt.Sprintf("page %d of pid %d segment %d is not reserved",
				pageInSeg, pid, seg))
		}

		c.clock.Emit(vm.SegTranslatePagedEvent(
			pid, seg, offset, page, pageOffset))

		return Translation{
			Mode:       mode,
			GlobalPage: page,
			PageOffset: pageOffset,
		}, nil
	default:
		return Translation{}, c.fault(pid, seg, offset,
			fmt.Errorf("%w %q", vm.ErrUnknownTranslationMode, mode))
	}
}

func (c *Comp) fault(
	pid vm.PID,
	seg vm.SegmentID,
	offset uint64,
	err error,
) error {
	c.clock.Emit(vm.SegFaultEvent(pid, seg, offset))

	return &vm.TranslationError{
		PID:     pid,
		Segment: seg,
		Offset:  offset,
		Err:     err,
	}
}

// Segment returns the segment of the process.
func (c *Comp) Segment(pid vm.PID, seg vm.SegmentID) (Segment, bool) {
	c.Lock()
	defer c.Unlock()

	s, ok := c.segments[segmentKey{pid: pid, seg: seg}]

	return s, ok
}

// Segments lists all segments ordered by pid and segment ID.
func (c *Comp) Segments() []Segment {
	c.Lock()
	defer c.Unlock()

	list := make([]Segment, 0, len(c.segments))
	for _, s := range c.segments {
		list = append(list, s)
	}

	sort.Slice(list, func(i, j int) bool {
		if list[i].PID != list[j].PID {
			return list[i].PID < list[j].PID
		}
		return list[i].ID < list[j].ID
	})

	return list
}

// State is a copy of the segment table and the free list.
type State struct {
	Name       string
	Segments   []Segment
	FreeBlocks []allocator.Block
}

// Snapshot copies the segment table and the free list.
func (c *Comp) Snapshot() any {
	return State{
		Name:       c.name,
		Segments:   c.Segments(),
		FreeBlocks: c.FreeBlocks(),
	}
}

// FreeBlocks exposes the free blocks of the address space.
func (c *Comp) FreeBlocks() []allocator.Block {
	return c.allocator.FreeBlocks()
}
