// Package paging implements the page table and the page fault state machine.
//
// A page is either absent or present. A load of an absent page is a fault:
// a frame is allocated, evicting another page if memory is full, and the
// page becomes present. Pages cycle between the two states indefinitely.
package paging

import (
	"fmt"
	"sync"

	"github.com/sarchlab/vmsim/mem/vm"
	"github.com/sarchlab/vmsim/mem/vm/physmem"
	"github.com/sarchlab/vmsim/sim"
)

// HookPosPageEvicted triggers after a page loses its frame. The item is an
// EvictionInfo.
var HookPosPageEvicted = &sim.HookPos{Name: "PageEvicted"}

// LoadStatus tells whether a load request faulted.
type LoadStatus string

// Load statuses.
const (
	StatusOK     LoadStatus = "ok"
	StatusLoaded LoadStatus = "loaded"
)

// LoadResult is the outcome of a load request.
type LoadResult struct {
	Status   LoadStatus
	Frame    vm.FrameID
	Evicted  bool
	Eviction physmem.Eviction
}

// EvictionInfo is handed to the eviction hooks.
type EvictionInfo struct {
	PID       vm.PID
	Page      vm.GlobalPageID
	Frame     vm.FrameID
	WroteBack bool
}

// Stats counts what the engine has done.
type Stats struct {
	Accesses   uint64
	Hits       uint64
	Faults     uint64
	Evictions  uint64
	Writebacks uint64
}

// Comp owns the page table and the physical memory. One lock covers both,
// so a page never appears present while its frame belongs to another page.
type Comp struct {
	sync.Mutex
	sim.HookableBase

	name      string
	clock     *sim.EventClock
	spec      Spec
	pageTable vm.PageTable
	physical  *physmem.Comp
	owners    map[vm.GlobalPageID]vm.PID
	stats     Stats
}

// Name returns the name of the engine.
func (c *Comp) Name() string {
	return c.name
}

// Spec returns the spec the engine was built with.
func (c *Comp) Spec() Spec {
	return c.spec
}

// FramesCount returns the number of physical frames.
func (c *Comp) FramesCount() int {
	return c.spec.FramesCount
}

// HandlePageLoadRequest makes the page present for an access.
//
// A present page is touched, marked referenced, and marked dirty on a write;
// no event is emitted. An absent page faults: page_fault is emitted, a frame
// is allocated, a dirty victim produces page_out before it is cleared, and
// page_in is emitted once the page is present.
func (c *Comp) HandlePageLoadRequest(
	pid vm.PID,
	page vm.GlobalPageID,
	access vm.AccessType,
) (LoadResult, error) {
	c.Lock()
	defer c.Unlock()

	if page == vm.NoPage {
		return LoadResult{}, fmt.Errorf("%s: page 0 is not a valid page",
			c.name)
	}

	c.stats.Accesses++

	pte, _ := c.pageTable.Find(page)
	if pte.Present {
		c.physical.TouchFrame(pte.Frame, page)
		pte.Referenced = true
		pte.Dirty = pte.Dirty || access.IsWrite()
		c.pageTable.Update(page, pte)
		c.owners[page] = pid
		c.stats.Hits++

		return LoadResult{Status: StatusOK, Frame: pte.Frame}, nil
	}

	c.stats.Faults++
	c.clock.Emit(vm.PageFaultEvent(pid, page))

	eviction, evicted, err := c.physical.AllocateFrameFor(page)
	if err != nil {
		return LoadResult{}, fmt.Errorf("%s: loading page %d: %w",
			c.name, page, err)
	}

	if evicted {
		c.evict(eviction)
	}

	frame, err := c.physical.FrameFor(page)
	if err != nil {
		return LoadResult{}, fmt.Errorf("%s: loading page %d: %w",
			c.name, page, err)
	}

	c.pageTable.Update(page, vm.PTE{
		Present:    true,
		Frame:      frame,
		Referenced: true,
		Dirty:      access.IsWrite(),
	})
	c.owners[page] = pid
	c.clock.Emit(vm.PageInEvent(pid, page, frame))

	return LoadResult{
		Status:   StatusLoaded,
		Frame:    frame,
		Evicted:  evicted,
		Eviction: eviction,
	}, nil
}

func (c *Comp) evict(ev physmem.Eviction) {
	c.stats.Evictions++

	owner := c.owners[ev.Page]
	info := EvictionInfo{PID: owner, Page: ev.Page, Frame: ev.Frame}

	victim, found := c.pageTable.Find(ev.Page)
	if found {
		if victim.Dirty {
			c.clock.Emit(vm.PageOutEvent(owner, ev.Page, ev.Frame))
			c.stats.Writebacks++
			info.WroteBack = true
		}

		c.pageTable.Update(ev.Page, vm.PTE{
			Present:    false,
			Dirty:      false,
			Referenced: false,
		})
	}

	c.InvokeHook(sim.HookCtx{
		Domain: c,
		Pos:    HookPosPageEvicted,
		Item:   info,
	})
}

// IsPresent tells if the page currently holds a frame. It waits for any
// fault in progress, so a victim is never reported present once its frame
// has been handed over.
func (c *Comp) IsPresent(page vm.GlobalPageID) bool {
	c.Lock()
	defer c.Unlock()

	_, present := c.pageTable.Frame(page)

	return present
}

// Entry returns the page table entry of the page.
func (c *Comp) Entry(page vm.GlobalPageID) (vm.PTE, bool) {
	c.Lock()
	defer c.Unlock()

	return c.pageTable.Find(page)
}

// ResidentPages lists the present pages in ascending order.
func (c *Comp) ResidentPages() []vm.GlobalPageID {
	c.Lock()
	defer c.Unlock()

	return c.pageTable.Present()
}

// Stats returns a snapshot of the counters.
func (c *Comp) Stats() Stats {
	c.Lock()
	defer c.Unlock()

	return c.stats
}

// State is a copy of the engine state.
type State struct {
	Name     string
	Frames   int
	Resident map[vm.GlobalPageID]vm.FrameID
	Owners   map[vm.GlobalPageID]vm.PID
	Stats    Stats
}

// Snapshot copies the engine state under its lock.
func (c *Comp) Snapshot() any {
	c.Lock()
	defer c.Unlock()

	s := State{
		Name:     c.name,
		Frames:   c.spec.FramesCount,
		Resident: make(map[vm.GlobalPageID]vm.FrameID),
		Owners:   make(map[vm.GlobalPageID]vm.PID, len(c.owners)),
		Stats:    c.stats,
	}

	for _, page := range c.pageTable.Present() {
		s.Resident[page], _ = c.pageTable.Frame(page)
	}

	for page, pid := range c.owners {
		s.Owners[page] = pid
	}

	return s
}

// CheckInvariants verifies that no more pages are present than there are
// frames and that the page table and the frame table agree in both
// directions.
func (c *Comp) CheckInvariants() error {
	c.Lock()
	defer c.Unlock()

	present := c.pageTable.Present()
	if len(present) > c.spec.FramesCount {
		return fmt.Errorf("%d pages present with %d frames",
			len(present), c.spec.FramesCount)
	}

	for _, page := range present {
		pte, _ := c.pageTable.Find(page)

		holder, ok := c.physical.PageAt(pte.Frame)
		if !ok || holder != page {
			return fmt.Errorf("page %d maps to frame %d, which holds %d",
				page, pte.Frame, holder)
		}
	}

	seen := make(map[vm.GlobalPageID]vm.FrameID)
	for f := 0; f < c.spec.FramesCount; f++ {
		frame := vm.FrameID(f)

		page, ok := c.physical.PageAt(frame)
		if !ok {
			continue
		}

		if other, dup := seen[page]; dup {
			return fmt.Errorf("page %d held by frames %d and %d",
				page, other, frame)
		}
		seen[page] = frame

		pteFrame, present := c.pageTable.Frame(page)
		if !present || pteFrame != frame {
			return fmt.Errorf("frame %d holds page %d, which is not mapped to it",
				frame, page)
		}
	}

	return nil
}
