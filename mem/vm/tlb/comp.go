// Package tlb provides a fully associative translation cache that maps
// global pages to frames with its own LRU order.
package tlb

import (
	"sync"

	"github.com/sarchlab/vmsim/mem/vm"
	"github.com/sarchlab/vmsim/mem/vm/tlb/internal"
	"github.com/sarchlab/vmsim/sim"
)

// Comp is a TLB.
type Comp struct {
	sync.Mutex

	name  string
	clock *sim.EventClock
	spec  Spec
	set   internal.Set
}

// Name returns the name of the TLB.
func (c *Comp) Name() string {
	return c.name
}

// Capacity returns the number of entries the TLB can hold.
func (c *Comp) Capacity() int {
	return c.spec.NumEntries
}

// State is a copy of the TLB occupancy.
type State struct {
	Name     string
	Capacity int
	Entries  int
}

// Snapshot copies the TLB occupancy.
func (c *Comp) Snapshot() any {
	return State{Name: c.name, Capacity: c.Capacity(), Entries: c.Len()}
}

// Lookup returns the cached frame of the page. A hit refreshes the recency
// of the entry and emits tlb_hit; a miss emits tlb_miss.
func (c *Comp) Lookup(pid vm.PID, page vm.GlobalPageID) (vm.FrameID, bool) {
	c.Lock()
	defer c.Unlock()

	wayID, frame, found := c.set.Lookup(page)
	if !found {
		c.clock.Emit(vm.TLBMissEvent(pid, page))
		return 0, false
	}

	c.set.Visit(wayID)
	c.clock.Emit(vm.TLBHitEvent(pid, page))

	return frame, true
}

// Insert caches the mapping. A cached page only gets its recency refreshed
// and its frame updated. Otherwise the least recently used entry makes room
// when the TLB is full. Insert emits no event.
func (c *Comp) Insert(pid vm.PID, page vm.GlobalPageID, frame vm.FrameID) {
	c.Lock()
	defer c.Unlock()

	if page == vm.NoPage {
		return
	}

	wayID, _, found := c.set.Lookup(page)
	if !found {
		var ok bool

		wayID, ok = c.set.Evict()
		if !ok {
			panic("tlb set has no way to evict")
		}
	}

	c.set.Update(wayID, page, frame)
	c.set.Visit(wayID)
}

// Invalidate removes the entry of the page. It returns false if the page was
// not cached.
func (c *Comp) Invalidate(page vm.GlobalPageID) bool {
	c.Lock()
	defer c.Unlock()

	return c.set.Invalidate(page)
}

// Flush removes all the entries.
func (c *Comp) Flush() {
	c.Lock()
	defer c.Unlock()

	c.set.Reset()
}

// Len returns the number of cached entries.
func (c *Comp) Len() int {
	c.Lock()
	defer c.Unlock()

	return c.set.Len()
}
