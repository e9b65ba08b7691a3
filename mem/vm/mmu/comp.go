// Package mmu runs an access through the whole translation pipeline:
// segmentation, the TLB, and demand paging.
package mmu

import (
	"context"
	"sync"

	"github.com/sarchlab/vmsim/mem/vm"
	"github.com/sarchlab/vmsim/mem/vm/demand"
	"github.com/sarchlab/vmsim/mem/vm/paging"
	"github.com/sarchlab/vmsim/mem/vm/segmentation"
	"github.com/sarchlab/vmsim/mem/vm/tlb"
	"github.com/sarchlab/vmsim/sim"
)

// A Request is one memory access.
type Request struct {
	PID     vm.PID
	Segment vm.SegmentID
	Offset  uint64
	Mode    vm.TranslationMode
	Access  vm.AccessType
}

// A Result describes how an access was served. Frame, TLBHit, and Faulted
// only apply to paged accesses.
type Result struct {
	Translation segmentation.Translation
	PhysAddr    uint64
	Frame       vm.FrameID
	TLBHit      bool
	Faulted     bool
}

// Stats counts the accesses that went through the MMU.
type Stats struct {
	Accesses     uint64
	Faults       uint64
	TLBHits      uint64
	TLBMisses    uint64
	SegFaults    uint64
	FlatAccesses uint64
}

// Comp is an MMU.
type Comp struct {
	name         string
	clock        *sim.EventClock
	segmentation *segmentation.Comp
	demand       *demand.Comp
	tlb          *tlb.Comp

	statsLock sync.Mutex
	stats     Stats
}

// Name returns the name of the MMU.
func (c *Comp) Name() string {
	return c.name
}

// Stats returns a snapshot of the counters.
func (c *Comp) Stats() Stats {
	c.statsLock.Lock()
	defer c.statsLock.Unlock()

	return c.stats
}

// State is a copy of the MMU counters.
type State struct {
	Name  string
	Stats Stats
}

// Snapshot copies the MMU counters.
func (c *Comp) Snapshot() any {
	return State{Name: c.name, Stats: c.Stats()}
}

// Access serves one request. A paged access always reaches the paging
// engine, even on a TLB hit, so that recency and the dirty bit stay
// accurate.
func (c *Comp) Access(ctx context.Context, req Request) (Result, error) {
	c.clock.Emit(vm.AccessRequestEvent(
		req.PID, req.Mode, req.Segment, req.Offset, req.Access))
	c.count(func(s *Stats) { s.Accesses++ })

	tr, err := c.segmentation.Translate(
		req.PID, req.Segment, req.Offset, req.Mode)
	if err != nil {
		c.count(func(s *Stats) { s.SegFaults++ })
		return Result{}, err
	}

	if tr.Mode == vm.ModeFlat {
		c.count(func(s *Stats) { s.FlatAccesses++ })
		return Result{Translation: tr, PhysAddr: tr.PhysAddr}, nil
	}

	return c.accessPage(ctx, req, tr)
}

func (c *Comp) accessPage(
	ctx context.Context,
	req Request,
	tr segmentation.Translation,
) (Result, error) {
	result := Result{Translation: tr}

	var cached vm.FrameID
	if c.tlb != nil {
		cached, result.TLBHit = c.tlb.Lookup(req.PID, tr.GlobalPage)
		c.count(func(s *Stats) {
			if result.TLBHit {
				s.TLBHits++
			} else {
				s.TLBMisses++
			}
		})
	}

	res, err := c.demand.RequestPage(ctx, req.PID, tr.GlobalPage, req.Access)
	if err != nil {
		return Result{}, err
	}

	if res.Status == paging.StatusLoaded {
		result.Faulted = true
		c.count(func(s *Stats) { s.Faults++ })
	}

	if c.tlb != nil && (!result.TLBHit || cached != res.Frame) {
		c.tlb.Insert(req.PID, tr.GlobalPage, res.Frame)
	}

	result.Frame = res.Frame
	result.PhysAddr = uint64(res.Frame)*c.segmentation.PageSize() +
		tr.PageOffset

	return result, nil
}

func (c *Comp) count(f func(s *Stats)) {
	c.statsLock.Lock()
	f(&c.stats)
	c.statsLock.Unlock()
}

// tlbInvalidator drops the TLB entry of every page the paging engine
// evicts.
type tlbInvalidator struct {
	tlb *tlb.Comp
}

func (h *tlbInvalidator) Func(ctx sim.HookCtx) {
	if ctx.Pos != paging.HookPosPageEvicted {
		return
	}

	info := ctx.Item.(paging.EvictionInfo)
	h.tlb.Invalidate(info.Page)
}
