// Package demand brings pages in on request and makes sure that only one
// load per page is in flight at any time.
package demand

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/sarchlab/vmsim/mem/vm"
	"github.com/sarchlab/vmsim/mem/vm/paging"
	"github.com/sarchlab/vmsim/sim"
)

// ReasonDemand is the reason of the load requests issued by the controller.
const ReasonDemand = "demand"

// A PageLoader can make a page present.
type PageLoader interface {
	IsPresent(page vm.GlobalPageID) bool
	HandlePageLoadRequest(
		pid vm.PID,
		page vm.GlobalPageID,
		access vm.AccessType,
	) (paging.LoadResult, error)
}

// Comp is a demand controller.
type Comp struct {
	name    string
	clock   *sim.EventClock
	engine  PageLoader
	spec    Spec
	flights singleflight.Group
	loads   atomic.Uint64
}

// Name returns the name of the controller.
func (c *Comp) Name() string {
	return c.name
}

// Loads returns how many loads reached the paging engine through a flight.
func (c *Comp) Loads() uint64 {
	return c.loads.Load()
}

// State is a copy of the controller counters.
type State struct {
	Name        string
	DiskLatency time.Duration
	Loads       uint64
}

// Snapshot copies the controller counters.
func (c *Comp) Snapshot() any {
	return State{Name: c.name, DiskLatency: c.spec.DiskLatency, Loads: c.Loads()}
}

// RequestPage makes the page present for the access.
//
// A page that is already present is handed to the engine directly, which
// refreshes its recency. Otherwise the caller joins the flight of the page:
// the first caller waits for the disk and performs the load while the others
// block until it completes and then access the now present page.
//
// If ctx ends first, ctx.Err() is returned. A load cancelled before it
// reached the engine leaves no trace, and the callers that were waiting on
// it start a new flight.
func (c *Comp) RequestPage(
	ctx context.Context,
	pid vm.PID,
	page vm.GlobalPageID,
	access vm.AccessType,
) (paging.LoadResult, error) {
	c.clock.Emit(vm.PageLoadRequestEvent(pid, page, ReasonDemand))

	if c.engine.IsPresent(page) {
		return c.access(pid, page, access)
	}

	key := fmt.Sprintf("%d/%d", pid, page)

	for {
		led := false
		ch := c.flights.DoChan(key, func() (any, error) {
			led = true
			return c.load(ctx, pid, page, access)
		})

		select {
		case <-ctx.Done():
			return paging.LoadResult{}, ctx.Err()
		case r := <-ch:
			if r.Err != nil {
				if !led && isCancellation(r.Err) && ctx.Err() == nil {
					continue
				}

				return paging.LoadResult{}, r.Err
			}

			if led {
				return r.Val.(paging.LoadResult), nil
			}

			return c.access(pid, page, access)
		}
	}
}

func (c *Comp) load(
	ctx context.Context,
	pid vm.PID,
	page vm.GlobalPageID,
	access vm.AccessType,
) (paging.LoadResult, error) {
	if !c.engine.IsPresent(page) {
		if err := c.waitForDisk(ctx); err != nil {
			return paging.LoadResult{}, err
		}
	}

	return c.access(pid, page, access)
}

func (c *Comp) waitForDisk(ctx context.Context) error {
	if c.spec.DiskLatency == 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(c.spec.DiskLatency)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (c *Comp) access(
	pid vm.PID,
	page vm.GlobalPageID,
	access vm.AccessType,
) (paging.LoadResult, error) {
	res, err := c.engine.HandlePageLoadRequest(pid, page, access)
	if err != nil {
		return res, fmt.Errorf("%s: %w", c.name, err)
	}

	// A page seen present can be evicted by another process before the
	// access lands, so any path may end up loading it.
	if res.Status == paging.StatusLoaded {
		c.loads.Add(1)
		c.clock.Emit(vm.DemandPageLoadedEvent(pid, page, res.Frame))
	}

	return res, nil
}

func isCancellation(err error) bool {
	return errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}
