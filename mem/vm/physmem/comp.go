// Package physmem models the physical frames and the free frame list.
package physmem

import (
	"fmt"
	"sync"

	"github.com/sarchlab/vmsim/mem/vm"
	"github.com/sarchlab/vmsim/mem/vm/replacement"
)

// An Eviction tells which page left which frame.
type Eviction struct {
	Frame vm.FrameID
	Page  vm.GlobalPageID
}

// Comp owns the frame table and the free list. The victim choice is
// delegated to the replacer fixed at build time.
type Comp struct {
	sync.Mutex

	name     string
	frames   []vm.GlobalPageID
	owners   map[vm.GlobalPageID]vm.FrameID
	freeList []vm.FrameID
	replacer replacement.Replacer
}

// Name returns the name of the physical memory.
func (c *Comp) Name() string {
	return c.name
}

// FramesCount returns the number of frames.
func (c *Comp) FramesCount() int {
	return len(c.frames)
}

// AllocateFrameFor finds a frame for the page. If a free frame exists, it is
// used and no eviction is reported. Otherwise the replacer picks a victim,
// the frame is handed over to the page, and the eviction is returned so
// that the caller can write back and invalidate.
func (c *Comp) AllocateFrameFor(
	page vm.GlobalPageID,
) (ev Eviction, evicted bool, err error) {
	c.Lock()
	defer c.Unlock()

	if page == vm.NoPage {
		panic("cannot allocate a frame for page 0")
	}

	if len(c.freeList) > 0 {
		frame := c.freeList[0]
		c.freeList = c.freeList[1:]
		c.frames[frame] = page
		c.owners[page] = frame
		c.replacer.Add(frame, page)

		return Eviction{}, false, nil
	}

	frame, victim, err := c.replacer.PickVictim()
	if err != nil {
		return Eviction{}, false, fmt.Errorf("%s: %w", c.name, err)
	}

	if int(frame) >= len(c.frames) || c.frames[frame] != victim {
		return Eviction{}, false, fmt.Errorf(
			"%s: replacer picked frame %d holding page %d, frame table has %d: %w",
			c.name, frame, victim, c.frameContent(frame),
			vm.ErrFrameLookupInconsistency)
	}

	delete(c.owners, victim)
	c.frames[frame] = page
	c.owners[page] = frame
	c.replacer.Replace(frame, page)

	return Eviction{Frame: frame, Page: victim}, true, nil
}

func (c *Comp) frameContent(frame vm.FrameID) vm.GlobalPageID {
	if int(frame) >= len(c.frames) {
		return vm.NoPage
	}

	return c.frames[frame]
}

// FrameFor returns the frame assigned to the page by AllocateFrameFor.
func (c *Comp) FrameFor(page vm.GlobalPageID) (vm.FrameID, error) {
	c.Lock()
	defer c.Unlock()

	frame, ok := c.owners[page]
	if !ok {
		return 0, fmt.Errorf("%s: page %d: %w",
			c.name, page, vm.ErrFrameLookupInconsistency)
	}

	return frame, nil
}

// PageAt returns the page held by the frame.
func (c *Comp) PageAt(frame vm.FrameID) (vm.GlobalPageID, bool) {
	c.Lock()
	defer c.Unlock()

	page := c.frameContent(frame)

	return page, page != vm.NoPage
}

// TouchFrame forwards an access to the replacer.
func (c *Comp) TouchFrame(frame vm.FrameID, page vm.GlobalPageID) {
	c.Lock()
	defer c.Unlock()

	c.replacer.Touch(frame, page)
}

// FreeFrame releases the frame and stops tracking it in the replacer.
func (c *Comp) FreeFrame(frame vm.FrameID) {
	c.Lock()
	defer c.Unlock()

	if int(frame) >= len(c.frames) {
		panic(fmt.Sprintf("%s: frame %d out of range", c.name, frame))
	}

	page := c.frames[frame]
	if page == vm.NoPage {
		return
	}

	delete(c.owners, page)
	c.frames[frame] = vm.NoPage
	c.freeList = append(c.freeList, frame)
	c.replacer.Remove(frame)
}

// NumFree returns the number of free frames.
func (c *Comp) NumFree() int {
	c.Lock()
	defer c.Unlock()

	return len(c.freeList)
}
