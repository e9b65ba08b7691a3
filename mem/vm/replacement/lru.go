package replacement

import (
	"container/list"
	"fmt"

	"github.com/sarchlab/vmsim/mem/vm"
)

type lruEntry struct {
	frame vm.FrameID
	page  vm.GlobalPageID
}

// LRUReplacer evicts the least recently used frame. The front of the list is
// the least recently used end.
type LRUReplacer struct {
	order    *list.List
	elements map[vm.FrameID]*list.Element
}

// NewLRUReplacer returns a newly constructed LRU replacer.
func NewLRUReplacer() *LRUReplacer {
	return &LRUReplacer{
		order:    list.New(),
		elements: make(map[vm.FrameID]*list.Element),
	}
}

// Add makes the frame the most recently used.
func (r *LRUReplacer) Add(frame vm.FrameID, page vm.GlobalPageID) {
	r.visit(frame, page)
}

// PickVictim detaches the least recently used frame.
func (r *LRUReplacer) PickVictim() (vm.FrameID, vm.GlobalPageID, error) {
	front := r.order.Front()
	if front == nil {
		return 0, vm.NoPage, fmt.Errorf("lru: %w", vm.ErrReplacerExhausted)
	}

	entry := r.order.Remove(front).(lruEntry)
	delete(r.elements, entry.frame)

	return entry.frame, entry.page, nil
}

// Replace makes the frame the most recently used with the new page.
func (r *LRUReplacer) Replace(frame vm.FrameID, page vm.GlobalPageID) {
	r.visit(frame, page)
}

// Touch makes the frame the most recently used.
func (r *LRUReplacer) Touch(frame vm.FrameID, page vm.GlobalPageID) {
	elem, found := r.elements[frame]
	if !found {
		return
	}

	r.order.MoveToBack(elem)
}

// Remove stops tracking the frame.
func (r *LRUReplacer) Remove(frame vm.FrameID) {
	elem, found := r.elements[frame]
	if !found {
		return
	}

	r.order.Remove(elem)
	delete(r.elements, frame)
}

// Len returns the number of tracked frames.
func (r *LRUReplacer) Len() int {
	return r.order.Len()
}

func (r *LRUReplacer) visit(frame vm.FrameID, page vm.GlobalPageID) {
	elem, found := r.elements[frame]
	if found {
		elem.Value = lruEntry{frame: frame, page: page}
		r.order.MoveToBack(elem)
		return
	}

	r.elements[frame] = r.order.PushBack(lruEntry{frame: frame, page: page})
}
