package replacement

import (
	"fmt"

	"github.com/sarchlab/vmsim/mem/vm"
)

// FIFOReplacer evicts the frame that was filled longest ago. Accesses do not
// change the order.
type FIFOReplacer struct {
	queue []vm.FrameID
	pages map[vm.FrameID]vm.GlobalPageID
}

// NewFIFOReplacer returns a newly constructed FIFO replacer.
func NewFIFOReplacer() *FIFOReplacer {
	return &FIFOReplacer{
		pages: make(map[vm.FrameID]vm.GlobalPageID),
	}
}

// Add enqueues the frame at the back.
func (r *FIFOReplacer) Add(frame vm.FrameID, page vm.GlobalPageID) {
	r.dequeue(frame)
	r.queue = append(r.queue, frame)
	r.pages[frame] = page
}

// PickVictim dequeues the frame at the front.
func (r *FIFOReplacer) PickVictim() (vm.FrameID, vm.GlobalPageID, error) {
	if len(r.queue) == 0 {
		return 0, vm.NoPage, fmt.Errorf("fifo: %w", vm.ErrReplacerExhausted)
	}

	victim := r.queue[0]
	r.queue = r.queue[1:]

	return victim, r.pages[victim], nil
}

// Replace enqueues the frame at the back as if it were newly added.
func (r *FIFOReplacer) Replace(frame vm.FrameID, page vm.GlobalPageID) {
	r.Add(frame, page)
}

// Touch does nothing.
func (r *FIFOReplacer) Touch(vm.FrameID, vm.GlobalPageID) {}

// Remove drops the frame from the queue.
func (r *FIFOReplacer) Remove(frame vm.FrameID) {
	r.dequeue(frame)
	delete(r.pages, frame)
}

// Len returns the number of queued frames.
func (r *FIFOReplacer) Len() int {
	return len(r.queue)
}

func (r *FIFOReplacer) dequeue(frame vm.FrameID) {
	for i, f := range r.queue {
		if f == frame {
			r.queue = append(r.queue[:i], r.queue[i+1:]...)
			return
		}
	}
}
