package replacement

import (
	"fmt"

	"github.com/sarchlab/vmsim/mem/vm"
)

// ClockReplacer gives every frame a second chance. Each frame has a use bit
// that is set on every add, replace, and touch. The hand sweeps the frames,
// clearing set bits, and evicts the first frame whose bit is already clear.
type ClockReplacer struct {
	pages    []vm.GlobalPageID
	occupied []bool
	useBits  []bool
	hand     int
	count    int
}

// NewClockReplacer returns a clock replacer over framesCount slots.
func NewClockReplacer(framesCount int) *ClockReplacer {
	return &ClockReplacer{
		pages:    make([]vm.GlobalPageID, framesCount),
		occupied: make([]bool, framesCount),
		useBits:  make([]bool, framesCount),
	}
}

// Add occupies the slot and sets its use bit.
func (r *ClockReplacer) Add(frame vm.FrameID, page vm.GlobalPageID) {
	r.mustBeInRange(frame)

	if !r.occupied[frame] {
		r.count++
	}

	r.occupied[frame] = true
	r.pages[frame] = page
	r.useBits[frame] = true
}

// PickVictim sweeps at most two full revolutions. If no victim is found, the
// frame under the hand is returned.
func (r *ClockReplacer) PickVictim() (vm.FrameID, vm.GlobalPageID, error) {
	if r.count == 0 {
		return 0, vm.NoPage, fmt.Errorf("clock: %w", vm.ErrReplacerExhausted)
	}

	n := len(r.pages)
	for i := 0; i < 2*n; i++ {
		idx := r.hand
		r.hand = (r.hand + 1) % n

		if !r.occupied[idx] {
			continue
		}

		if !r.useBits[idx] {
			return vm.FrameID(idx), r.pages[idx], nil
		}

		r.useBits[idx] = false
	}

	return vm.FrameID(r.hand), r.pages[r.hand], nil
}

// Replace installs the new page, sets the use bit, and moves the hand past
// the frame.
func (r *ClockReplacer) Replace(frame vm.FrameID, page vm.GlobalPageID) {
	r.Add(frame, page)
	r.hand = (int(frame) + 1) % len(r.pages)
}

// Touch sets the use bit of an occupied frame.
func (r *ClockReplacer) Touch(frame vm.FrameID, _ vm.GlobalPageID) {
	r.mustBeInRange(frame)

	if r.occupied[frame] {
		r.useBits[frame] = true
	}
}

// Remove frees the slot.
func (r *ClockReplacer) Remove(frame vm.FrameID) {
	r.mustBeInRange(frame)

	if r.occupied[frame] {
		r.count--
	}

	r.occupied[frame] = false
	r.pages[frame] = vm.NoPage
	r.useBits[frame] = false
}

// Len returns the number of occupied slots.
func (r *ClockReplacer) Len() int {
	return r.count
}

// Hand returns the slot the hand points at.
func (r *ClockReplacer) Hand() vm.FrameID {
	return vm.FrameID(r.hand)
}

func (r *ClockReplacer) mustBeInRange(frame vm.FrameID) {
	if int(frame) >= len(r.pages) {
		panic(fmt.Sprintf("frame %d out of range, clock has %d slots",
			frame, len(r.pages)))
	}
}
