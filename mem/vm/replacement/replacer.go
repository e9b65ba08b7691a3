// Package replacement provides the policies that pick which occupied frame
// gives way when physical memory is full.
package replacement

import (
	"fmt"
	"strings"

	"github.com/sarchlab/vmsim/mem/vm"
)

// A Replacer tracks the occupied frames and decides which one to evict.
//
// PickVictim detaches the victim from the eviction order. The caller must
// follow it with Replace on the same frame once the new page is installed.
type Replacer interface {
	// Add starts tracking a newly occupied frame.
	Add(frame vm.FrameID, page vm.GlobalPageID)

	// PickVictim selects the frame to evict and the page it holds. It
	// returns vm.ErrReplacerExhausted if no frame is tracked.
	PickVictim() (vm.FrameID, vm.GlobalPageID, error)

	// Replace records that the frame now holds a different page.
	Replace(frame vm.FrameID, page vm.GlobalPageID)

	// Touch records an access to the page held by the frame.
	Touch(frame vm.FrameID, page vm.GlobalPageID)

	// Remove stops tracking the frame.
	Remove(frame vm.FrameID)

	// Len returns the number of tracked frames.
	Len() int
}

// Policy names a replacement policy.
type Policy string

// Supported policies.
const (
	FIFO  Policy = "FIFO"
	LRU   Policy = "LRU"
	Clock Policy = "CLOCK"
)

// ParsePolicy accepts the policy names in either case.
func ParsePolicy(s string) (Policy, error) {
	p := Policy(strings.ToUpper(strings.TrimSpace(s)))
	switch p {
	case FIFO, LRU, Clock:
		return p, nil
	}

	return "", fmt.Errorf("unknown replacement policy %q", s)
}

// New creates the replacer of the policy for the given number of frames.
func New(p Policy, framesCount int) Replacer {
	switch p {
	case FIFO:
		return NewFIFOReplacer()
	case LRU:
		return NewLRUReplacer()
	case Clock:
		return NewClockReplacer(framesCount)
	}

	panic(fmt.Sprintf("unknown replacement policy %q", p))
}
