package segmentation

import (
	"sync"

	"github.com/sarchlab/vmsim/mem/vm"
)

type pageKey struct {
	pid       vm.PID
	seg       vm.SegmentID
	pageInSeg uint64
}

// A Registry gives every (pid, segment, page in segment) triple a global
// page ID. IDs start at 1 and are handed out in reservation order.
type Registry struct {
	sync.Mutex

	ids    map[pageKey]vm.GlobalPageID
	nextID vm.GlobalPageID
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		ids:    make(map[pageKey]vm.GlobalPageID),
		nextID: 1,
	}
}

// Reserve returns the ID of the page, assigning the next one if the page has
// none yet.
func (r *Registry) Reserve(
	pid vm.PID,
	seg vm.SegmentID,
	pageInSeg uint64,
) vm.GlobalPageID {
	r.Lock()
	defer r.Unlock()

	key := pageKey{pid: pid, seg: seg, pageInSeg: pageInSeg}
	if id, ok := r.ids[key]; ok {
		return id
	}

	id := r.nextID
	r.ids[key] = id
	r.nextID++

	return id
}

// Lookup returns the ID of the page without reserving one.
func (r *Registry) Lookup(
	pid vm.PID,
	seg vm.SegmentID,
	pageInSeg uint64,
) (vm.GlobalPageID, bool) {
	r.Lock()
	defer r.Unlock()

	id, ok := r.ids[pageKey{pid: pid, seg: seg, pageInSeg: pageInSeg}]

	return id, ok
}

// Len returns the number of reserved pages.
func (r *Registry) Len() int {
	r.Lock()
	defer r.Unlock()

	return len(r.ids)
}
