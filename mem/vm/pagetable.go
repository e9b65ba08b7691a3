package vm

import (
	"sort"
	"sync"
)

// A PTE is the page table entry of one global page.
//
// Frame is meaningful only when Present is true.
type PTE struct {
	Present    bool
	Frame      FrameID
	Dirty      bool
	Referenced bool
}

// A PageTable holds one entry per global page.
type PageTable interface {
	// Find returns the entry of the page, if the page has ever been seen.
	Find(page GlobalPageID) (PTE, bool)

	// Frame returns the frame of a present page.
	Frame(page GlobalPageID) (FrameID, bool)

	// Update overwrites the entry of the page, creating it if needed.
	Update(page GlobalPageID, pte PTE)

	// Present lists the present pages in ascending order.
	Present() []GlobalPageID
}

// NewPageTable creates a new PageTable.
func NewPageTable() PageTable {
	return &pageTableImpl{
		entries: make(map[GlobalPageID]PTE),
	}
}

// pageTableImpl is the default implementation of a Page Table
type pageTableImpl struct {
	sync.Mutex
	entries map[GlobalPageID]PTE
}

func (pt *pageTableImpl) Find(page GlobalPageID) (PTE, bool) {
	pt.Lock()
	defer pt.Unlock()

	pte, found := pt.entries[page]

	return pte, found
}

func (pt *pageTableImpl) Frame(page GlobalPageID) (FrameID, bool) {
	pt.Lock()
	defer pt.Unlock()

	pte, found := pt.entries[page]
	if !found || !pte.Present {
		return 0, false
	}

	return pte.Frame, true
}

func (pt *pageTableImpl) Update(page GlobalPageID, pte PTE) {
	pt.Lock()
	defer pt.Unlock()

	if !pte.Present {
		pte.Frame = 0
	}

	pt.entries[page] = pte
}

func (pt *pageTableImpl) Present() []GlobalPageID {
	pt.Lock()
	defer pt.Unlock()

	pages := make([]GlobalPageID, 0)
	for page, pte := range pt.entries {
		if pte.Present {
			pages = append(pages, page)
		}
	}

	sort.Slice(pages, func(i, j int) bool { return pages[i] < pages[j] })

	return pages
}
