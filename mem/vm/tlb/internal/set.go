// Package internal provides the storage of the TLB.
package internal

import (
	"sort"

	"github.com/sarchlab/vmsim/mem/vm"
)

// A Set holds a fixed number of ways. Ways are ordered by their last visit
// and the least recently visited way is the eviction candidate.
type Set interface {
	Lookup(page vm.GlobalPageID) (wayID int, frame vm.FrameID, found bool)
	Update(wayID int, page vm.GlobalPageID, frame vm.FrameID)
	Evict() (wayID int, ok bool)
	Visit(wayID int)
	Invalidate(page vm.GlobalPageID) bool
	Reset()
	Len() int
}

// NewSet creates a new set with the given number of ways.
func NewSet(numWays int) Set {
	s := &setImpl{}
	s.blocks = make([]*block, numWays)
	s.visitList = make([]*block, 0, numWays)
	s.pageWayIDMap = make(map[vm.GlobalPageID]int)

	for i := range s.blocks {
		b := &block{wayID: i}
		s.blocks[i] = b
		s.Visit(i)
	}

	return s
}

type block struct {
	page      vm.GlobalPageID
	frame     vm.FrameID
	wayID     int
	lastVisit uint64
}

func (b *block) valid() bool {
	return b.page != vm.NoPage
}

type setImpl struct {
	blocks       []*block
	pageWayIDMap map[vm.GlobalPageID]int
	visitList    []*block
	visitCount   uint64
}

func (s *setImpl) Lookup(page vm.GlobalPageID) (
	wayID int,
	frame vm.FrameID,
	found bool,
) {
	wayID, ok := s.pageWayIDMap[page]
	if !ok {
		return 0, 0, false
	}

	return wayID, s.blocks[wayID].frame, true
}

func (s *setImpl) Update(wayID int, page vm.GlobalPageID, frame vm.FrameID) {
	b := s.blocks[wayID]
	if b.valid() {
		delete(s.pageWayIDMap, b.page)
	}

	b.page = page
	b.frame = frame
	s.pageWayIDMap[page] = wayID
}

// Evict detaches the least recently visited way. Invalid ways are always
// older than valid ones. The way must be visited again after it is updated.
func (s *setImpl) Evict() (wayID int, ok bool) {
	if len(s.visitList) == 0 {
		return 0, false
	}

	leastVisited := s.visitList[0]
	s.visitList = s.visitList[1:]

	return leastVisited.wayID, true
}

func (s *setImpl) Visit(wayID int) {
	b := s.blocks[wayID]
	s.removeFromVisitList(b)

	s.visitCount++
	b.lastVisit = s.visitCount

	index := sort.Search(len(s.visitList), func(i int) bool {
		return s.visitList[i].lastVisit > b.lastVisit
	})
	s.insertIntoVisitList(index, b)
}

func (s *setImpl) Invalidate(page vm.GlobalPageID) bool {
	wayID, ok := s.pageWayIDMap[page]
	if !ok {
		return false
	}

	s.clear(s.blocks[wayID])

	return true
}

func (s *setImpl) Reset() {
	for _, b := range s.blocks {
		if b.valid() {
			s.clear(b)
		}
	}
}

func (s *setImpl) Len() int {
	return len(s.pageWayIDMap)
}

// clear empties the block and moves it to the head of the visit list.
func (s *setImpl) clear(b *block) {
	delete(s.pageWayIDMap, b.page)
	b.page = vm.NoPage
	b.frame = 0
	b.lastVisit = 0

	s.removeFromVisitList(b)
	s.insertIntoVisitList(0, b)
}

func (s *setImpl) removeFromVisitList(b *block) {
	for i, other := range s.visitList {
		if other == b {
			s.visitList = append(s.visitList[:i], s.visitList[i+1:]...)
			return
		}
	}
}

func (s *setImpl) insertIntoVisitList(index int, b *block) {
	s.visitList = append(s.visitList, nil)
	copy(s.visitList[index+1:], s.visitList[index:])
	s.visitList[index] = b
}
