package paging

import (
	"fmt"
	"math"

	"github.com/sarchlab/vmsim/mem/vm"
	"github.com/sarchlab/vmsim/mem/vm/replacement"
	"github.com/sarchlab/vmsim/sim"
)

const neverAgain = math.MaxInt

// OptimalFaultsForTrace counts the faults of Belady's MIN over the trace: on
// a miss with all frames in use, the resident page whose next reference is
// farthest away is evicted. A page that is never referenced again is always
// preferred; among several such pages, the one resident longest goes first.
// No replacement policy can fault less on the same trace.
func OptimalFaultsForTrace(trace []vm.GlobalPageID, framesCount int) int {
	if framesCount <= 0 {
		panic(fmt.Sprintf("frames count must be > 0, got %d", framesCount))
	}

	nextUse := make([]int, len(trace))
	lastSeen := make(map[vm.GlobalPageID]int)
	for i := len(trace) - 1; i >= 0; i-- {
		if j, ok := lastSeen[trace[i]]; ok {
			nextUse[i] = j
		} else {
			nextUse[i] = neverAgain
		}
		lastSeen[trace[i]] = i
	}

	resident := make([]vm.GlobalPageID, 0, framesCount)
	next := make(map[vm.GlobalPageID]int, framesCount)
	faults := 0

	for i, page := range trace {
		if _, hit := next[page]; hit {
			next[page] = nextUse[i]
			continue
		}

		faults++

		if len(resident) == framesCount {
			victim := 0
			for j, p := range resident {
				if next[p] > next[resident[victim]] {
					victim = j
				}
			}

			delete(next, resident[victim])
			resident = append(resident[:victim], resident[victim+1:]...)
		}

		resident = append(resident, page)
		next[page] = nextUse[i]
	}

	return faults
}

// FaultsForTrace replays the trace as reads on a private engine with the
// given policy and counts the faults.
func FaultsForTrace(
	trace []vm.GlobalPageID,
	framesCount int,
	policy replacement.Policy,
) (int, error) {
	engine := MakeBuilder().
		WithSimulation(sim.NewDiscardingClock()).
		WithSpec(Spec{
			FramesCount: framesCount,
			PageSize:    defaults().PageSize,
			Policy:      policy,
		}).
		Build("OfflineEngine")

	faults := 0
	for _, page := range trace {
		res, err := engine.HandlePageLoadRequest(0, page, vm.AccessRead)
		if err != nil {
			return faults, err
		}

		if res.Status == StatusLoaded {
			faults++
		}
	}

	return faults, nil
}
