// Package analysis compares replacement policies over a range of frame
// counts.
package analysis

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/sarchlab/vmsim/mem/vm"
	"github.com/sarchlab/vmsim/mem/vm/paging"
	"github.com/sarchlab/vmsim/mem/vm/replacement"
)

// A SweepRow holds the fault counts of all policies for one frame count.
type SweepRow struct {
	Frames  int
	FIFO    int
	LRU     int
	Clock   int
	Optimal int
}

// Sweep counts the faults of FIFO, LRU, CLOCK, and the optimal policy for
// every frame count from minFrames to maxFrames. The frame counts are
// simulated in parallel; the rows come back in ascending order.
func Sweep(
	ctx context.Context,
	trace []vm.GlobalPageID,
	minFrames, maxFrames int,
) ([]SweepRow, error) {
	if minFrames <= 0 || maxFrames < minFrames {
		return nil, fmt.Errorf("invalid frame range %d..%d",
			minFrames, maxFrames)
	}

	rows := make([]SweepRow, maxFrames-minFrames+1)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())

	for i := range rows {
		frames := minFrames + i

		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			row, err := sweepOne(trace, frames)
			if err != nil {
				return err
			}

			rows[i] = row

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return rows, nil
}

func sweepOne(trace []vm.GlobalPageID, frames int) (SweepRow, error) {
	row := SweepRow{
		Frames:  frames,
		Optimal: paging.OptimalFaultsForTrace(trace, frames),
	}

	policies := []struct {
		policy replacement.Policy
		faults *int
	}{
		{replacement.FIFO, &row.FIFO},
		{replacement.LRU, &row.LRU},
		{replacement.Clock, &row.Clock},
	}

	for _, p := range policies {
		n, err := paging.FaultsForTrace(trace, frames, p.policy)
		if err != nil {
			return SweepRow{}, fmt.Errorf("%s with %d frames: %w",
				p.policy, frames, err)
		}

		*p.faults = n
	}

	return row, nil
}
