package airdrop

import (
	"context"
	"runtime/debug"

	"golang.org/x/sync/errgroup"
)

// runPool runs task for every index in [0, n) with at most parallelism of them
// in flight. Indexes are handed out in batches of batchSize; a finished task
// frees its slot for the next index right away, across batch boundaries.
// A panicking task is reported through onPanic and does not affect the others.
// Once ctx is done no further index is admitted. It returns how many were.
func runPool(
	ctx context.Context,
	n, parallelism, batchSize int,
	onBatch func(from, to int),
	onPanic func(index int, value any, stack []byte),
	task func(ctx context.Context, index int),
) int {
	var g errgroup.Group
	g.SetLimit(max(1, parallelism))
	batchSize = max(1, batchSize)

	admitted := 0
dispatch:
	for from := 0; from < n; from += batchSize {
		to := min(from+batchSize, n)
		onBatch(from, to)

		for i := from; i < to; i++ {
			if ctx.Err() != nil {
				break dispatch
			}
			admitted++
			g.Go(func() error {
				defer func() {
					if v := recover(); v != nil {
						onPanic(i, v, debug.Stack())
					}
				}()
				task(ctx, i)
				return nil
			})
		}
	}

	_ = g.Wait()
	return admitted
}
