// Package parallel runs independent units of work on a bounded pool of
// goroutines.
package parallel

import (
	"context"
	"runtime"
	"sync"
)

// Result is the outcome of one item. Launched is false for items that were
// never started because the context was cancelled first; their Err is the
// context error.
type Result[R any] struct {
	Value    R
	Err      error
	Launched bool
}

// Map calls fn for every item with at most workers calls in flight and
// returns the results in item order. Each call writes only its own result
// slot, so callers can fold the results without locking.
//
// Once ctx is cancelled no further items are launched. Calls already running
// are not interrupted; fn receives ctx and may observe the cancellation.
func Map[T, R any](ctx context.Context, items []T, workers int, fn func(ctx context.Context, index int, item T) (R, error)) []Result[R] {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	results := make([]Result[R], len(items))

	var wg sync.WaitGroup
	sem := make(chan struct{}, workers)

	for i, item := range items {
		select {
		case <-ctx.Done():
			results[i].Err = ctx.Err()
			continue
		case sem <- struct{}{}: // acquire semaphore slot
		}

		// both cases may have been ready
		if err := ctx.Err(); err != nil {
			<-sem
			results[i].Err = err
			continue
		}

		wg.Add(1)
		go func(idx int, item T) {
			defer wg.Done()
			defer func() { <-sem }() // release semaphore slot

			value, err := fn(ctx, idx, item)
			results[idx] = Result[R]{Value: value, Err: err, Launched: true}
		}(i, item)
	}

	wg.Wait()
	return results
}
