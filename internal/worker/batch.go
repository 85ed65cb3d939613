package worker

import (
	"context"
	"sort"
)

// Batch runs independent ops with bounded concurrency. A failing op never
// stops its siblings.
type Batch struct {
	concurrency int
}

// NewBatch creates a batch runner. Concurrency 1 (or less) runs ops in order on
// the calling goroutine.
func NewBatch(concurrency int) *Batch {
	if concurrency <= 0 {
		concurrency = 1
	}
	return &Batch{concurrency: concurrency}
}

// Run executes ops and returns one result per op, in submission order
func (b *Batch) Run(ctx context.Context, ops []Op) []Result {
	if len(ops) == 0 {
		return []Result{}
	}

	if b.concurrency == 1 || len(ops) == 1 {
		results := make([]Result, len(ops))
		for i, op := range ops {
			results[i] = Result{Index: i, Name: op.Name, Err: op.Run(ctx)}
		}
		return results
	}

	pool := NewPool(ctx, b.concurrency)
	pool.Start()
	defer pool.Shutdown()

	// Submit from a separate goroutine so results are drained while queueing
	go func() {
		for i, op := range ops {
			if !pool.Submit(i, op) {
				break
			}
		}
		pool.Close()
	}()

	results := make([]Result, 0, len(ops))
	for res := range pool.Results() {
		results = append(results, res)
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].Index < results[j].Index
	})
	return results
}
