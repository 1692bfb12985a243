// Package concurrent provides the fan-out primitives used by the agent
// executor and the request boundary.
package concurrent

import (
	"context"
	"sync"
)

// WorkerPool bounds the number of operations running at once. The request
// boundary uses it to cap concurrent query processing.
type WorkerPool struct {
	maxWorkers int
	sem        chan struct{}
}

// NewWorkerPool creates a pool allowing maxWorkers concurrent operations.
func NewWorkerPool(maxWorkers int) *WorkerPool {
	if maxWorkers <= 0 {
		maxWorkers = 10
	}
	return &WorkerPool{
		maxWorkers: maxWorkers,
		sem:        make(chan struct{}, maxWorkers),
	}
}

// Do runs fn once a worker slot is free, or returns the context error.
func (wp *WorkerPool) Do(ctx context.Context, fn func() error) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case wp.sem <- struct{}{}:
		defer func() { <-wp.sem }()
		return fn()
	}
}

// ParallelMap runs fn on every item concurrently and returns the results in
// input order. Per-item errors land in the matching slot without cancelling
// siblings; the first non-nil error is also returned after all items finish.
func ParallelMap[T, R any](ctx context.Context, items []T, fn func(T) (R, error), maxConcurrency int) ([]R, error) {
	if len(items) == 0 {
		return nil, nil
	}
	if maxConcurrency <= 0 {
		maxConcurrency = 10
	}

	results := make([]R, len(items))
	errs := make([]error, len(items))

	var wg sync.WaitGroup
	sem := make(chan struct{}, maxConcurrency)

	for i, item := range items {
		wg.Add(1)
		go func(idx int, val T) {
			defer wg.Done()

			select {
			case <-ctx.Done():
				errs[idx] = ctx.Err()
				return
			case sem <- struct{}{}:
				defer func() { <-sem }()
				results[idx], errs[idx] = fn(val)
			}
		}(i, item)
	}

	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return results, err
		}
	}
	return results, nil
}
