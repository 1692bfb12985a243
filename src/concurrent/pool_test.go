package concurrent

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestParallelMap_PreservesOrder(t *testing.T) {
	items := []int{5, 3, 8, 1, 9}

	results, err := ParallelMap(context.Background(), items, func(n int) (int, error) {
		// Later items finish first to shake out ordering bugs.
		time.Sleep(time.Duration(10-n) * time.Millisecond)
		return n * 2, nil
	}, 8)
	if err != nil {
		t.Fatal(err)
	}

	for i, n := range items {
		if results[i] != n*2 {
			t.Fatalf("results[%d] = %d, want %d", i, results[i], n*2)
		}
	}
}

func TestParallelMap_ErrorsIsolatedPerSlot(t *testing.T) {
	boom := errors.New("boom")

	results, err := ParallelMap(context.Background(), []int{1, 2, 3}, func(n int) (int, error) {
		if n == 2 {
			return 0, boom
		}
		return n, nil
	}, 8)

	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want boom", err)
	}
	if results[0] != 1 || results[2] != 3 {
		t.Fatalf("sibling results lost: %v", results)
	}
}

func TestParallelMap_RunsConcurrently(t *testing.T) {
	items := []int{1, 2, 3, 4}

	start := time.Now()
	_, err := ParallelMap(context.Background(), items, func(int) (int, error) {
		time.Sleep(50 * time.Millisecond)
		return 0, nil
	}, len(items))
	if err != nil {
		t.Fatal(err)
	}

	if elapsed := time.Since(start); elapsed > 150*time.Millisecond {
		t.Fatalf("took %v, items did not run concurrently", elapsed)
	}
}

func TestParallelMap_Empty(t *testing.T) {
	results, err := ParallelMap(context.Background(), nil, func(int) (int, error) {
		return 0, nil
	}, 4)
	if err != nil || results != nil {
		t.Fatalf("empty input: %v, %v", results, err)
	}
}

func TestWorkerPool_CapsConcurrency(t *testing.T) {
	pool := NewWorkerPool(2)

	var active, peak int32
	done := make(chan struct{})
	for i := 0; i < 6; i++ {
		go func() {
			defer func() { done <- struct{}{} }()
			pool.Do(context.Background(), func() error {
				n := atomic.AddInt32(&active, 1)
				for {
					p := atomic.LoadInt32(&peak)
					if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
						break
					}
				}
				time.Sleep(20 * time.Millisecond)
				atomic.AddInt32(&active, -1)
				return nil
			})
		}()
	}
	for i := 0; i < 6; i++ {
		<-done
	}

	if p := atomic.LoadInt32(&peak); p > 2 {
		t.Fatalf("peak concurrency %d exceeds pool size 2", p)
	}
}

func TestWorkerPool_ContextCancelled(t *testing.T) {
	pool := NewWorkerPool(1)

	release := make(chan struct{})
	occupied := make(chan struct{})
	go pool.Do(context.Background(), func() error {
		close(occupied)
		<-release
		return nil
	})
	<-occupied
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := pool.Do(ctx, func() error { return nil }); err == nil {
		t.Fatal("Do on a full pool with an expired context should error")
	}
}
