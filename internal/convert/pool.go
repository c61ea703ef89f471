// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"context"
	"sync"
)

type entryResult struct {
	index int
	data  []byte
	err   error
}

// runOrdered calls work for indices 0..n-1 on up to workers goroutines and
// calls emit strictly in index order. At most 2*workers results are held
// in memory at once. The first error from work or emit cancels the rest.
func runOrdered(
	ctx context.Context,
	n, workers int,
	work func(ctx context.Context, i int) ([]byte, error),
	emit func(i int, data []byte) error,
) error {
	if n == 0 {
		return nil
	}
	if workers < 1 {
		workers = 1
	}
	if workers > n {
		workers = n
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	tasks := make(chan int)
	results := make(chan entryResult, workers)
	window := make(chan struct{}, 2*workers)

	go func() {
		defer close(tasks)
		for i := 0; i < n; i++ {
			select {
			case window <- struct{}{}:
			case <-ctx.Done():
				return
			}
			select {
			case tasks <- i:
			case <-ctx.Done():
				return
			}
		}
	}()

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range tasks {
				data, err := work(ctx, i)
				select {
				case results <- entryResult{index: i, data: data, err: err}:
				case <-ctx.Done():
					return
				}
			}
		}()
	}
	go func() {
		wg.Wait()
		close(results)
	}()

	pending := make(map[int][]byte)
	next := 0
	for r := range results {
		if r.err != nil {
			return r.err
		}
		pending[r.index] = r.data
		for {
			data, ok := pending[next]
			if !ok {
				break
			}
			delete(pending, next)
			if err := emit(next, data); err != nil {
				return err
			}
			next++
			<-window
		}
	}

	if next < n {
		if err := ctx.Err(); err != nil {
			return err
		}
	}
	return nil
}
