// Package batch converts many files concurrently.
package batch

import (
	"context"
	"sync"
	"time"
)

// Config controls the worker pool.
type Config struct {
	Workers int // number of worker goroutines (>=1)
}

// ConvertFunc converts one input file and returns the path it wrote.
type ConvertFunc func(ctx context.Context, input string) (output string, err error)

// Result is the outcome for one input file.
type Result struct {
	Input    string
	Output   string
	Err      error
	Duration time.Duration
}

// Run converts files with cfg.Workers goroutines. Results are returned in
// input order; a failed conversion is recorded in its Result and does not
// stop the others. When ctx is cancelled Run stops handing out files, waits
// for running conversions and returns ctx.Err() with the partial results.
func Run(ctx context.Context, cfg Config, files []string, convert ConvertFunc) ([]Result, error) {
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}

	results := make([]Result, len(files))
	for i, f := range files {
		results[i].Input = f
	}

	jobs := make(chan int, cfg.Workers*2)

	var wg sync.WaitGroup
	wg.Add(cfg.Workers)
	for w := 0; w < cfg.Workers; w++ {
		go func() {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case i, ok := <-jobs:
					if !ok || ctx.Err() != nil {
						return
					}
					// each index is handed to exactly one worker
					start := time.Now()
					out, err := convert(ctx, files[i])
					results[i].Output = out
					results[i].Err = err
					results[i].Duration = time.Since(start)
				}
			}
		}()
	}

feed:
	for i := range files {
		select {
		case <-ctx.Done():
			break feed
		case jobs <- i:
		}
	}
	close(jobs)
	wg.Wait()

	return results, ctx.Err()
}

// Failed returns the results that carry an error.
func Failed(results []Result) []Result {
	var failed []Result
	for _, r := range results {
		if r.Err != nil {
			failed = append(failed, r)
		}
	}
	return failed
}
