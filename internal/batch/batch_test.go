package batch

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"
)

func TestRunKeepsInputOrder(t *testing.T) {
	var files []string
	for i := 0; i < 50; i++ {
		files = append(files, fmt.Sprintf("f%02d.kicad_sch", i))
	}

	convert := func(_ context.Context, in string) (string, error) {
		return strings.TrimSuffix(in, ".kicad_sch") + ".tokn", nil
	}

	results, err := Run(context.Background(), Config{Workers: 4}, files, convert)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(results) != len(files) {
		t.Fatalf("got %d results, want %d", len(results), len(files))
	}
	for i, r := range results {
		want := fmt.Sprintf("f%02d.tokn", i)
		if r.Input != files[i] || r.Output != want || r.Err != nil {
			t.Errorf("result %d = %+v, want output %s", i, r, want)
		}
	}
}

func TestRunRecordsFailures(t *testing.T) {
	errBad := errors.New("bad file")
	convert := func(_ context.Context, in string) (string, error) {
		if strings.HasPrefix(in, "bad") {
			return "", errBad
		}
		return in + ".out", nil
	}

	results, err := Run(context.Background(), Config{Workers: 0}, []string{"a", "bad1", "b", "bad2"}, convert)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	failed := Failed(results)
	if len(failed) != 2 || failed[0].Input != "bad1" || failed[1].Input != "bad2" {
		t.Fatalf("Failed() = %+v", failed)
	}
	if !errors.Is(failed[0].Err, errBad) {
		t.Errorf("error = %v, want %v", failed[0].Err, errBad)
	}
	if results[2].Output != "b.out" {
		t.Errorf("results[2] = %+v", results[2])
	}
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	var calls atomic.Int32
	convert := func(_ context.Context, in string) (string, error) {
		if calls.Add(1) == 1 {
			cancel()
		}
		return in, nil
	}

	files := make([]string, 100)
	for i := range files {
		files[i] = fmt.Sprint(i)
	}

	results, err := Run(ctx, Config{Workers: 1}, files, convert)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Run() error = %v, want context.Canceled", err)
	}
	if len(results) != len(files) {
		t.Fatalf("got %d results, want %d", len(results), len(files))
	}
	if n := calls.Load(); n != 1 {
		t.Errorf("%d conversions ran, want 1", n)
	}
}

func TestRunEmpty(t *testing.T) {
	results, err := Run(context.Background(), Config{Workers: 2}, nil, nil)
	if err != nil || len(results) != 0 {
		t.Errorf("Run(nil) = %v, %v", results, err)
	}
}
