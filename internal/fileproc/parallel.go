// Package fileproc reads and parses source files on a bounded worker pool.
package fileproc

import (
	"context"
	"fmt"
	"runtime"

	"github.com/sourcegraph/conc/pool"

	"github.com/panbanda/tangle/pkg/analyzer"
	"github.com/panbanda/tangle/pkg/parser"
)

// Failure is a file that could not be processed.
type Failure struct {
	Index int // position in the input list
	Path  string
	Err   error
}

func (f Failure) Error() string { return fmt.Sprintf("%s: %v", f.Path, f.Err) }
func (f Failure) Unwrap() error { return f.Err }

// Failures lists per-file failures in input order.
type Failures []Failure

func (fs Failures) Error() string {
	switch len(fs) {
	case 0:
		return "no failures"
	case 1:
		return fs[0].Error()
	}
	return fmt.Sprintf("%d files failed (first: %v)", len(fs), fs[0])
}

// Unwrap exposes each failure to errors.Is and errors.As.
func (fs Failures) Unwrap() []error {
	errs := make([]error, len(fs))
	for i, f := range fs {
		errs[i] = f
	}
	return errs
}

// Paths returns the failed paths.
func (fs Failures) Paths() []string {
	paths := make([]string, len(fs))
	for i, f := range fs {
		paths[i] = f.Path
	}
	return paths
}

// Workers is the pool size: two per CPU, since work alternates between
// file reads and cgo parsing.
func Workers() int {
	return runtime.NumCPU() * 2
}

// parsers lends tree-sitter parsers to workers so each is reused across
// files. At most cap(p) idle parsers are kept.
type parsers chan *parser.Parser

func (p parsers) get() *parser.Parser {
	select {
	case psr := <-p:
		return psr
	default:
		return parser.New()
	}
}

func (p parsers) put(psr *parser.Parser) {
	select {
	case p <- psr:
	default:
		psr.Close()
	}
}

func (p parsers) drain() {
	for {
		select {
		case psr := <-p:
			psr.Close()
		default:
			return
		}
	}
}

type outcome[T any] struct {
	value T
	err   error
}

// Map calls fn for every file on the worker pool. The result slice matches
// files index for index, with the zero value where fn failed. Files not
// started before ctx is cancelled fail with the context error. Progress goes
// to the analyzer.Tracker on ctx.
func Map[T any](ctx context.Context, files []string, fn func(*parser.Parser, string) (T, error)) ([]T, Failures) {
	if len(files) == 0 {
		return nil, nil
	}

	workers := min(Workers(), len(files))
	idle := make(parsers, workers)
	defer idle.drain()

	tracker := analyzer.TrackerFromContext(ctx)
	outcomes := make([]outcome[T], len(files))

	p := pool.New().WithMaxGoroutines(workers)
	for i, path := range files {
		p.Go(func() {
			if tracker != nil {
				defer tracker.Tick(path)
			}
			if err := ctx.Err(); err != nil {
				outcomes[i].err = err
				return
			}
			psr := idle.get()
			defer idle.put(psr)
			outcomes[i].value, outcomes[i].err = fn(psr, path)
		})
	}
	p.Wait()

	results := make([]T, len(files))
	var failed Failures
	for i, o := range outcomes {
		if o.err != nil {
			failed = append(failed, Failure{Index: i, Path: files[i], Err: o.err})
			continue
		}
		results[i] = o.value
	}
	return results, failed
}
