// Package parallel fans pure per-element work out over a bounded set of goroutines.
//
// Callers guarantee that fn only reads shared inputs and writes disjoint
// output slots, so iterations may run in any order.
package parallel

import (
	"runtime"

	"golang.org/x/sync/errgroup"
)

// DefaultBatchSize is the number of consecutive elements handed to one goroutine.
const DefaultBatchSize = 64

// Options bounds the fan-out.
type Options struct {
	Workers   int // <= 0 means GOMAXPROCS
	BatchSize int // <= 0 means DefaultBatchSize
}

func (o Options) normalized() Options {
	if o.Workers <= 0 {
		o.Workers = runtime.GOMAXPROCS(0)
	}
	if o.BatchSize <= 0 {
		o.BatchSize = DefaultBatchSize
	}
	return o
}

// Chunks calls fn(lo, hi) for consecutive half-open ranges covering [0, n).
// It returns once every range has been processed.
func Chunks(n int, opts Options, fn func(lo, hi int)) {
	if n <= 0 {
		return
	}
	opts = opts.normalized()

	// Not worth a goroutine
	if opts.Workers == 1 || n <= opts.BatchSize {
		fn(0, n)
		return
	}

	var g errgroup.Group
	g.SetLimit(opts.Workers)
	for lo := 0; lo < n; lo += opts.BatchSize {
		lo, hi := lo, min(lo+opts.BatchSize, n)
		g.Go(func() error {
			fn(lo, hi)
			return nil
		})
	}
	_ = g.Wait()
}

// For calls fn(i) for every i in [0, n).
func For(n int, opts Options, fn func(i int)) {
	Chunks(n, opts, func(lo, hi int) {
		for i := lo; i < hi; i++ {
			fn(i)
		}
	})
}

// ChunkCount returns how many ranges Chunks will produce for n elements.
func ChunkCount(n int, opts Options) int {
	if n <= 0 {
		return 0
	}
	opts = opts.normalized()
	if opts.Workers == 1 || n <= opts.BatchSize {
		return 1
	}
	return (n + opts.BatchSize - 1) / opts.BatchSize
}
