// Package dispatch runs per-item work over a fixed set of workers. Each worker
// owns a contiguous range of the input and, optionally, its own scratch value
// that survives across calls.
package dispatch

import (
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Dispatcher splits slices into worker ranges.
type Dispatcher struct {
	workers  int
	minBatch int
}

// New returns a dispatcher with the given worker count (NumCPU when <= 0)
// and minimum items per worker (1 when <= 0).
func New(workers, minBatch int) *Dispatcher {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if minBatch <= 0 {
		minBatch = 1
	}
	return &Dispatcher{workers: workers, minBatch: minBatch}
}

func (d *Dispatcher) Workers() int {
	return d.workers
}

// split returns the number of ranges to use for n items.
func (d *Dispatcher) split(n int) int {
	parts := n / d.minBatch
	if parts > d.workers {
		parts = d.workers
	}
	if parts < 1 {
		parts = 1
	}
	return parts
}

// run calls fn(worker, start, end) for every range. Small inputs run inline.
func (d *Dispatcher) run(n int, fn func(worker, start, end int)) {
	if n == 0 {
		return
	}
	parts := d.split(n)
	if parts == 1 {
		fn(0, 0, n)
		return
	}

	var g errgroup.Group
	g.SetLimit(parts)
	chunk := (n + parts - 1) / parts
	for w := 0; w < parts; w++ {
		start := w * chunk
		end := min(start+chunk, n)
		if start >= end {
			break
		}
		g.Go(func() error {
			fn(w, start, end)
			return nil
		})
	}
	g.Wait()
}

// ForEach calls fn for every item. Items are visited exactly once, in no
// particular order across workers.
func ForEach[T any](d *Dispatcher, items []T, fn func(T)) {
	d.run(len(items), func(_, start, end int) {
		for i := start; i < end; i++ {
			fn(items[i])
		}
	})
}

// WorkerLocals keeps one scratch value per worker slot. A slot is only ever
// touched by the worker currently assigned to it.
type WorkerLocals[L any] struct {
	newFn func() L
	slots []L
	made  []bool
}

func NewWorkerLocals[L any](newFn func() L) *WorkerLocals[L] {
	return &WorkerLocals[L]{newFn: newFn}
}

// ensure grows the slot table; it must run before workers start.
func (w *WorkerLocals[L]) ensure(n int) {
	for len(w.slots) < n {
		var zero L
		w.slots = append(w.slots, zero)
		w.made = append(w.made, false)
	}
}

func (w *WorkerLocals[L]) get(i int) L {
	if !w.made[i] {
		w.slots[i] = w.newFn()
		w.made[i] = true
	}
	return w.slots[i]
}

// All returns the scratch values created so far.
func (w *WorkerLocals[L]) All() []L {
	var out []L
	for i, ok := range w.made {
		if ok {
			out = append(out, w.slots[i])
		}
	}
	return out
}

// ForEachLocal is ForEach with a per-worker scratch value passed to fn.
func ForEachLocal[T, L any](d *Dispatcher, items []T, locals *WorkerLocals[L], fn func(T, L)) {
	locals.ensure(d.workers)
	d.run(len(items), func(worker, start, end int) {
		l := locals.get(worker)
		for i := start; i < end; i++ {
			fn(items[i], l)
		}
	})
}
