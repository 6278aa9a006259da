package dispatch

import (
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestForEachVisitsEveryItemOnce(t *testing.T) {
	for _, n := range []int{0, 1, 7, 100, 1001} {
		d := New(4, 8)
		items := make([]int, n)
		for i := range items {
			items[i] = i
		}
		hits := make([]int32, n)
		ForEach(d, items, func(i int) {
			atomic.AddInt32(&hits[i], 1)
		})
		for i, h := range hits {
			if h != 1 {
				t.Fatalf("n=%d: item %d visited %d times", n, i, h)
			}
		}
	}
}

type scratch struct {
	owner int64
	seen  int
}

func TestForEachLocalDoesNotShareScratch(t *testing.T) {
	d := New(4, 1)
	items := make([]int, 400)
	var nextOwner int64
	locals := NewWorkerLocals(func() *scratch {
		return &scratch{owner: atomic.AddInt64(&nextOwner, 1)}
	})

	ForEachLocal(d, items, locals, func(_ int, s *scratch) {
		// Plain increment: the race detector flags it if two workers share s.
		s.seen++
	})

	all := locals.All()
	require.Len(t, all, 4)
	total := 0
	for _, s := range all {
		total += s.seen
	}
	assert.Equal(t, len(items), total)

	// Scratch survives across calls.
	ForEachLocal(d, items, locals, func(_ int, s *scratch) { s.seen++ })
	assert.Len(t, locals.All(), 4)
	assert.Equal(t, int64(4), atomic.LoadInt64(&nextOwner))
}

func TestSmallInputsRunInline(t *testing.T) {
	d := New(8, 16)
	assert.Equal(t, 1, d.split(10))
	assert.Equal(t, 2, d.split(32))
	assert.Equal(t, 8, d.split(10000))

	locals := NewWorkerLocals(func() *scratch { return &scratch{} })
	ForEachLocal(d, make([]int, 10), locals, func(_ int, s *scratch) { s.seen++ })
	require.Len(t, locals.All(), 1)
	assert.Equal(t, 10, locals.All()[0].seen)
}
