// Package dedup provides a blocking FIFO queue that ignores values already
// queued. Once a value is removed by any pop operation it may be pushed
// again.
package dedup

import (
	"context"
	"sync"
	"time"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/xyhelper/lockingqueue"
)

// entry tags each value with the generation it was pushed in, so a value
// popped concurrently with Clear does not evict a newer copy from the set.
type entry[T comparable] struct {
	v   T
	gen uint64
}

// Queue is a blocking, concurrency-safe FIFO with de-duplication built on
// lockingqueue.Queue.
//
// All methods are safe for concurrent use by multiple goroutines.
type Queue[T comparable] struct {
	mu  sync.Mutex // guards set and gen; acquired before the inner queue lock
	set mapset.Set[T]
	gen uint64
	q   *lockingqueue.Queue[entry[T]]
}

// New creates an empty de-duplicating queue. Options are passed to the
// underlying lockingqueue.Queue.
func New[T comparable](opts ...lockingqueue.Option) *Queue[T] {
	return &Queue[T]{
		set: mapset.NewThreadUnsafeSet[T](),
		q:   lockingqueue.New[entry[T]](opts...),
	}
}

// Push appends v to the tail. Returns true if the value was added, or false
// when v is already present. Wakes a waiter only when an element is actually
// added.
func (d *Queue[T]) Push(v T) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.set.Contains(v) {
		return false
	}
	d.set.Add(v)
	d.q.Push(entry[T]{v: v, gen: d.gen})
	return true
}

// PushMany enqueues items and returns the count actually added. Values
// already present, or repeated within items, are skipped; order of first
// occurrences is preserved.
func (d *Queue[T]) PushMany(items ...T) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	added := make([]entry[T], 0, len(items))
	for _, v := range items {
		if d.set.Contains(v) {
			continue
		}
		d.set.Add(v)
		added = append(added, entry[T]{v: v, gen: d.gen})
	}
	d.q.PushMany(added...)
	return len(added)
}

// TryPop removes and returns the head value without blocking.
// ok is false if the queue is empty.
func (d *Queue[T]) TryPop() (T, bool) {
	e, ok := d.q.TryPop()
	if !ok {
		var zero T
		return zero, false
	}
	return d.release(e), true
}

// WaitAndPop blocks until an element is available and returns it.
func (d *Queue[T]) WaitAndPop() T {
	return d.release(d.q.WaitAndPop())
}

// TryWaitAndPop blocks for at most timeout. ok is false if nothing arrived.
func (d *Queue[T]) TryWaitAndPop(timeout time.Duration) (T, bool) {
	e, ok := d.q.TryWaitAndPop(timeout)
	if !ok {
		var zero T
		return zero, false
	}
	return d.release(e), true
}

// WaitAndPopContext blocks until an element is available or ctx is done. On
// cancellation returns the zero value and ctx.Err().
func (d *Queue[T]) WaitAndPopContext(ctx context.Context) (T, error) {
	e, err := d.q.WaitAndPopContext(ctx)
	if err != nil {
		var zero T
		return zero, err
	}
	return d.release(e), nil
}

// Contains reports whether v is currently present in the queue. A value
// that a pop has just taken stays present, for Contains and Push alike, until
// that pop returns.
func (d *Queue[T]) Contains(v T) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.set.Contains(v)
}

// Len returns the number of values currently queued. Values taken by a pop
// that has not returned yet are not counted.
func (d *Queue[T]) Len() int { return d.q.Len() }

// Empty reports whether the queue is empty.
func (d *Queue[T]) Empty() bool { return d.q.Empty() }

// Remove deletes v from the queue if present. Returns true if removed; v may
// then be pushed again. Complexity: O(n).
func (d *Queue[T]) Remove(v T) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.set.Contains(v) {
		return false
	}
	// v can be in the set but already taken by an unfinished pop; release
	// clears it in that case.
	if !d.q.RemoveFunc(func(e entry[T]) bool { return e.v == v }) {
		return false
	}
	d.set.Remove(v)
	return true
}

// ToSlice returns a copy of the queue's contents in FIFO order.
// Complexity: O(n). The returned slice is independent of the queue.
func (d *Queue[T]) ToSlice() []T {
	entries := d.q.ToSlice()
	out := make([]T, len(entries))
	for i, e := range entries {
		out[i] = e.v
	}
	return out
}

// Clear removes all elements from the queue.
func (d *Queue[T]) Clear() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.q.Clear()
	d.set.Clear()
	d.gen++
}

// Stats returns the counters of the underlying queue.
func (d *Queue[T]) Stats() lockingqueue.Stats { return d.q.Stats() }

// release drops a popped value from the presence set so it can be pushed
// again.
func (d *Queue[T]) release(e entry[T]) T {
	d.mu.Lock()
	if e.gen == d.gen {
		d.set.Remove(e.v)
	}
	d.mu.Unlock()
	return e.v
}
