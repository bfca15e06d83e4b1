package lockingqueue

import (
	"context"
	"sync"
	"time"

	"github.com/ef-ds/deque"
	log "github.com/sirupsen/logrus"
)

// Queue is a generic, concurrency-safe blocking FIFO queue.
//
// Producers call Push or PushMany, which never block beyond lock contention.
// Consumers choose between TryPop (never blocks), WaitAndPop (blocks until an
// element arrives), TryWaitAndPop (blocks for at most a timeout) and
// WaitAndPopContext (blocks until an element arrives or ctx ends). The zero
// value is not ready for use; construct via New.
type Queue[T any] struct {
	mu   sync.Mutex
	cv   *sync.Cond
	data *deque.Deque

	pushed    uint64
	popped    uint64
	discarded uint64
	timedOut  uint64
	waiting   int

	log log.FieldLogger
}

// Option configures a Queue.
type Option func(*options)

type options struct {
	logger log.FieldLogger
}

// WithLogger sets the logger used for debug output. By default the logrus
// standard logger is used.
func WithLogger(l log.FieldLogger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// New creates an empty queue.
func New[T any](opts ...Option) *Queue[T] {
	o := options{logger: log.StandardLogger()}
	for _, opt := range opts {
		opt(&o)
	}
	q := &Queue[T]{
		data: deque.New(),
		log:  o.logger,
	}
	q.cv = sync.NewCond(&q.mu)
	return q
}

// Push appends v to the tail and wakes one waiting consumer.
// Amortized complexity: O(1).
func (q *Queue[T]) Push(v T) {
	q.mu.Lock()
	q.data.PushBack(v)
	q.pushed++
	q.cv.Signal()
	q.mu.Unlock()
}

// PushMany appends items in order under a single lock acquisition.
// Wakes all waiters once if anything was added.
func (q *Queue[T]) PushMany(items ...T) {
	if len(items) == 0 {
		return
	}
	q.mu.Lock()
	for _, v := range items {
		q.data.PushBack(v)
	}
	q.pushed += uint64(len(items))
	q.cv.Broadcast()
	q.mu.Unlock()
}

// Empty reports whether the queue is empty. The result is a snapshot and may
// be stale by the time the caller acts on it.
func (q *Queue[T]) Empty() bool {
	return q.Len() == 0
}

// Len returns the number of elements currently queued.
func (q *Queue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.data.Len()
}

// TryPop removes and returns the head value without blocking.
// The second result is false when the queue is empty.
func (q *Queue[T]) TryPop() (T, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.popLocked()
}

// WaitAndPop blocks until an element is available, then removes and returns
// it. There is no way to interrupt the wait; use WaitAndPopContext when the
// caller needs cancellation.
func (q *Queue[T]) WaitAndPop() T {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.waiting++
	for q.data.Len() == 0 {
		q.cv.Wait()
	}
	q.waiting--
	v, _ := q.popLocked()
	return v
}

// TryWaitAndPop blocks for at most timeout waiting for an element. The full
// timeout is honored: wakeups that find the queue empty resume waiting until
// the deadline passes. The second result is false if the queue was still
// empty at the deadline. A timeout <= 0 behaves like TryPop.
func (q *Queue[T]) TryWaitAndPop(timeout time.Duration) (T, bool) {
	if timeout <= 0 {
		return q.TryPop()
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	v, err := q.WaitAndPopContext(ctx)
	return v, err == nil
}

// WaitAndPopContext blocks until an element is available or ctx is done. On
// success it returns (value, nil). Otherwise it returns the zero value and
// ctx.Err(). An element already queued is returned even if ctx is done.
func (q *Queue[T]) WaitAndPopContext(ctx context.Context) (T, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	q.mu.Lock()
	// Fast path
	if v, ok := q.popLocked(); ok {
		q.mu.Unlock()
		return v, nil
	}

	// Wake every waiter once ctx is done so this one can observe ctx.Err().
	// Broadcasting under the lock means the wakeup cannot slip in between
	// the emptiness check and cv.Wait.
	stop := context.AfterFunc(ctx, func() {
		q.mu.Lock()
		q.cv.Broadcast()
		q.mu.Unlock()
	})
	defer stop()

	q.waiting++
	for q.data.Len() == 0 {
		if err := ctx.Err(); err != nil {
			q.waiting--
			q.timedOut++
			q.mu.Unlock()
			q.log.WithError(err).Debug("lockingqueue: wait ended before an element arrived")
			var zero T
			return zero, err
		}
		q.cv.Wait()
	}
	q.waiting--
	v, _ := q.popLocked()
	q.mu.Unlock()
	return v, nil
}

// Peek returns the head value without removing it.
// The second result is false when the queue is empty.
func (q *Queue[T]) Peek() (T, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	var zero T
	v, ok := q.data.Front()
	if !ok {
		return zero, false
	}
	t, _ := v.(T)
	return t, true
}

// Clear removes all elements from the queue. Waiters keep waiting. The
// removed elements are counted in Stats.Discarded.
func (q *Queue[T]) Clear() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.discarded += uint64(q.data.Len())
	q.data.Init()
}

// ContainsFunc reports whether any queued element satisfies match.
// Complexity: O(n).
func (q *Queue[T]) ContainsFunc(match func(T) bool) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	found := false
	q.rotateLocked(func(v T) bool {
		if !found && match(v) {
			found = true
		}
		return true
	})
	return found
}

// RemoveFunc deletes the first element, in FIFO order, that satisfies match.
// Returns true if an element was removed. Complexity: O(n).
func (q *Queue[T]) RemoveFunc(match func(T) bool) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	removed := false
	q.rotateLocked(func(v T) bool {
		if !removed && match(v) {
			removed = true
			return false
		}
		return true
	})
	if removed {
		q.discarded++
	}
	return removed
}

// ToSlice returns a copy of the queue's contents in FIFO order.
// Complexity: O(n). The returned slice is independent of the queue.
func (q *Queue[T]) ToSlice() []T {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]T, 0, q.data.Len())
	q.rotateLocked(func(v T) bool {
		out = append(out, v)
		return true
	})
	return out
}

// Stats returns a consistent snapshot of the queue counters.
func (q *Queue[T]) Stats() Stats {
	q.mu.Lock()
	defer q.mu.Unlock()
	return Stats{
		Pushed:    q.pushed,
		Popped:    q.popped,
		Discarded: q.discarded,
		TimedOut:  q.timedOut,
		Waiting:   q.waiting,
		Len:       q.data.Len(),
	}
}

// popLocked removes the head value. q.mu must be held.
func (q *Queue[T]) popLocked() (T, bool) {
	var zero T
	v, ok := q.data.PopFront()
	if !ok {
		return zero, false
	}
	q.popped++
	// Comma-ok keeps a nil stored for an interface-typed T from panicking.
	t, _ := v.(T)
	return t, true
}

// rotateLocked visits every element once in FIFO order, moving it from the
// front to the back when keep returns true and dropping it otherwise. The
// surviving elements keep their relative order. q.mu must be held.
func (q *Queue[T]) rotateLocked(keep func(T) bool) {
	for n := q.data.Len(); n > 0; n-- {
		v, _ := q.data.PopFront()
		t, _ := v.(T)
		if keep(t) {
			q.data.PushBack(v)
		}
	}
}
