// Package worker owns goroutines whose lifetime must end before the data they
// share is dropped, such as the producers and consumers of a
// lockingqueue.Queue.
//
// A Handle runs one function at a time. Join waits for it exactly once.
// Reassign and Take join the current function before starting a new one or
// adopting another handle's goroutine, so a running goroutine is never
// abandoned.
package worker

import (
	"errors"
	"fmt"
	"sync"

	"github.com/gofrs/uuid"
	log "github.com/sirupsen/logrus"
)

// run is one goroutine started by a Handle. err is written before done is
// closed and read only after.
type run struct {
	id   uuid.UUID
	done chan struct{}
	err  error
}

// Handle owns at most one running goroutine. The zero value owns nothing
// and can be started with Reassign. A Handle must not be copied after first
// use.
type Handle struct {
	join sync.Mutex // serializes Join, Reassign and Take, held while waiting

	mu   sync.Mutex // guards cur and last
	cur  *run
	last *run

	log log.FieldLogger
}

// Go starts fn on a new goroutine owned by the returned Handle.
func Go(fn func()) *Handle {
	return GoWithLogger(log.StandardLogger(), fn)
}

// GoWithLogger is like Go but logs lifecycle events to l.
func GoWithLogger(l log.FieldLogger, fn func()) *Handle {
	h := &Handle{log: l}
	h.mu.Lock()
	h.cur = h.start(fn)
	h.mu.Unlock()
	return h
}

func (h *Handle) start(fn func()) *run {
	if h.log == nil {
		h.log = log.StandardLogger()
	}
	r := &run{id: uuid.Must(uuid.NewV4()), done: make(chan struct{})}
	entry := h.log.WithField("worker", r.id.String())
	go func() {
		defer close(r.done)
		defer func() {
			if p := recover(); p != nil {
				r.err = fmt.Errorf("worker %s panicked: %v", r.id, p)
				entry.WithError(r.err).Error("worker: recovered panic")
			}
		}()
		fn()
	}()
	entry.Debug("worker: started")
	return r
}

// ID returns the id of the goroutine currently owned, or uuid.Nil when the
// handle has been joined.
func (h *Handle) ID() uuid.UUID {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.cur == nil {
		return uuid.Nil
	}
	return h.cur.id
}

// Joinable reports whether the handle owns a goroutine that has not been
// joined yet.
func (h *Handle) Joinable() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.cur != nil
}

// Join blocks until the owned goroutine returns. Calling Join on a handle
// that was already joined returns immediately.
func (h *Handle) Join() {
	h.join.Lock()
	defer h.join.Unlock()
	h.joinLocked()
}

// Reassign joins the goroutine currently owned, if any, and then starts fn
// in its place.
func (h *Handle) Reassign(fn func()) {
	h.join.Lock()
	defer h.join.Unlock()
	h.joinLocked()
	h.mu.Lock()
	h.cur = h.start(fn)
	h.mu.Unlock()
}

// Take joins the goroutine currently owned by h, if any, and then moves
// ownership of src's goroutine to h. src is left owning nothing. Taking from
// h itself does nothing. Two handles must not Take from each other
// concurrently.
func (h *Handle) Take(src *Handle) {
	if src == nil || src == h {
		return
	}
	h.join.Lock()
	defer h.join.Unlock()
	h.joinLocked()

	// Holding src.join keeps a concurrent src.Join or src.Reassign from
	// observing the run mid-move.
	src.join.Lock()
	defer src.join.Unlock()
	src.mu.Lock()
	r := src.cur
	src.cur = nil
	src.mu.Unlock()
	if r == nil {
		return
	}

	h.mu.Lock()
	if h.log == nil {
		h.log = log.StandardLogger()
	}
	h.cur = r
	h.mu.Unlock()
	h.log.WithField("worker", r.id.String()).Debug("worker: ownership moved")
}

// Err returns the panic recovered from the most recently joined goroutine,
// or nil.
func (h *Handle) Err() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.last == nil {
		return nil
	}
	return h.last.err
}

// joinLocked waits for the current run. h.join must be held.
func (h *Handle) joinLocked() {
	h.mu.Lock()
	r := h.cur
	h.mu.Unlock()
	if r == nil {
		return
	}
	<-r.done
	h.mu.Lock()
	h.cur = nil
	h.last = r
	h.mu.Unlock()
	h.log.WithField("worker", r.id.String()).Debug("worker: joined")
}

// Group owns a set of handles that are joined together.
// The zero value is ready for use.
type Group struct {
	mu      sync.Mutex
	handles []*Handle
	log     log.FieldLogger
}

// NewGroup returns a Group that logs to l.
func NewGroup(l log.FieldLogger) *Group {
	return &Group{log: l}
}

// Go starts fn on a new goroutine owned by the group.
func (g *Group) Go(fn func()) *Handle {
	g.mu.Lock()
	defer g.mu.Unlock()
	l := g.log
	if l == nil {
		l = log.StandardLogger()
	}
	h := GoWithLogger(l, fn)
	g.handles = append(g.handles, h)
	return h
}

// Len returns the number of handles owned by the group.
func (g *Group) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.handles)
}

// JoinAll joins every handle in start order and returns the recovered
// panics, if any, joined into one error.
func (g *Group) JoinAll() error {
	g.mu.Lock()
	handles := g.handles
	g.handles = nil
	g.mu.Unlock()

	var errs []error
	for _, h := range handles {
		h.Join()
		if err := h.Err(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
