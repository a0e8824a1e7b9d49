// Package queue implements a bounded blocking queue: a fixed-capacity
// FIFO of opaque elements with blocking Put/Get, an unblock mode that
// aborts blocked callers instead of dropping data, and pluggable
// per-element duplicate/release hooks.
//
// Built on two sync.Cond wait queues (not-full, not-empty) guarded by a
// single mutex, rather than buffered channels, because unblock mode
// needs to wake every blocked Put and Get at once without the queue
// itself gaining or losing elements.
package queue

import "sync"

// Dup/Release describe the optional per-element hooks a queue may be
// configured with. When nil, PutDup falls back to returning the element
// unchanged (no duplication) and Release is a no-op.
type DupFunc[T any] func(T) T
type ReleaseFunc[T any] func(T)

// Queue is a fixed-capacity FIFO of elements of type T.
type Queue[T any] struct {
	mu       sync.Mutex
	notFull  sync.Cond
	notEmpty sync.Cond

	items []T
	cap   int

	blocking bool

	dup     DupFunc[T]
	release ReleaseFunc[T]
}

// New creates a queue of the given fixed capacity. Unbounded queues are
// not supported; capacity less than 1 is clamped to 1.
func New[T any](capacity int, dup DupFunc[T], release ReleaseFunc[T]) *Queue[T] {
	if capacity < 1 {
		capacity = 1
	}
	q := &Queue[T]{
		items:    make([]T, 0, capacity),
		cap:      capacity,
		blocking: true,
		dup:      dup,
		release:  release,
	}
	q.notFull.L = &q.mu
	q.notEmpty.L = &q.mu
	return q
}

// SetBlockingMode(false) is the sole cancellation path: both Put and Get
// return immediately with Unblocked without touching queue contents, and
// the effect persists until SetBlockingMode(true) is called again. It is
// idempotent.
func (q *Queue[T]) SetBlockingMode(enabled bool) {
	q.mu.Lock()
	q.blocking = enabled
	q.mu.Unlock()
	q.notFull.Broadcast()
	q.notEmpty.Broadcast()
}

// unblocked reports (while holding q.mu) whether the queue is currently
// in unblock mode.
func (q *Queue[T]) unblocked() bool {
	return !q.blocking
}

// Put enqueues elem, taking ownership of it: the caller must not touch
// elem again on success. It blocks while the queue is full unless the
// queue is in unblocked mode, in which case it returns false immediately
// without enqueuing (the caller keeps ownership and must release it).
func (q *Queue[T]) Put(elem T) (ok bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for len(q.items) >= q.cap && q.blocking {
		q.notFull.Wait()
	}
	if q.unblocked() {
		return false
	}
	q.items = append(q.items, elem)
	q.notEmpty.Signal()
	return true
}

// PutDup duplicates elem via the registered Dup hook (or Frame's own
// default, arranged by the caller) before enqueuing the copy. The
// original returns to the caller for whatever processing they still
// need to do with it. If the copy cannot be enqueued, PutDup releases
// it through the registered Release hook.
func (q *Queue[T]) PutDup(elem T) (ok bool) {
	if q.dup == nil {
		return q.Put(elem)
	}
	dup := q.dup(elem)
	if !q.Put(dup) {
		q.Release(dup)
		return false
	}
	return true
}

// Get dequeues the oldest element. It blocks while the queue is empty
// unless unblocked, in which case it returns the zero value and false.
func (q *Queue[T]) Get() (elem T, ok bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for len(q.items) == 0 && q.blocking {
		q.notEmpty.Wait()
	}
	if q.unblocked() {
		var zero T
		return zero, false
	}
	elem = q.items[0]
	q.items = q.items[1:]
	q.notFull.Signal()
	return elem, true
}

// Release invokes the registered release hook on elem, e.g. after a
// failed Put where the queue never took ownership.
func (q *Queue[T]) Release(elem T) {
	if q.release != nil {
		q.release(elem)
	}
}

// Len reports the current occupancy, for diagnostics/tests only; it is
// not part of the blocking contract.
func (q *Queue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Cap reports the fixed capacity the queue was opened with.
func (q *Queue[T]) Cap() int {
	return q.cap
}
