// Package registry implements the processor registry: a bounded slotted
// container of live processor instances that serves fast concurrent
// frame I/O against slots while supporting asynchronous
// create/delete/substitute operations, including in-place type
// substitution that preserves a slot's identity.
//
// The table itself is a fixed slice of slots plus one lock guarding its
// shape (which cells are occupied), in the tradition of a handle map
// with integer handles stable for an object's lifetime. A single lock
// over the whole table would serialize I/O across every slot even
// though slots are otherwise independent, so each slot also carries its
// own pair of fair locks, and the registry-wide mutex only ever guards
// table-shape changes made by create and delete (and enumeration's read
// of the table), never frame I/O. Type substitution swaps a slot's instance under that
// slot's own control mutex and fair locks, without the registry mutex.
package registry

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/rantoniello/mediaprocessors/catalog"
	"github.com/rantoniello/mediaprocessors/fairlock"
	"github.com/rantoniello/mediaprocessors/frame"
	"github.com/rantoniello/mediaprocessors/proc"
	"github.com/rantoniello/mediaprocessors/status"
)

// MaxSlots is the hard maximum slot count a registry can be opened with.
const MaxSlots = 8192

// DefaultQueueCap is the input/output queue capacity used by POST and by
// type substitution.
const DefaultQueueCap = 2

// slot is one cell of the registry's table. A nil inst means the slot is
// free. ctrlMu serializes mutation of this slot's pointer (create,
// delete, substitute); inLock/outLock are the per-direction fair locks
// that separate those mutations from in-flight I/O against the same
// slot.
type slot struct {
	ctrlMu  sync.Mutex
	inLock  *fairlock.Lock
	outLock *fairlock.Lock
	inst    *proc.Instance
}

// Registry is a fixed-size, bounded slotted table of processor
// instances.
type Registry struct {
	mu    sync.Mutex
	slots []slot

	cat    *catalog.Catalog
	prefix string
	href   string
	log    *slog.Logger
}

// Open allocates a registry of maxSlots cells (clamped to MaxSlots),
// initializing each slot's control mutex and pair of fair locks up
// front. prefix defaults to "procs" when empty; href is the optional
// base URL used to build self-links in enumeration output.
func Open(cat *catalog.Catalog, log *slog.Logger, maxSlots int, prefix, href string) (*Registry, status.Status) {
	if maxSlots <= 0 || maxSlots > MaxSlots {
		if maxSlots > MaxSlots {
			maxSlots = MaxSlots
		} else {
			return nil, status.Invalid
		}
	}
	if prefix == "" {
		prefix = "procs"
	}
	if log == nil {
		log = slog.Default()
	}
	r := &Registry{
		slots:  make([]slot, maxSlots),
		cat:    cat,
		prefix: prefix,
		href:   href,
		log:    log,
	}
	for i := range r.slots {
		r.slots[i].inLock = fairlock.New()
		r.slots[i].outLock = fairlock.New()
	}
	return r, status.Success
}

// Close tears down every live processor and then the registry itself.
func (r *Registry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.slots {
		if r.slots[i].inst != nil {
			r.unregisterLocked(i)
		}
	}
}

// unregisterLocked removes slot i's instance under the registry mutex
// (callers must already hold r.mu) and closes it. Used by Close, which
// does not need the UNBLOCK-before-detach dance DELETE uses since no
// concurrent caller can be referencing the registry once Close begins.
func (r *Registry) unregisterLocked(i int) {
	s := &r.slots[i]
	s.ctrlMu.Lock()
	s.inLock.Lock()
	s.outLock.Lock()
	inst := s.inst
	s.inst = nil
	s.outLock.Unlock()
	s.inLock.Unlock()
	s.ctrlMu.Unlock()
	if inst != nil {
		inst.Close()
	}
}

func (r *Registry) boundsCheck(i int) status.Status {
	if i < 0 || i >= len(r.slots) {
		return status.Invalid
	}
	return status.Success
}

// SendFrame bounds-checks slotIdx, takes that slot's input fair lock,
// and forwards to the instance's SendFrame verb. No registry-level
// mutex is touched on this path.
func (r *Registry) SendFrame(slotIdx int, f *frame.Frame) status.Status {
	if st := r.boundsCheck(slotIdx); !st.Ok() {
		return st
	}
	s := &r.slots[slotIdx]
	s.inLock.Lock()
	defer s.inLock.Unlock()
	inst := s.inst
	if inst == nil {
		return status.NotFound
	}
	return inst.SendFrame(f)
}

// RecvFrame bounds-checks slotIdx, takes that slot's output fair lock,
// and forwards to the instance's RecvFrame verb.
func (r *Registry) RecvFrame(slotIdx int) (*frame.Frame, status.Status) {
	if st := r.boundsCheck(slotIdx); !st.Ok() {
		return nil, st
	}
	s := &r.slots[slotIdx]
	s.outLock.Lock()
	defer s.outLock.Unlock()
	inst := s.inst
	if inst == nil {
		return nil, status.NotFound
	}
	return inst.RecvFrame()
}

// Prefix returns the URL path segment this registry enumerates under.
func (r *Registry) Prefix() string { return r.prefix }

// selfLink builds the enumeration self-link for a slot.
func (r *Registry) selfLink(id int) string {
	return fmt.Sprintf("%s/%s/%d.json", r.href, r.prefix, id)
}
