package registry

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/rantoniello/mediaprocessors/proc"
	"github.com/rantoniello/mediaprocessors/status"
	"github.com/rantoniello/mediaprocessors/wire"
)

// POST instantiates a processor of the named type, under the registry
// mutex. It picks the first free slot, unless settingsStr carries a
// forced_proc_id field (in either wire form), in which case that exact
// slot is used and CONFLICT is returned if it is already occupied. The
// reply is the JSON object {"proc_id": N}.
func (r *Registry) POST(typeName, settingsStr string) (reply string, st status.Status) {
	desc, dst := r.cat.Find(typeName)
	if !dst.Ok() {
		return "", status.NotFound
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	idx := -1
	if forced, ok := wire.Field(settingsStr, "forced_proc_id"); ok && forced != "" {
		n, err := strconv.Atoi(forced)
		if err != nil || n < 0 || n >= len(r.slots) {
			return "", status.Invalid
		}
		if r.slots[n].inst != nil {
			return "", status.Conflict
		}
		idx = n
	} else {
		for i := range r.slots {
			if r.slots[i].inst == nil {
				idx = i
				break
			}
		}
		if idx == -1 {
			return "", status.OutOfMemory
		}
	}

	inst, ist := proc.Open(&desc, settingsStr, idx, proc.QueueCaps{DefaultQueueCap, DefaultQueueCap}, r.log)
	if !ist.Ok() {
		return "", ist
	}

	s := &r.slots[idx]
	s.ctrlMu.Lock()
	s.inLock.Lock()
	s.outLock.Lock()
	s.inst = inst
	s.outLock.Unlock()
	s.inLock.Unlock()
	s.ctrlMu.Unlock()

	body, _ := json.Marshal(map[string]interface{}{"proc_id": idx})
	return string(body), status.Success
}

// entryView is the per-slot shape GET enumerates.
type entryView struct {
	ProcID   int        `json:"proc_id"`
	ProcName string     `json:"proc_name"`
	Links    []linkView `json:"links"`
}

type linkView struct {
	Rel  string `json:"rel"`
	Href string `json:"href"`
}

// GET enumerates every live slot, honoring an optional filter of the
// form "proc_name==X" or "proc_name!=X". The reply's top-level key is
// the registry's configured prefix.
func (r *Registry) GET(filter string) (reply string, st status.Status) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var wantEq, wantNe string
	var hasEq, hasNe bool
	if filter != "" {
		if idx := strings.Index(filter, "=="); idx >= 0 && strings.HasPrefix(filter, "proc_name") {
			wantEq, hasEq = filter[idx+2:], true
		} else if idx := strings.Index(filter, "!="); idx >= 0 && strings.HasPrefix(filter, "proc_name") {
			wantNe, hasNe = filter[idx+2:], true
		}
	}

	entries := make([]entryView, 0)
	for i := range r.slots {
		inst := r.slots[i].inst
		if inst == nil {
			continue
		}
		name := inst.Descriptor().Name
		if hasEq && name != wantEq {
			continue
		}
		if hasNe && name == wantNe {
			continue
		}
		entries = append(entries, entryView{
			ProcID:   i,
			ProcName: name,
			Links:    []linkView{{Rel: "self", Href: r.selfLink(i)}},
		})
	}

	body, _ := json.Marshal(map[string]interface{}{r.prefix: entries})
	return string(body), status.Success
}

// DeleteSlot removes the processor occupying slotIdx. It first calls
// UNBLOCK on the instance so any thread blocked on its queues wakes,
// then swaps the slot pointer to nil under the slot's control mutex and
// both fair locks, and only then closes the instance (joins its worker
// and stats goroutines, runs its type's Close hook).
func (r *Registry) DeleteSlot(slotIdx int) status.Status {
	if st := r.boundsCheck(slotIdx); !st.Ok() {
		return st
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	s := &r.slots[slotIdx]

	s.ctrlMu.Lock()
	inst := s.inst
	if inst == nil {
		s.ctrlMu.Unlock()
		return status.NotFound
	}
	inst.Opt(proc.TagUnblock)

	s.inLock.Lock()
	s.outLock.Lock()
	s.inst = nil
	s.outLock.Unlock()
	s.inLock.Unlock()
	s.ctrlMu.Unlock()

	inst.Close()
	return status.Success
}
