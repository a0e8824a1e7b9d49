package registry

import (
	"github.com/rantoniello/mediaprocessors/proc"
	"github.com/rantoniello/mediaprocessors/status"
	"github.com/rantoniello/mediaprocessors/wire"
)

// Per-instance tag names, dispatched by PerInstanceOpt.
const (
	TagInstanceGet     proc.Tag = "PROCS_ID_GET"
	TagInstancePut     proc.Tag = "PROCS_ID_PUT"
	TagInstanceUnblock proc.Tag = "PROCS_ID_UNBLOCK"
	TagInstanceDelete  proc.Tag = "PROCS_ID_DELETE"
)

// PerInstanceOpt is the per-instance dispatcher, using a double-lock
// handoff: the registry mutex is held only long enough to look up the
// slot and take its control mutex, then released before the (possibly
// slow) operation runs. Holding the slot's control mutex for the
// duration keeps the instance alive, because DeleteSlot needs that same
// mutex to detach it.
func (r *Registry) PerInstanceOpt(slotIdx int, tag proc.Tag, payload string) (interface{}, status.Status) {
	r.mu.Lock()
	if st := r.boundsCheck(slotIdx); !st.Ok() {
		r.mu.Unlock()
		return nil, st
	}
	s := &r.slots[slotIdx]
	s.ctrlMu.Lock()
	r.mu.Unlock()
	defer s.ctrlMu.Unlock()

	inst := s.inst
	if inst == nil {
		return nil, status.NotFound
	}

	switch tag {
	case TagInstancePut:
		if newName, ok := wire.Field(payload, "proc_name"); ok && newName != "" && newName != inst.Descriptor().Name {
			_, st := r.substitute(slotIdx, s, inst, newName, payload)
			return nil, st
		}
		return inst.Opt(proc.TagPut, payload)

	case TagInstanceGet:
		tree, st := inst.Opt(proc.TagGet)
		if !st.Ok() {
			return nil, st
		}
		m, _ := tree.(map[string]interface{})
		if m == nil {
			m = map[string]interface{}{}
		}
		settings, _ := m["settings"].(map[string]interface{})
		if settings == nil {
			settings = map[string]interface{}{}
		}
		settings = wire.MergeTop(settings, "proc_name", inst.Descriptor().Name)
		m["settings"] = settings
		return m, status.Success

	case TagInstanceUnblock:
		return inst.Opt(proc.TagUnblock)

	default:
		return inst.Opt(tag, payload)
	}
}
