package registry

import (
	"encoding/json"
	"log/slog"

	"github.com/rantoniello/mediaprocessors/proc"
	"github.com/rantoniello/mediaprocessors/status"
)

// substitute is the distinguishing operation of the whole registry: it
// replaces the processor occupying a slot with one of a different type,
// preserving the slot index and carrying the old processor's settings
// over on a best-effort basis (fields the new type doesn't recognize are
// silently dropped by the new type's own Open hook).
//
// Called from PerInstanceOpt with the slot's control mutex already held
// (which is what keeps old alive across this call) but the registry
// mutex already released: the slot's own locks are what substitution
// actually needs to be safe, and holding the registry-wide mutex for the
// duration of a potentially slow Open call would defeat the entire
// purpose of the double-lock handoff PerInstanceOpt performs (see
// DESIGN.md for why this function doesn't hold the registry mutex for
// its duration).
func (r *Registry) substitute(slotIdx int, s *slot, old *proc.Instance, newTypeName, payload string) (*proc.Instance, status.Status) {
	newDesc, dst := r.cat.Find(newTypeName)
	if !dst.Ok() {
		return nil, status.Invalid
	}

	oldSettingsStr := ""
	if tree, st := old.Opt(proc.TagGet); st.Ok() {
		if m, ok := tree.(map[string]interface{}); ok {
			if settings, ok := m["settings"]; ok {
				if b, err := json.Marshal(settings); err == nil {
					oldSettingsStr = string(b)
				}
			}
		}
	}

	newInst, ist := proc.Open(&newDesc, oldSettingsStr, slotIdx, proc.QueueCaps{DefaultQueueCap, DefaultQueueCap}, r.logFor(slotIdx))
	if !ist.Ok() {
		// Old instance is untouched; surface the failure.
		return nil, ist
	}

	old.Opt(proc.TagUnblock)

	s.inLock.Lock()
	s.outLock.Lock()
	s.inst = newInst
	s.outLock.Unlock()
	s.inLock.Unlock()

	old.Close()

	return newInst, status.Success
}

func (r *Registry) logFor(slotIdx int) *slog.Logger {
	return r.log.With("slot", slotIdx)
}
