package registry

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/rantoniello/mediaprocessors/catalog"
	"github.com/rantoniello/mediaprocessors/frame"
	"github.com/rantoniello/mediaprocessors/procs/forwarder"
	"github.com/rantoniello/mediaprocessors/status"
)

func newTestRegistry(t *testing.T, maxSlots int) *Registry {
	t.Helper()
	cat := catalog.New()
	if st := cat.Register(forwarder.New(forwarder.Name)); !st.Ok() {
		t.Fatalf("register forwarder: %v", st)
	}
	r, st := Open(cat, nil, maxSlots, "procs", "http://example.test")
	if !st.Ok() {
		t.Fatalf("open registry: %v", st)
	}
	t.Cleanup(r.Close)
	return r
}

func TestPostAllocatesFirstFreeSlot(t *testing.T) {
	r := newTestRegistry(t, 4)
	reply, st := r.POST(forwarder.Name, "")
	if !st.Ok() {
		t.Fatalf("post failed: %v", st)
	}
	var body map[string]int
	if err := json.Unmarshal([]byte(reply), &body); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if body["proc_id"] != 0 {
		t.Fatalf("expected proc_id 0, got %d", body["proc_id"])
	}
}

func TestPostUnknownTypeIsNotFound(t *testing.T) {
	r := newTestRegistry(t, 4)
	if _, st := r.POST("no-such-type", ""); st != status.NotFound {
		t.Fatalf("expected NotFound, got %v", st)
	}
}

func TestPostForcedSlot(t *testing.T) {
	r := newTestRegistry(t, 4)
	reply, st := r.POST(forwarder.Name, "forced_proc_id=3")
	if !st.Ok() {
		t.Fatalf("post failed: %v", st)
	}
	var body map[string]int
	json.Unmarshal([]byte(reply), &body)
	if body["proc_id"] != 3 {
		t.Fatalf("expected proc_id 3, got %d", body["proc_id"])
	}
}

func TestPostForcedSlotConflict(t *testing.T) {
	r := newTestRegistry(t, 4)
	if _, st := r.POST(forwarder.Name, "forced_proc_id=1"); !st.Ok() {
		t.Fatalf("first post failed: %v", st)
	}
	if _, st := r.POST(forwarder.Name, "forced_proc_id=1"); st != status.Conflict {
		t.Fatalf("expected Conflict on re-use of an occupied forced slot, got %v", st)
	}
}

func TestPostForcedSlotOutOfRangeIsInvalid(t *testing.T) {
	r := newTestRegistry(t, 4)
	if _, st := r.POST(forwarder.Name, "forced_proc_id=99"); st != status.Invalid {
		t.Fatalf("expected Invalid, got %v", st)
	}
}

func TestPostOutOfSlotsWhenFull(t *testing.T) {
	r := newTestRegistry(t, 2)
	r.POST(forwarder.Name, "")
	r.POST(forwarder.Name, "")
	if _, st := r.POST(forwarder.Name, ""); st != status.OutOfMemory {
		t.Fatalf("expected OutOfMemory, got %v", st)
	}
}

func TestSendRecvFrameRoundTrip(t *testing.T) {
	r := newTestRegistry(t, 2)
	reply, _ := r.POST(forwarder.Name, "")
	var body map[string]int
	json.Unmarshal([]byte(reply), &body)
	slot := body["proc_id"]

	f := &frame.Frame{PTS: 11}
	if st := r.SendFrame(slot, f); !st.Ok() {
		t.Fatalf("send failed: %v", st)
	}
	out, st := r.RecvFrame(slot)
	if !st.Ok() {
		t.Fatalf("recv failed: %v", st)
	}
	if out.PTS != 11 {
		t.Fatalf("expected PTS 11, got %d", out.PTS)
	}
}

func TestSendRecvOnEmptySlotIsNotFound(t *testing.T) {
	r := newTestRegistry(t, 2)
	if _, st := r.RecvFrame(0); st != status.NotFound {
		t.Fatalf("expected NotFound, got %v", st)
	}
	if st := r.SendFrame(0, &frame.Frame{}); st != status.NotFound {
		t.Fatalf("expected NotFound, got %v", st)
	}
}

func TestSendRecvOutOfBoundsIsInvalid(t *testing.T) {
	r := newTestRegistry(t, 2)
	if st := r.SendFrame(99, &frame.Frame{}); st != status.Invalid {
		t.Fatalf("expected Invalid, got %v", st)
	}
	if _, st := r.RecvFrame(-1); st != status.Invalid {
		t.Fatalf("expected Invalid, got %v", st)
	}
}

func TestGetEnumeratesLiveSlotsOnly(t *testing.T) {
	r := newTestRegistry(t, 4)
	r.POST(forwarder.Name, "forced_proc_id=0")
	r.POST(forwarder.Name, "forced_proc_id=2")

	reply, st := r.GET("")
	if !st.Ok() {
		t.Fatalf("get failed: %v", st)
	}
	var body map[string][]entryView
	if err := json.Unmarshal([]byte(reply), &body); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	entries := body["procs"]
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
}

func TestGetFilterByProcName(t *testing.T) {
	r := newTestRegistry(t, 4)
	r.POST(forwarder.Name, "forced_proc_id=0")

	reply, st := r.GET("proc_name==" + forwarder.Name)
	if !st.Ok() {
		t.Fatalf("get failed: %v", st)
	}
	var body map[string][]entryView
	json.Unmarshal([]byte(reply), &body)
	if len(body["procs"]) != 1 {
		t.Fatalf("expected 1 matching entry, got %d", len(body["procs"]))
	}

	reply, st = r.GET("proc_name!=" + forwarder.Name)
	json.Unmarshal([]byte(reply), &body)
	if len(body["procs"]) != 0 {
		t.Fatalf("expected 0 entries excluding %s, got %d", forwarder.Name, len(body["procs"]))
	}
}

func TestDeleteSlotRemovesInstance(t *testing.T) {
	r := newTestRegistry(t, 2)
	reply, _ := r.POST(forwarder.Name, "")
	var body map[string]int
	json.Unmarshal([]byte(reply), &body)
	slot := body["proc_id"]

	if st := r.DeleteSlot(slot); !st.Ok() {
		t.Fatalf("delete failed: %v", st)
	}
	if _, st := r.RecvFrame(slot); st != status.NotFound {
		t.Fatalf("expected NotFound after delete, got %v", st)
	}
}

func TestDeleteSlotTwiceIsNotFound(t *testing.T) {
	r := newTestRegistry(t, 2)
	reply, _ := r.POST(forwarder.Name, "")
	var body map[string]int
	json.Unmarshal([]byte(reply), &body)
	slot := body["proc_id"]

	r.DeleteSlot(slot)
	if st := r.DeleteSlot(slot); st != status.NotFound {
		t.Fatalf("expected NotFound, got %v", st)
	}
}

func TestDeleteSlotUnblocksInFlightIO(t *testing.T) {
	r := newTestRegistry(t, 2)
	reply, _ := r.POST(forwarder.Name, "")
	var body map[string]int
	json.Unmarshal([]byte(reply), &body)
	slot := body["proc_id"]

	done := make(chan status.Status, 1)
	go func() {
		// Drain the output queue repeatedly; once the slot is deleted this
		// must return promptly with a non-blocking outcome instead of
		// hanging forever.
		for i := 0; i < 100; i++ {
			if _, st := r.RecvFrame(slot); !st.Ok() {
				done <- st
				return
			}
		}
		done <- status.Success
	}()

	r.DeleteSlot(slot)

	select {
	case st := <-done:
		if st.Ok() {
			t.Fatal("expected a non-success status once the slot is deleted")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("RecvFrame never returned after DeleteSlot unblocked it")
	}
}

func TestOpenClampsOversizedMaxSlots(t *testing.T) {
	cat := catalog.New()
	r, st := Open(cat, nil, MaxSlots+1000, "procs", "")
	if !st.Ok() {
		t.Fatalf("expected clamped Open to succeed, got %v", st)
	}
	defer r.Close()
}

func TestOpenRejectsNonPositiveMaxSlots(t *testing.T) {
	cat := catalog.New()
	if _, st := Open(cat, nil, 0, "procs", ""); st != status.Invalid {
		t.Fatalf("expected Invalid, got %v", st)
	}
}

func TestOpenDefaultsEmptyPrefix(t *testing.T) {
	cat := catalog.New()
	r, st := Open(cat, nil, 4, "", "")
	if !st.Ok() {
		t.Fatalf("open failed: %v", st)
	}
	defer r.Close()
	if r.Prefix() != "procs" {
		t.Fatalf("expected default prefix \"procs\", got %q", r.Prefix())
	}
}
