package registry

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/kylelemons/godebug/pretty"
	"golang.org/x/sync/errgroup"

	"github.com/rantoniello/mediaprocessors/catalog"
	"github.com/rantoniello/mediaprocessors/frame"
	"github.com/rantoniello/mediaprocessors/procs/forwarder"
	"github.com/rantoniello/mediaprocessors/procs/tee"
)

// TestEnumerationShape pins down the wire shape GET produces, using a deep
// diff rather than field-by-field assertions so an unintended shape change
// is caught in one place.
func TestEnumerationShape(t *testing.T) {
	r := newTestRegistry(t, 4)
	postSlot(t, r, forwarder.Name, "forced_proc_id=1")

	reply, st := r.GET("")
	if !st.Ok() {
		t.Fatalf("get failed: %v", st)
	}
	var got map[string][]entryView
	if err := json.Unmarshal([]byte(reply), &got); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	want := map[string][]entryView{
		"procs": {
			{
				ProcID:   1,
				ProcName: forwarder.Name,
				Links:    []linkView{{Rel: "self", Href: "http://example.test/procs/1.json"}},
			},
		},
	}
	if diff := pretty.Compare(want, got); diff != "" {
		t.Fatalf("enumeration shape mismatch (-want +got):\n%s", diff)
	}
}

// TestConcurrentSubstitutionUnderIO fans out a steady stream of
// SendFrame/RecvFrame calls against a slot while concurrently substituting
// its type, using an errgroup so any goroutine's panic/error aborts the
// whole group promptly. It asserts only that the system survives and ends
// up consistent, not on the exact interleaving of frames and the swap.
func TestConcurrentSubstitutionUnderIO(t *testing.T) {
	cat := catalog.New()
	cat.Register(forwarder.New("X"))
	cat.Register(forwarder.New("Y"))
	r, st := Open(cat, nil, 4, "procs", "")
	if !st.Ok() {
		t.Fatalf("open failed: %v", st)
	}
	defer r.Close()

	slot := postSlot(t, r, "X", "")

	stop := make(chan struct{})
	var g errgroup.Group

	g.Go(func() error {
		for {
			select {
			case <-stop:
				return nil
			default:
			}
			r.SendFrame(slot, &frame.Frame{PTS: 1})
			r.RecvFrame(slot)
		}
	})

	g.Go(func() error {
		time.Sleep(10 * time.Millisecond)
		_, st := r.PerInstanceOpt(slot, TagInstancePut, "proc_name=Y")
		if !st.Ok() {
			return fmt.Errorf("substitute failed: %v", st)
		}
		return nil
	})

	time.Sleep(60 * time.Millisecond)
	close(stop)

	if err := g.Wait(); err != nil {
		t.Fatalf("concurrent substitution scenario failed: %v", err)
	}

	data, st := r.PerInstanceOpt(slot, TagInstanceGet, "")
	if !st.Ok() {
		t.Fatalf("final get failed: %v", st)
	}
	m := data.(map[string]interface{})
	settings := m["settings"].(map[string]interface{})
	if settings["proc_name"] != "Y" {
		t.Fatalf("expected the slot to end up running type Y, got %#v", settings["proc_name"])
	}
}

// TestEnumerationFilterWithMultipleTypes exercises GET's filter against a
// registry holding more than one processor type, using package tee
// alongside forwarder.
func TestEnumerationFilterWithMultipleTypes(t *testing.T) {
	cat := catalog.New()
	cat.Register(forwarder.New(forwarder.Name))
	cat.Register(tee.New())
	r, st := Open(cat, nil, 4, "procs", "")
	if !st.Ok() {
		t.Fatalf("open failed: %v", st)
	}
	defer r.Close()

	postSlot(t, r, forwarder.Name, "forced_proc_id=0")
	postSlot(t, r, tee.Name, "forced_proc_id=1")

	reply, st := r.GET("proc_name==" + tee.Name)
	if !st.Ok() {
		t.Fatalf("get failed: %v", st)
	}
	var body map[string][]entryView
	json.Unmarshal([]byte(reply), &body)
	if len(body["procs"]) != 1 || body["procs"][0].ProcName != tee.Name {
		t.Fatalf("expected exactly the tee entry, got %#v", body["procs"])
	}
}
