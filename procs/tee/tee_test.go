package tee

import (
	"testing"
	"time"

	"github.com/rantoniello/mediaprocessors/frame"
	"github.com/rantoniello/mediaprocessors/proc"
	"github.com/rantoniello/mediaprocessors/status"
)

func TestTeeDuplicatesToOutputAndTap(t *testing.T) {
	d := New()
	in, st := proc.Open(&d, "", 0, proc.QueueCaps{2, 2}, nil)
	if !st.Ok() {
		t.Fatalf("open failed: %v", st)
	}
	defer in.Close()

	f := &frame.Frame{PTS: 5, Data: []byte{1}}
	if st := in.SendFrame(f); !st.Ok() {
		t.Fatalf("send failed: %v", st)
	}

	out, st := in.RecvFrame()
	if !st.Ok() {
		t.Fatalf("recv failed: %v", st)
	}
	if out.PTS != 5 {
		t.Fatalf("expected PTS 5 on output, got %d", out.PTS)
	}

	time.Sleep(20 * time.Millisecond) // let the tap assignment land
	tapped, st := in.Opt("TEE_DRAIN")
	if !st.Ok() {
		t.Fatalf("drain failed: %v", st)
	}
	tf, ok := tapped.(*frame.Frame)
	if !ok {
		t.Fatalf("expected *frame.Frame from the tap, got %T", tapped)
	}
	if tf.PTS != 5 {
		t.Fatalf("expected tapped frame PTS 5, got %d", tf.PTS)
	}
	if tf == out {
		t.Fatal("the tapped frame and the output frame must be independent copies (OutputDup)")
	}
}

func TestTeeDrainEmptyIsNotFound(t *testing.T) {
	d := New()
	in, st := proc.Open(&d, "", 0, proc.QueueCaps{2, 2}, nil)
	if !st.Ok() {
		t.Fatalf("open failed: %v", st)
	}
	defer in.Close()

	if _, st := in.Opt("TEE_DRAIN"); st != status.NotFound {
		t.Fatalf("expected NotFound on an empty tap, got %v", st)
	}
}

func TestTeeUnknownTagIsNotFound(t *testing.T) {
	d := New()
	in, st := proc.Open(&d, "", 0, proc.QueueCaps{1, 1}, nil)
	if !st.Ok() {
		t.Fatalf("open failed: %v", st)
	}
	defer in.Close()

	if _, st := in.Opt("BOGUS"); st != status.NotFound {
		t.Fatalf("expected NotFound, got %v", st)
	}
}
