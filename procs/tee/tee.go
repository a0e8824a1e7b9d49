// Package tee implements a reference processor type that duplicates
// every input frame to its output queue via the output-duplicate hook,
// while also delivering the original to an internal tap channel. It is
// the only reference type in this repo that drives the duplicate-output
// hook, which is optional on a descriptor and left nil by types that
// don't need it.
package tee

import (
	"github.com/rantoniello/mediaprocessors/frame"
	"github.com/rantoniello/mediaprocessors/status"
)

// Name is the type name this package registers itself under.
const Name = "tee"

// tapCapacity bounds the side channel; when the tap is full the frame
// being tapped is released and dropped rather than blocking the worker, since the tap is a
// diagnostic aid, not a second consumer the worker must honor.
const tapCapacity = 16

type state struct {
	tap chan *frame.Frame
}

// New returns a Descriptor for the tee type.
func New() frame.Descriptor {
	return frame.Descriptor{
		Name:     Name,
		Category: "generic",
		Media:    "any",
		Flags:    frame.RegisterPTS | frame.Latency | frame.Bitrate | frame.RD | frame.WR,

		Open:         open,
		Close:        closeState,
		ProcessFrame: processFrame,
		RestGet:      restGet,
		Opt:          opt,

		OutputDup: func(f *frame.Frame) *frame.Frame { return f.Dup() },
	}
}

func open(string, ...interface{}) (interface{}, status.Status) {
	return &state{tap: make(chan *frame.Frame, tapCapacity)}, status.Success
}

func closeState(st interface{}) {
	close(st.(*state).tap)
}

func processFrame(st interface{}, ports frame.Ports) status.Status {
	s := st.(*state)
	f, gst := ports.GetInput()
	if !gst.Ok() {
		return gst
	}
	pst := ports.PutDupOutput(f)
	if pst.Ok() {
		ports.AccumulateLatency(f.PTS)
	}
	select {
	case s.tap <- f:
	default:
		f.Release()
	}
	return pst
}

func restGet(st interface{}) (interface{}, status.Status) {
	s := st.(*state)
	return map[string]interface{}{
		"settings": map[string]interface{}{},
		"tap_len":  len(s.tap),
	}, status.Success
}

// opt implements the "TEE_DRAIN" tag: pop one frame from the tap
// channel if available, else NOT_FOUND.
func opt(st interface{}, tag string, _ ...interface{}) (interface{}, status.Status) {
	if tag != "TEE_DRAIN" {
		return nil, status.NotFound
	}
	s := st.(*state)
	select {
	case f := <-s.tap:
		return f, status.Success
	default:
		return nil, status.NotFound
	}
}
