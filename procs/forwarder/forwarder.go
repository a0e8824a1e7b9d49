// Package forwarder implements a reference processor type that moves
// frames from its input to its output untouched, accepting (and
// reporting back) a "bitrate" setting while silently ignoring any field
// it does not recognize. Its only job is to be a faithful, minimal
// tenant of the processor runtime: useful on its own and as the type on
// either side of a substitution between two interchangeably-behaved
// instances registered under different names.
//
// Shipped as a first-class package rather than a test-local fake so a
// freshly built daemon has something registerable out of the box.
package forwarder

import (
	"strconv"

	"github.com/rantoniello/mediaprocessors/frame"
	"github.com/rantoniello/mediaprocessors/status"
	"github.com/rantoniello/mediaprocessors/wire"
)

// Name is the type name forwarder registers itself under. Two
// independently-named copies with identical behavior can be registered
// under different names (see New) to exercise substitution between
// interchangeable types.
const Name = "forwarder"

type state struct {
	bitrateSetting int
}

// New returns a Descriptor for a forwarder-behaved type registered under
// name. Passing forwarder.Name gives the default reference type; callers
// that need two interchangeable types for substitution scenarios call
// New with distinct names.
func New(name string) frame.Descriptor {
	return frame.Descriptor{
		Name:     name,
		Category: "generic",
		Media:    "any",
		Flags:    frame.RegisterPTS | frame.Latency | frame.Bitrate | frame.RD | frame.WR,

		Open:         open,
		Close:        func(interface{}) {},
		ProcessFrame: processFrame,
		RestGet:      restGet,
		RestPut:      restPut,
	}
}

func open(settingsStr string, _ ...interface{}) (interface{}, status.Status) {
	s := &state{}
	if v, ok := wire.Field(settingsStr, "bitrate"); ok {
		if n, err := strconv.Atoi(v); err == nil {
			s.bitrateSetting = n
		}
	}
	return s, status.Success
}

// processFrame moves one frame from input to output untouched. It calls
// AccumulateLatency itself, after the frame has left through the output
// queue, rather than relying on the host's default forwarding path,
// because the host has no way to know when a type considers a frame
// "delivered" for latency-measurement purposes.
func processFrame(_ interface{}, ports frame.Ports) status.Status {
	f, st := ports.GetInput()
	if !st.Ok() {
		return st
	}
	if st := ports.PutOutput(f); !st.Ok() {
		return st
	}
	ports.AccumulateLatency(f.PTS)
	return status.Success
}

func restGet(st interface{}) (interface{}, status.Status) {
	s := st.(*state)
	return map[string]interface{}{
		"settings": map[string]interface{}{
			"bitrate": s.bitrateSetting,
		},
	}, status.Success
}

func restPut(st interface{}, settingsStr string) status.Status {
	s := st.(*state)
	if v, ok := wire.Field(settingsStr, "bitrate"); ok {
		if n, err := strconv.Atoi(v); err == nil {
			s.bitrateSetting = n
		}
	}
	return status.Success
}
