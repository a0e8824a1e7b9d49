package proc

import "github.com/rantoniello/mediaprocessors/frame"

// SendFrame acquires the input fair lock and calls the type's SendFrame
// hook. If the type registers no hook, the host applies the default:
// record the input PTS (when RegisterPTS and Latency are both on),
// account bytes (when Bitrate is on), then PutDup the frame into the
// input queue.
func (in *Instance) SendFrame(f *frame.Frame) Status {
	in.inLock.Lock()
	defer in.inLock.Unlock()

	if in.desc.SendFrame != nil {
		return in.desc.SendFrame(in.state, in, f)
	}

	flags := in.desc.Flags
	if flags.Has(frame.RegisterPTS) && flags.Has(frame.Latency) {
		in.recordInputPTS(f.PTS)
	}
	if flags.Has(frame.Bitrate) {
		in.accountInputBits(f.Bits())
	}
	return in.PutDupInput(f)
}

// RecvFrame acquires the output fair lock and calls the type's RecvFrame
// hook. If the type registers no hook, the host applies the default: Get
// from the output queue, then account bytes when Bitrate is on.
func (in *Instance) RecvFrame() (*frame.Frame, Status) {
	in.outLock.Lock()
	defer in.outLock.Unlock()

	if in.desc.RecvFrame != nil {
		return in.desc.RecvFrame(in.state, in)
	}

	f, st := in.GetOutput()
	if !st.Ok() {
		return nil, st
	}
	if in.desc.Flags.Has(frame.Bitrate) {
		in.accountOutputBits(f.Bits())
	}
	return f, StatusSuccess
}

// Tag names the fixed control verbs Opt recognizes; any other string is
// forwarded to the type's Opt hook as a type-private tag.
type Tag string

const (
	TagUnblock Tag = "UNBLOCK"
	TagGet     Tag = "GET"
	TagPut     Tag = "PUT"
)

// Opt is the control verb dispatcher, serialized through the instance's
// control mutex so that no two control operations on this instance ever
// run concurrently (I/O is never serialized by this mutex).
func (in *Instance) Opt(tag Tag, extra ...interface{}) (interface{}, Status) {
	in.ctrlMu.Lock()
	defer in.ctrlMu.Unlock()

	switch tag {
	case TagUnblock:
		in.inQ.SetBlockingMode(false)
		in.outQ.SetBlockingMode(false)
		if in.desc.Unblock != nil {
			in.desc.Unblock(in.state)
		}
		return nil, StatusSuccess

	case TagGet:
		if in.desc.RestGet == nil {
			return nil, StatusNotFound
		}
		tree, st := in.desc.RestGet(in.state)
		if !st.Ok() {
			return nil, st
		}
		if in.desc.Flags.Has(frame.Latency) {
			if m, ok := tree.(map[string]interface{}); ok {
				m["latency_avg_usec"] = in.LatencyAvgUsec()
			}
		}
		return tree, StatusSuccess

	case TagPut:
		if in.desc.RestPut == nil {
			return nil, StatusNotFound
		}
		if len(extra) == 0 {
			return nil, StatusInvalid
		}
		s, ok := extra[0].(string)
		if !ok {
			return nil, StatusInvalid
		}
		return nil, in.desc.RestPut(in.state, s)

	default:
		if in.desc.Opt == nil {
			return nil, StatusNotFound
		}
		return in.desc.Opt(in.state, string(tag), extra...)
	}
}
