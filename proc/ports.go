package proc

import (
	"time"

	"github.com/rantoniello/mediaprocessors/frame"
)

// Instance implements frame.Ports so a type's ProcessFrame/SendFrame/
// RecvFrame hooks can drive the two queues and the latency ring without
// importing package proc.
var _ frame.Ports = (*Instance)(nil)

func (in *Instance) PutInput(f *frame.Frame) Status {
	if in.inQ.Put(f) {
		return StatusSuccess
	}
	return StatusUnblocked
}

func (in *Instance) PutDupInput(f *frame.Frame) Status {
	if in.inQ.PutDup(f) {
		return StatusSuccess
	}
	return StatusUnblocked
}

func (in *Instance) GetInput() (*frame.Frame, Status) {
	f, ok := in.inQ.Get()
	if !ok {
		return nil, StatusUnblocked
	}
	return f, StatusSuccess
}

func (in *Instance) PutOutput(f *frame.Frame) Status {
	if in.outQ.Put(f) {
		return StatusSuccess
	}
	return StatusUnblocked
}

func (in *Instance) PutDupOutput(f *frame.Frame) Status {
	if in.outQ.PutDup(f) {
		return StatusSuccess
	}
	return StatusUnblocked
}

func (in *Instance) GetOutput() (*frame.Frame, Status) {
	f, ok := in.outQ.Get()
	if !ok {
		return nil, StatusUnblocked
	}
	return f, StatusSuccess
}

// recordInputPTS writes pts and the current monotonic time at the ring's
// current position, then advances the position modulo its size. This is
// intentionally unsynchronized against the output-side scan in
// AccumulateLatency: a lock here would contend with hot I/O, and
// stale/duplicate matches are tolerated since they cannot violate the
// ring's bounds (the index itself is only ever advanced by this one
// writer).
func (in *Instance) recordInputPTS(pts int64) {
	idx := int(in.ptsIdx) % ptsRingSize
	in.ptsRing[idx] = ptsEntry{pts: pts, atNs: time.Now().UnixNano()}
	in.ptsIdx = int32((int(in.ptsIdx) + 1) % ptsRingSize)
}

// AccumulateLatency implements frame.Ports: it linearly scans the PTS
// ring for an entry matching pts and, if found with now after then,
// credits the elapsed time to the running latency accumulator.
func (in *Instance) AccumulateLatency(pts int64) {
	now := time.Now().UnixNano()
	for i := range in.ptsRing {
		e := in.ptsRing[i]
		if e.pts == pts && now > e.atNs {
			in.latMu.Lock()
			in.latAccumNs += now - e.atNs
			in.latCount++
			in.latMu.Unlock()
			return
		}
	}
}

func (in *Instance) accountInputBits(bits int64) {
	in.inBitMu.Lock()
	in.inBitAccum += bits
	in.inBitMu.Unlock()
}

func (in *Instance) accountOutputBits(bits int64) {
	in.outBitMu.Lock()
	in.outBitAccum += bits
	in.outBitMu.Unlock()
}
