// Package proc implements the processor instance runtime: a generic
// host that owns a processor's worker goroutine, its input/output
// queues, its per-direction fair locking, and its periodic statistics
// goroutine, and that exposes the uniform control surface (open, close,
// send-frame, receive-frame, opt).
//
// The worker loop is joined via a done channel rather than a
// sync.WaitGroup, since there is exactly one worker per instance; the
// stats goroutine accumulates under a mutex and publishes through
// atomics so readers never block behind the accumulating writer.
package proc

import (
	"log/slog"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rantoniello/mediaprocessors/fairlock"
	"github.com/rantoniello/mediaprocessors/frame"
	"github.com/rantoniello/mediaprocessors/isleep"
	"github.com/rantoniello/mediaprocessors/queue"
	"github.com/rantoniello/mediaprocessors/status"
)

// Status is the runtime's error taxonomy; re-exported here so callers of
// package proc rarely need to import package status directly.
type Status = status.Status

const (
	StatusSuccess     = status.Success
	StatusEOF         = status.EOF
	StatusUnblocked   = status.Unblocked
	StatusNotFound    = status.NotFound
	StatusInvalid     = status.Invalid
	StatusConflict    = status.Conflict
	StatusOutOfMemory = status.OutOfMemory
	StatusNotModified = status.NotModified
)

// ptsRingSize is the length of the circular input-PTS buffer.
const ptsRingSize = 128

// statsPeriod is the stats goroutine's sampling cadence.
const statsPeriod = 1 * time.Second

type ptsEntry struct {
	pts   int64
	atNs  int64
}

// QueueCaps is the pair of input/output queue capacities an instance is
// opened with.
type QueueCaps [2]int

// Instance is a single live processor: the host-owned fields (queues,
// locks, stats) plus an opaque type-private state value (the "inner"
// processor). Go has no portable notion of "first field layout
// compatible with a header", so instead of relying on struct layout the
// host simply never reaches into state directly — it is only ever
// touched through the Descriptor's hooks, which is the layout-independent
// way to get the same property.
type Instance struct {
	desc *frame.Descriptor
	slot int

	inQ  *queue.Queue[*frame.Frame]
	outQ *queue.Queue[*frame.Frame]

	inLock  *fairlock.Lock
	outLock *fairlock.Lock

	// ctrlMu serializes every Opt call against this instance; it is
	// never held across I/O.
	ctrlMu sync.Mutex

	inBitMu    sync.Mutex
	inBitAccum int64
	inBitRate  atomic.Int64

	outBitMu    sync.Mutex
	outBitAccum int64
	outBitRate  atomic.Int64

	ptsRing [ptsRingSize]ptsEntry
	ptsIdx  int32 // advanced only by the default SendFrame path, under inLock; reads are lossy-tolerant

	latMu      sync.Mutex
	latAccumNs int64
	latCount   int64
	latAvgUsec atomic.Int64
	latMinUsec atomic.Int64
	latMaxUsec atomic.Int64

	exit atomic.Bool

	workerDone chan struct{}
	statsDone  chan struct{}
	statsSleep *isleep.Interrupter

	state interface{}

	log *slog.Logger
}

// Slot reports the registry slot index this instance was opened with.
func (in *Instance) Slot() int { return in.slot }

// Descriptor reports the type descriptor this instance was opened
// against.
func (in *Instance) Descriptor() *frame.Descriptor { return in.desc }

// Open constructs a processor instance: it calls the type's Open hook
// first (which may reject settingsStr), then initializes both queues
// (falling back to Frame's own Dup/Release when the type registers no
// element hooks of its own), both fair locks, the bitrate mutexes, the
// latency mutex, the 128-entry PTS ring (seeded to -1), and finally
// spawns the stats goroutine (only if any of Bitrate/RegisterPTS/Latency
// is set) and the worker goroutine. Any step's failure unwinds the
// steps already taken.
func Open(desc *frame.Descriptor, settingsStr string, slot int, caps QueueCaps, log *slog.Logger, extra ...interface{}) (*Instance, Status) {
	if log == nil {
		log = slog.Default()
	}
	if st := desc.Validate(); !st.Ok() {
		return nil, StatusInvalid
	}

	state, st := desc.Open(settingsStr, extra...)
	if !st.Ok() {
		return nil, st
	}

	in := &Instance{
		desc:       desc,
		slot:       slot,
		inLock:     fairlock.New(),
		outLock:    fairlock.New(),
		workerDone: make(chan struct{}),
		statsDone:  make(chan struct{}),
		statsSleep: isleep.New(),
		state:      state,
		log:        log.With("slot", slot, "type", desc.Name),
	}
	for i := range in.ptsRing {
		in.ptsRing[i] = ptsEntry{pts: -1}
	}

	inDup, inRel := desc.InputDup, desc.InputRelease
	if inDup == nil {
		inDup = func(f *frame.Frame) *frame.Frame { return f.Dup() }
	}
	if inRel == nil {
		inRel = func(f *frame.Frame) { f.Release() }
	}
	outDup, outRel := desc.OutputDup, desc.OutputRelease
	if outDup == nil {
		outDup = func(f *frame.Frame) *frame.Frame { return f.Dup() }
	}
	if outRel == nil {
		outRel = func(f *frame.Frame) { f.Release() }
	}

	inCap, outCap := caps[0], caps[1]
	if inCap < 1 {
		inCap = 1
	}
	if outCap < 1 {
		outCap = 1
	}
	in.inQ = queue.New[*frame.Frame](inCap, queue.DupFunc[*frame.Frame](inDup), queue.ReleaseFunc[*frame.Frame](inRel))
	in.outQ = queue.New[*frame.Frame](outCap, queue.DupFunc[*frame.Frame](outDup), queue.ReleaseFunc[*frame.Frame](outRel))

	if desc.Flags&(frame.Bitrate|frame.RegisterPTS|frame.Latency) != 0 {
		go in.statsLoop()
	} else {
		close(in.statsDone)
	}

	go in.workerLoop()

	in.log.Debug("processor opened")
	return in, StatusSuccess
}

// Close tears the instance down in strict order: set the exit flag,
// force both queues to unblocked mode, call the
// type's optional Unblock hook, join the worker, interrupt the stats
// sleep, join the stats goroutine, and only then call the type's Close
// hook — so the specialization still sees the host's locks initialized
// if its Close needs to signal them.
func (in *Instance) Close() {
	in.exit.Store(true)
	in.inQ.SetBlockingMode(false)
	in.outQ.SetBlockingMode(false)
	if in.desc.Unblock != nil {
		in.desc.Unblock(in.state)
	}
	<-in.workerDone
	in.statsSleep.Interrupt()
	<-in.statsDone
	in.desc.Close(in.state)
	in.log.Debug("processor closed")
}

func (in *Instance) workerLoop() {
	defer close(in.workerDone)
	for {
		if in.exit.Load() {
			return
		}
		st := in.desc.ProcessFrame(in.state, in)
		if st == StatusEOF {
			in.exit.Store(true)
			return
		}
		if !st.Ok() {
			runtime.Gosched()
		}
	}
}

// DefaultProcessFrame is the host-provided worker body for processor
// types that merely forward frames untouched: it reads one element from
// the input queue and moves the pointer into the output queue without
// duplication, releasing it on failure to enqueue.
func DefaultProcessFrame(ports frame.Ports) Status {
	f, st := ports.GetInput()
	if !st.Ok() {
		return st
	}
	if st := ports.PutOutput(f); !st.Ok() {
		f.Release()
		return st
	}
	return StatusSuccess
}
