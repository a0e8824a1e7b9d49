package frame

import "github.com/rantoniello/mediaprocessors/status"

// Flags are the feature flags a processor type advertises. They gate
// whether the host's default hooks do bitrate accounting, PTS
// registration, and latency measurement, and whether a type claims to
// read and/or write frames at all.
type Flags uint32

const (
	Bitrate Flags = 1 << iota
	RegisterPTS
	Latency
	RD
	WR
)

// Has reports whether all of want is set in f.
func (f Flags) Has(want Flags) bool {
	return f&want == want
}

// OpenFunc is called once to construct a processor's type-private state
// from a settings string. It may reject settings by returning a non-Success
// status.
type OpenFunc func(settingsStr string, extra ...interface{}) (state interface{}, st status.Status)

// CloseFunc tears down type-private state. Called last during instance
// teardown, after the worker and stats goroutines have already joined.
type CloseFunc func(state interface{})

// ProcessFunc is the worker loop body: given the instance's private state
// and its port pair, do one unit of work. A return of status.EOF stops
// the worker cleanly; any other non-Success status is treated as
// transient and retried after a scheduling yield.
type ProcessFunc func(state interface{}, ports Ports) status.Status

// SendFunc/RecvFunc override the default queue put/get performed by
// send-frame/recv-frame. Most types leave these nil and get the host's
// default PTS/bitrate-aware behavior (see package proc).
type SendFunc func(state interface{}, ports Ports, f *Frame) status.Status
type RecvFunc func(state interface{}, ports Ports) (*Frame, status.Status)

// UnblockFunc is called during shutdown or substitution so a type
// blocked inside one of its own hooks (SendFunc/RecvFunc/ProcessFunc) can
// be woken; most types leave this nil.
type UnblockFunc func(state interface{})

// RestPutFunc/RestGetFunc implement the PUT/GET control verbs. RestGetFunc
// returns a JSON-serializable tree (typically map[string]interface{}).
type RestPutFunc func(state interface{}, settingsStr string) status.Status
type RestGetFunc func(state interface{}) (tree interface{}, st status.Status)

// OptFunc is the catch-all control verb for type-private tags not covered
// by the fixed UNBLOCK/GET/PUT verbs.
type OptFunc func(state interface{}, tag string, extra ...interface{}) (interface{}, status.Status)

// DupFunc/ReleaseFunc let a processor type override how its queue
// elements are duplicated (PutDup) and released (on a failed Put). A type
// that leaves these nil gets Frame's own Dup/Release.
type DupFunc func(f *Frame) *Frame
type ReleaseFunc func(f *Frame)

// Ports is the pair of queues a ProcessFunc/SendFunc/RecvFunc operates
// against. It is a narrow view (not the full proc.Instance) so that
// processor-type code in package procs/... never needs to import package
// proc.
type Ports interface {
	PutInput(f *Frame) status.Status
	PutDupInput(f *Frame) status.Status
	GetInput() (*Frame, status.Status)
	PutOutput(f *Frame) status.Status
	PutDupOutput(f *Frame) status.Status
	GetOutput() (*Frame, status.Status)

	// AccumulateLatency looks up pts in the instance's input PTS ring and,
	// if found with now > then, adds the elapsed time to the running
	// latency accumulator. A type's custom RecvFrame/ProcessFrame hook
	// calls this when an output frame carrying pts leaves the system.
	AccumulateLatency(pts int64)
}

// Descriptor is the immutable, by-value vtable + metadata record
// describing one processor type. It is stored by value in the type
// catalog and is safe to duplicate freely: it holds only function values
// and small metadata fields, no mutable state.
type Descriptor struct {
	Name     string
	Category string
	Media    string
	Flags    Flags

	Open         OpenFunc
	Close        CloseFunc
	ProcessFrame ProcessFunc

	SendFrame SendFunc
	RecvFrame RecvFunc
	Unblock   UnblockFunc

	RestPut RestPutFunc
	RestGet RestGetFunc
	Opt     OptFunc

	InputDup      DupFunc
	InputRelease  ReleaseFunc
	OutputDup     DupFunc
	OutputRelease ReleaseFunc
}

// Validate reports status.Invalid if a mandatory hook is missing.
func (d *Descriptor) Validate() status.Status {
	if d.Name == "" || d.Open == nil || d.Close == nil || d.ProcessFrame == nil {
		return status.Invalid
	}
	return status.Success
}
