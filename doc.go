// Package mediaprocessors hosts the processor runtime and registry
// described in the project's root documentation.
//
// The packages of interest are:
//
//	frame     - frame records and processor-type descriptors
//	queue     - bounded blocking queues of opaque elements
//	fairlock  - FIFO mutual exclusion
//	isleep    - interruptible timed sleep
//	proc      - the processor instance runtime
//	catalog   - the process-wide type catalog
//	registry  - the slotted processor registry
//	wire      - settings codec and REST envelope
//	restapi   - an optional net/http binding for the wire format
//	procs/... - reference processor types (forwarder, tee)
//
// See cmd/mediaprocd for a runnable composition of all of the above.
package mediaprocessors
