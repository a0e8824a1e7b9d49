// Package status defines the error taxonomy shared by every control and
// I/O verb in the processor runtime and registry: a small, closed,
// errno-style set of outcomes rather than an open-ended error type.
package status

import "fmt"

// Status is a small closed set of outcomes, not an open-ended error type:
// every verb in the runtime and registry returns one of these.
type Status int32

const (
	// Success indicates normal completion.
	Success Status = iota
	// EOF is the worker's process_frame sentinel: the only non-success
	// outcome that terminates a worker goroutine cleanly.
	EOF
	// Unblocked indicates a queue (or the instance it belongs to) was
	// drained by an unblock call; the caller should unwind rather than
	// retry.
	Unblocked
	// NotFound indicates an empty slot, an unknown tag, an unknown type
	// name, or an absent hook.
	NotFound
	// Invalid indicates malformed settings, an out-of-range slot, or a
	// missing mandatory hook.
	Invalid
	// Conflict indicates a type name already registered, or a requested
	// slot already occupied.
	Conflict
	// OutOfMemory indicates an allocation failure.
	OutOfMemory
	// NotModified is an optional GET variant for cache semantics.
	NotModified
)

// Eagain is an alias for Unblocked: some callers expect an EAGAIN-style
// name for the same outcome, a queue drained by an unblock call.
const Eagain = Unblocked

var names = [...]string{
	Success:     "SUCCESS",
	EOF:         "EOF",
	Unblocked:   "UNBLOCKED",
	NotFound:    "NOT_FOUND",
	Invalid:     "INVALID",
	Conflict:    "CONFLICT",
	OutOfMemory: "OUT_OF_MEMORY",
	NotModified: "NOT_MODIFIED",
}

func (s Status) String() string {
	if int(s) >= 0 && int(s) < len(names) && names[s] != "" {
		return names[s]
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// Ok reports whether s is Success.
func (s Status) Ok() bool {
	return s == Success
}

// Error implements the error interface so a Status composes with
// idiomatic `if err != nil` call sites without an extra wrapper type.
// Success.Error() is never meant to be called on the success path; it
// still returns a legible string rather than panicking.
func (s Status) Error() string {
	return s.String()
}
