// Package isleep implements an interruptible timed sleep: a wait that an
// external signal can abort early. The stats goroutine in package proc
// loops on this; shutdown interrupts the sleep so the stats goroutine is
// observably join-able promptly rather than after up to a full
// measurement period.
//
// This is the usual done-channel-selected-against-a-timer idiom, pulled
// out into a small reusable type instead of inlining a channel in every
// loop that needs it.
package isleep

import (
	"sync"
	"time"
)

// Interrupter is a one-shot-per-cycle wakeup signal shared between a
// sleeper and whoever wants to interrupt it.
type Interrupter struct {
	mu sync.Mutex
	ch chan struct{}
}

// New returns a ready-to-use Interrupter.
func New() *Interrupter {
	return &Interrupter{ch: make(chan struct{}, 1)}
}

// Interrupt wakes a sleeper currently blocked in Sleep, or causes the
// next Sleep call to return immediately if none is currently blocked.
// Safe to call any number of times from any goroutine.
func (i *Interrupter) Interrupt() {
	i.mu.Lock()
	defer i.mu.Unlock()
	select {
	case i.ch <- struct{}{}:
	default:
	}
}

// Sleep waits for dur or until Interrupt is called, whichever comes
// first. It reports true if the wait was cut short by an interrupt.
func (i *Interrupter) Sleep(dur time.Duration) (interrupted bool) {
	t := time.NewTimer(dur)
	defer t.Stop()
	select {
	case <-i.ch:
		return true
	case <-t.C:
		return false
	}
}
