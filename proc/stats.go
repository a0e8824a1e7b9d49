package proc

import "github.com/rantoniello/mediaprocessors/frame"

// statsLoop is the stats goroutine: it wakes once a second (abortable by
// Close via statsSleep.Interrupt), and each cycle takes-and-zeroes the
// per-direction bitrate accumulators (publishing them as bits/s
// samples) and, if LATENCY is enabled, folds the latency accumulator
// into the published average/min/max.
func (in *Instance) statsLoop() {
	defer close(in.statsDone)
	flags := in.desc.Flags
	for {
		if in.statsSleep.Sleep(statsPeriod) {
			return
		}
		if in.exit.Load() {
			return
		}

		if flags.Has(frame.Bitrate) {
			in.inBitMu.Lock()
			bits := in.inBitAccum
			in.inBitAccum = 0
			in.inBitMu.Unlock()
			in.inBitRate.Store(bits)

			in.outBitMu.Lock()
			obits := in.outBitAccum
			in.outBitAccum = 0
			in.outBitMu.Unlock()
			in.outBitRate.Store(obits)
		}

		if flags.Has(frame.Latency) {
			in.latMu.Lock()
			if in.latCount > 0 {
				avgNs := in.latAccumNs / in.latCount
				avgUsec := avgNs / 1000
				in.latAvgUsec.Store(avgUsec)
				if cur := in.latMinUsec.Load(); cur == 0 || avgUsec < cur {
					in.latMinUsec.Store(avgUsec)
				}
				if avgUsec > in.latMaxUsec.Load() {
					in.latMaxUsec.Store(avgUsec)
				}
			}
			in.latAccumNs = 0
			in.latCount = 0
			in.latMu.Unlock()
		}
	}
}

// InputBitrate reports the most recently published input bits/s sample.
func (in *Instance) InputBitrate() int64 { return in.inBitRate.Load() }

// OutputBitrate reports the most recently published output bits/s sample.
func (in *Instance) OutputBitrate() int64 { return in.outBitRate.Load() }

// LatencyAvgUsec reports the most recently published average latency in
// microseconds.
func (in *Instance) LatencyAvgUsec() int64 { return in.latAvgUsec.Load() }

// LatencyMinUsec/LatencyMaxUsec report the running min/max average
// latency samples, in microseconds.
func (in *Instance) LatencyMinUsec() int64 { return in.latMinUsec.Load() }
func (in *Instance) LatencyMaxUsec() int64 { return in.latMaxUsec.Load() }
