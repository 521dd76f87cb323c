// Package adsr implements the attack/decay/sustain/release amplitude
// envelope used by every op node in a generator graph.
//
// All phase durations are in samples. An envelope is immutable after
// New and may be shared freely between op nodes.
package adsr

import "math"

// Envelope holds the four phase durations and the attack peak. The
// sustain level is always 1; when limit is positive the sustain fades
// linearly to 0 across limit samples instead of holding.
type Envelope struct {
	attack  int
	decay   int
	release int
	limit   int
	peak    float64
}

// New validates and builds an envelope. attack, decay, release, and
// limit must be non-negative and peak must be positive and finite;
// violations are programmer errors.
func New(attack, decay, release, limit int, peak float64) *Envelope {
	if attack < 0 || decay < 0 || release < 0 || limit < 0 {
		panic("adsr: negative duration")
	}
	if !(peak > 0) || math.IsInf(peak, 0) {
		panic("adsr: peak must be positive and finite")
	}
	return &Envelope{
		attack:  attack,
		decay:   decay,
		release: release,
		limit:   limit,
		peak:    peak,
	}
}

// Length returns the total number of envelope samples for an event of
// dur samples. dur < 1 is a programmer error.
func (e *Envelope) Length(dur int) int {
	return e.sustainEnd(dur) + e.release
}

// sustainEnd is the sample index at which the release phase begins.
func (e *Envelope) sustainEnd(dur int) int {
	if dur < 1 {
		panic("adsr: duration must be at least 1")
	}
	if e.limit > 0 {
		if faded := e.attack + e.decay + e.limit; faded < dur {
			return faded
		}
	}
	return dur
}

// Compute returns the envelope multiplier at sample t of an event of
// dur samples. Samples at or past Length(dur) are 0.
func (e *Envelope) Compute(t, dur int) float64 {
	if t < 0 {
		panic("adsr: negative time")
	}
	end := e.sustainEnd(dur)
	if t >= end {
		if t >= end+e.release {
			return 0
		}
		// Release: ramp the final pre-release value down so that it
		// reaches 0 exactly one sample past the release window.
		base := e.value(end-1, dur)
		k := t - end + 1
		return base * (1 - float64(k)/float64(e.release+1))
	}
	return e.value(t, dur)
}

// value evaluates the attack/decay/sustain trajectory, ignoring the
// release phase.
func (e *Envelope) value(t, dur int) float64 {
	if t < 0 {
		return 0
	}
	if t < e.attack {
		return e.peak * float64(t+1) / float64(e.attack)
	}
	if t < e.attack+e.decay {
		return e.peak + (1-e.peak)*float64(t-e.attack+1)/float64(e.decay)
	}
	if e.limit > 0 {
		v := 1 - float64(t-e.attack-e.decay+1)/float64(e.limit)
		if v < 0 {
			v = 0
		}
		return v
	}
	return 1
}
