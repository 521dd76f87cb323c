// Package gen implements the generator graph: a DAG of waveform
// operators with FM/AM modulation, feedback, and per-op ADSR
// envelopes, evaluated one sample at a time.
//
// The graph itself carries no per-render state. Each op node owns an
// index into a caller-allocated slice of Instance slots, so one graph
// can serve any number of renders as long as each render brings its
// own slots.
package gen

import (
	"math"
	"math/rand"

	"github.com/retro-synth/retro/internal/adsr"
)

// Wave selects an op node's waveform function.
type Wave int

const (
	WaveSine Wave = iota
	WaveSquare
	WaveTriangle
	WaveSawtooth
	WaveNoise
)

// Sample rates supported by the engine.
const (
	Rate44100 = 44100
	Rate48000 = 48000
)

// Sentinel values for Instance.tLast.
const (
	tNone     = -1 // nothing generated yet
	tDisabled = -2 // op silenced for the rest of the render
)

// noiseSeed makes NOISE ops reproducible across runs of the same
// inputs.
const noiseSeed = 0x7265

// Instance is the per-render scratch state of one op node. The zero
// value is unusable; call Reset before rendering an event.
type Instance struct {
	phase   float64
	freq    float64
	current float64
	last    float64
	tLast   int
	dur     int
	rate    int
	nyquist float64
	hlimit  int
	noise   *rand.Rand
}

// Reset prepares the slot for a new rendering event at the given
// fundamental frequency, event duration in samples, sample rate, and
// harmonic limit (0 = no cap beyond Nyquist). The sample rate must be
// 44100 or 48000.
func (s *Instance) Reset(freq float64, dur, rate, hlimit int) {
	if !(freq > 0) || math.IsInf(freq, 0) {
		panic("gen: fundamental frequency must be positive and finite")
	}
	if dur < 1 {
		panic("gen: duration must be at least 1")
	}
	if rate != Rate44100 && rate != Rate48000 {
		panic("gen: unsupported sample rate")
	}
	if hlimit < 0 {
		panic("gen: negative harmonic limit")
	}
	*s = Instance{
		freq:    freq,
		tLast:   tNone,
		dur:     dur,
		rate:    rate,
		nyquist: float64(rate) / 2,
		hlimit:  hlimit,
		noise:   rand.New(rand.NewSource(noiseSeed)),
	}
}

// Generator is a node of the operator graph: either an op node or an
// additive node. Both queries take the render's instance slots.
type Generator interface {
	// Length returns the number of samples this subgraph needs for the
	// event described by the slots: the maximum envelope length over
	// all reachable op nodes.
	Length(slots []Instance) int

	// Invoke returns the node's sample at time t. Within a render t
	// must follow the sequence 0, 1, 2, ... with repeats of the
	// current time allowed.
	Invoke(slots []Instance, t int) float64
}

// OpParams configures NewOp. FM and AM are optional modulator
// children; each is dropped at construction when its scale is 0.
type OpParams struct {
	Wave       Wave
	FreqMul    float64 // > 0
	FreqBoost  float64
	BaseAmp    float64 // >= 0
	FMFeedback float64
	AMFeedback float64
	FMScale    float64
	AMScale    float64
	Env        *adsr.Envelope
	FM         Generator
	AM         Generator
	Slot       int // index into the render's instance slots
}

type opNode struct {
	wave       Wave
	freqMul    float64
	freqBoost  float64
	baseAmp    float64
	fmFeedback float64
	amFeedback float64
	fmScale    float64
	amScale    float64
	env        *adsr.Envelope
	fm         Generator
	am         Generator
	slot       int
}

// NewOp builds an op node. Parameter violations are programmer errors.
func NewOp(p OpParams) Generator {
	if p.Wave < WaveSine || p.Wave > WaveNoise {
		panic("gen: unknown wave kind")
	}
	if !(p.FreqMul > 0) {
		panic("gen: frequency multiplier must be positive")
	}
	if p.BaseAmp < 0 {
		panic("gen: negative base amplitude")
	}
	for _, v := range []float64{
		p.FreqMul, p.FreqBoost, p.BaseAmp,
		p.FMFeedback, p.AMFeedback, p.FMScale, p.AMScale,
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			panic("gen: non-finite op parameter")
		}
	}
	if p.Env == nil {
		panic("gen: op requires an envelope")
	}
	if p.Slot < 0 {
		panic("gen: negative instance index")
	}
	n := &opNode{
		wave:       p.Wave,
		freqMul:    p.FreqMul,
		freqBoost:  p.FreqBoost,
		baseAmp:    p.BaseAmp,
		fmFeedback: p.FMFeedback,
		amFeedback: p.AMFeedback,
		fmScale:    p.FMScale,
		amScale:    p.AMScale,
		env:        p.Env,
		slot:       p.Slot,
	}
	// Dead modulation edges are pruned so evaluation never visits them.
	if p.FMScale != 0 && p.FM != nil {
		n.fm = p.FM
	} else {
		n.fmScale = 0
	}
	if p.AMScale != 0 && p.AM != nil {
		n.am = p.AM
	} else {
		n.amScale = 0
	}
	return n
}

func (n *opNode) Length(slots []Instance) int {
	s := &slots[n.slot]
	max := n.env.Length(s.dur)
	if n.fm != nil {
		if l := n.fm.Length(slots); l > max {
			max = l
		}
	}
	if n.am != nil {
		if l := n.am.Length(slots); l > max {
			max = l
		}
	}
	return max
}

func (n *opNode) Invoke(slots []Instance, t int) float64 {
	if t < 0 {
		panic("gen: negative time")
	}
	s := &slots[n.slot]
	switch {
	case s.tLast == tDisabled:
		return 0
	case t == s.tLast:
		return s.current
	case t != s.tLast+1:
		panic("gen: out-of-order invocation")
	}

	// Effective frequency and admissibility. NOISE has no frequency.
	var f float64
	if n.wave != WaveNoise {
		f = s.freq*n.freqMul + n.freqBoost
		if math.IsNaN(f) || math.IsInf(f, 0) || f <= 0 || f >= s.nyquist {
			s.tLast = tDisabled
			return 0
		}
	}

	// Phase advance: base rotation plus feedback and FM input.
	if n.wave != WaveNoise {
		adv := f / float64(s.rate)
		if n.fmFeedback != 0 {
			adv += n.fmFeedback * s.last
		}
		if n.fm != nil {
			adv += n.fmScale * n.fm.Invoke(slots, t)
		}
		w := s.phase + adv
		if math.IsNaN(w) || math.IsInf(w, 0) {
			w = 0
		}
		w -= math.Floor(w)
		if w < 0 || w >= 1 {
			w = 0
		}
		s.phase = w
	}

	sample := n.waveform(s)

	// Amplitude: envelope times base, plus feedback and AM input.
	amp := n.baseAmp * n.env.Compute(t, s.dur)
	if n.amFeedback != 0 {
		amp += n.amFeedback * s.last
	}
	if n.am != nil {
		amp += n.amScale * n.am.Invoke(slots, t)
	}
	if math.IsNaN(amp) || math.IsInf(amp, 0) {
		amp = 0
	}

	v := amp * sample
	if math.IsNaN(v) || math.IsInf(v, 0) {
		v = 0
	}
	s.last = s.current
	s.current = v
	s.tLast = t
	return v
}

// waveform evaluates the selected function at the slot's phase. The
// non-sine periodic waves are synthesized as truncated Fourier series
// so that no retained harmonic reaches the Nyquist limit.
func (n *opNode) waveform(s *Instance) float64 {
	switch n.wave {
	case WaveSine:
		return math.Sin(2 * math.Pi * s.phase)
	case WaveNoise:
		return s.noise.Float64()*2 - 1
	}

	f := s.freq*n.freqMul + n.freqBoost
	theta := 2 * math.Pi * s.phase
	var sum float64
	count := 0
	switch n.wave {
	case WaveSquare:
		for k := 1; f*float64(k) < s.nyquist; k += 2 {
			if s.hlimit > 0 && count >= s.hlimit {
				break
			}
			sum += 4 / (math.Pi * float64(k)) * math.Sin(theta*float64(k))
			count++
		}
	case WaveSawtooth:
		sign := 1.0
		for k := 1; f*float64(k) < s.nyquist; k++ {
			if s.hlimit > 0 && count >= s.hlimit {
				break
			}
			sum += sign * 2 / (math.Pi * float64(k)) * math.Sin(theta*float64(k))
			sign = -sign
			count++
		}
	case WaveTriangle:
		sign := 1.0
		for k := 1; f*float64(k) < s.nyquist; k += 2 {
			if s.hlimit > 0 && count >= s.hlimit {
				break
			}
			kk := float64(k)
			sum += sign * 8 / (math.Pi * math.Pi * kk * kk) * math.Sin(theta*kk)
			sign = -sign
			count++
		}
	}
	return sum
}

type addNode struct {
	children []Generator
}

// NewAdditive builds a node that emits the sum of its children.
// At least one child is required.
func NewAdditive(children []Generator) Generator {
	if len(children) == 0 {
		panic("gen: additive requires at least one child")
	}
	for _, c := range children {
		if c == nil {
			panic("gen: nil additive child")
		}
	}
	n := &addNode{children: make([]Generator, len(children))}
	copy(n.children, children)
	return n
}

func (n *addNode) Length(slots []Instance) int {
	max := 0
	for _, c := range n.children {
		if l := c.Length(slots); l > max {
			max = l
		}
	}
	return max
}

func (n *addNode) Invoke(slots []Instance, t int) float64 {
	var sum float64
	for _, c := range n.children {
		v := c.Invoke(slots, t)
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		sum += v
	}
	if math.IsNaN(sum) || math.IsInf(sum, 0) {
		return 0
	}
	return sum
}
