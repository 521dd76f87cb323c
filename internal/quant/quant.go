// Package quant resolves quantized pitch, loudness, and pan values
// through precomputed lookup tables.
//
// A quantized value is an integer in [Min, Max]. Pitch units are 1/5
// of a cent with 0 at middle C; loudness units are 1/360 dB with 0 at
// multiplier 1.0; pan runs from Min (full left) through 0 (center) to
// Max (full right).
//
// Init must be called exactly once before any lookup. The center
// parameter is a quantized loudness applied as a boost at the middle
// of the pan table to offset the constant-power pan-law dip.
package quant

import "math"

// Quantized value range shared by pitch, loudness, and pan.
const (
	Min = -32767
	Max = 32767
)

const (
	// Loudness table: offsets from 1.0 every loudStep quantized units.
	loudStep    = 31
	loudEntries = Max/loudStep + 1 // 1058, last entry lands exactly on Max

	// Pitch: 6000 units per octave, 500 per semitone, fine table of
	// 500 entries spaced 1/5 cent apart.
	unitsPerOctave   = 6000
	unitsPerSemitone = 500

	// Pan table: 435 entries spanning [Min, Max] at panStep spacing.
	panEntries = 435
	panStep    = (Max - Min) / (panEntries - 1) // 151, exact
)

var (
	ready     bool
	loudTable [loudEntries]float64
	baseTone  [12]float64
	fineTone  [unitsPerSemitone]float64
	panTable  [panEntries]float64
)

// Init precomputes all tables. center is the quantized loudness boost
// applied at pan center. Calling Init twice, or passing an
// out-of-range center, is a programmer error.
func Init(center int) {
	if ready {
		panic("quant: already initialized")
	}
	if center < Min || center > Max {
		panic("quant: center out of range")
	}

	for i := 0; i < loudEntries; i++ {
		q := float64(i * loudStep)
		loudTable[i] = math.Pow(10, q/7200.0) - 1.0
	}

	for s := 0; s < 12; s++ {
		baseTone[s] = 440.0 * math.Pow(2, float64(s-9)/12.0)
	}
	baseTone[9] = 440.0
	for j := 0; j < unitsPerSemitone; j++ {
		fineTone[j] = math.Pow(2, float64(j)/float64(unitsPerOctave))
	}

	ready = true // Loud is usable from here on

	boost := Loud(center) - 1.0
	for i := 0; i < panEntries; i++ {
		x := float64(i) / float64(panEntries-1) // 0 = full left, 1 = full right
		l := math.Cos(x * math.Pi / 2)
		l *= 1.0 + boost*math.Sin(x*math.Pi)
		panTable[i] = l
	}
}

func check(q int) {
	if !ready {
		panic("quant: lookup before Init")
	}
	if q < Min || q > Max {
		panic("quant: value out of range")
	}
}

// Loud maps a quantized loudness to a positive multiplier.
// Loud(0) = 1 and Loud(q)*Loud(-q) = 1.
func Loud(q int) float64 {
	check(q)
	neg := q < 0
	if neg {
		q = -q
	}
	i := q / loudStep
	frac := float64(q%loudStep) / loudStep
	off := loudTable[i]
	if i+1 < loudEntries {
		off += (loudTable[i+1] - loudTable[i]) * frac
	}
	v := 1.0 + off
	if neg {
		return 1.0 / v
	}
	return v
}

// Pitch maps a quantized pitch to a frequency in Hz.
func Pitch(q int) float64 {
	check(q)
	// Split q into whole octaves and a remainder in [0, unitsPerOctave).
	d := q / unitsPerOctave
	r := q % unitsPerOctave
	if r < 0 {
		r += unitsPerOctave
		d--
	}
	f := baseTone[r/unitsPerSemitone] * fineTone[r%unitsPerSemitone]
	return f * math.Pow(2, float64(d))
}

// Pan maps a quantized pan to non-negative left/right channel
// multipliers on the constant-power quarter-circle, boosted near
// center per the Init parameter.
func Pan(q int) (l, r float64) {
	check(q)
	l = panLeft(q)
	r = panLeft(-q)
	return l, r
}

func panLeft(q int) float64 {
	i := (q - Min) / panStep
	frac := float64((q-Min)%panStep) / panStep
	v := panTable[i]
	if i+1 < panEntries {
		v += (panTable[i+1] - panTable[i]) * frac
	}
	if v < 0 {
		v = 0
	}
	return v
}
