// Package tuning provides the fixed piano-key tuning table.
//
// Keys are integers with 0 = middle C (C4) in twelve-tone equal
// temperament tuned to A4 = 440 Hz. The covered range is the 88-key
// piano compass plus the extensions used by the renderers: key -39
// (A0) through key 48 (C8).
package tuning

import "math"

// Key range accepted by Freq.
const (
	KeyMin = -39
	KeyMax = 48
)

// a4Key is the piano key of A4 relative to middle C.
const a4Key = 9

var table [KeyMax - KeyMin + 1]float64

func init() {
	for k := KeyMin; k <= KeyMax; k++ {
		table[k-KeyMin] = 440.0 * math.Pow(2, float64(k-a4Key)/12.0)
	}
	// Keep the reference pitch exact rather than trusting Pow(2, 0).
	table[a4Key-KeyMin] = 440.0
}

// Freq returns the frequency in Hz of the given piano key.
// Keys outside [KeyMin, KeyMax] are a programmer error.
func Freq(key int) float64 {
	if key < KeyMin || key > KeyMax {
		panic("tuning: key out of range")
	}
	return table[key-KeyMin]
}
