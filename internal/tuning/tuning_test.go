package tuning

import (
	"math"
	"testing"
)

func TestReferencePitches(t *testing.T) {
	for _, tc := range []struct {
		name string
		key  int
		want float64
	}{
		{"A4 exact", 9, 440.0},
		{"middle C", 0, 261.6255653005986},
		{"A0", -39, 27.5},
		{"C8", 48, 4186.009044809578},
		{"A3 octave below reference", -3, 220.0},
	} {
		t.Run(tc.name, func(t *testing.T) {
			got := Freq(tc.key)
			if math.Abs(got-tc.want) > 1e-9*tc.want {
				t.Errorf("Freq(%d) = %v, want %v", tc.key, got, tc.want)
			}
		})
	}
}

func TestOctaveDoubling(t *testing.T) {
	for k := KeyMin; k+12 <= KeyMax; k++ {
		ratio := Freq(k+12) / Freq(k)
		if math.Abs(ratio-2) > 1e-12 {
			t.Fatalf("Freq(%d)/Freq(%d) = %v, want 2", k+12, k, ratio)
		}
	}
}

func TestOutOfRangePanics(t *testing.T) {
	for _, key := range []int{KeyMin - 1, KeyMax + 1} {
		func() {
			defer func() {
				if recover() == nil {
					t.Errorf("Freq(%d) did not panic", key)
				}
			}()
			Freq(key)
		}()
	}
}
