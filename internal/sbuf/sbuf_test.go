package sbuf

import (
	"math"
	"testing"
)

type capture struct {
	pairs [][2]int16
}

func (c *capture) WriteStereo(l, r int16) error {
	c.pairs = append(c.pairs, [2]int16{l, r})
	return nil
}

func TestDCNormalization(t *testing.T) {
	b := New()
	for i := 0; i < 48000; i++ {
		b.Push(10000, 10000)
	}
	b.Close()

	var out capture
	if err := b.Stream(20000, &out); err != nil {
		t.Fatal(err)
	}
	if len(out.pairs) != 48000 {
		t.Fatalf("emitted %d pairs, want 48000", len(out.pairs))
	}
	for i, p := range out.pairs {
		if p[0] != 20000 || p[1] != 20000 {
			t.Fatalf("pair %d = %v, want (20000, 20000)", i, p)
		}
	}
}

func TestSilencePassesThrough(t *testing.T) {
	b := New()
	for i := 0; i < 1000; i++ {
		b.Push(0, 0)
	}
	b.Close()
	var out capture
	if err := b.Stream(32767, &out); err != nil {
		t.Fatal(err)
	}
	for i, p := range out.pairs {
		if p[0] != 0 || p[1] != 0 {
			t.Fatalf("pair %d = %v, want silence", i, p)
		}
	}
}

func TestPeakReached(t *testing.T) {
	// The post-stream maximum magnitude must equal peak (within one
	// count of truncation), whatever the accumulated scale was.
	for _, tc := range []struct {
		name string
		vals []int32
		peak int32
	}{
		{"attenuate", []int32{300000, -150000, 75000}, 12000},
		{"amplify", []int32{40, -25, 13}, 32767},
		{"already at peak", []int32{32767, -32767}, 32767},
		{"headroom beyond 16 bits", []int32{2000000000, -1000000000}, 30000},
	} {
		t.Run(tc.name, func(t *testing.T) {
			b := New()
			for _, v := range tc.vals {
				b.Push(v, -v)
			}
			b.Close()
			var out capture
			if err := b.Stream(tc.peak, &out); err != nil {
				t.Fatal(err)
			}
			var max int
			for _, p := range out.pairs {
				for _, v := range p {
					a := int(math.Abs(float64(v)))
					if a > max {
						max = a
					}
					if a > int(tc.peak) {
						t.Fatalf("sample %d beyond peak %d", v, tc.peak)
					}
				}
			}
			if max < int(tc.peak)-1 {
				t.Errorf("post-stream max = %d, want %d within 1", max, tc.peak)
			}
		})
	}
}

func TestSignPreserved(t *testing.T) {
	b := New()
	b.Push(-10000, 10000)
	b.Close()
	var out capture
	if err := b.Stream(20000, &out); err != nil {
		t.Fatal(err)
	}
	if got := out.pairs[0]; got[0] != -20000 || got[1] != 20000 {
		t.Errorf("pair = %v, want (-20000, 20000)", got)
	}
}

func TestTruncationTowardZero(t *testing.T) {
	b := New()
	b.Push(3, 10) // 3 * 7 / 10 = 2.1 -> 2
	b.Close()
	var out capture
	if err := b.Stream(7, &out); err != nil {
		t.Fatal(err)
	}
	if got := out.pairs[0]; got[0] != 2 || got[1] != 7 {
		t.Errorf("pair = %v, want (2, 7)", got)
	}
}

func TestLifecycleGuards(t *testing.T) {
	mustPanic := func(name string, f func()) {
		t.Helper()
		defer func() {
			if recover() == nil {
				t.Errorf("%s did not panic", name)
			}
		}()
		f()
	}
	mustPanic("push after close", func() {
		b := New()
		b.Close()
		b.Push(0, 0)
	})
	mustPanic("double close", func() {
		b := New()
		b.Close()
		b.Close()
	})
	mustPanic("peak too small", func() {
		New().Stream(0, &capture{})
	})
	mustPanic("peak too large", func() {
		New().Stream(32768, &capture{})
	})
}
