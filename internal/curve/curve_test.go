package curve

import "testing"

func TestEmptyCurveIsZero(t *testing.T) {
	c := New(1)
	for _, tm := range []int64{0, 1, 1000000} {
		if got := c.Get(tm); got != 0 {
			t.Errorf("Get(%d) = %d, want 0", tm, got)
		}
	}
}

func TestSingleSmoothBlock(t *testing.T) {
	c := New(2)
	const w, b = 10, 1000
	c.AppendSmooth(w, b)
	for tm := int64(0); tm < w; tm++ {
		want := int32(int64(b) * (tm + 1) / w)
		if got := c.Get(tm); got != want {
			t.Errorf("Get(%d) = %d, want %d", tm, got, want)
		}
	}
	// Terminator and beyond repeat the endpoint.
	if got := c.Get(w); got != b {
		t.Errorf("Get(%d) = %d, want %d", int64(w), got, int32(b))
	}
	if got := c.Get(1 << 40); got != b {
		t.Errorf("far query = %d, want %d", got, int32(b))
	}
}

func TestSmoothContinuesFromPrevious(t *testing.T) {
	c := New(3)
	c.AppendSmooth(4, 800)
	c.AppendSmooth(4, 0)
	// Second block runs from 800 back down to 0.
	wants := []int32{600, 400, 200, 0}
	for i, want := range wants {
		if got := c.Get(int64(4 + i)); got != want {
			t.Errorf("Get(%d) = %d, want %d", 4+i, got, want)
		}
	}
}

func TestRoughBlockDiscontinuity(t *testing.T) {
	c := New(3)
	c.AppendSmooth(4, 1000)
	c.AppendRough(5, -500, 0)
	// First position of the rough block steps toward 0 from -500, not
	// from the previous endpoint 1000.
	if got := c.Get(4); got != -400 {
		t.Errorf("Get(4) = %d, want -400", got)
	}
	if got := c.Get(8); got != 0 {
		t.Errorf("Get(8) = %d, want 0", got)
	}
}

func TestWideBlockNoOverflow(t *testing.T) {
	c := New(2)
	const w = 1 << 30
	c.AppendSmooth(w, ValMax)
	if got := c.Get(w - 1); got != ValMax {
		t.Errorf("Get(last) = %d, want %d", got, int32(ValMax))
	}
	if got := c.Get(w / 2); got <= 0 || got > ValMax {
		t.Errorf("midpoint = %d, want roughly half scale", got)
	}
}

func TestFullTracksAppends(t *testing.T) {
	c := New(3)
	if c.Full() {
		t.Error("fresh curve reports full")
	}
	c.AppendSmooth(1, 1)
	if c.Full() {
		t.Error("one of two slots used, reports full")
	}
	c.AppendSmooth(1, 2)
	if !c.Full() {
		t.Error("all slots used, reports not full")
	}
}

func TestAppendRejections(t *testing.T) {
	mustPanic := func(name string, f func()) {
		t.Helper()
		defer func() {
			if recover() == nil {
				t.Errorf("%s did not panic", name)
			}
		}()
		f()
	}
	mustPanic("zero capacity", func() { New(0) })
	mustPanic("zero width", func() {
		New(2).AppendSmooth(0, 0)
	})
	mustPanic("endpoint out of range", func() {
		New(2).AppendSmooth(1, ValMax+1)
	})
	mustPanic("rough start out of range", func() {
		New(2).AppendRough(1, ValMin-1, 0)
	})
	mustPanic("append past capacity", func() {
		c := New(2)
		c.AppendSmooth(1, 1)
		c.AppendSmooth(1, 2)
	})
}
