// Package curve implements the piecewise-linear intensity curve built
// from an ordered run of smooth and rough blocks.
//
// A smooth block continues from the previous block's endpoint (or 0
// when it is first); a rough block restarts from its own stated value,
// creating a discontinuity. Past the last block the final endpoint is
// held forever.
package curve

// Value range for block endpoints and query results.
const (
	ValMin = -32767
	ValMax = 32767
)

type block struct {
	width int64
	rough bool
	a     int32
	b     int32
}

// Curve is an append-only sequence of blocks. Shared by pointer.
type Curve struct {
	blocks []block
	limit  int
}

// New allocates a curve with room for capacity-1 blocks; one slot is
// reserved for the terminator. capacity < 1 is a programmer error.
func New(capacity int) *Curve {
	if capacity < 1 {
		panic("curve: capacity must be at least 1")
	}
	return &Curve{limit: capacity - 1}
}

// AppendSmooth adds a block of the given width that interpolates from
// the running value to endpoint b.
func (c *Curve) AppendSmooth(width int, b int32) {
	c.append(block{width: int64(width), b: b}, width)
}

// AppendRough adds a block of the given width that interpolates from
// its own start a to endpoint b, discontinuously with what precedes it.
func (c *Curve) AppendRough(width int, a, b int32) {
	if a < ValMin || a > ValMax {
		panic("curve: start value out of range")
	}
	c.append(block{width: int64(width), rough: true, a: a, b: b}, width)
}

// Full reports whether every block slot is already used.
func (c *Curve) Full() bool {
	return len(c.blocks) >= c.limit
}

func (c *Curve) append(bl block, width int) {
	if len(c.blocks) >= c.limit {
		panic("curve: full")
	}
	if width < 1 {
		panic("curve: width must be at least 1")
	}
	if bl.b < ValMin || bl.b > ValMax {
		panic("curve: endpoint out of range")
	}
	c.blocks = append(c.blocks, bl)
}

// Get returns the curve value at time t >= 0. Queries at or past the
// terminator repeat the last endpoint, or 0 for an empty curve.
func (c *Curve) Get(t int64) int32 {
	if t < 0 {
		panic("curve: negative time")
	}
	start := int64(0) // value carried in from the previous block
	pos := t
	for _, bl := range c.blocks {
		if pos < bl.width {
			from := start
			if bl.rough {
				from = int64(bl.a)
			}
			v := from + ((int64(bl.b)-from)*(pos+1))/bl.width
			return clampVal(v)
		}
		pos -= bl.width
		start = int64(bl.b)
	}
	return clampVal(start)
}

func clampVal(v int64) int32 {
	if v < ValMin {
		return ValMin
	}
	if v > ValMax {
		return ValMax
	}
	return int32(v)
}
