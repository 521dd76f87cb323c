package gen

import "github.com/retro-synth/retro/internal/curve"

// curveNode adapts a block curve into a generator so a curve can feed
// an op's FM or AM input. It is stateless per render and contributes
// nothing to the graph's length.
type curveNode struct {
	c *curve.Curve
}

// NewCurve wraps a block curve as a generator.
func NewCurve(c *curve.Curve) Generator {
	if c == nil {
		panic("gen: nil curve")
	}
	return &curveNode{c: c}
}

func (n *curveNode) Length(slots []Instance) int { return 0 }

func (n *curveNode) Invoke(slots []Instance, t int) float64 {
	return float64(n.c.Get(int64(t)))
}
