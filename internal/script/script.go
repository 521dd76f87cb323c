// Package script interprets the textual generator-map language into a
// fully linked operator graph.
//
// The language is an entity stream: decimal integer literals (0-65535),
// name bindings (?v declare variable, @c declare constant, :v assign,
// =v get), parenthesized groups that must each produce exactly one
// value, named operations, and a closing |; marker. Comments run from
// '#' to end of line.
//
// Operations:
//
//	neg                       pop an integer, push its negation
//	nil                       push an absent-modulator placeholder
//	C  curve                  start a block curve with capacity C
//	w b  smooth               append a smooth block to the curve below
//	w a b  rough              append a rough block to the curve below
//	sine square triangle
//	sawtooth noise            push a wave kind
//	attack decay release
//	  limit peak_m  adsr      build an envelope (peak_m in thousandths)
//	wave mul_m boost amp
//	  fmfb_m amfb_m fms_m
//	  ams_m env fm am  op     build an op node (scales and feedbacks in
//	                          thousandths; fm/am are generators,
//	                          curves, or nil)
//	g1 .. gN N  additive      build an additive node over N children
//	g  yield                  declare g the root of the graph
//
// Every op construction claims the next instance-slot index, so the
// interpreter's result also reports how many slots a render of the
// graph needs.
package script

import (
	"errors"
	"fmt"

	"github.com/retro-synth/retro/internal/adsr"
	"github.com/retro-synth/retro/internal/curve"
	"github.com/retro-synth/retro/internal/gen"
)

// Interpreter error kinds. Every returned error wraps one of these
// plus the script line it was detected on.
var (
	ErrLexical     = errors.New("invalid token")
	ErrDupName     = errors.New("name already defined")
	ErrUndefName   = errors.New("undefined name")
	ErrConstAssign = errors.New("assignment to constant")
	ErrUnderflow   = errors.New("stack underflow")
	ErrOverflow    = errors.New("stack overflow")
	ErrNesting     = errors.New("groups nested too deeply")
	ErrUnbalanced  = errors.New("unbalanced grouping")
	ErrType        = errors.New("wrong value type")
	ErrYield       = errors.New("bad yield")
)

const (
	stackMax = 1024
	nestMax  = 64
)

// Result is a fully linked graph plus the number of instance slots the
// caller must allocate to render it.
type Result struct {
	Root      gen.Generator
	Instances int
}

type vkind int

const (
	vInt vkind = iota
	vEnv
	vGen
	vCurve
	vNil
)

func (k vkind) String() string {
	switch k {
	case vInt:
		return "integer"
	case vEnv:
		return "envelope"
	case vGen:
		return "generator"
	case vCurve:
		return "curve"
	default:
		return "nil"
	}
}

type value struct {
	kind vkind
	n    int
	env  *adsr.Envelope
	g    gen.Generator
	c    *curve.Curve
}

type binding struct {
	val      value
	constant bool
}

type interp struct {
	stack  []value
	groups []int
	names  map[string]*binding
	slots  int
	root   gen.Generator
}

// Run interprets the script and returns the yielded graph.
func Run(src string) (Result, error) {
	in := &interp{names: make(map[string]*binding)}
	lx := newLexer(src)
	for {
		ent, err := lx.next()
		if err != nil {
			return Result{}, err
		}
		if ent.kind == entEOF {
			if len(in.groups) != 0 {
				return Result{}, lineErr(ent.line, fmt.Errorf("%w at end of script", ErrUnbalanced))
			}
			if len(in.stack) != 0 {
				return Result{}, lineErr(ent.line, fmt.Errorf("%w: %d values left on stack", ErrType, len(in.stack)))
			}
			if in.root == nil {
				return Result{}, lineErr(ent.line, fmt.Errorf("%w: script did not yield a graph", ErrYield))
			}
			return Result{Root: in.root, Instances: in.slots}, nil
		}
		if err := in.apply(ent); err != nil {
			return Result{}, err
		}
	}
}

func (in *interp) apply(ent entity) error {
	switch ent.kind {
	case entNumber:
		return in.push(ent.line, value{kind: vInt, n: ent.num})
	case entVarDecl, entConstDecl:
		if _, ok := in.names[ent.name]; ok {
			return lineErr(ent.line, fmt.Errorf("%w: %s", ErrDupName, ent.name))
		}
		v, err := in.pop(ent.line)
		if err != nil {
			return err
		}
		in.names[ent.name] = &binding{val: v, constant: ent.kind == entConstDecl}
		return nil
	case entAssign:
		b, ok := in.names[ent.name]
		if !ok {
			return lineErr(ent.line, fmt.Errorf("%w: %s", ErrUndefName, ent.name))
		}
		if b.constant {
			return lineErr(ent.line, fmt.Errorf("%w: %s", ErrConstAssign, ent.name))
		}
		v, err := in.pop(ent.line)
		if err != nil {
			return err
		}
		b.val = v
		return nil
	case entGet:
		b, ok := in.names[ent.name]
		if !ok {
			return lineErr(ent.line, fmt.Errorf("%w: %s", ErrUndefName, ent.name))
		}
		return in.push(ent.line, b.val)
	case entBeginGroup:
		if len(in.groups) >= nestMax {
			return lineErr(ent.line, fmt.Errorf("%w", ErrNesting))
		}
		in.groups = append(in.groups, len(in.stack))
		return nil
	case entEndGroup:
		if len(in.groups) == 0 {
			return lineErr(ent.line, fmt.Errorf("%w: ) without (", ErrUnbalanced))
		}
		mark := in.groups[len(in.groups)-1]
		if len(in.stack) != mark+1 {
			return lineErr(ent.line, fmt.Errorf("%w: a group must produce exactly one value", ErrType))
		}
		in.groups = in.groups[:len(in.groups)-1]
		return nil
	case entOperation:
		return in.operate(ent)
	}
	return lineErr(ent.line, fmt.Errorf("%w: unexpected entity", ErrLexical))
}

func (in *interp) operate(ent entity) error {
	line := ent.line
	switch ent.name {
	case "neg":
		n, err := in.popInt(line)
		if err != nil {
			return err
		}
		return in.push(line, value{kind: vInt, n: -n})
	case "nil":
		return in.push(line, value{kind: vNil})
	case "sine", "square", "triangle", "sawtooth", "noise":
		waves := map[string]gen.Wave{
			"sine": gen.WaveSine, "square": gen.WaveSquare,
			"triangle": gen.WaveTriangle, "sawtooth": gen.WaveSawtooth,
			"noise": gen.WaveNoise,
		}
		return in.push(line, value{kind: vInt, n: int(waves[ent.name])})
	case "curve":
		c, err := in.popInt(line)
		if err != nil {
			return err
		}
		if c < 1 {
			return lineErr(line, fmt.Errorf("%w: curve capacity must be at least 1", ErrType))
		}
		return in.push(line, value{kind: vCurve, c: curve.New(c)})
	case "smooth":
		return in.opSmooth(line)
	case "rough":
		return in.opRough(line)
	case "adsr":
		return in.opADSR(line)
	case "op":
		return in.opOp(line)
	case "additive":
		return in.opAdditive(line)
	case "yield":
		v, err := in.pop(line)
		if err != nil {
			return err
		}
		if v.kind != vGen {
			return lineErr(line, fmt.Errorf("%w: yield needs a generator, got %s", ErrType, v.kind))
		}
		if in.root != nil {
			return lineErr(line, fmt.Errorf("%w: graph already yielded", ErrYield))
		}
		in.root = v.g
		return nil
	}
	return lineErr(line, fmt.Errorf("%w: operation %s", ErrUndefName, ent.name))
}

func (in *interp) opSmooth(line int) error {
	b, err := in.popInt(line)
	if err != nil {
		return err
	}
	w, cv, err := in.popBlockHead(line, b)
	if err != nil {
		return err
	}
	cv.c.AppendSmooth(w, int32(b))
	return in.push(line, cv)
}

func (in *interp) opRough(line int) error {
	b, err := in.popInt(line)
	if err != nil {
		return err
	}
	a, err := in.popInt(line)
	if err != nil {
		return err
	}
	if a < curve.ValMin || a > curve.ValMax {
		return lineErr(line, fmt.Errorf("%w: block value out of range", ErrType))
	}
	w, cv, err := in.popBlockHead(line, b)
	if err != nil {
		return err
	}
	cv.c.AppendRough(w, int32(a), int32(b))
	return in.push(line, cv)
}

// popBlockHead pops the width and curve shared by smooth and rough,
// validating everything the curve itself would reject.
func (in *interp) popBlockHead(line, b int) (int, value, error) {
	if b < curve.ValMin || b > curve.ValMax {
		return 0, value{}, lineErr(line, fmt.Errorf("%w: block value out of range", ErrType))
	}
	w, err := in.popInt(line)
	if err != nil {
		return 0, value{}, err
	}
	if w < 1 {
		return 0, value{}, lineErr(line, fmt.Errorf("%w: block width must be at least 1", ErrType))
	}
	cv, err := in.pop(line)
	if err != nil {
		return 0, value{}, err
	}
	if cv.kind != vCurve {
		return 0, value{}, lineErr(line, fmt.Errorf("%w: expected a curve, got %s", ErrType, cv.kind))
	}
	// The curve is shared by pointer, so fullness must be asked of the
	// curve itself; a stack or binding copy carries no state of its own.
	if cv.c.Full() {
		return 0, value{}, lineErr(line, fmt.Errorf("%w: curve is full", ErrType))
	}
	return w, cv, nil
}

func (in *interp) opADSR(line int) error {
	peakM, err := in.popInt(line)
	if err != nil {
		return err
	}
	limit, err := in.popInt(line)
	if err != nil {
		return err
	}
	release, err := in.popInt(line)
	if err != nil {
		return err
	}
	decay, err := in.popInt(line)
	if err != nil {
		return err
	}
	attack, err := in.popInt(line)
	if err != nil {
		return err
	}
	if attack < 0 || decay < 0 || release < 0 || limit < 0 || peakM <= 0 {
		return lineErr(line, fmt.Errorf("%w: adsr parameter out of range", ErrType))
	}
	env := adsr.New(attack, decay, release, limit, float64(peakM)/1000)
	return in.push(line, value{kind: vEnv, env: env})
}

func (in *interp) opOp(line int) error {
	am, err := in.popModulator(line)
	if err != nil {
		return err
	}
	fm, err := in.popModulator(line)
	if err != nil {
		return err
	}
	envVal, err := in.pop(line)
	if err != nil {
		return err
	}
	if envVal.kind != vEnv {
		return lineErr(line, fmt.Errorf("%w: op needs an envelope, got %s", ErrType, envVal.kind))
	}
	var nums [7]int // ams_m fms_m amfb_m fmfb_m amp boost mul_m, in pop order
	for i := range nums {
		nums[i], err = in.popInt(line)
		if err != nil {
			return err
		}
	}
	wave, err := in.popInt(line)
	if err != nil {
		return err
	}
	if wave < int(gen.WaveSine) || wave > int(gen.WaveNoise) {
		return lineErr(line, fmt.Errorf("%w: bad wave kind %d", ErrType, wave))
	}
	mulM := nums[6]
	if mulM <= 0 || nums[4] < 0 {
		return lineErr(line, fmt.Errorf("%w: op parameter out of range", ErrType))
	}
	node := gen.NewOp(gen.OpParams{
		Wave:       gen.Wave(wave),
		FreqMul:    float64(mulM) / 1000,
		FreqBoost:  float64(nums[5]),
		BaseAmp:    float64(nums[4]),
		FMFeedback: float64(nums[3]) / 1000,
		AMFeedback: float64(nums[2]) / 1000,
		FMScale:    float64(nums[1]) / 1000,
		AMScale:    float64(nums[0]) / 1000,
		Env:        envVal.env,
		FM:         fm,
		AM:         am,
		Slot:       in.slots,
	})
	in.slots++
	return in.push(line, value{kind: vGen, g: node})
}

func (in *interp) opAdditive(line int) error {
	n, err := in.popInt(line)
	if err != nil {
		return err
	}
	if n < 1 {
		return lineErr(line, fmt.Errorf("%w: additive needs at least one child", ErrType))
	}
	children := make([]gen.Generator, n)
	for i := n - 1; i >= 0; i-- {
		v, err := in.pop(line)
		if err != nil {
			return err
		}
		if v.kind != vGen {
			return lineErr(line, fmt.Errorf("%w: additive child must be a generator, got %s", ErrType, v.kind))
		}
		children[i] = v.g
	}
	return in.push(line, value{kind: vGen, g: gen.NewAdditive(children)})
}

// popModulator accepts a generator, a curve, or the nil placeholder.
func (in *interp) popModulator(line int) (gen.Generator, error) {
	v, err := in.pop(line)
	if err != nil {
		return nil, err
	}
	switch v.kind {
	case vGen:
		return v.g, nil
	case vCurve:
		return gen.NewCurve(v.c), nil
	case vNil:
		return nil, nil
	}
	return nil, lineErr(line, fmt.Errorf("%w: modulator must be a generator, a curve, or nil, got %s", ErrType, v.kind))
}

func (in *interp) push(line int, v value) error {
	if len(in.stack) >= stackMax {
		return lineErr(line, fmt.Errorf("%w", ErrOverflow))
	}
	in.stack = append(in.stack, v)
	return nil
}

func (in *interp) pop(line int) (value, error) {
	floor := 0
	if len(in.groups) > 0 {
		floor = in.groups[len(in.groups)-1]
	}
	if len(in.stack) <= floor {
		return value{}, lineErr(line, fmt.Errorf("%w", ErrUnderflow))
	}
	v := in.stack[len(in.stack)-1]
	in.stack = in.stack[:len(in.stack)-1]
	return v, nil
}

func (in *interp) popInt(line int) (int, error) {
	v, err := in.pop(line)
	if err != nil {
		return 0, err
	}
	if v.kind != vInt {
		return 0, lineErr(line, fmt.Errorf("%w: expected an integer, got %s", ErrType, v.kind))
	}
	return v.n, nil
}

func lineErr(line int, err error) error {
	return fmt.Errorf("line %d: %w", line, err)
}
