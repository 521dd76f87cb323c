// Package retro renders synthesizer events into 16-bit PCM WAV files.
//
// An event is one note: a piano key, a duration, and a generator graph
// that is walked once per output sample. The graph comes either from a
// generator-map script (RenderScript) or from the fixed legacy
// square-wave instrument (RenderSquare). Samples accumulate in a
// 32-bit buffer and are peak-normalized to the requested amplitude
// before being streamed to disk.
package retro

import (
	"fmt"
	"math"
	"os"
	"sync"

	"github.com/retro-synth/retro/internal/adsr"
	"github.com/retro-synth/retro/internal/gen"
	"github.com/retro-synth/retro/internal/quant"
	"github.com/retro-synth/retro/internal/sbuf"
	"github.com/retro-synth/retro/internal/script"
	"github.com/retro-synth/retro/internal/tuning"
	"github.com/retro-synth/retro/internal/wavio"
)

// EventParams describes one rendering event.
type EventParams struct {
	Key     int     // piano key, 0 = middle C
	Seconds float64 // event duration before release
	Rate    int     // 44100 or 48000
	Amp     int     // normalization peak, 1..32767
	HLimit  int     // harmonic count cap, 0 = Nyquist only
	Stereo  bool    // render two channels with pan applied
	Pan     int     // quantized pan, used when Stereo
	Center  int     // quantized center loudness for the pan tables
}

// panInit guards the process-wide quantization tables; the first
// stereo render's Center wins.
var panInit sync.Once

// RenderScript interprets a generator-map script and renders its graph
// to a WAV file at path.
func RenderScript(src string, p EventParams, path string) error {
	res, err := script.Run(src)
	if err != nil {
		return fmt.Errorf("script: %w", err)
	}
	return renderGraph(res.Root, res.Instances, p, path)
}

// RenderSquare renders the legacy instrument: a single band-limited
// square wave at the key's tuning-table frequency.
func RenderSquare(p EventParams, path string) error {
	root := gen.NewOp(gen.OpParams{
		Wave:    gen.WaveSquare,
		FreqMul: 1,
		BaseAmp: 20000,
		Env:     adsr.New(0, 0, 0, 0, 1),
		Slot:    0,
	})
	return renderGraph(root, 1, p, path)
}

func renderGraph(root gen.Generator, instances int, p EventParams, path string) error {
	if p.Seconds <= 0 {
		return fmt.Errorf("render: duration %v seconds out of range", p.Seconds)
	}
	if p.Amp < sbuf.PeakMin || p.Amp > sbuf.PeakMax {
		return fmt.Errorf("render: amplitude %d out of range", p.Amp)
	}
	if p.HLimit < 0 {
		return fmt.Errorf("render: harmonic limit %d out of range", p.HLimit)
	}
	if p.Stereo {
		if p.Pan < -32767 || p.Pan > 32767 {
			return fmt.Errorf("render: pan %d out of range", p.Pan)
		}
		if p.Center < -32767 || p.Center > 32767 {
			return fmt.Errorf("render: center %d out of range", p.Center)
		}
	}
	freq := tuning.Freq(p.Key)
	dur := int(p.Seconds * float64(p.Rate))
	if dur < 1 {
		dur = 1
	}

	slots := make([]gen.Instance, instances)
	for i := range slots {
		slots[i].Reset(freq, dur, p.Rate, p.HLimit)
	}
	total := root.Length(slots)

	pl, pr := 1.0, 1.0
	channels := wavio.Mono
	if p.Stereo {
		panInit.Do(func() { quant.Init(p.Center) })
		pl, pr = quant.Pan(p.Pan)
		channels = wavio.Stereo
	}

	buf := sbuf.New()
	for t := 0; t < total; t++ {
		v := root.Invoke(slots, t)
		buf.Push(toSample(v*pl), toSample(v*pr))
	}
	buf.Close()

	w, err := wavio.Create(path, channels, p.Rate)
	if err != nil {
		return err
	}
	if err := buf.Stream(int32(p.Amp), w); err != nil {
		w.Discard()
		return err
	}
	if err := w.Close(); err != nil {
		os.Remove(path)
		return err
	}
	return nil
}

// toSample converts an accumulated float sample to the buffer's 32-bit
// domain, saturating rather than relying on conversion behavior for
// out-of-range values.
func toSample(v float64) int32 {
	if math.IsNaN(v) {
		return 0
	}
	if v >= math.MaxInt32 {
		return math.MaxInt32
	}
	if v <= math.MinInt32 {
		return math.MinInt32
	}
	return int32(v)
}
