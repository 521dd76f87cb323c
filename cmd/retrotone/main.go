// Command retrotone renders the legacy square-wave instrument: one
// note at a piano key, band-limited and peak-normalized.
//
// Usage:
//
//	retrotone [flags] path pitch seconds rate amplitude
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/retro-synth/retro"
	"github.com/retro-synth/retro/internal/tuning"
)

func main() {
	log.SetFlags(0)
	log.SetPrefix("retrotone: ")

	var (
		hlimit = flag.Int("hlimit", 0, "max harmonics (0 = Nyquist only)")
		stereo = flag.Bool("stereo", false, "render two channels")
		pan    = flag.Int("pan", 0, "quantized pan, -32767 (left) to 32767 (right); implies -stereo")
		center = flag.Int("center", 0, "quantized center loudness correction for stereo pan")
	)
	flag.Parse()
	if flag.NArg() != 5 {
		fmt.Fprintln(os.Stderr, "usage: retrotone [flags] path pitch seconds rate amplitude")
		os.Exit(2)
	}

	var (
		p   retro.EventParams
		err error
	)
	if p.Key, err = strconv.Atoi(flag.Arg(1)); err != nil || p.Key < tuning.KeyMin || p.Key > tuning.KeyMax {
		log.Fatalf("bad pitch %q (expected %d to %d)", flag.Arg(1), tuning.KeyMin, tuning.KeyMax)
	}
	if p.Seconds, err = strconv.ParseFloat(flag.Arg(2), 64); err != nil || p.Seconds <= 0 {
		log.Fatalf("bad seconds %q", flag.Arg(2))
	}
	if p.Rate, err = strconv.Atoi(flag.Arg(3)); err != nil || (p.Rate != 44100 && p.Rate != 48000) {
		log.Fatalf("bad rate %q (expected 44100 or 48000)", flag.Arg(3))
	}
	if p.Amp, err = strconv.Atoi(flag.Arg(4)); err != nil || p.Amp < 1 || p.Amp > 32767 {
		log.Fatalf("bad amplitude %q (expected 1-32767)", flag.Arg(4))
	}
	if *hlimit < 0 {
		log.Fatalf("bad hlimit %d (expected 0 or more)", *hlimit)
	}
	if *pan < -32767 || *pan > 32767 {
		log.Fatalf("bad pan %d (expected -32767 to 32767)", *pan)
	}
	if *center < -32767 || *center > 32767 {
		log.Fatalf("bad center %d (expected -32767 to 32767)", *center)
	}
	p.HLimit = *hlimit
	p.Stereo = *stereo || *pan != 0
	p.Pan = *pan
	p.Center = *center

	if err := retro.RenderSquare(p, flag.Arg(0)); err != nil {
		log.Fatal(err)
	}
}
