// Command retrowav renders a generator-map script to a WAV file.
//
// Usage:
//
//	retrowav [flags] path pitch seconds rate amplitude script
//
// path is the output WAV file, pitch a piano key (0 = middle C),
// seconds the event duration, rate 44100 or 48000, amplitude the
// normalization peak (1-32767), and script the generator-map file.
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
	log.SetPrefix("retrowav: ")

	var (
		hlimit = flag.Int("hlimit", 0, "max harmonics per band-limited wave (0 = Nyquist only)")
		stereo = flag.Bool("stereo", false, "render two channels")
		pan    = flag.Int("pan", 0, "quantized pan, -32767 (left) to 32767 (right); implies -stereo")
		center = flag.Int("center", 0, "quantized center loudness correction for stereo pan")
	)
	flag.Parse()
	if flag.NArg() != 6 {
		fmt.Fprintln(os.Stderr, "usage: retrowav [flags] path pitch seconds rate amplitude script")
		os.Exit(2)
	}

	p, err := eventArgs(flag.Args())
	if err != nil {
		log.Fatal(err)
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

	src, err := os.ReadFile(flag.Arg(5))
	if err != nil {
		log.Fatalf("cannot open script: %v", err)
	}
	if err := retro.RenderScript(string(src), p, flag.Arg(0)); err != nil {
		log.Fatal(err)
	}
}

// eventArgs parses the shared positional arguments
// path pitch seconds rate amplitude.
func eventArgs(args []string) (retro.EventParams, error) {
	var p retro.EventParams
	var err error
	if p.Key, err = strconv.Atoi(args[1]); err != nil || p.Key < tuning.KeyMin || p.Key > tuning.KeyMax {
		return p, fmt.Errorf("bad pitch %q (expected %d to %d)", args[1], tuning.KeyMin, tuning.KeyMax)
	}
	if p.Seconds, err = strconv.ParseFloat(args[2], 64); err != nil || p.Seconds <= 0 {
		return p, fmt.Errorf("bad seconds %q", args[2])
	}
	if p.Rate, err = strconv.Atoi(args[3]); err != nil || (p.Rate != 44100 && p.Rate != 48000) {
		return p, fmt.Errorf("bad rate %q (expected 44100 or 48000)", args[3])
	}
	if p.Amp, err = strconv.Atoi(args[4]); err != nil || p.Amp < 1 || p.Amp > 32767 {
		return p, fmt.Errorf("bad amplitude %q (expected 1-32767)", args[4])
	}
	return p, nil
}
