// Package sbuf accumulates interleaved stereo samples with 32-bit
// headroom and performs the deferred peak normalization that maps the
// loudest accumulated sample onto a caller-chosen 16-bit peak.
package sbuf

// Peak limits accepted by Stream.
const (
	PeakMin = 1
	PeakMax = 32767
)

// Sink receives the normalized pairs, typically a WAV writer.
type Sink interface {
	WriteStereo(l, r int16) error
}

// Buffer is an open/close guarded sequence of left/right pairs.
type Buffer struct {
	samples []int32
	closed  bool
}

// New returns an open, empty buffer.
func New() *Buffer {
	return &Buffer{samples: make([]int32, 0, 4096)}
}

// Push appends one stereo pair. Values keep their full 32-bit range so
// additive mixes can exceed 16 bits until normalization.
func (b *Buffer) Push(l, r int32) {
	if b.closed {
		panic("sbuf: push after close")
	}
	b.samples = append(b.samples, l, r)
}

// Len returns the number of pairs pushed so far.
func (b *Buffer) Len() int {
	return len(b.samples) / 2
}

// Close marks the buffer finished. Closing twice is a programmer
// error.
func (b *Buffer) Close() {
	if b.closed {
		panic("sbuf: already closed")
	}
	b.closed = true
}

// Stream normalizes the buffer so its largest absolute sample maps to
// peak, then emits every pair through the sink. A buffer whose peak is
// 0 is passed through unchanged. Every emitted value is clamped to
// [-peak, peak]. peak outside [PeakMin, PeakMax] is a programmer
// error.
func (b *Buffer) Stream(peak int32, sink Sink) error {
	if peak < PeakMin || peak > PeakMax {
		panic("sbuf: peak out of range")
	}
	var max int64
	for _, v := range b.samples {
		a := int64(v)
		if a < 0 {
			a = -a
		}
		if a > max {
			max = a
		}
	}
	for i := 0; i < len(b.samples); i += 2 {
		l := scale(int64(b.samples[i]), max, int64(peak))
		r := scale(int64(b.samples[i+1]), max, int64(peak))
		if err := sink.WriteStereo(l, r); err != nil {
			return err
		}
	}
	return nil
}

// scale maps v from [-max, max] onto [-peak, peak], truncating toward
// zero, and clamps the result.
func scale(v, max, peak int64) int16 {
	if max > 0 {
		v = v * peak / max
	}
	if v > peak {
		v = peak
	}
	if v < -peak {
		v = -peak
	}
	return int16(v)
}
