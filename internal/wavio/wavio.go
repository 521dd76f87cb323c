// Package wavio writes uncompressed 16-bit PCM RIFF/WAVE files in a
// single streaming pass. The header is emitted with placeholder chunk
// sizes that are patched in place on a successful Close; a failed
// render calls Discard instead, which removes the partial file.
package wavio

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"os"
)

const (
	headerSize = 44
	// maxFileSize caps output at about 1 GB; crossing it means the
	// caller lost control of the event length.
	maxFileSize = 1 << 30
)

// Channel modes accepted by Create.
const (
	Mono   = 1
	Stereo = 2
)

// Writer streams PCM sample pairs into a WAV file.
type Writer struct {
	f        *os.File
	w        *bufio.Writer
	path     string
	channels int
	written  int64 // data bytes, excluding the header
	done     bool
}

// Create opens path for writing and emits the placeholder header.
// channels must be Mono or Stereo and rate 44100 or 48000; violating
// either is a programmer error. File-system failures are runtime
// errors.
func Create(path string, channels, rate int) (*Writer, error) {
	if channels != Mono && channels != Stereo {
		panic("wavio: channel count must be 1 or 2")
	}
	if rate != 44100 && rate != 48000 {
		panic("wavio: unsupported sample rate")
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("wavio: create %s: %w", path, err)
	}
	w := &Writer{
		f:        f,
		w:        bufio.NewWriterSize(f, 1<<16),
		path:     path,
		channels: channels,
	}
	if err := w.writeHeader(rate); err != nil {
		f.Close()
		os.Remove(path)
		return nil, err
	}
	return w, nil
}

func (w *Writer) writeHeader(rate int) error {
	var hdr [headerSize]byte
	const bytesPerSample = 2
	blockAlign := w.channels * bytesPerSample
	copy(hdr[0:], "RIFF")
	// sizes at 4 and 40 are patched on Close
	copy(hdr[8:], "WAVE")
	copy(hdr[12:], "fmt ")
	binary.LittleEndian.PutUint32(hdr[16:], 16)
	binary.LittleEndian.PutUint16(hdr[20:], 1) // PCM
	binary.LittleEndian.PutUint16(hdr[22:], uint16(w.channels))
	binary.LittleEndian.PutUint32(hdr[24:], uint32(rate))
	binary.LittleEndian.PutUint32(hdr[28:], uint32(rate*blockAlign))
	binary.LittleEndian.PutUint16(hdr[32:], uint16(blockAlign))
	binary.LittleEndian.PutUint16(hdr[34:], 16)
	copy(hdr[36:], "data")
	if _, err := w.w.Write(hdr[:]); err != nil {
		return fmt.Errorf("wavio: write header: %w", err)
	}
	return nil
}

// WriteStereo appends one sample pair. In mono mode the two values
// must agree and a single sample is stored. Implements sbuf.Sink.
func (w *Writer) WriteStereo(l, r int16) error {
	if w.done {
		panic("wavio: write after close")
	}
	var buf [4]byte
	binary.LittleEndian.PutUint16(buf[0:], uint16(l))
	n := 2
	if w.channels == Stereo {
		binary.LittleEndian.PutUint16(buf[2:], uint16(r))
		n = 4
	} else if l != r {
		panic("wavio: unequal samples in mono mode")
	}
	if w.written+int64(n)+headerSize > maxFileSize {
		panic("wavio: output file would exceed the size limit")
	}
	if _, err := w.w.Write(buf[:n]); err != nil {
		return fmt.Errorf("wavio: write sample: %w", err)
	}
	w.written += int64(n)
	return nil
}

// Close flushes the data, patches the RIFF and data chunk sizes, and
// closes the file.
func (w *Writer) Close() error {
	if w.done {
		panic("wavio: already closed")
	}
	w.done = true
	if err := w.w.Flush(); err != nil {
		w.f.Close()
		return fmt.Errorf("wavio: flush: %w", err)
	}
	var sz [4]byte
	binary.LittleEndian.PutUint32(sz[:], uint32(headerSize-8+w.written))
	if _, err := w.f.WriteAt(sz[:], 4); err != nil {
		w.f.Close()
		return fmt.Errorf("wavio: patch riff size: %w", err)
	}
	binary.LittleEndian.PutUint32(sz[:], uint32(w.written))
	if _, err := w.f.WriteAt(sz[:], 40); err != nil {
		w.f.Close()
		return fmt.Errorf("wavio: patch data size: %w", err)
	}
	if err := w.f.Close(); err != nil {
		return fmt.Errorf("wavio: close: %w", err)
	}
	return nil
}

// Discard abandons the output: the file handle is closed and the
// partial file removed.
func (w *Writer) Discard() error {
	if w.done {
		panic("wavio: already closed")
	}
	w.done = true
	w.f.Close()
	if err := os.Remove(w.path); err != nil {
		return fmt.Errorf("wavio: remove %s: %w", w.path, err)
	}
	return nil
}
