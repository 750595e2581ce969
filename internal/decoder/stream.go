package decoder

import (
	"errors"
	"io"
	"slices"

	"github.com/gopxl/beep/v2"
)

// pcmStream is a decoded stream at its own rate. Positions and lengths are
// in frames of that rate.
type pcmStream interface {
	// read appends at most frames frames of 16-bit stereo to dst. At the
	// end it returns io.EOF, possibly along with the last frames.
	read(dst []byte, frames int) ([]byte, int, error)
	// seek moves to frame, clamped to the stream.
	seek(frame int64) error
	frames() int64
	rate() int
	codecName() string
	close() error
}

// beepStream adapts the beep decoders (FLAC, WAV) to pcmStream.
type beepStream struct {
	s      beep.StreamSeekCloser
	format beep.Format
	name   string
	buf    [][2]float64
}

func newBeepStream(s beep.StreamSeekCloser, format beep.Format, name string) *beepStream {
	return &beepStream{s: s, format: format, name: name}
}

func (b *beepStream) read(dst []byte, frames int) ([]byte, int, error) {
	if cap(b.buf) < frames {
		b.buf = make([][2]float64, frames)
	}
	n, ok := b.s.Stream(b.buf[:frames])
	dst = appendStereo16(dst, b.buf[:n])
	if ok && n > 0 {
		return dst, n, nil
	}
	if err := b.s.Err(); err != nil {
		return dst, n, err
	}
	return dst, n, io.EOF
}

func (b *beepStream) seek(frame int64) error {
	return b.s.Seek(int(min(max(frame, 0), b.frames())))
}

func (b *beepStream) frames() int64     { return int64(b.s.Len()) }
func (b *beepStream) rate() int         { return int(b.format.SampleRate) }
func (b *beepStream) codecName() string { return b.name }
func (b *beepStream) close() error      { return b.s.Close() }

// streamer feeds a pcmStream into beep, for resampling.
type streamer struct {
	s   pcmStream
	raw []byte
	err error
}

func (p *streamer) Stream(samples [][2]float64) (int, bool) {
	if p.err != nil {
		return 0, false
	}
	raw, _, err := p.s.read(p.raw[:0], len(samples))
	p.raw = raw
	if err != nil && !errors.Is(err, io.EOF) {
		p.err = err
	}
	n := readStereo16(samples, raw)
	return n, n > 0
}

func (p *streamer) Err() error { return p.err }

// grow returns dst with room for frames more frames.
func grow(dst []byte, frames int) []byte {
	return slices.Grow(dst, frames*stereo16FrameSize)
}
