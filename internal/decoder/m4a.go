package decoder

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/llehouerou/alac"
	"github.com/llehouerou/go-faad2"
	"github.com/llehouerou/go-m4a"
)

// m4aStream decodes the AAC or ALAC track of an MP4 container one sample
// (access unit) at a time. The AAC decoder runs in a wasm runtime and ctx
// bounds every call into it, so a cancelled load stops decoding.
type m4aStream struct {
	ctx       context.Context
	in        *input
	container *m4a.Reader
	codec     m4a.CodecType
	hz        int
	ch        int
	bits      int
	length    int64

	aac  *faad2.Decoder
	alac *alac.Alac

	index   int    // next container sample
	pending []byte // decoded 16-bit stereo not yet returned
	skip    int64  // frames to drop after a seek lands early
}

func openM4A(ctx context.Context, in *input) (*m4aStream, error) {
	container, err := m4a.Open(in)
	if err != nil {
		return nil, err
	}
	s := &m4aStream{
		ctx:       ctx,
		in:        in,
		container: container,
		codec:     container.Codec(),
		hz:        int(container.SampleRate()),
		ch:        int(container.Channels()),
		bits:      int(container.SampleSize()),
	}
	if s.hz <= 0 || s.ch < 1 {
		return nil, fmt.Errorf("mp4: %d Hz, %d channels", s.hz, s.ch)
	}
	s.length = s.toFrame(container.Duration())

	switch s.codec {
	case m4a.CodecAAC:
		dec, err := faad2.NewDecoder(ctx)
		if err != nil {
			return nil, err
		}
		if err := dec.Init(ctx, container.CodecConfig()); err != nil {
			_ = dec.Close(context.Background())
			return nil, err
		}
		s.aac = dec
	case m4a.CodecALAC:
		dec, err := alac.NewWithConfig(alac.Config{
			SampleRate:  s.hz,
			SampleSize:  s.bits,
			NumChannels: s.ch,
			FrameSize:   4096,
		})
		if err != nil {
			return nil, err
		}
		s.alac = dec
	default:
		return nil, fmt.Errorf("%w: codec %s in MP4 container", ErrUnknownFormat, s.codec)
	}
	return s, nil
}

func (s *m4aStream) toFrame(d time.Duration) int64 {
	return int64(d.Seconds() * float64(s.hz))
}

func (s *m4aStream) read(dst []byte, frames int) ([]byte, int, error) {
	n := 0
	for n < frames {
		if len(s.pending) == 0 {
			if err := s.decodeNext(); err != nil {
				return dst, n, err
			}
			continue
		}
		take := min(frames-n, len(s.pending)/stereo16FrameSize)
		dst = append(dst, s.pending[:take*stereo16FrameSize]...)
		s.pending = s.pending[take*stereo16FrameSize:]
		n += take
	}
	return dst, n, nil
}

// decodeNext refills pending from the next container sample.
func (s *m4aStream) decodeNext() error {
	if s.index >= s.container.SampleCount() {
		return io.EOF
	}
	data, err := s.container.ReadSample(s.index)
	if err != nil {
		return err
	}
	s.index++

	pending := s.pending[:0]
	switch s.codec {
	case m4a.CodecAAC:
		pcm, err := s.aac.Decode(s.ctx, data)
		if err != nil {
			return err
		}
		pending = appendInterleaved(pending, pcm, s.ch)
	case m4a.CodecALAC:
		pending = s.appendALAC(pending, s.alac.Decode(data))
	}

	if s.skip > 0 {
		drop := min(s.skip, int64(len(pending)/stereo16FrameSize))
		s.skip -= drop
		pending = pending[drop*stereo16FrameSize:]
	}
	s.pending = pending
	return nil
}

// appendALAC converts little-endian 16 or 24-bit ALAC output to 16-bit
// stereo. 24-bit samples keep their top 16 bits.
func (s *m4aStream) appendALAC(dst, raw []byte) []byte {
	width := 2
	if s.bits == 24 {
		width = 3
	}
	whole := len(raw) - len(raw)%(width*s.ch)
	pcm := make([]int16, 0, whole/width)
	for off := 0; off < whole; off += width {
		pcm = append(pcm, int16(uint16(raw[off+width-2])|uint16(raw[off+width-1])<<8)) //nolint:gosec // sample bits
	}
	return appendInterleaved(dst, pcm, s.ch)
}

// seek lands on the container sample holding frame and drops what comes
// before it.
func (s *m4aStream) seek(frame int64) error {
	frame = min(max(frame, 0), s.length)
	at := time.Duration(float64(frame) / float64(s.hz) * float64(time.Second))
	s.index = s.container.SeekToTime(at)
	s.skip = max(frame-s.toFrame(s.container.SampleTime(s.index)), 0)
	s.pending = s.pending[:0]
	return nil
}

func (s *m4aStream) frames() int64     { return s.length }
func (s *m4aStream) rate() int         { return s.hz }
func (s *m4aStream) codecName() string { return s.codec.String() }

func (s *m4aStream) close() error {
	if s.aac != nil {
		_ = s.aac.Close(context.Background())
	}
	return s.in.Close()
}
