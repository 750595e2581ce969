package decoder

import (
	"errors"
	"io"

	"github.com/llehouerou/go-mp3"
)

// mp3Stream passes go-mp3 output through: it is already 16-bit stereo.
type mp3Stream struct {
	in  *input
	dec *mp3.Decoder
}

func openMP3(in *input) (*mp3Stream, error) {
	dec, err := mp3.NewDecoder(in)
	if err != nil {
		return nil, err
	}
	if dec.SampleRate() <= 0 {
		return nil, errors.New("mp3: invalid sample rate")
	}
	return &mp3Stream{in: in, dec: dec}, nil
}

func (s *mp3Stream) read(dst []byte, frames int) ([]byte, int, error) {
	start := len(dst)
	dst = grow(dst, frames)[:start+frames*stereo16FrameSize]
	got, err := io.ReadFull(s.dec, dst[start:])
	got -= got % stereo16FrameSize
	dst = dst[:start+got]
	n := got / stereo16FrameSize
	switch {
	case err == nil:
		return dst, n, nil
	case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		return dst, n, io.EOF
	}
	return dst, n, err
}

func (s *mp3Stream) seek(frame int64) error {
	return s.dec.SeekToSample(min(max(frame, 0), s.frames()))
}

func (s *mp3Stream) frames() int64     { return max(s.dec.SampleCount(), 0) }
func (s *mp3Stream) rate() int         { return s.dec.SampleRate() }
func (s *mp3Stream) codecName() string { return "mp3" }
func (s *mp3Stream) close() error      { return s.in.Close() }
