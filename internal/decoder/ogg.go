package decoder

import (
	"errors"
	"fmt"
	"io"
)

// oggStream decodes an Ogg/Opus voice message or an Ogg/Vorbis song to
// 16-bit stereo at the codec rate, one page at a time.
//
// Frame positions come from page granules: the frames decoded from a page
// end at its granule, so the first one sits at the granule minus what the
// page produced. Frames before zero are the Opus pre-skip; frames past
// length are end trimming. Both are dropped.
type oggStream struct {
	in     *input
	pages  *OggReader
	codec  oggCodec
	length int64

	buf      []byte // decoded frames of the current page
	bufStart int64  // position of the first frame in buf
	next     int64  // position after the last page decoded
	pos      int64  // next frame read returns
	err      error
}

// openOgg reads the codec headers and leaves in on the first audio page.
func openOgg(in *input) (*oggStream, error) {
	pages := NewOggReader(in)
	page, err := pages.ReadPage()
	if err != nil {
		return nil, fmt.Errorf("ogg: first page: %w", err)
	}
	codec, err := newOggCodec(page.Packets[0])
	if err != nil {
		return nil, err
	}

	rest := page.Packets[1:]
	for ready := false; !ready; {
		for len(rest) == 0 {
			page, err := pages.ReadPage()
			if err != nil {
				return nil, fmt.Errorf("%s: headers: %w", codec.name(), err)
			}
			rest = page.Packets
		}
		if ready, err = codec.header(rest[0]); err != nil {
			return nil, err
		}
		rest = rest[1:]
	}

	// Both mappings end the last header on a page boundary.
	if err := pages.MarkDataStart(); err != nil {
		return nil, err
	}
	if err := pages.ScanLastGranule(); err != nil {
		return nil, err
	}
	length := pages.LastGranule() - int64(codec.preSkip())
	if length <= 0 {
		return nil, ErrZeroDuration
	}
	return &oggStream{
		in:     in,
		pages:  pages,
		codec:  codec,
		length: length,
		next:   -int64(codec.preSkip()),
	}, nil
}

func (s *oggStream) rate() int         { return s.codec.rate() }
func (s *oggStream) codecName() string { return s.codec.name() }
func (s *oggStream) frames() int64     { return s.length }
func (s *oggStream) close() error      { return s.in.Close() }

func (s *oggStream) read(dst []byte, frames int) ([]byte, int, error) {
	n := 0
	for n < frames {
		if s.pos >= s.length {
			return dst, n, io.EOF
		}
		if end := s.bufStart + int64(len(s.buf)/stereo16FrameSize); s.pos >= end {
			if err := s.fill(); err != nil {
				return dst, n, err
			}
			continue
		}
		if s.pos < s.bufStart {
			// A page in front of the target that produced less than it
			// claimed. Nothing to play before bufStart.
			s.pos = s.bufStart
			continue
		}
		from := (s.pos - s.bufStart) * stereo16FrameSize
		take := min(int64(frames-n), s.length-s.pos, int64(len(s.buf))/stereo16FrameSize-(s.pos-s.bufStart))
		dst = append(dst, s.buf[from:from+take*stereo16FrameSize]...)
		n += int(take)
		s.pos += take
	}
	return dst, n, nil
}

// fill decodes the next page into buf. Packets the codec rejects are
// dropped and playback goes on.
func (s *oggStream) fill() error {
	if s.err != nil {
		return s.err
	}
	page, err := s.pages.ReadPage()
	if err != nil {
		if !errors.Is(err, io.EOF) {
			s.err = fmt.Errorf("%s: %w", s.codec.name(), err)
			return s.err
		}
		return io.EOF
	}

	s.buf = s.buf[:0]
	for _, packet := range page.Packets {
		pcm, err := s.codec.decode(packet)
		if err != nil {
			continue
		}
		s.buf = appendInterleaved(s.buf, pcm, s.codec.channels())
	}
	decoded := int64(len(s.buf) / stereo16FrameSize)

	start := s.next
	if !page.Last && page.GranulePos >= 0 {
		start = page.GranulePos - int64(s.codec.preSkip()) - decoded
	}
	s.bufStart = start
	s.next = start + decoded
	return nil
}

// seek moves to frame. Decoding restarts early enough for the codec to
// settle, and the frames in between are skipped by read.
func (s *oggStream) seek(frame int64) error {
	frame = min(max(frame, 0), s.length)
	from := frame + int64(s.codec.preSkip()) - int64(s.codec.preRoll())
	first, err := s.pages.SeekToGranule(from)
	if err != nil {
		return err
	}
	if err := s.codec.reset(); err != nil {
		return err
	}
	s.buf = s.buf[:0]
	s.bufStart = frame
	s.next = frame
	if first {
		s.next = -int64(s.codec.preSkip())
	}
	s.pos = frame
	s.err = nil
	return nil
}
