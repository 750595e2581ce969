package decoder

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/jfreymuth/vorbis"
	"github.com/jj11hh/opus"
)

var (
	errUnknownOggCodec = errors.New("ogg: neither Opus nor Vorbis")
	errOpusHead        = errors.New("opus: bad OpusHead")
	errOpusTags        = errors.New("opus: expected OpusTags")
	errVorbisIdent     = errors.New("vorbis: bad identification header")
)

// oggCodec decodes the packets of one Ogg logical stream to 16-bit PCM.
type oggCodec interface {
	name() string
	rate() int
	channels() int
	// preSkip is the number of leading decoded frames that are not audio.
	preSkip() int
	// header takes the next setup packet after the first one and reports
	// whether audio packets follow.
	header(packet []byte) (bool, error)
	// decode returns one packet as interleaved samples. The slice is reused
	// by the next call.
	decode(packet []byte) ([]int16, error)
	// reset drops state carried between packets, before a jump.
	reset() error
	// preRoll is how many frames before a seek target decoding must start
	// for the output to settle.
	preRoll() int
}

// newOggCodec picks the codec from the first packet of a stream.
func newOggCodec(first []byte) (oggCodec, error) {
	switch {
	case bytes.HasPrefix(first, []byte("OpusHead")):
		return newOpusCodec(first)
	case vorbis.IsHeader(first) && first[0] == 1:
		return newVorbisCodec(first)
	}
	return nil, errUnknownOggCodec
}

const (
	// opusRate is the rate Opus is always decoded at.
	opusRate = 48000
	// opusMaxFrames is the longest Opus packet, 120 ms.
	opusMaxFrames = opusRate * 120 / 1000
	// opusPreRoll is the 80 ms a decoder needs to converge after a jump.
	opusPreRoll = opusRate * 80 / 1000
)

type opusCodec struct {
	dec  *opus.Decoder
	ch   int
	skip int
	pcm  []int16
}

// newOpusCodec reads the identification header. Channel mapping families
// beyond mono and stereo are not supported.
func newOpusCodec(head []byte) (*opusCodec, error) {
	if len(head) < 19 {
		return nil, errOpusHead
	}
	if head[8]>>4 != 0 {
		return nil, fmt.Errorf("%w: version %d", errOpusHead, head[8])
	}
	ch := int(head[9])
	if ch < 1 || ch > 2 {
		return nil, fmt.Errorf("%w: %d channels", errOpusHead, ch)
	}
	dec, err := opus.NewDecoder(opusRate, ch)
	if err != nil {
		return nil, err
	}
	return &opusCodec{
		dec:  dec,
		ch:   ch,
		skip: int(binary.LittleEndian.Uint16(head[10:12])),
		pcm:  make([]int16, opusMaxFrames*ch),
	}, nil
}

func (c *opusCodec) name() string  { return "opus" }
func (c *opusCodec) rate() int     { return opusRate }
func (c *opusCodec) channels() int { return c.ch }
func (c *opusCodec) preSkip() int  { return c.skip }
func (c *opusCodec) preRoll() int  { return opusPreRoll }

func (c *opusCodec) reset() error {
	dec, err := opus.NewDecoder(opusRate, c.ch)
	if err != nil {
		return err
	}
	c.dec = dec
	return nil
}

// header expects the comment packet, the only one after OpusHead.
func (c *opusCodec) header(packet []byte) (bool, error) {
	if !bytes.HasPrefix(packet, []byte("OpusTags")) {
		return false, errOpusTags
	}
	return true, nil
}

func (c *opusCodec) decode(packet []byte) ([]int16, error) {
	n, err := c.dec.Decode(packet, c.pcm)
	if err != nil {
		return nil, err
	}
	return c.pcm[:n*c.ch], nil
}

type vorbisCodec struct {
	dec   vorbis.Decoder
	ch    int
	hz    int
	ready bool
	buf   []float32
	pcm   []int16
}

func newVorbisCodec(ident []byte) (*vorbisCodec, error) {
	c := &vorbisCodec{}
	if err := c.dec.ReadHeader(ident); err != nil {
		return nil, fmt.Errorf("%w: %w", errVorbisIdent, err)
	}
	c.ch = c.dec.Channels()
	c.hz = c.dec.SampleRate()
	if c.ch < 1 || c.hz <= 0 {
		return nil, errVorbisIdent
	}
	return c, nil
}

func (c *vorbisCodec) name() string  { return "vorbis" }
func (c *vorbisCodec) rate() int     { return c.hz }
func (c *vorbisCodec) channels() int { return c.ch }
func (c *vorbisCodec) preSkip() int  { return 0 }
func (c *vorbisCodec) preRoll() int  { return 0 }

func (c *vorbisCodec) reset() error {
	c.dec.Clear()
	return nil
}

// header takes the comment and setup packets.
func (c *vorbisCodec) header(packet []byte) (bool, error) {
	if err := c.dec.ReadHeader(packet); err != nil {
		return false, err
	}
	if !c.dec.HeadersRead() {
		return false, nil
	}
	c.ready = true
	c.buf = make([]float32, c.dec.BufferSize())
	c.pcm = make([]int16, c.dec.BufferSize())
	return true, nil
}

func (c *vorbisCodec) decode(packet []byte) ([]int16, error) {
	if !c.ready {
		return nil, errors.New("vorbis: setup header missing")
	}
	out, err := c.dec.DecodeInto(packet, c.buf)
	if err != nil {
		return nil, err
	}
	pcm := c.pcm[:len(out)]
	for i, v := range out {
		pcm[i] = floatToInt16(v)
	}
	return pcm, nil
}

func floatToInt16(v float32) int16 {
	return toInt16(float64(v))
}
