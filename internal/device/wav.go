package device

import (
	"encoding/binary"
	"errors"
	"fmt"
	"time"
)

// ErrInvalidWAV is returned by ParseWAV for any malformed field.
var ErrInvalidWAV = errors.New("device: invalid wav")

const (
	wavHeaderSize = 44
	// notifyLeadIn is silence played before the notification sound so the
	// device has time to wake up.
	notifyLeadIn = 150 * time.Millisecond
)

// Sound is decoded PCM data ready to be queued.
type Sound struct {
	Format    Format
	Frequency int
	Data      []byte
}

// Buffer returns the sound as a queueable buffer.
func (s *Sound) Buffer() Buffer {
	return Buffer{Format: s.Format, Frequency: s.Frequency, Data: s.Data}
}

// Length returns the playing time of the sound.
func (s *Sound) Length() time.Duration {
	return s.Buffer().Duration()
}

// ParseWAV reads a canonical RIFF/WAVE file holding 8 or 16-bit PCM in one
// or two channels. Every header field is checked against the others and
// against the size of data.
func ParseWAV(data []byte) (*Sound, error) {
	size := len(data)
	if size < wavHeaderSize {
		return nil, fmt.Errorf("%w: %d bytes is too short", ErrInvalidWAV, size)
	}
	if string(data[0:4]) != "RIFF" {
		return nil, fmt.Errorf("%w: no RIFF chunk", ErrInvalidWAV)
	}
	if chunkSize := le32(data[4:]); int64(chunkSize) != int64(size-8) {
		return nil, fmt.Errorf("%w: chunk size %d for %d bytes", ErrInvalidWAV, chunkSize, size)
	}
	if string(data[8:12]) != "WAVE" {
		return nil, fmt.Errorf("%w: not a WAVE file", ErrInvalidWAV)
	}
	if string(data[12:16]) != "fmt " {
		return nil, fmt.Errorf("%w: no fmt chunk", ErrInvalidWAV)
	}

	fmtSize := int(le32(data[16:]))
	if fmtSize < 16 {
		return nil, fmt.Errorf("%w: fmt chunk size %d", ErrInvalidWAV, fmtSize)
	}
	extra := fmtSize - 16
	if extra > 0 {
		if extra < 2 || size < wavHeaderSize+extra {
			return nil, fmt.Errorf("%w: fmt extension of %d bytes", ErrInvalidWAV, extra)
		}
		if extSize := int(le16(data[36:])); extSize+2 != extra {
			return nil, fmt.Errorf("%w: fmt extension size %d in %d bytes", ErrInvalidWAV, extSize, extra)
		}
	}

	if audioFormat := le16(data[20:]); audioFormat != 1 {
		return nil, fmt.Errorf("%w: audio format %d is not PCM", ErrInvalidWAV, audioFormat)
	}
	channels := int(le16(data[22:]))
	if channels != 1 && channels != 2 {
		return nil, fmt.Errorf("%w: %d channels", ErrInvalidWAV, channels)
	}
	sampleRate := int(le32(data[24:]))
	byteRate := int(le32(data[28:]))
	blockAlign := int(le16(data[32:]))
	bitsPerSample := int(le16(data[34:]))
	if bitsPerSample%8 != 0 {
		return nil, fmt.Errorf("%w: %d bits per sample", ErrInvalidWAV, bitsPerSample)
	}
	bytesPerSample := bitsPerSample / 8
	format, ok := FormatFor(channels, bytesPerSample)
	if !ok {
		return nil, fmt.Errorf("%w: %d bytes per sample", ErrInvalidWAV, bytesPerSample)
	}
	if blockAlign != channels*bytesPerSample {
		return nil, fmt.Errorf("%w: block align %d", ErrInvalidWAV, blockAlign)
	}
	if sampleRate <= 0 || byteRate != sampleRate*blockAlign {
		return nil, fmt.Errorf("%w: byte rate %d at %d Hz", ErrInvalidWAV, byteRate, sampleRate)
	}

	if string(data[36+extra:40+extra]) != "data" {
		return nil, fmt.Errorf("%w: no data chunk", ErrInvalidWAV)
	}
	dataSize := int(le32(data[40+extra:]))
	if dataSize%blockAlign != 0 {
		return nil, fmt.Errorf("%w: data size %d is not whole frames", ErrInvalidWAV, dataSize)
	}
	start := wavHeaderSize + extra
	if size < start+dataSize {
		return nil, fmt.Errorf("%w: data size %d past end of file", ErrInvalidWAV, dataSize)
	}

	pcm := make([]byte, dataSize)
	copy(pcm, data[start:start+dataSize])
	return &Sound{Format: format, Frequency: sampleRate, Data: pcm}, nil
}

// EncodeWAV writes PCM data as a canonical 44-byte-header RIFF/WAVE file.
func EncodeWAV(s *Sound) []byte {
	block := s.Format.FrameSize()
	out := make([]byte, wavHeaderSize+len(s.Data))
	copy(out[0:], "RIFF")
	put32(out[4:], len(out)-8)
	copy(out[8:], "WAVE")
	copy(out[12:], "fmt ")
	put32(out[16:], 16)
	put16(out[20:], 1)
	put16(out[22:], s.Format.Channels())
	put32(out[24:], s.Frequency)
	put32(out[28:], s.Frequency*block)
	put16(out[32:], block)
	put16(out[34:], s.Format.BytesPerSample()*8)
	copy(out[36:], "data")
	put32(out[40:], len(s.Data))
	copy(out[wavHeaderSize:], s.Data)
	return out
}

// withLeadIn returns a copy of s preceded by d of silence.
func withLeadIn(s *Sound, d time.Duration) *Sound {
	frames := int(int64(s.Frequency) * int64(d) / int64(time.Second))
	silence := make([]byte, frames*s.Format.FrameSize())
	if s.Format.BytesPerSample() == 1 {
		for i := range silence {
			silence[i] = 0x80
		}
	}
	return &Sound{
		Format:    s.Format,
		Frequency: s.Frequency,
		Data:      append(silence, s.Data...),
	}
}

func le16(b []byte) uint16 {
	return binary.LittleEndian.Uint16(b)
}

func le32(b []byte) uint32 {
	return binary.LittleEndian.Uint32(b)
}

func put16(b []byte, v int) {
	binary.LittleEndian.PutUint16(b, uint16(v)) //nolint:gosec // header fields fit
}

func put32(b []byte, v int) {
	binary.LittleEndian.PutUint32(b, uint32(v)) //nolint:gosec // header fields fit
}
