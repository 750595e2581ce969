package tags

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	goflac "github.com/go-flac/go-flac"
	"github.com/gopxl/beep/v2/flac"
	"github.com/llehouerou/go-m4a"
	"github.com/llehouerou/go-mp3"

	"github.com/llehouerou/chirp/internal/decoder"
)

// ReadAudioInfo reads the stream properties of path from its headers,
// decoding only where the container does not record them.
func ReadAudioInfo(path string) (*AudioInfo, error) {
	switch ext := extOf(path); ext {
	case ExtMP3:
		return mp3Info(path)
	case ExtFLAC:
		return flacInfo(path)
	case ExtM4A, ExtMP4:
		return m4aInfo(path)
	case ExtOPUS, ExtOGG, ExtOGA, ExtWAV:
		return probeInfo(path)
	default:
		return nil, fmt.Errorf("unsupported format: %q", ext)
	}
}

func samplesToDuration(n int64, rate int) time.Duration {
	if rate <= 0 {
		return 0
	}
	return time.Duration(n) * time.Second / time.Duration(rate)
}

func mp3Info(path string) (*AudioInfo, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	dec, err := mp3.NewDecoder(f)
	if err != nil {
		return nil, err
	}
	rate := dec.SampleRate()
	if rate == 0 {
		return nil, errors.New("mp3: no sample rate")
	}
	return &AudioInfo{
		Duration:   samplesToDuration(max(dec.SampleCount(), 0), rate),
		Format:     "MP3",
		SampleRate: rate,
		BitDepth:   16,
	}, nil
}

// flacInfo reads STREAMINFO. Files go-flac cannot parse, usually because
// of a leading ID3 tag, are opened with the beep decoder instead.
func flacInfo(path string) (*AudioInfo, error) {
	file, err := goflac.ParseFile(path)
	if err == nil {
		for _, meta := range file.Meta {
			if meta.Type == goflac.StreamInfo && len(meta.Data) >= 18 {
				return parseStreamInfo(meta.Data), nil
			}
		}
	}
	return flacInfoDecoded(path)
}

// parseStreamInfo decodes the packed fields of a STREAMINFO block: a
// 20-bit sample rate, 3-bit channel count, 5-bit sample size and 36-bit
// sample count starting at byte 10.
func parseStreamInfo(b []byte) *AudioInfo {
	packed := binary.BigEndian.Uint64(b[10:18])
	rate := int(packed >> 44)
	bits := int(packed>>36&0x1f) + 1
	total := int64(packed & (1<<36 - 1))
	return &AudioInfo{
		Duration:   samplesToDuration(total, rate),
		Format:     "FLAC",
		SampleRate: rate,
		BitDepth:   bits,
	}
}

func flacInfoDecoded(path string) (*AudioInfo, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	if err := skipID3(f); err != nil {
		return nil, err
	}

	s, format, err := flac.Decode(f)
	if err != nil {
		return nil, err
	}
	defer s.Close()
	return &AudioInfo{
		Duration:   format.SampleRate.D(s.Len()),
		Format:     "FLAC",
		SampleRate: int(format.SampleRate),
		BitDepth:   format.Precision * 8,
	}, nil
}

// skipID3 positions r after a leading ID3v2 tag, or at the start when
// there is none.
func skipID3(r io.ReadSeeker) error {
	var hdr [10]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil || string(hdr[:3]) != "ID3" {
		_, serr := r.Seek(0, io.SeekStart)
		return serr
	}
	// Syncsafe: 7 bits per byte.
	size := int64(hdr[6])<<21 | int64(hdr[7])<<14 | int64(hdr[8])<<7 | int64(hdr[9])
	_, err := r.Seek(10+size, io.SeekStart)
	return err
}

func m4aInfo(path string) (*AudioInfo, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	c, err := m4a.Open(f)
	if err != nil {
		return nil, err
	}
	info := &AudioInfo{
		Duration:   c.Duration(),
		Format:     "M4A",
		SampleRate: int(c.SampleRate()),
		BitDepth:   16,
	}
	switch c.Codec() {
	case m4a.CodecAAC:
		info.Format = "AAC"
	case m4a.CodecALAC:
		info.Format = "ALAC"
		if c.SampleSize() == 24 {
			info.BitDepth = 24
		}
	case m4a.CodecUnknown:
	}
	return info, nil
}

// probeInfo opens the file with the playback decoder, which reads Ogg
// granule positions and RIFF headers without decoding the stream.
func probeInfo(path string) (*AudioInfo, error) {
	d := decoder.New(decoder.File(path), decoder.Options{})
	defer d.Close()
	if err := d.Open(0); err != nil {
		return nil, err
	}
	return &AudioInfo{
		Duration:   samplesToDuration(d.Duration(), d.Frequency()),
		Format:     strings.ToUpper(d.Codec()),
		SampleRate: d.Frequency(),
		BitDepth:   16,
	}, nil
}
