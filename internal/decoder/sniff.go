package decoder

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/gopxl/beep/v2/flac"
	"github.com/gopxl/beep/v2/wav"
)

type container int

const (
	containerUnknown container = iota
	containerOgg
	containerMP4
	containerFLAC
	containerWAV
	containerMP3
)

// sniff identifies the container from the first bytes of a stream.
func sniff(head []byte) container {
	switch {
	case bytes.HasPrefix(head, []byte("OggS")):
		return containerOgg
	case len(head) >= 8 && string(head[4:8]) == "ftyp":
		return containerMP4
	case bytes.HasPrefix(head, []byte("fLaC")):
		return containerFLAC
	case len(head) >= 12 && string(head[0:4]) == "RIFF" && string(head[8:12]) == "WAVE":
		return containerWAV
	case bytes.HasPrefix(head, []byte("ID3")):
		return containerMP3
	case len(head) >= 2 && head[0] == 0xFF && head[1]&0xE0 == 0xE0:
		return containerMP3
	}
	return containerUnknown
}

// skipID3v2 leaves r after a leading ID3v2 tag, or at the start when there
// is none. Some taggers put one in front of FLAC streams.
func skipID3v2(r io.ReadSeeker) error {
	header := make([]byte, 10)
	n, err := io.ReadFull(r, header)
	if err != nil && n < 10 {
		_, err = r.Seek(0, io.SeekStart)
		return err
	}
	if string(header[0:3]) != "ID3" {
		_, err = r.Seek(0, io.SeekStart)
		return err
	}
	// Syncsafe size: seven bits per byte.
	size := int64(header[6])<<21 | int64(header[7])<<14 | int64(header[8])<<7 | int64(header[9])
	_, err = r.Seek(10+size, io.SeekStart)
	return err
}

func readHead(r io.ReadSeeker) ([]byte, error) {
	head := make([]byte, 12)
	n, err := io.ReadFull(r, head)
	if err != nil && n == 0 {
		return nil, fmt.Errorf("%w: stream too short", ErrUnknownFormat)
	}
	if _, err := r.Seek(-int64(n), io.SeekCurrent); err != nil {
		return nil, err
	}
	return head[:n], nil
}

// openStream picks a decoder for in by content. On failure the caller
// still owns in.
func openStream(ctx context.Context, in *input) (pcmStream, error) {
	head, err := readHead(in)
	if err != nil {
		return nil, err
	}

	kind := sniff(head)
	if bytes.HasPrefix(head, []byte("ID3")) {
		if err := skipID3v2(in); err != nil {
			return nil, err
		}
		inner, err := readHead(in)
		if err != nil {
			return nil, err
		}
		if sniff(inner) == containerFLAC {
			kind = containerFLAC
		} else if _, err := in.Seek(0, io.SeekStart); err != nil {
			return nil, err
		}
	}

	switch kind {
	case containerOgg:
		return openOgg(in)
	case containerMP4:
		return openM4A(ctx, in)
	case containerMP3:
		return openMP3(in)
	case containerFLAC:
		s, format, err := flac.Decode(in)
		if err != nil {
			return nil, err
		}
		return newBeepStream(s, format, "flac"), nil
	case containerWAV:
		s, format, err := wav.Decode(in)
		if err != nil {
			return nil, err
		}
		return newBeepStream(s, format, "pcm"), nil
	}
	return nil, ErrUnknownFormat
}
