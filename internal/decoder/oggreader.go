package decoder

import (
	"encoding/binary"
	"errors"
	"io"
)

var (
	errInvalidOggMagic   = errors.New("ogg: invalid capture pattern")
	errInvalidOggVersion = errors.New("ogg: unsupported version")
)

const (
	oggPageHeaderSize = 27
	oggFlagEOS        = 0x04
)

// oggPageHeader is the fixed part of an Ogg page plus its lacing values.
type oggPageHeader struct {
	Flags        byte
	GranulePos   int64
	SerialNumber uint32
	SequenceNum  uint32
	SegmentTable []uint8
}

func (h *oggPageHeader) bodySize() int64 {
	var n int64
	for _, seg := range h.SegmentTable {
		n += int64(seg)
	}
	return n
}

// parseOggPageHeader reads one page header. The CRC is not verified.
func parseOggPageHeader(r io.Reader) (*oggPageHeader, error) {
	var buf [oggPageHeaderSize]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return nil, err
	}
	if string(buf[0:4]) != "OggS" {
		return nil, errInvalidOggMagic
	}
	if buf[4] != 0 {
		return nil, errInvalidOggVersion
	}

	hdr := &oggPageHeader{
		Flags:        buf[5],
		GranulePos:   int64(binary.LittleEndian.Uint64(buf[6:14])), //nolint:gosec // -1 marks a page with no packet end
		SerialNumber: binary.LittleEndian.Uint32(buf[14:18]),
		SequenceNum:  binary.LittleEndian.Uint32(buf[18:22]),
		SegmentTable: make([]uint8, buf[26]),
	}
	if _, err := io.ReadFull(r, hdr.SegmentTable); err != nil {
		return nil, err
	}
	return hdr, nil
}

// readOggPageBody reads the page body and cuts it at lacing values below
// 255. Bytes after the last cut belong to a packet that goes on in the next
// page and come back as partial.
func readOggPageBody(r io.Reader, hdr *oggPageHeader) (packets [][]byte, partial []byte, err error) {
	body := make([]byte, hdr.bodySize())
	if _, err := io.ReadFull(r, body); err != nil {
		return nil, nil, err
	}

	start, pos := 0, 0
	for _, seg := range hdr.SegmentTable {
		pos += int(seg)
		if seg < 255 {
			packets = append(packets, body[start:pos])
			start = pos
		}
	}
	if start < pos {
		partial = body[start:pos]
	}
	return packets, partial, nil
}

// OggPage holds the packets that end on one page. A packet begun on
// earlier pages is joined to its tail.
type OggPage struct {
	GranulePos int64
	Packets    [][]byte
	// Last is set on the end-of-stream page.
	Last bool
}

// OggReader walks the pages of a single logical Ogg stream.
type OggReader struct {
	r           io.ReadSeeker
	dataStart   int64
	lastGranule int64
	partial     []byte
}

// NewOggReader returns a reader at the current offset of r.
func NewOggReader(r io.ReadSeeker) *OggReader {
	return &OggReader{r: r}
}

// MarkDataStart records the current offset as the first audio page. Reset
// and seeks go back no further than this.
func (o *OggReader) MarkDataStart() error {
	offset, err := o.r.Seek(0, io.SeekCurrent)
	if err != nil {
		return err
	}
	o.dataStart = offset
	o.partial = nil
	return nil
}

// LastGranule returns the highest granule position ScanLastGranule saw.
func (o *OggReader) LastGranule() int64 {
	return o.lastGranule
}

// Reset returns to the first audio page.
func (o *OggReader) Reset() error {
	o.partial = nil
	_, err := o.r.Seek(o.dataStart, io.SeekStart)
	return err
}

// ScanLastGranule reads every page header from the data start, skipping
// bodies, and records the highest granule position. A truncated last page
// ends the scan. The reader is left at the data start.
func (o *OggReader) ScanLastGranule() error {
	if err := o.Reset(); err != nil {
		return err
	}
	var last int64
	for {
		hdr, err := parseOggPageHeader(o.r)
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			break
		}
		if err != nil {
			return err
		}
		last = max(last, hdr.GranulePos)
		if _, err := o.r.Seek(hdr.bodySize(), io.SeekCurrent); err != nil {
			return err
		}
	}
	o.lastGranule = last
	return o.Reset()
}

// ReadPage returns the next page on which at least one packet ends. A
// truncated page reads as the end of the stream.
func (o *OggReader) ReadPage() (*OggPage, error) {
	for {
		hdr, err := parseOggPageHeader(o.r)
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, io.EOF
		}
		if err != nil {
			return nil, err
		}
		packets, partial, err := readOggPageBody(o.r, hdr)
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, io.EOF
		}
		if err != nil {
			return nil, err
		}

		if o.partial != nil {
			switch {
			case len(packets) > 0:
				packets[0] = append(o.partial, packets[0]...)
			case partial != nil:
				partial = append(o.partial, partial...)
			}
		}
		o.partial = partial

		if len(packets) > 0 {
			return &OggPage{
				GranulePos: hdr.GranulePos,
				Packets:    packets,
				Last:       hdr.Flags&oggFlagEOS != 0,
			}, nil
		}
	}
}

// SeekToGranule positions the reader on the last page whose granule does
// not exceed target, or on the first audio page. first reports the latter.
func (o *OggReader) SeekToGranule(target int64) (first bool, err error) {
	if err := o.Reset(); err != nil {
		return false, err
	}
	best := o.dataStart
	offset := o.dataStart
	for {
		hdr, err := parseOggPageHeader(o.r)
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			break
		}
		if err != nil {
			return false, err
		}
		if hdr.GranulePos > target {
			break
		}
		if hdr.GranulePos >= 0 {
			best = offset
		}
		next, err := o.r.Seek(hdr.bodySize(), io.SeekCurrent)
		if err != nil {
			return false, err
		}
		offset = next
	}
	o.partial = nil
	_, err = o.r.Seek(best, io.SeekStart)
	return best == o.dataStart, err
}
