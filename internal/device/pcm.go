package device

import "encoding/binary"

// frameAt decodes frame i of data as a stereo pair in [-1, 1].
// Mono frames are duplicated to both channels.
func frameAt(f Format, data []byte, i int64) [2]float64 {
	size := int64(f.FrameSize())
	off := i * size
	switch f {
	case FormatMono8:
		v := unsigned8(data[off])
		return [2]float64{v, v}
	case FormatStereo8:
		return [2]float64{unsigned8(data[off]), unsigned8(data[off+1])}
	case FormatMono16:
		v := signed16(data[off:])
		return [2]float64{v, v}
	case FormatStereo16:
		return [2]float64{signed16(data[off:]), signed16(data[off+2:])}
	}
	return [2]float64{}
}

func unsigned8(b byte) float64 {
	return (float64(b) - 128) / 128
}

func signed16(b []byte) float64 {
	return float64(int16(binary.LittleEndian.Uint16(b))) / 32768 //nolint:gosec // audio samples
}
