package decoder

import (
	"encoding/binary"
	"math"
)

// stereo16FrameSize is the size of one interleaved 16-bit stereo frame.
const stereo16FrameSize = 4

// readStereo16 converts interleaved little-endian 16-bit stereo into
// samples and returns the number of whole frames converted.
func readStereo16(samples [][2]float64, raw []byte) int {
	n := min(len(raw)/stereo16FrameSize, len(samples))
	for i := range n {
		off := i * stereo16FrameSize
		samples[i][0] = float64(int16(binary.LittleEndian.Uint16(raw[off:]))) / 32768   //nolint:gosec // sample bits
		samples[i][1] = float64(int16(binary.LittleEndian.Uint16(raw[off+2:]))) / 32768 //nolint:gosec // sample bits
	}
	return n
}

// appendStereo16 appends samples to dst as interleaved little-endian
// 16-bit stereo, clipping out-of-range values.
func appendStereo16(dst []byte, samples [][2]float64) []byte {
	for _, s := range samples {
		dst = binary.LittleEndian.AppendUint16(dst, uint16(toInt16(s[0]))) //nolint:gosec // sample bits
		dst = binary.LittleEndian.AppendUint16(dst, uint16(toInt16(s[1]))) //nolint:gosec // sample bits
	}
	return dst
}

func toInt16(v float64) int16 {
	v = math.Round(v * 32767)
	switch {
	case v > math.MaxInt16:
		return math.MaxInt16
	case v < math.MinInt16:
		return math.MinInt16
	}
	return int16(v)
}

// appendInterleaved appends interleaved samples of the given channel count
// as 16-bit stereo. Mono is copied to both sides; channels past the second
// are dropped.
func appendInterleaved(dst []byte, pcm []int16, channels int) []byte {
	if channels < 1 {
		return dst
	}
	for i := 0; i+channels <= len(pcm); i += channels {
		left, right := pcm[i], pcm[i]
		if channels > 1 {
			right = pcm[i+1]
		}
		dst = binary.LittleEndian.AppendUint16(dst, uint16(left))  //nolint:gosec // sample bits
		dst = binary.LittleEndian.AppendUint16(dst, uint16(right)) //nolint:gosec // sample bits
	}
	return dst
}
