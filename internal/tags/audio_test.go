package tags

import (
	"bytes"
	"encoding/binary"
	"io"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadAudioInfo_MP3(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.mp3")
	writeMP3(t, path, nil, nil)

	info, err := ReadAudioInfo(path)
	require.NoError(t, err)
	assert.Equal(t, "MP3", info.Format)
	assert.Equal(t, 44100, info.SampleRate)
	assert.Equal(t, 16, info.BitDepth)
}

func TestReadAudioInfo_WAV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.wav")
	writeWAV(t, path, 16000, 16000)

	info, err := ReadAudioInfo(path)
	require.NoError(t, err)
	assert.Equal(t, "PCM", info.Format)
	assert.Equal(t, 16000, info.SampleRate)
	assert.Equal(t, time.Second, info.Duration)
}

func TestReadAudioInfo_Unsupported(t *testing.T) {
	_, err := ReadAudioInfo("/some/file.txt")
	assert.Error(t, err)
}

func TestReadAudioInfo_Encoded(t *testing.T) {
	dir := t.TempDir()
	tests := []struct{ name, codec, format string }{
		{"a.opus", "libopus", "OPUS"},
		{"a.ogg", "libvorbis", "VORBIS"},
		{"a.oga", "libvorbis", "VORBIS"},
		{"a.flac", "flac", "FLAC"},
		{"a.m4a", "aac", "AAC"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info, err := ReadAudioInfo(encode(t, dir, tt.name, tt.codec))
			require.NoError(t, err)
			assert.Equal(t, tt.format, info.Format)
			assert.InDelta(t, time.Second, info.Duration, float64(100*time.Millisecond))
		})
	}
}

func TestParseStreamInfo(t *testing.T) {
	b := make([]byte, 34)
	// 44100 Hz, 2 channels, 24 bits, 88200 samples.
	packed := uint64(44100)<<44 | uint64(1)<<41 | uint64(23)<<36 | 88200
	binary.BigEndian.PutUint64(b[10:], packed)

	info := parseStreamInfo(b)
	assert.Equal(t, 44100, info.SampleRate)
	assert.Equal(t, 24, info.BitDepth)
	assert.Equal(t, 2*time.Second, info.Duration)
	assert.Equal(t, "FLAC", info.Format)
}

func TestSkipID3(t *testing.T) {
	tagged := append([]byte("ID3\x04\x00\x00\x00\x00\x01\x00"), make([]byte, 128)...)
	tagged = append(tagged, "fLaC"...)
	r := bytes.NewReader(tagged)
	require.NoError(t, skipID3(r))
	rest, _ := io.ReadAll(r)
	assert.Equal(t, "fLaC", string(rest))

	plain := bytes.NewReader([]byte("fLaC...."))
	require.NoError(t, skipID3(plain))
	rest, _ = io.ReadAll(plain)
	assert.Equal(t, "fLaC....", string(rest))

	short := bytes.NewReader([]byte("ID"))
	require.NoError(t, skipID3(short))
	rest, _ = io.ReadAll(short)
	assert.Equal(t, "ID", string(rest))
}
