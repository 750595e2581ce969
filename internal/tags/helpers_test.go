package tags

import (
	"encoding/binary"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/bogem/id3v2/v2"
	"github.com/stretchr/testify/require"
	"go.senan.xyz/taglib"

	"github.com/llehouerou/chirp/internal/device"
)

// writeMP3 writes a single MPEG-1 layer III frame (128 kbps, 44.1 kHz)
// tagged with t and cover, when given.
func writeMP3(t *testing.T, path string, tg *Tag, cover []byte) {
	t.Helper()
	frame := make([]byte, 417)
	frame[0], frame[1], frame[2] = 0xff, 0xfb, 0x90
	require.NoError(t, os.WriteFile(path, frame, 0o600))
	if tg == nil && cover == nil {
		return
	}

	id3, err := id3v2.Open(path, id3v2.Options{Parse: true})
	require.NoError(t, err)
	defer id3.Close()
	id3.SetDefaultEncoding(id3v2.EncodingUTF8)
	if tg != nil {
		id3.SetTitle(tg.Title)
		id3.SetArtist(tg.Artist)
		id3.SetAlbum(tg.Album)
		if tg.AlbumArtist != "" {
			id3.AddTextFrame("TPE2", id3v2.EncodingUTF8, tg.AlbumArtist)
		}
	}
	if cover != nil {
		id3.AddAttachedPicture(id3v2.PictureFrame{
			Encoding:    id3v2.EncodingUTF8,
			MimeType:    "image/jpeg",
			PictureType: id3v2.PTFrontCover,
			Picture:     cover,
		})
	}
	require.NoError(t, id3.Save())
}

// writeWAV writes a mono 16-bit WAV of frames samples at rate.
func writeWAV(t *testing.T, path string, rate, frames int) {
	t.Helper()
	data := make([]byte, frames*2)
	for i := range frames {
		binary.LittleEndian.PutUint16(data[i*2:], uint16(i%1024)) //nolint:gosec // sample bits
	}
	wav := device.EncodeWAV(&device.Sound{Format: device.FormatMono16, Frequency: rate, Data: data})
	require.NoError(t, os.WriteFile(path, wav, 0o600))
}

// encode writes one second of sine to dir/name with ffmpeg, skipping the
// test when ffmpeg is missing.
func encode(t *testing.T, dir, name, codec string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	cmd := exec.Command("ffmpeg", "-y", "-f", "lavfi", "-i", "sine=frequency=440:duration=1", "-c:a", codec, path)
	if err := cmd.Run(); err != nil {
		t.Skipf("ffmpeg not available: %v", err)
	}
	return path
}

func writeTaglib(t *testing.T, path string, tg *Tag) {
	t.Helper()
	values := map[string][]string{
		taglib.Title:  {tg.Title},
		taglib.Artist: {tg.Artist},
		taglib.Album:  {tg.Album},
	}
	require.NoError(t, taglib.WriteTags(path, values, taglib.Clear))
}
