// chirp-probe decodes audio files the way the player does and reports
// what it found: tags, stream layout and decoding speed.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/sirupsen/logrus"

	"github.com/llehouerou/chirp/internal/decoder"
	"github.com/llehouerou/chirp/internal/device"
	"github.com/llehouerou/chirp/internal/tags"
	"github.com/llehouerou/chirp/internal/ui/render"
)

// report is what probing one file found.
type report struct {
	info      *tags.FileInfo
	codec     string
	frequency int
	samples   int64
	bytes     int
	elapsed   time.Duration
}

func probe(path string, frequency int) (*report, error) {
	info, err := tags.ReadWithAudio(path)
	if err != nil {
		return nil, fmt.Errorf("read tags: %w", err)
	}

	dec := decoder.New(decoder.File(path), decoder.Options{Frequency: frequency})
	defer dec.Close()

	start := time.Now()
	if err := dec.Open(0); err != nil {
		return nil, err
	}
	r := &report{info: info, codec: dec.Codec(), frequency: dec.Frequency()}

	var buf []byte
	for {
		var n int64
		buf, n, err = dec.ReadMore(buf[:0])
		r.samples += n
		r.bytes += len(buf)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return r, fmt.Errorf("decode after %d samples: %w", r.samples, err)
		}
	}
	r.elapsed = time.Since(start)
	return r, nil
}

func (r *report) print(w io.Writer) {
	decoded := time.Duration(r.samples) * time.Second / time.Duration(max(r.frequency, 1))
	fmt.Fprintf(w, "  title:     %s\n", r.info.Title)
	if p := r.info.Performer(); p != "" {
		fmt.Fprintf(w, "  performer: %s\n", p)
	}
	fmt.Fprintf(w, "  kind:      %s\n", kind(r.info.Path))
	fmt.Fprintf(w, "  container: %s, %d Hz", r.info.Format, r.info.SampleRate)
	if r.info.BitDepth > 0 {
		fmt.Fprintf(w, ", %d bit", r.info.BitDepth)
	}
	fmt.Fprintf(w, ", %s\n", render.FormatDuration(r.info.Duration))
	fmt.Fprintf(w, "  decoded:   %s at %d Hz, %s samples (%s), %s of PCM\n",
		r.codec, r.frequency, humanize.Comma(r.samples), render.FormatDuration(decoded),
		humanize.Bytes(uint64(r.bytes))) //nolint:gosec // a byte count is never negative
	if r.elapsed > 0 {
		fmt.Fprintf(w, "  speed:     %.0fx realtime (%s)\n",
			decoded.Seconds()/r.elapsed.Seconds(), r.elapsed.Round(time.Millisecond))
	}
	if d := r.info.Duration - decoded; d > 50*time.Millisecond || d < -50*time.Millisecond {
		fmt.Fprintf(w, "  warning:   tags and decoder disagree by %s\n", d.Round(time.Millisecond))
	}
}

func kind(path string) string {
	if tags.IsVoiceFile(path) {
		return "voice message"
	}
	return "song"
}

func main() {
	frequency := flag.Int("rate", 0, "output sample rate, 0 keeps the source rate")
	debug := flag.Bool("debug", false, "log decoder activity")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: %s [flags] file...\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	logrus.SetLevel(logrus.WarnLevel)
	if *debug {
		logrus.SetLevel(logrus.DebugLevel)
	}
	log := logrus.WithField("component", "probe")

	failed := 0
	for _, path := range flag.Args() {
		fmt.Println(path)
		r, err := probe(path, *frequency)
		if r != nil {
			r.print(os.Stdout)
		}
		if err != nil {
			failed++
			log.WithFields(logrus.Fields{
				"path":  path,
				"error": err.Error(),
			}).Error("Probe failed")
			if errors.Is(err, decoder.ErrZeroDuration) {
				fmt.Println("  the player would stop this file at its start")
			}
		}
	}
	fmt.Printf("%d file(s), %d failed, bundled notify sound %s\n",
		flag.NArg(), failed, humanize.Bytes(uint64(len(device.BundledNotifySound()))))
	if failed > 0 {
		os.Exit(1)
	}
}
