// Package decoder turns encoded audio into chunks of 16-bit stereo PCM at a
// fixed output rate.
package decoder

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/gopxl/beep/v2"

	"github.com/llehouerou/chirp/internal/device"
)

var (
	// ErrUnknownFormat is returned when no decoder recognizes the stream.
	ErrUnknownFormat = errors.New("unknown audio format")
	// ErrEmptySource is returned for a source with nothing to read.
	ErrEmptySource = errors.New("empty audio source")
	// ErrZeroDuration is returned for streams holding no samples.
	ErrZeroDuration = errors.New("audio has zero duration")
	// ErrNotOpen is returned when reading before a successful Open.
	ErrNotOpen = errors.New("decoder not open")
)

const (
	defaultChunkFrames = 4096
	resampleQuality    = 4
)

// Options configure a Loader.
type Options struct {
	// Frequency is the output sample rate. Zero keeps the source rate.
	Frequency int
	// ChunkFrames is the number of frames decoded per ReadMore.
	ChunkFrames int
}

// Loader decodes one source. It is not safe for concurrent use.
type Loader struct {
	source Source
	opts   Options

	ctx    context.Context
	cancel context.CancelFunc

	stream    pcmStream
	frequency int
	duration  int64
	done      bool

	// Set only when the stream rate differs from the output rate.
	pull      *streamer
	resampled beep.Streamer
	frames    [][2]float64
}

// New returns a loader for src. Nothing is read until Open.
func New(src Source, opts Options) *Loader {
	if opts.ChunkFrames <= 0 {
		opts.ChunkFrames = defaultChunkFrames
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Loader{
		source: src,
		opts:   opts,
		ctx:    ctx,
		cancel: cancel,
	}
}

// Source returns the source the loader was created for.
func (l *Loader) Source() Source { return l.source }

// Matches reports whether the loader decodes src.
func (l *Loader) Matches(src Source) bool { return l.source.Same(src) }

// Open identifies the container, reads the stream length and positions the
// decoder at position, expressed in output samples.
func (l *Loader) Open(position int64) error {
	if l.stream != nil {
		return errors.New("decoder already open")
	}
	in, err := l.source.open()
	if err != nil {
		return err
	}
	stream, err := openStream(l.ctx, in)
	if err != nil {
		_ = in.Close()
		return fmt.Errorf("open %s: %w", in.src, err)
	}

	srcRate := stream.rate()
	if srcRate <= 0 {
		_ = stream.close()
		return fmt.Errorf("open %s: %w: sample rate %d", l.source, ErrUnknownFormat, srcRate)
	}
	outRate := l.opts.Frequency
	if outRate <= 0 {
		outRate = srcRate
	}
	srcLen := stream.frames()
	if srcLen <= 0 {
		_ = stream.close()
		return fmt.Errorf("open %s: %w", l.source, ErrZeroDuration)
	}

	l.stream = stream
	l.frequency = outRate
	l.duration = srcLen * int64(outRate) / int64(srcRate)

	if position > 0 {
		position = min(position, l.duration)
		if err := stream.seek(position * int64(srcRate) / int64(outRate)); err != nil {
			l.Close()
			return fmt.Errorf("seek %s: %w", l.source, err)
		}
	}

	if outRate != srcRate {
		l.pull = &streamer{s: stream}
		l.resampled = beep.Resample(resampleQuality, beep.SampleRate(srcRate), beep.SampleRate(outRate), l.pull)
		l.frames = make([][2]float64, l.opts.ChunkFrames)
	}
	return nil
}

// Duration returns the stream length in output samples.
func (l *Loader) Duration() int64 { return l.duration }

// Frequency returns the output sample rate.
func (l *Loader) Frequency() int { return l.frequency }

// Format returns the layout of the bytes ReadMore produces.
func (l *Loader) Format() device.Format { return device.FormatStereo16 }

// Codec names the decoder picked by Open.
func (l *Loader) Codec() string {
	if l.stream == nil {
		return ""
	}
	return l.stream.codecName()
}

// ReadMore decodes the next chunk and appends it to dst. It returns the
// extended slice and the number of samples appended. At the end of the
// stream it returns io.EOF, possibly along with the last samples.
func (l *Loader) ReadMore(dst []byte) ([]byte, int64, error) {
	if l.stream == nil {
		return dst, 0, ErrNotOpen
	}
	if l.done {
		return dst, 0, io.EOF
	}
	if err := l.ctx.Err(); err != nil {
		return dst, 0, err
	}

	var (
		n   int
		err error
	)
	if l.resampled == nil {
		dst, n, err = l.stream.read(dst, l.opts.ChunkFrames)
	} else {
		var ok bool
		n, ok = l.resampled.Stream(l.frames)
		dst = appendStereo16(dst, l.frames[:n])
		if !ok || n == 0 {
			err = l.pull.Err()
			if err == nil {
				err = io.EOF
			}
		}
	}

	switch {
	case err == nil:
		return dst, int64(n), nil
	case errors.Is(err, io.EOF):
		l.done = true
		return dst, int64(n), io.EOF
	}
	l.done = true
	return dst, int64(n), fmt.Errorf("decode %s: %w", l.source, err)
}

// Close releases the stream and cancels any decode in flight.
func (l *Loader) Close() {
	l.cancel()
	if l.stream != nil {
		_ = l.stream.close()
		l.stream = nil
	}
	l.pull = nil
	l.resampled = nil
}
