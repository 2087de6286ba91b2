// Package audio plays tracks on the system audio device: files are decoded
// with beep, resampled to the device rate, and streamed to an oto player.
package audio

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ebitengine/oto/v3"
	"github.com/gopxl/beep"
	"github.com/gopxl/beep/flac"
	"github.com/gopxl/beep/mp3"
	"github.com/gopxl/beep/vorbis"
	"github.com/gopxl/beep/wav"

	"github.com/hammamikhairi/lullaby/internal/domain"
	"github.com/hammamikhairi/lullaby/internal/logger"
)

// Audio format parameters for the output device.
const (
	SampleRate   = beep.SampleRate(44100)
	ChannelCount = 2

	resampleQuality = 4
)

// Extensions lists the file types Open can decode.
var Extensions = []string{".mp3", ".flac", ".ogg", ".wav"}

// Compile-time interface check.
var _ domain.AudioOutput = (*Output)(nil)

// Output opens tracks on the audio device. There is one per process; oto
// does not allow a second context.
type Output struct {
	ctx *oto.Context
	log *logger.Logger
}

// NewOutput initialises the audio device. Returns an error if it is
// unavailable.
func NewOutput(log *logger.Logger) (*Output, error) {
	op := &oto.NewContextOptions{
		SampleRate:   int(SampleRate),
		ChannelCount: ChannelCount,
		Format:       oto.FormatFloat32LE,
	}

	ctx, readyChan, err := oto.NewContext(op)
	if err != nil {
		return nil, fmt.Errorf("opening audio device: %w", err)
	}
	<-readyChan

	log.Debug("audio output initialized (rate=%d, channels=%d)", SampleRate, ChannelCount)
	return &Output{ctx: ctx, log: log}, nil
}

// Open decodes the track and prepares it for playback. The returned
// playback is silent until Play is called.
func (o *Output) Open(ctx context.Context, track domain.Track) (domain.Playback, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(track.Path)
	if err != nil {
		return nil, fmt.Errorf("opening track: %w", err)
	}

	// The decoder owns the file from here on; closing it closes the file.
	decoder, format, err := decode(f, track.Path)
	if err != nil {
		f.Close()
		return nil, err
	}

	pb := newPlayback(decoder, format)
	pb.player = o.ctx.NewPlayer(pb.reader)

	o.log.Debug("opened %s (rate=%d, channels=%d, %s)",
		filepath.Base(track.Path), format.SampleRate, format.NumChannels, format.SampleRate.D(decoder.Len()))
	return pb, nil
}

// Supported reports whether path has an extension Open can decode.
func Supported(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range Extensions {
		if ext == e {
			return true
		}
	}
	return false
}

func decode(f *os.File, path string) (beep.StreamSeekCloser, beep.Format, error) {
	var (
		s      beep.StreamSeekCloser
		format beep.Format
		err    error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mp3":
		s, format, err = mp3.Decode(f)
	case ".flac":
		s, format, err = flac.Decode(f)
	case ".ogg":
		s, format, err = vorbis.Decode(f)
	case ".wav":
		s, format, err = wav.Decode(f)
	default:
		return nil, beep.Format{}, fmt.Errorf("%s: %w", filepath.Ext(path), domain.ErrUnsupportedFormat)
	}
	if err != nil {
		return nil, beep.Format{}, fmt.Errorf("decoding %s: %w", filepath.Base(path), err)
	}
	return s, format, nil
}
