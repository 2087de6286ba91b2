package audio

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
	"github.com/gopxl/beep"
)

// bytesPerFrame is one stereo float32 sample.
const bytesPerFrame = ChannelCount * 4

// playback is one open track. The decoder and pause control are shared
// between oto's reader goroutine and callers, guarded by mu.
type playback struct {
	mu      sync.Mutex
	decoder beep.StreamSeekCloser
	format  beep.Format
	ctrl    *beep.Ctrl
	reader  *pcmReader
	player  *oto.Player

	done      chan struct{}
	closeOnce sync.Once
	closeErr  error
}

func newPlayback(decoder beep.StreamSeekCloser, format beep.Format) *playback {
	pb := &playback{
		decoder: decoder,
		format:  format,
		done:    make(chan struct{}),
	}

	var s beep.Streamer = decoder
	if format.SampleRate != SampleRate {
		s = beep.Resample(resampleQuality, format.SampleRate, SampleRate, decoder)
	}
	pb.ctrl = &beep.Ctrl{Streamer: s}

	var finished sync.Once
	seq := beep.Seq(pb.ctrl, beep.Callback(func() {
		finished.Do(func() { close(pb.done) })
	}))
	pb.reader = newPCMReader(&pb.mu, seq)
	pb.reader.failed = func() {
		finished.Do(func() { close(pb.done) })
	}
	return pb
}

func (p *playback) Play() {
	p.player.Play()
}

func (p *playback) SetPaused(paused bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.ctrl.Paused = paused
}

func (p *playback) SetVolume(volume float64) {
	p.player.SetVolume(volume)
}

func (p *playback) Position() (elapsed, total time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()
	rate := p.format.SampleRate
	return rate.D(p.decoder.Position()).Round(time.Second), rate.D(p.decoder.Len()).Round(time.Second)
}

func (p *playback) Done() <-chan struct{} {
	return p.done
}

func (p *playback) Close() error {
	p.closeOnce.Do(func() {
		if p.player != nil {
			p.player.Pause()
			if err := p.player.Close(); err != nil {
				p.closeErr = err
			}
		}

		p.mu.Lock()
		defer p.mu.Unlock()
		if err := p.decoder.Close(); err != nil && p.closeErr == nil {
			p.closeErr = err
		}
	})
	return p.closeErr
}

// pcmReader encodes a stereo beep stream as little-endian float32 frames,
// the layout oto reads.
type pcmReader struct {
	mu     sync.Locker
	s      beep.Streamer
	buf    [][2]float64
	eof    bool
	failed func() // called once when the stream panics
}

func newPCMReader(mu sync.Locker, s beep.Streamer) *pcmReader {
	return &pcmReader{mu: mu, s: s}
}

func (r *pcmReader) Read(p []byte) (int, error) {
	frames := len(p) / bytesPerFrame
	if frames == 0 {
		return 0, nil
	}
	if cap(r.buf) < frames {
		r.buf = make([][2]float64, frames)
	}
	buf := r.buf[:frames]

	n, ok, err := r.stream(buf)
	if err != nil {
		if !errors.Is(err, io.EOF) && r.failed != nil {
			r.failed()
		}
		return 0, err
	}
	if n == 0 && !ok {
		return 0, io.EOF
	}

	for i, frame := range buf[:n] {
		off := i * bytesPerFrame
		binary.LittleEndian.PutUint32(p[off:], math.Float32bits(float32(frame[0])))
		binary.LittleEndian.PutUint32(p[off+4:], math.Float32bits(float32(frame[1])))
	}
	return n * bytesPerFrame, nil
}

// stream runs on oto's reader goroutine, so a decoder panic is turned into
// an error and the stream is treated as ended.
func (r *pcmReader) stream(buf [][2]float64) (n int, ok bool, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	defer func() {
		if v := recover(); v != nil {
			r.eof = true
			n, ok, err = 0, false, fmt.Errorf("decoding audio: %v", v)
		}
	}()

	if r.eof {
		return 0, false, io.EOF
	}
	n, ok = r.s.Stream(buf)
	if !ok {
		r.eof = true
	}
	return n, ok, nil
}
