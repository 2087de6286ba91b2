// Package engine implements the playback engine: it owns the current track,
// applies commands sent by the interface, and moves on to the next track
// when one ends.
package engine

import (
	"context"
	"errors"
	"fmt"
	"math"
	"runtime/debug"
	"sync"

	"github.com/hammamikhairi/lullaby/internal/domain"
	"github.com/hammamikhairi/lullaby/internal/logger"
)

// Compile-time interface checks.
var (
	_ domain.StateReader = (*Engine)(nil)
	_ domain.CommandSink = (*Engine)(nil)
)

// Option configures the engine.
type Option func(*Engine)

// WithVolume sets the starting volume, clamped to [0, 1].
func WithVolume(v float64) Option {
	return func(e *Engine) {
		e.volume = clampVolume(v)
	}
}

// WithQueueSize sets how many commands can be queued before Send blocks.
func WithQueueSize(n int) Option {
	return func(e *Engine) {
		if n >= 0 {
			e.queueSize = n
		}
	}
}

// Engine plays tracks from a TrackSource on an AudioOutput. Commands are
// applied by a single loop (Run); Snapshot may be called from anywhere.
type Engine struct {
	tracks    domain.TrackSource
	out       domain.AudioOutput
	log       *logger.Logger
	queueSize int

	cmds chan domain.Command
	done chan struct{}

	mu       sync.RWMutex
	state    domain.PlayState
	track    domain.Track
	volume   float64
	playback domain.Playback
}

// New creates a playback engine with the given dependencies and options.
func New(tracks domain.TrackSource, out domain.AudioOutput, log *logger.Logger, opts ...Option) *Engine {
	e := &Engine{
		tracks:    tracks,
		out:       out,
		log:       log,
		queueSize: 16,
		volume:    0.5,
		done:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.cmds = make(chan domain.Command, e.queueSize)
	return e
}

// Send queues a command for the engine loop. It fails with
// domain.ErrEngineStopped once Run has returned.
func (e *Engine) Send(ctx context.Context, cmd domain.Command) error {
	select {
	case <-e.done:
		return domain.ErrEngineStopped
	default:
	}

	select {
	case e.cmds <- cmd:
		return nil
	case <-e.done:
		return domain.ErrEngineStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Snapshot returns the current playback state.
func (e *Engine) Snapshot() domain.Snapshot {
	e.mu.RLock()
	defer e.mu.RUnlock()

	s := domain.Snapshot{
		State:  e.state,
		Track:  e.track,
		Volume: e.volume,
	}
	if e.playback != nil {
		s.Elapsed, s.Duration = e.playback.Position()
	}
	return s
}

// Done is closed when Run returns.
func (e *Engine) Done() <-chan struct{} {
	return e.done
}

// Run starts the first track and applies commands until Quit, ctx is
// cancelled, or no track can be played. It must be called once. A panic
// while playing is returned as an error after the current track is closed.
func (e *Engine) Run(ctx context.Context) (err error) {
	defer close(e.done)
	defer e.stop()
	defer func() {
		if r := recover(); r != nil {
			e.log.Error("engine crashed: %v\n%s", r, debug.Stack())
			err = fmt.Errorf("engine crashed: %v", r)
		}
	}()

	e.log.Info("engine started (%d tracks, volume=%.2f)", e.tracks.Len(), e.Snapshot().Volume)

	if err := e.next(ctx); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			e.log.Info("engine stopped: %v", ctx.Err())
			return nil

		case cmd := <-e.cmds:
			e.log.Debug("command: %s", cmd)
			if _, quit := cmd.(domain.Quit); quit {
				e.log.Info("engine stopped by user")
				return nil
			}
			if err := e.apply(ctx, cmd); err != nil {
				return err
			}

		case <-e.finished():
			e.log.Debug("track finished: %s", e.Snapshot().Track.Name())
			if err := e.next(ctx); err != nil {
				return err
			}
		}
	}
}

func (e *Engine) apply(ctx context.Context, cmd domain.Command) error {
	switch c := cmd.(type) {
	case domain.SkipNext:
		return e.next(ctx)

	case domain.TogglePlayPause:
		e.mu.Lock()
		defer e.mu.Unlock()
		switch {
		case e.playback == nil:
		case e.state == domain.StatePaused:
			e.playback.SetPaused(false)
			e.state = domain.StatePlaying
		default:
			e.playback.SetPaused(true)
			e.state = domain.StatePaused
		}

	case domain.AdjustVolume:
		e.mu.Lock()
		defer e.mu.Unlock()
		e.volume = clampVolume(e.volume + c.Delta)
		if e.playback != nil {
			e.playback.SetVolume(e.volume)
		}

	default:
		e.log.Warn("ignoring unknown command %s", cmd)
	}
	return nil
}

// next closes the current track and opens the following one. Tracks that
// fail to open are skipped; after a full round of failures it gives up.
func (e *Engine) next(ctx context.Context) error {
	e.closeCurrent()

	attempts := max(e.tracks.Len(), 1)
	for i := 0; i < attempts; i++ {
		track, err := e.tracks.Next(ctx)
		if err != nil {
			return fmt.Errorf("picking next track: %w", err)
		}

		e.mu.Lock()
		e.state = domain.StateLoading
		e.track = track
		volume := e.volume
		e.mu.Unlock()

		pb, err := e.out.Open(ctx, track)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			e.log.Warn("skipping %s: %v", track.Path, err)
			continue
		}

		pb.SetVolume(volume)
		pb.Play()

		e.mu.Lock()
		e.playback = pb
		e.state = domain.StatePlaying
		e.mu.Unlock()

		e.log.Info("now playing: %s", track.Name())
		return nil
	}

	e.mu.Lock()
	e.state = domain.StateStopped
	e.mu.Unlock()
	return domain.ErrNoPlayableTracks
}

// finished returns the current track's end signal, or nil (never ready)
// when nothing is playing.
func (e *Engine) finished() <-chan struct{} {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.playback == nil {
		return nil
	}
	return e.playback.Done()
}

func (e *Engine) closeCurrent() {
	e.mu.Lock()
	pb := e.playback
	e.playback = nil
	e.mu.Unlock()

	if pb == nil {
		return
	}
	if err := pb.Close(); err != nil {
		e.log.Warn("closing playback: %v", err)
	}
}

func (e *Engine) stop() {
	e.closeCurrent()
	e.mu.Lock()
	e.state = domain.StateStopped
	e.mu.Unlock()
}

// clampVolume keeps v in [0, 1], rounded to whole percent so repeated
// small steps do not drift.
func clampVolume(v float64) float64 {
	v = math.Round(v*100) / 100
	return math.Max(0, math.Min(1, v))
}
