package domain

import (
	"context"
	"time"
)

// StateReader exposes the current playback state. Implementations must be
// cheap enough to call on every frame and safe for concurrent use.
type StateReader interface {
	Snapshot() Snapshot
}

// CommandSink accepts commands for the playback engine. Send blocks until
// the command is handed off, the context is done, or the receiver is gone,
// in which case it returns ErrEngineStopped.
type CommandSink interface {
	Send(ctx context.Context, cmd Command) error
}

// TrackSource yields tracks to play. Implementations can be a scanned
// directory, a fixed list, or a remote catalogue.
type TrackSource interface {
	Next(ctx context.Context) (Track, error)
	Len() int
}

// AudioOutput opens a track for playback on the audio device.
type AudioOutput interface {
	Open(ctx context.Context, track Track) (Playback, error)
}

// Playback is one track being played by an AudioOutput. All methods are
// safe to call from any goroutine.
type Playback interface {
	// Play starts or resumes output.
	Play()
	// SetPaused pauses or resumes output without losing position.
	SetPaused(paused bool)
	// SetVolume sets the output volume in [0, 1].
	SetVolume(volume float64)
	// Position returns elapsed and total duration. Total is zero if unknown.
	Position() (elapsed, total time.Duration)
	// Done is closed when the track has played to the end.
	Done() <-chan struct{}
	// Close stops output and releases the decoder. Safe to call twice.
	Close() error
}
