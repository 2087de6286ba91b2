// Package ui runs the terminal interface: it prepares the terminal, keeps
// the playback panel redrawn in the background, and feeds key presses to
// the engine until the user quits.
package ui

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/hammamikhairi/lullaby/internal/display"
	"github.com/hammamikhairi/lullaby/internal/domain"
	"github.com/hammamikhairi/lullaby/internal/input"
	"github.com/hammamikhairi/lullaby/internal/logger"
)

// Terminal is everything the interface needs from the terminal device.
type Terminal interface {
	display.Surface
	input.EventSource
	Device
}

// Integration is an optional external control surface, such as a remote
// control socket, that drives the engine alongside the keyboard.
type Integration interface {
	// Start begins serving. It must not block.
	Start(ctx context.Context) error
	Close() error
}

// IntegrationFactory builds an Integration from the same state and command
// handles the interface itself uses.
type IntegrationFactory func(state domain.StateReader, sink domain.CommandSink) (Integration, error)

// Option configures a UI.
type Option func(*UI)

// WithAlternate draws on the alternate screen.
func WithAlternate(on bool) Option {
	return func(u *UI) {
		u.alternate = on
	}
}

// WithMinimalist hides the controls row.
func WithMinimalist(on bool) Option {
	return func(u *UI) {
		u.minimalist = on
	}
}

// WithFrameRate overrides the panel's redraws per second.
func WithFrameRate(fps int) Option {
	return func(u *UI) {
		u.frameRate = fps
	}
}

// WithKeyMap replaces the default key bindings.
func WithKeyMap(keys input.KeyMap) Option {
	return func(u *UI) {
		u.keys = keys
	}
}

// WithIntegration enables an external control integration, built on the
// first Run.
func WithIntegration(factory IntegrationFactory) Option {
	return func(u *UI) {
		u.factory = factory
	}
}

// WithFarewell sets where the goodbye line goes. Defaults to stderr; nil
// disables it.
func WithFarewell(w io.Writer) Option {
	return func(u *UI) {
		u.farewell = w
	}
}

// UI ties the terminal, the panel renderer and the key listener together.
type UI struct {
	term  Terminal
	state domain.StateReader
	sink  domain.CommandSink
	log   *logger.Logger

	alternate  bool
	minimalist bool
	frameRate  int
	keys       input.KeyMap
	farewell   io.Writer
	factory    IntegrationFactory

	timer       *display.VolumeTimer
	integration *Lazy[Integration]
}

// New creates a UI for the given terminal and engine handles.
func New(term Terminal, state domain.StateReader, sink domain.CommandSink, log *logger.Logger, opts ...Option) *UI {
	u := &UI{
		term:      term,
		state:     state,
		sink:      sink,
		log:       log,
		frameRate: display.DefaultFrameRate,
		keys:      input.DefaultKeyMap(),
		farewell:  os.Stderr,
		timer:     display.NewVolumeTimer(),
	}
	for _, opt := range opts {
		opt(u)
	}
	if u.factory != nil {
		u.integration = NewLazy(func() (Integration, error) {
			return u.factory(u.state, u.sink)
		})
	}
	return u
}

// Run owns the terminal until the listener stops: after a delivered Quit
// or once ctx is done (nil), on a refused command, or on an input error. The terminal is restored
// before Run returns, including when it panics.
func (u *UI) Run(ctx context.Context) error {
	env, err := Ready(u.term, u.alternate, u.farewell, u.log.Named("env"))
	if err != nil {
		return fmt.Errorf("preparing terminal: %w", err)
	}
	defer env.Cleanup()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	integration := u.startIntegration(ctx)

	renderer := display.NewRenderer(u.term, u.state, u.timer, u.log.Named("render"),
		display.WithMinimalist(u.minimalist),
		display.WithFrameRate(u.frameRate),
		display.WithLegend(u.keys.Legend()),
	)
	stopRender := u.startRender(ctx, renderer)
	defer stopRender()

	listener := input.NewListener(u.term, u.sink, u.timer, u.keys, u.log.Named("input"))
	listenErr := listener.Run(ctx)

	stopRender()
	if integration != nil {
		if err := integration.Close(); err != nil {
			u.log.Warn("closing integration: %v", err)
		}
	}
	env.Cleanup()

	if listenErr != nil {
		return fmt.Errorf("input listener: %w", listenErr)
	}
	return nil
}

// startRender runs the render loop on its own goroutine. The returned func
// cancels it and waits for it to exit; it is safe to call twice.
func (u *UI) startRender(ctx context.Context, r *display.Renderer) func() {
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	go func() {
		defer close(done)
		if err := r.Run(ctx); err != nil {
			u.log.Error("render loop stopped: %v", err)
		}
	}()

	return func() {
		cancel()
		<-done
	}
}

// startIntegration builds and starts the integration, if configured. A
// failing integration is logged and left out; the keyboard still works.
func (u *UI) startIntegration(ctx context.Context) Integration {
	if u.integration == nil {
		return nil
	}
	in, err := u.integration.Get()
	if err != nil {
		u.log.Warn("integration unavailable: %v", err)
		return nil
	}
	if err := in.Start(ctx); err != nil {
		u.log.Warn("starting integration: %v", err)
		return nil
	}
	return in
}
