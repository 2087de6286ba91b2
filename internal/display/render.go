// Package display draws the playback panel: a bordered box holding the
// action row, a progress or volume bar, and the controls legend. The panel
// is redrawn in place at a fixed frame rate.
package display

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/x/ansi"

	"github.com/hammamikhairi/lullaby/internal/domain"
	"github.com/hammamikhairi/lullaby/internal/logger"
)

// DefaultFrameRate is the number of redraws per second.
const DefaultFrameRate = 12

// Surface is where frames are drawn.
type Surface interface {
	io.Writer
	Size() (width, height int, err error)
}

// Option configures the renderer.
type Option func(*Renderer)

// WithMinimalist hides the controls row.
func WithMinimalist(on bool) Option {
	return func(r *Renderer) {
		r.minimalist = on
	}
}

// WithFrameRate sets the number of redraws per second.
func WithFrameRate(fps int) Option {
	return func(r *Renderer) {
		if fps > 0 {
			r.frameDelay = time.Second / time.Duration(fps)
		}
	}
}

// WithLegend sets the bindings listed in the controls row.
func WithLegend(bindings []key.Binding) Option {
	return func(r *Renderer) {
		r.legend = bindings
	}
}

// Renderer owns the periodic redraw of the panel. It only ever reads
// playback state and never touches terminal input.
type Renderer struct {
	surface    Surface
	state      domain.StateReader
	timer      *VolumeTimer
	log        *logger.Logger
	minimalist bool
	frameDelay time.Duration
	legend     []key.Binding

	buf bytes.Buffer
}

// NewRenderer creates a renderer drawing state onto surface.
func NewRenderer(surface Surface, state domain.StateReader, timer *VolumeTimer, log *logger.Logger, opts ...Option) *Renderer {
	r := &Renderer{
		surface:    surface,
		state:      state,
		timer:      timer,
		log:        log,
		frameDelay: time.Second / DefaultFrameRate,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run redraws the panel until ctx is cancelled. The delay between frames is
// fixed, so slow frames push later ones back. A failed write or a panic
// while drawing ends the loop with an error.
func (r *Renderer) Run(ctx context.Context) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("render loop panicked: %v", rec)
		}
	}()

	r.log.Debug("render loop started (delay=%s)", r.frameDelay)

	for {
		if err := r.Draw(); err != nil {
			return err
		}

		wait := time.NewTimer(r.frameDelay)
		select {
		case <-ctx.Done():
			wait.Stop()
			r.log.Debug("render loop stopped")
			return nil
		case <-wait.C:
		}
	}
}

// Draw renders one frame and advances the volume timer.
func (r *Renderer) Draw() error {
	cols, _, sizeErr := r.surface.Size()
	width := Width(cols, sizeErr)

	showVolume := r.timer.Active()
	rows := Rows(r.state.Snapshot(), width, showVolume, r.minimalist, r.legend)
	r.timer.Tick()

	r.buf.Reset()
	writeFrame(&r.buf, rows, width)
	if _, err := r.surface.Write(r.buf.Bytes()); err != nil {
		return fmt.Errorf("drawing panel: %w", err)
	}
	return nil
}

// writeFrame clears the previous panel, draws the box, and leaves the
// cursor on the panel's top line so the next frame overwrites it.
func writeFrame(b *bytes.Buffer, rows []string, width int) {
	edge := strings.Repeat("─", width+2)

	b.WriteString(ansi.EraseScreenBelow)
	b.WriteString(ansi.CursorHorizontalAbsolute(1))
	b.WriteString("┌" + edge + "┐\r\n")
	for _, row := range rows {
		b.WriteString("│ ")
		b.WriteString(row)
		b.WriteString(ansi.ResetStyle)
		b.WriteString(" │\r\n")
	}
	b.WriteString("└" + edge + "┘")
	b.WriteString(ansi.CursorHorizontalAbsolute(1))
	b.WriteString(ansi.CursorUp(len(rows) + 1))
}
