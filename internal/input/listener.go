package input

import (
	"context"
	"fmt"

	"github.com/hammamikhairi/lullaby/internal/domain"
	"github.com/hammamikhairi/lullaby/internal/logger"
	"github.com/hammamikhairi/lullaby/internal/terminal"
)

// EventSource yields terminal input events. ReadEvent blocks until one is
// available or ctx is done.
type EventSource interface {
	ReadEvent(ctx context.Context) (terminal.Event, error)
}

// Armer is told about volume changes before they are sent, so the volume
// bar is already up when the engine applies them.
type Armer interface {
	Arm()
}

// Listener reads key events and forwards the mapped commands to the engine.
type Listener struct {
	src   EventSource
	sink  domain.CommandSink
	timer Armer
	keys  KeyMap
	log   *logger.Logger
}

// NewListener creates a listener.
func NewListener(src EventSource, sink domain.CommandSink, timer Armer, keys KeyMap, log *logger.Logger) *Listener {
	return &Listener{
		src:   src,
		sink:  sink,
		timer: timer,
		keys:  keys,
		log:   log,
	}
}

// Run reads events until Quit has been delivered or ctx is done (both
// return nil), the sink refuses a command, or the event source fails.
func (l *Listener) Run(ctx context.Context) error {
	for {
		ev, err := l.src.ReadEvent(ctx)
		if err != nil {
			if ctx.Err() != nil {
				l.log.Debug("listener stopped: %v", ctx.Err())
				return nil
			}
			return fmt.Errorf("reading input: %w", err)
		}

		cmd, ok := l.keys.Lookup(ev)
		if !ok {
			if ev.Type == terminal.EventKey {
				l.log.Debug("unbound key %q", ev.String())
			}
			continue
		}

		if _, isVolume := cmd.(domain.AdjustVolume); isVolume {
			l.timer.Arm()
		}

		l.log.Debug("key %q -> %s", ev.String(), cmd)
		if err := l.sink.Send(ctx, cmd); err != nil {
			return fmt.Errorf("sending %s: %w", cmd, err)
		}

		if _, isQuit := cmd.(domain.Quit); isQuit {
			return nil
		}
	}
}
