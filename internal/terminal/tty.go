package terminal

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/charmbracelet/x/ansi"
	"github.com/charmbracelet/x/term"

	"github.com/hammamikhairi/lullaby/internal/domain"
)

// probeTimeout bounds the keyboard enhancement query. Terminals that do not
// understand it still answer the device attributes query that follows, so
// the timeout only matters for terminals that answer neither.
const probeTimeout = 2 * time.Second

// readPollInterval is how often a blocked ReadEvent checks its context.
const readPollInterval = 100 * time.Millisecond

// escapeGrace is how long a lone ESC waits for the rest of a sequence
// before it is reported as the Escape key.
const escapeGrace = 25 * time.Millisecond

// TTY is the controlling terminal: raw input on one file, output on
// another. Writes are not synchronised; callers arrange for a single writer
// at a time.
type TTY struct {
	in  *os.File
	out *os.File

	mu      sync.Mutex
	state   *term.State // non-nil while raw mode is on
	pending []byte      // undecoded input
	readBuf []byte
}

// Open returns the process's terminal on stdin/stdout.
func Open() (*TTY, error) {
	return New(os.Stdin, os.Stdout)
}

// New wraps the given files. in must be a terminal.
func New(in, out *os.File) (*TTY, error) {
	if !term.IsTerminal(in.Fd()) {
		return nil, fmt.Errorf("%s: %w", in.Name(), domain.ErrNotTerminal)
	}
	return &TTY{
		in:      in,
		out:     out,
		readBuf: make([]byte, 256),
	}, nil
}

// Write sends raw bytes to the terminal.
func (t *TTY) Write(p []byte) (int, error) {
	return t.out.Write(p)
}

// Size returns the terminal's column and row count.
func (t *TTY) Size() (width, height int, err error) {
	return term.GetSize(t.out.Fd())
}

// EnableRawMode disables line buffering, echo and signal generation.
// Calling it while already raw is a no-op.
func (t *TTY) EnableRawMode() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state != nil {
		return nil
	}
	state, err := term.MakeRaw(t.in.Fd())
	if err != nil {
		return fmt.Errorf("enabling raw mode: %w", err)
	}
	t.state = state
	return nil
}

// DisableRawMode restores the mode saved by EnableRawMode. No-op when raw
// mode is not on.
func (t *TTY) DisableRawMode() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state == nil {
		return nil
	}
	if err := term.Restore(t.in.Fd(), t.state); err != nil {
		return fmt.Errorf("disabling raw mode: %w", err)
	}
	t.state = nil
	return nil
}

// SupportsKeyboardEnhancement asks the terminal whether it implements the
// kitty keyboard protocol. Raw mode must be on so the replies are not
// echoed. Input that arrives during the query is kept for ReadEvent.
func (t *TTY) SupportsKeyboardEnhancement() (bool, error) {
	if _, err := io.WriteString(t.out, ansi.RequestKittyKeyboard+ansi.RequestPrimaryDeviceAttributes); err != nil {
		return false, fmt.Errorf("querying keyboard flags: %w", err)
	}

	supported := false
	var kept []byte
	rest, err := t.readReplies(probeTimeout, func(buf []byte) (int, bool) {
		i := 0
		for i < len(buf) {
			ev, n := Decode(buf[i:])
			if n == 0 {
				break
			}
			switch ev.Type {
			case EventKeyboardFlags:
				supported = true
			case EventDeviceAttributes:
				kept = append(kept, buf[i+n:]...)
				return len(buf), true
			default:
				kept = append(kept, buf[i:i+n]...)
			}
			i += n
		}
		return i, false
	})

	kept = append(kept, rest...)
	t.mu.Lock()
	t.pending = append(kept, t.pending...)
	t.mu.Unlock()

	if err != nil {
		return false, fmt.Errorf("querying keyboard flags: %w", err)
	}
	return supported, nil
}

// ReadEvent blocks until the next complete input event is available or ctx
// is done.
func (t *TTY) ReadEvent(ctx context.Context) (Event, error) {
	for {
		t.mu.Lock()
		if len(t.pending) > 0 {
			ev, n := Decode(t.pending)
			if n > 0 {
				t.pending = t.pending[n:]
				t.mu.Unlock()
				return ev, nil
			}
		}
		loneEscape := len(t.pending) == 1 && t.pending[0] == 0x1b
		t.mu.Unlock()

		if err := ctx.Err(); err != nil {
			return Event{}, err
		}
		wait := readPollInterval
		if loneEscape {
			wait = escapeGrace
		}
		ready, err := t.waitReadable(wait)
		if err != nil {
			return Event{}, fmt.Errorf("waiting for terminal input: %w", err)
		}
		if !ready {
			if loneEscape {
				t.mu.Lock()
				t.pending = t.pending[1:]
				t.mu.Unlock()
				return Event{Type: EventKey, Key: KeyEscape}, nil
			}
			continue
		}

		n, err := t.in.Read(t.readBuf)
		if err != nil {
			return Event{}, fmt.Errorf("reading terminal input: %w", err)
		}
		if n == 0 {
			continue
		}

		t.mu.Lock()
		t.pending = append(t.pending, t.readBuf[:n]...)
		t.mu.Unlock()
	}
}
