package ui

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"sync"

	"github.com/hammamikhairi/lullaby/internal/terminal"
)

// fakeTerminal is an in-memory terminal. Events are replayed in order;
// once they run out ReadEvent returns io.EOF, or waits for ctx when block
// is set.
type fakeTerminal struct {
	mu sync.Mutex

	out       bytes.Buffer
	columns   int
	raw       bool
	rawCalls  int
	enhanced  bool
	events    []terminal.Event
	block     bool
	failWrite bool

	rawErr   error
	probeErr error
}

func (f *fakeTerminal) Write(p []byte) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWrite {
		return 0, errors.New("write failed")
	}
	return f.out.Write(p)
}

func (f *fakeTerminal) Size() (int, int, error) {
	return f.columns, 24, nil
}

func (f *fakeTerminal) EnableRawMode() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.rawErr != nil {
		return f.rawErr
	}
	f.raw = true
	return nil
}

func (f *fakeTerminal) DisableRawMode() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rawCalls++
	f.raw = false
	return nil
}

func (f *fakeTerminal) SupportsKeyboardEnhancement() (bool, error) {
	return f.enhanced, f.probeErr
}

func (f *fakeTerminal) ReadEvent(ctx context.Context) (terminal.Event, error) {
	if err := ctx.Err(); err != nil {
		return terminal.Event{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.events) == 0 {
		if f.block {
			f.mu.Unlock()
			<-ctx.Done()
			f.mu.Lock()
			return terminal.Event{}, ctx.Err()
		}
		return terminal.Event{}, io.EOF
	}
	ev := f.events[0]
	f.events = f.events[1:]
	return ev, nil
}

func (f *fakeTerminal) output() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.out.String()
}

func (f *fakeTerminal) isRaw() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.raw
}

// indexOrder reports whether each of seqs appears in s, in order.
func indexOrder(s string, seqs ...string) bool {
	at := 0
	for _, seq := range seqs {
		i := strings.Index(s[at:], seq)
		if i < 0 {
			return false
		}
		at += i + len(seq)
	}
	return true
}
