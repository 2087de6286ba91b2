package ui

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"

	"github.com/hammamikhairi/lullaby/internal/logger"
)

var quietLog = logger.New(logger.LevelOff, nil)

func TestReadyCleanupRoundTrip(t *testing.T) {
	term := &fakeTerminal{}
	var farewell bytes.Buffer

	env, err := Ready(term, true, &farewell, quietLog)
	if err != nil {
		t.Fatalf("ready: %v", err)
	}
	if !term.isRaw() {
		t.Fatal("raw mode not enabled")
	}
	if !indexOrder(term.output(), ansi.HideCursor, ansi.SetAltScreenSaveCursorMode) {
		t.Fatalf("unexpected startup output %q", term.output())
	}

	env.Cleanup()

	if term.isRaw() {
		t.Fatal("raw mode still enabled after cleanup")
	}
	out := term.output()
	if !indexOrder(out, ansi.ResetAltScreenSaveCursorMode, ansi.EraseScreenBelow, ansi.ShowCursor) {
		t.Fatalf("unexpected cleanup output %q", out)
	}
	if strings.Contains(out, ansi.PushKittyKeyboard(ansi.KittyDisambiguateEscapeCodes)) ||
		strings.Contains(out, ansi.PopKittyKeyboard(1)) {
		t.Fatalf("keyboard flags touched on a terminal without support: %q", out)
	}
	if farewell.String() != Farewell+"\n" {
		t.Fatalf("farewell = %q", farewell.String())
	}
}

func TestReadyPushesFlagWhenSupported(t *testing.T) {
	term := &fakeTerminal{enhanced: true}

	env, err := Ready(term, false, nil, quietLog)
	if err != nil {
		t.Fatalf("ready: %v", err)
	}
	push := ansi.PushKittyKeyboard(ansi.KittyDisambiguateEscapeCodes)
	if !strings.Contains(term.output(), push) {
		t.Fatalf("flag not pushed: %q", term.output())
	}
	if strings.Contains(term.output(), ansi.SetAltScreenSaveCursorMode) {
		t.Fatal("alternate screen entered without being asked")
	}

	env.Cleanup()
	out := term.output()
	if !indexOrder(out, push, ansi.PopKittyKeyboard(1), ansi.EraseScreenBelow, ansi.ShowCursor) {
		t.Fatalf("cleanup out of order: %q", out)
	}
	if strings.Contains(out, ansi.ResetAltScreenSaveCursorMode) {
		t.Fatal("left an alternate screen that was never entered")
	}
}

func TestCleanupIsIdempotent(t *testing.T) {
	term := &fakeTerminal{enhanced: true}
	var farewell bytes.Buffer

	env, err := Ready(term, true, &farewell, quietLog)
	if err != nil {
		t.Fatalf("ready: %v", err)
	}

	env.Cleanup()
	after := term.output()
	env.Cleanup()

	if term.output() != after {
		t.Fatalf("second cleanup wrote %q", strings.TrimPrefix(term.output(), after))
	}
	if term.rawCalls != 1 {
		t.Fatalf("raw mode disabled %d times, want 1", term.rawCalls)
	}
	if strings.Count(farewell.String(), Farewell) != 1 {
		t.Fatalf("farewell printed %d times", strings.Count(farewell.String(), Farewell))
	}
}

func TestReadyFailureRevertsPartialState(t *testing.T) {
	rawErr := errors.New("not a tty")
	term := &fakeTerminal{rawErr: rawErr}
	var farewell bytes.Buffer

	env, err := Ready(term, true, &farewell, quietLog)
	if !errors.Is(err, rawErr) {
		t.Fatalf("ready error = %v, want %v", err, rawErr)
	}
	if env != nil {
		t.Fatal("environment returned on failure")
	}

	out := term.output()
	if !indexOrder(out, ansi.SetAltScreenSaveCursorMode, ansi.ResetAltScreenSaveCursorMode, ansi.ShowCursor) {
		t.Fatalf("partial state not reverted: %q", out)
	}
	if term.rawCalls != 0 {
		t.Fatal("raw mode disabled although it was never enabled")
	}
	if farewell.Len() != 0 {
		t.Fatalf("farewell printed for a session that never started: %q", farewell.String())
	}
}

func TestReadyProbeFailure(t *testing.T) {
	probeErr := errors.New("probe timed out")
	term := &fakeTerminal{probeErr: probeErr}

	_, err := Ready(term, false, nil, quietLog)
	if !errors.Is(err, probeErr) {
		t.Fatalf("ready error = %v, want %v", err, probeErr)
	}
	if term.isRaw() {
		t.Fatal("raw mode left on after a failed probe")
	}
}

func TestCleanupRunsEveryStepDespiteWriteErrors(t *testing.T) {
	term := &fakeTerminal{enhanced: true}

	env, err := Ready(term, true, nil, quietLog)
	if err != nil {
		t.Fatalf("ready: %v", err)
	}

	term.mu.Lock()
	term.failWrite = true
	term.mu.Unlock()

	env.Cleanup()
	if term.isRaw() {
		t.Fatal("raw mode not disabled after failed writes")
	}
}
