package ui

import (
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/x/ansi"

	"github.com/hammamikhairi/lullaby/internal/logger"
)

// Farewell is printed once the terminal has been restored.
const Farewell = "bye! :)"

// Device is the terminal as seen by the mode lifecycle.
type Device interface {
	io.Writer
	EnableRawMode() error
	DisableRawMode() error
	SupportsKeyboardEnhancement() (bool, error)
}

// Environment records the terminal mode changes applied by Ready so that
// Cleanup can revert exactly those, in reverse order.
type Environment struct {
	dev      Device
	log      *logger.Logger
	farewell io.Writer

	mu           sync.Mutex
	cursorHidden bool
	alternate    bool
	raw          bool
	flagPushed   bool
	started      bool
	cleaned      bool
}

// Ready prepares the terminal for the panel: hide the cursor, optionally
// switch to the alternate screen, enable raw mode, then turn on kitty's
// disambiguated escape codes if the terminal supports them.
//
// On failure whatever was already applied is reverted and the error is
// returned. farewell, if not nil, receives the goodbye line when a
// successfully started environment is cleaned up.
func Ready(dev Device, alternate bool, farewell io.Writer, log *logger.Logger) (*Environment, error) {
	env := &Environment{
		dev:      dev,
		log:      log,
		farewell: farewell,
	}
	if err := env.ready(alternate); err != nil {
		env.Cleanup()
		return nil, err
	}
	return env, nil
}

func (e *Environment) ready(alternate bool) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, err := io.WriteString(e.dev, ansi.HideCursor); err != nil {
		return fmt.Errorf("hiding cursor: %w", err)
	}
	e.cursorHidden = true

	if alternate {
		if _, err := io.WriteString(e.dev, ansi.SetAltScreenSaveCursorMode+ansi.CursorHomePosition); err != nil {
			return fmt.Errorf("entering alternate screen: %w", err)
		}
		e.alternate = true
	}

	if err := e.dev.EnableRawMode(); err != nil {
		return fmt.Errorf("enabling raw mode: %w", err)
	}
	e.raw = true

	supported, err := e.dev.SupportsKeyboardEnhancement()
	if err != nil {
		return fmt.Errorf("probing keyboard enhancement: %w", err)
	}
	if supported {
		if _, err := io.WriteString(e.dev, ansi.PushKittyKeyboard(ansi.KittyDisambiguateEscapeCodes)); err != nil {
			return fmt.Errorf("pushing keyboard flags: %w", err)
		}
		e.flagPushed = true
	}

	e.log.Debug("terminal ready (alternate=%t, enhanced keys=%t)", alternate, supported)
	e.started = true
	return nil
}

// Cleanup reverts the changes made by Ready. Every step is attempted even
// if an earlier one fails; failures are logged. Calls after the first do
// nothing.
func (e *Environment) Cleanup() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.cleaned {
		return
	}
	e.cleaned = true

	if e.flagPushed {
		e.write("popping keyboard flags", ansi.PopKittyKeyboard(1))
		e.flagPushed = false
	}
	if e.alternate {
		e.write("leaving alternate screen", ansi.ResetAltScreenSaveCursorMode)
		e.alternate = false
	}
	if e.cursorHidden {
		e.write("clearing panel", ansi.EraseScreenBelow)
		e.write("showing cursor", ansi.ShowCursor)
		e.cursorHidden = false
	}
	if e.raw {
		if err := e.dev.DisableRawMode(); err != nil {
			e.log.Warn("disabling raw mode: %v", err)
		}
		e.raw = false
	}

	if e.started && e.farewell != nil {
		fmt.Fprintln(e.farewell, Farewell)
	}
	e.log.Debug("terminal restored")
}

func (e *Environment) write(step, seq string) {
	if _, err := io.WriteString(e.dev, seq); err != nil {
		e.log.Warn("%s: %v", step, err)
	}
}
