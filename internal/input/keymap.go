// Package input turns terminal key events into playback commands.
package input

import (
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/bubbles/key"

	"github.com/hammamikhairi/lullaby/internal/domain"
	"github.com/hammamikhairi/lullaby/internal/terminal"
)

// Binding ties a key binding to the command it produces.
type Binding struct {
	key.Binding
	Command domain.Command
}

// KeyMap is an ordered list of bindings; the first match wins.
type KeyMap struct {
	bindings []Binding
	legend   []key.Binding
}

// DefaultKeyMap returns the player's key bindings.
func DefaultKeyMap() KeyMap {
	var (
		volUp    = domain.AdjustVolume{Delta: 0.10}
		volDown  = domain.AdjustVolume{Delta: -0.10}
		skip     = key.NewBinding(key.WithKeys("s", "n"), key.WithHelp("s", "skip"))
		pause    = key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "pause"))
		quit     = key.NewBinding(key.WithKeys("ctrl+c", "q"), key.WithHelp("q", "quit"))
		bindKeys = func(keys ...string) key.Binding { return key.NewBinding(key.WithKeys(keys...)) }
	)

	return KeyMap{
		bindings: []Binding{
			{bindKeys("up"), volUp},
			{bindKeys("right"), domain.AdjustVolume{Delta: 0.01}},
			{bindKeys("down"), volDown},
			{bindKeys("left"), domain.AdjustVolume{Delta: -0.01}},
			{quit, domain.Quit{}},
			{skip, domain.SkipNext{}},
			{pause, domain.TogglePlayPause{}},
			{bindKeys("+", "="), volUp},
			{bindKeys("-", "_"), volDown},
			{bindKeys("media-play", "media-pause", "media-playpause", "media-stop"), domain.TogglePlayPause{}},
			{bindKeys("media-next"), domain.SkipNext{}},
			{bindKeys("media-volume-down"), volDown},
			{bindKeys("media-volume-up"), volUp},
			{bindKeys("media-mute"), domain.AdjustVolume{Delta: -1.0}},
		},
		legend: []key.Binding{skip, pause, quit},
	}
}

// NewKeyMap builds a key map from custom bindings. The legend lists the
// bindings that carry help text, in order.
func NewKeyMap(bindings ...Binding) KeyMap {
	m := KeyMap{bindings: bindings}
	for _, b := range bindings {
		if b.Help().Key != "" {
			m.legend = append(m.legend, b.Binding)
		}
	}
	return m
}

// Lookup returns the command bound to ev. Character keys are matched
// lower-cased; when the modified form ("ctrl+s", "alt+up") has no binding
// the bare key ("s", "up") is tried.
func (m KeyMap) Lookup(ev terminal.Event) (domain.Command, bool) {
	if ev.Type != terminal.EventKey {
		return nil, false
	}

	name := keyName(strings.ToLower(ev.String()))
	if cmd, ok := m.match(name); ok {
		return cmd, true
	}
	if ev.Modifiers == 0 {
		return nil, false
	}
	if ev.Key != terminal.KeyRune {
		return m.match(keyName(ev.Key.String()))
	}
	buf := make([]byte, utf8.UTFMax)
	n := utf8.EncodeRune(buf, ev.Rune)
	return m.match(keyName(strings.ToLower(string(buf[:n]))))
}

// Legend returns the bindings shown in the controls row.
func (m KeyMap) Legend() []key.Binding {
	return m.legend
}

func (m KeyMap) match(name keyName) (domain.Command, bool) {
	if name == "" {
		return nil, false
	}
	for _, b := range m.bindings {
		if key.Matches(name, b.Binding) {
			return b.Command, true
		}
	}
	return nil, false
}

// keyName lets a plain string be matched against key bindings.
type keyName string

func (k keyName) String() string { return string(k) }
