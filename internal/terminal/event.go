// Package terminal talks to the controlling terminal: raw mode, size,
// control sequences, and decoding of raw input bytes into key events.
//
// Decoding covers the legacy xterm encodings (control bytes, CSI/SS3 cursor
// keys, UTF-8 text) and the kitty keyboard protocol's CSI-u form, which is
// how media keys arrive once disambiguated escape codes are enabled.
package terminal

import "strings"

// EventType distinguishes input event categories.
type EventType uint8

const (
	EventUnknown EventType = iota
	EventKey
	EventKeyboardFlags    // reply to a kitty keyboard flags query
	EventDeviceAttributes // reply to a primary device attributes query
)

// Key identifies a non-text key. Text keys use KeyRune and carry the rune.
type Key uint16

const (
	KeyNone Key = iota
	KeyRune

	KeyEscape
	KeyEnter
	KeyTab
	KeyBackspace

	KeyUp
	KeyDown
	KeyLeft
	KeyRight

	KeyMediaPlay
	KeyMediaPause
	KeyMediaPlayPause
	KeyMediaReverse
	KeyMediaStop
	KeyMediaFastForward
	KeyMediaRewind
	KeyMediaTrackNext
	KeyMediaTrackPrevious
	KeyMediaRecord
	KeyLowerVolume
	KeyRaiseVolume
	KeyMuteVolume
)

var keyNames = map[Key]string{
	KeyEscape:             "esc",
	KeyEnter:              "enter",
	KeyTab:                "tab",
	KeyBackspace:          "backspace",
	KeyUp:                 "up",
	KeyDown:               "down",
	KeyLeft:               "left",
	KeyRight:              "right",
	KeyMediaPlay:          "media-play",
	KeyMediaPause:         "media-pause",
	KeyMediaPlayPause:     "media-playpause",
	KeyMediaReverse:       "media-reverse",
	KeyMediaStop:          "media-stop",
	KeyMediaFastForward:   "media-fastforward",
	KeyMediaRewind:        "media-rewind",
	KeyMediaTrackNext:     "media-next",
	KeyMediaTrackPrevious: "media-prev",
	KeyMediaRecord:        "media-record",
	KeyLowerVolume:        "media-volume-down",
	KeyRaiseVolume:        "media-volume-up",
	KeyMuteVolume:         "media-mute",
}

// String returns the binding name of the key, or "" for KeyNone/KeyRune.
func (k Key) String() string {
	return keyNames[k]
}

// Modifier is a bitmask of held modifier keys.
type Modifier uint8

const (
	ModShift Modifier = 1 << iota
	ModAlt
	ModCtrl
	ModSuper
)

// Event is one decoded unit of terminal input.
type Event struct {
	Type      EventType
	Key       Key
	Rune      rune
	Modifiers Modifier
	Flags     int // EventKeyboardFlags only
}

// String names the event the way key bindings refer to it: "up",
// "media-next", "q", "ctrl+c", "alt+x". Non-key events return "".
func (e Event) String() string {
	if e.Type != EventKey {
		return ""
	}

	var b strings.Builder
	if e.Modifiers&ModCtrl != 0 {
		b.WriteString("ctrl+")
	}
	if e.Modifiers&ModAlt != 0 {
		b.WriteString("alt+")
	}
	if e.Modifiers&ModSuper != 0 {
		b.WriteString("super+")
	}
	if e.Key == KeyRune {
		b.WriteRune(e.Rune)
	} else {
		b.WriteString(e.Key.String())
	}
	return b.String()
}
