package terminal

import (
	"strconv"
	"unicode/utf8"
)

// kitty keyboard protocol functional key codes for media keys.
var kittyMediaKeys = map[int]Key{
	57428: KeyMediaPlay,
	57429: KeyMediaPause,
	57430: KeyMediaPlayPause,
	57431: KeyMediaReverse,
	57432: KeyMediaStop,
	57433: KeyMediaFastForward,
	57434: KeyMediaRewind,
	57435: KeyMediaTrackNext,
	57436: KeyMediaTrackPrevious,
	57437: KeyMediaRecord,
	57438: KeyLowerVolume,
	57439: KeyRaiseVolume,
	57440: KeyMuteVolume,
}

// Decode parses the first event in b and returns it with the number of
// bytes consumed. n == 0 means b holds an incomplete sequence and more
// input is needed. Unrecognised but well-formed sequences are consumed and
// returned as EventUnknown.
func Decode(b []byte) (ev Event, n int) {
	if len(b) == 0 {
		return Event{}, 0
	}

	c := b[0]
	switch {
	case c == 0x1b:
		return decodeEscape(b)
	case c < 0x20:
		return decodeControl(c), 1
	case c == 0x7f:
		return Event{Type: EventKey, Key: KeyBackspace}, 1
	case c < 0x7f:
		return Event{Type: EventKey, Key: KeyRune, Rune: rune(c)}, 1
	}

	if !utf8.FullRune(b) {
		return Event{}, 0
	}
	r, size := utf8.DecodeRune(b)
	if r == utf8.RuneError {
		return Event{Type: EventUnknown}, size
	}
	return Event{Type: EventKey, Key: KeyRune, Rune: r}, size
}

// decodeControl maps C0 control bytes. Ctrl+letter arrives as the letter's
// position in the alphabet (Ctrl+C = 0x03).
func decodeControl(c byte) Event {
	switch c {
	case 0x08:
		return Event{Type: EventKey, Key: KeyBackspace}
	case 0x09:
		return Event{Type: EventKey, Key: KeyTab}
	case 0x0a, 0x0d:
		return Event{Type: EventKey, Key: KeyEnter}
	case 0x00:
		return Event{Type: EventKey, Key: KeyRune, Rune: ' ', Modifiers: ModCtrl}
	}
	if c >= 0x01 && c <= 0x1a {
		return Event{Type: EventKey, Key: KeyRune, Rune: rune('a' + c - 1), Modifiers: ModCtrl}
	}
	return Event{Type: EventUnknown}
}

func decodeEscape(b []byte) (Event, int) {
	if len(b) < 2 {
		return Event{}, 0
	}

	switch b[1] {
	case '[':
		return decodeCSI(b)
	case 'O':
		if len(b) < 3 {
			return Event{}, 0
		}
		if k, ok := cursorKey(b[2]); ok {
			return Event{Type: EventKey, Key: k}, 3
		}
		return Event{Type: EventUnknown}, 3
	case 0x1b:
		return Event{Type: EventKey, Key: KeyEscape, Modifiers: ModAlt}, 2
	}

	// ESC + key is Alt+key.
	ev, n := Decode(b[1:])
	if n == 0 {
		return Event{}, 0
	}
	if ev.Type == EventKey {
		ev.Modifiers |= ModAlt
	}
	return ev, n + 1
}

// decodeCSI parses ESC [ <params> <intermediates> <final>.
func decodeCSI(b []byte) (Event, int) {
	i := 2
	for i < len(b) && b[i] >= 0x30 && b[i] <= 0x3f {
		i++
	}
	paramEnd := i
	for i < len(b) && b[i] >= 0x20 && b[i] <= 0x2f {
		i++
	}
	if i >= len(b) {
		return Event{}, 0
	}
	final := b[i]
	n := i + 1
	if final < 0x40 || final > 0x7e {
		// Malformed; drop the introducer so decoding can resync.
		return Event{Type: EventUnknown}, 2
	}

	params := b[2:paramEnd]
	private := len(params) > 0 && params[0] == '?'
	if private {
		params = params[1:]
	}

	switch {
	case private && final == 'u':
		flags, _ := strconv.Atoi(string(params))
		return Event{Type: EventKeyboardFlags, Flags: flags}, n
	case private && final == 'c':
		return Event{Type: EventDeviceAttributes}, n
	case private:
		return Event{Type: EventUnknown}, n
	}

	fields := splitParams(params)
	mods := modifiers(fields)

	if k, ok := cursorKey(final); ok {
		return Event{Type: EventKey, Key: k, Modifiers: mods}, n
	}

	if final == 'u' && len(fields) > 0 {
		code := fields[0]
		if k, ok := kittyMediaKeys[code]; ok {
			return Event{Type: EventKey, Key: k, Modifiers: mods}, n
		}
		return kittyCodepoint(code, mods), n
	}

	return Event{Type: EventUnknown}, n
}

// kittyCodepoint converts a CSI-u key code to an event. Codes below 0xE000
// are unicode codepoints; the private use area holds functional keys we
// do not bind.
func kittyCodepoint(code int, mods Modifier) Event {
	switch code {
	case 27:
		return Event{Type: EventKey, Key: KeyEscape, Modifiers: mods}
	case 13:
		return Event{Type: EventKey, Key: KeyEnter, Modifiers: mods}
	case 9:
		return Event{Type: EventKey, Key: KeyTab, Modifiers: mods}
	case 127, 8:
		return Event{Type: EventKey, Key: KeyBackspace, Modifiers: mods}
	}
	if code < 0x20 || (code >= 0xe000 && code <= 0xf8ff) || !utf8.ValidRune(rune(code)) {
		return Event{Type: EventUnknown}
	}
	return Event{Type: EventKey, Key: KeyRune, Rune: rune(code), Modifiers: mods}
}

func cursorKey(final byte) (Key, bool) {
	switch final {
	case 'A':
		return KeyUp, true
	case 'B':
		return KeyDown, true
	case 'C':
		return KeyRight, true
	case 'D':
		return KeyLeft, true
	}
	return KeyNone, false
}

// splitParams parses "1;5" into [1 5]. Sub-parameters after ':' are
// dropped; empty fields parse as 0.
func splitParams(p []byte) []int {
	if len(p) == 0 {
		return nil
	}
	var out []int
	start := 0
	for i := 0; i <= len(p); i++ {
		if i < len(p) && p[i] != ';' {
			continue
		}
		field := p[start:i]
		for j, c := range field {
			if c == ':' {
				field = field[:j]
				break
			}
		}
		v, _ := strconv.Atoi(string(field))
		out = append(out, v)
		start = i + 1
	}
	return out
}

// modifiers decodes the xterm/kitty modifier parameter (1 + bitmask) from
// the second field.
func modifiers(fields []int) Modifier {
	if len(fields) < 2 || fields[1] <= 1 {
		return 0
	}
	bits := fields[1] - 1
	var m Modifier
	if bits&1 != 0 {
		m |= ModShift
	}
	if bits&2 != 0 {
		m |= ModAlt
	}
	if bits&4 != 0 {
		m |= ModCtrl
	}
	if bits&8 != 0 {
		m |= ModSuper
	}
	return m
}
