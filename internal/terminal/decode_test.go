package terminal

import "testing"

func TestDecodeKeys(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
		n     int
	}{
		{"letter", "q", "q", 1},
		{"upper", "Q", "Q", 1},
		{"plus", "+", "+", 1},
		{"ctrl+c legacy", "\x03", "ctrl+c", 1},
		{"enter", "\r", "enter", 1},
		{"backspace", "\x7f", "backspace", 1},
		{"utf8", "é", "é", 2},
		{"arrow up", "\x1b[A", "up", 3},
		{"arrow down", "\x1b[B", "down", 3},
		{"arrow right ss3", "\x1bOC", "right", 3},
		{"arrow left modified", "\x1b[1;5D", "ctrl+left", 6},
		{"alt letter", "\x1bx", "alt+x", 2},
		{"kitty ctrl+c", "\x1b[99;5u", "ctrl+c", 7},
		{"kitty plain", "\x1b[113u", "q", 6},
		{"kitty escape", "\x1b[27u", "esc", 5},
		{"media play", "\x1b[57428u", "media-play", 8},
		{"media pause", "\x1b[57429u", "media-pause", 8},
		{"media playpause", "\x1b[57430u", "media-playpause", 8},
		{"media stop", "\x1b[57432u", "media-stop", 8},
		{"media next", "\x1b[57435u", "media-next", 8},
		{"volume down", "\x1b[57438u", "media-volume-down", 8},
		{"volume up", "\x1b[57439u", "media-volume-up", 8},
		{"mute", "\x1b[57440u", "media-mute", 8},
		{"trailing input", "\x1b[Aq", "up", 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev, n := Decode([]byte(tt.input))
			if n != tt.n {
				t.Fatalf("consumed %d bytes, want %d", n, tt.n)
			}
			if ev.Type != EventKey {
				t.Fatalf("type = %d, want EventKey", ev.Type)
			}
			if got := ev.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDecodeIncomplete(t *testing.T) {
	for _, input := range []string{"", "\x1b", "\x1b[", "\x1b[1;5", "\x1b[5742", "\xc3"} {
		if _, n := Decode([]byte(input)); n != 0 {
			t.Errorf("Decode(%q) consumed %d bytes, want 0", input, n)
		}
	}
}

func TestDecodeReplies(t *testing.T) {
	ev, n := Decode([]byte("\x1b[?1u"))
	if ev.Type != EventKeyboardFlags || ev.Flags != 1 || n != 5 {
		t.Fatalf("flags reply: got %+v (n=%d)", ev, n)
	}

	ev, n = Decode([]byte("\x1b[?62;22c"))
	if ev.Type != EventDeviceAttributes || n != 9 {
		t.Fatalf("device attributes reply: got %+v (n=%d)", ev, n)
	}
}

func TestDecodeUnknownSequenceIsConsumed(t *testing.T) {
	ev, n := Decode([]byte("\x1b[15~x"))
	if ev.Type != EventUnknown {
		t.Fatalf("type = %d, want EventUnknown", ev.Type)
	}
	if n != 5 {
		t.Fatalf("consumed %d bytes, want 5", n)
	}
	if ev.String() != "" {
		t.Fatalf("unknown event should have no name, got %q", ev.String())
	}
}
