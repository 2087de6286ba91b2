package logger

import (
	"bytes"
	"strings"
	"testing"
)

func TestLevels(t *testing.T) {
	var buf bytes.Buffer
	log := New(LevelNormal, &buf)

	log.Debug("hidden %d", 1)
	log.Info("shown %d", 2)
	if strings.Contains(buf.String(), "hidden") {
		t.Fatalf("debug output leaked at normal level: %q", buf.String())
	}
	if !strings.Contains(buf.String(), "[INF] ") || !strings.Contains(buf.String(), "shown 2") {
		t.Fatalf("missing info output: %q", buf.String())
	}

	buf.Reset()
	log.SetLevel(LevelOff)
	log.Error("nothing")
	if buf.Len() != 0 {
		t.Fatalf("expected no output when off, got %q", buf.String())
	}
}

func TestNamedSharesLevel(t *testing.T) {
	var buf bytes.Buffer
	parent := New(LevelNormal, &buf)
	child := parent.Named("render").Named("bar")

	parent.SetLevel(LevelVerbose)
	child.Debug("frame %d", 7)

	out := buf.String()
	if !strings.Contains(out, "[DBG] ") || !strings.Contains(out, "render: bar: frame 7") {
		t.Fatalf("unexpected child output: %q", out)
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]Level{
		"off":     LevelOff,
		"QUIET":   LevelOff,
		"debug":   LevelVerbose,
		"verbose": LevelVerbose,
		"":        LevelNormal,
		"info":    LevelNormal,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %d, want %d", in, got, want)
		}
	}
}

func TestNilWriterDiscards(t *testing.T) {
	log := New(LevelVerbose, nil)
	log.Debug("discarded")
	log.Named("x").Error("discarded too")
}
