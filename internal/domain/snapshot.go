package domain

import (
	"path/filepath"
	"strings"
	"time"
)

// PlayState describes what the engine is doing right now.
type PlayState int

const (
	StateStopped PlayState = iota
	StateLoading
	StatePlaying
	StatePaused
)

// String returns a human-readable state, as shown in the action row.
func (s PlayState) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StatePlaying:
		return "playing"
	case StatePaused:
		return "paused"
	default:
		return "stopped"
	}
}

// Track is a playable audio file and the metadata read from its tags.
type Track struct {
	Path   string
	Title  string
	Artist string
}

// Name returns the display name of the track. Falls back to the file name
// without its extension when the tags carry no title.
func (t Track) Name() string {
	switch {
	case t.Title != "" && t.Artist != "":
		return t.Artist + " - " + t.Title
	case t.Title != "":
		return t.Title
	case t.Path != "":
		base := filepath.Base(t.Path)
		return strings.TrimSuffix(base, filepath.Ext(base))
	default:
		return ""
	}
}

// Snapshot is a read-only view of the playback state at one instant.
// It is a value: holders never observe later engine changes through it.
type Snapshot struct {
	State    PlayState
	Track    Track
	Elapsed  time.Duration
	Duration time.Duration // zero when unknown
	Volume   float64       // 0.0 - 1.0
}

// Progress returns Elapsed/Duration clamped to [0, 1]. Returns 0 when the
// duration is unknown.
func (s Snapshot) Progress() float64 {
	if s.Duration <= 0 {
		return 0
	}
	p := float64(s.Elapsed) / float64(s.Duration)
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}
