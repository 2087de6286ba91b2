package domain

import "errors"

// Sentinel errors used across layers.
var (
	ErrEngineStopped     = errors.New("playback engine stopped")
	ErrEmptyLibrary      = errors.New("no tracks in library")
	ErrNoPlayableTracks  = errors.New("no playable tracks")
	ErrUnsupportedFormat = errors.New("unsupported audio format")
	ErrNotTerminal       = errors.New("not a terminal")
)
