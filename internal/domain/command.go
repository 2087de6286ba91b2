package domain

import "fmt"

// Command is a single user intent sent from the interface to the playback
// engine. The set is closed: only the types in this file implement it.
type Command interface {
	isCommand()
	fmt.Stringer
}

// Quit asks the engine to stop playback and exit its loop.
type Quit struct{}

// SkipNext abandons the current track and starts the next one.
type SkipNext struct{}

// TogglePlayPause flips between playing and paused.
type TogglePlayPause struct{}

// AdjustVolume changes the volume by Delta, a signed fraction of full scale.
// The engine clamps the result, so a large negative delta drives the volume
// to its floor.
type AdjustVolume struct {
	Delta float64
}

func (Quit) isCommand()            {}
func (SkipNext) isCommand()        {}
func (TogglePlayPause) isCommand() {}
func (AdjustVolume) isCommand()    {}

func (Quit) String() string            { return "quit" }
func (SkipNext) String() string        { return "skip_next" }
func (TogglePlayPause) String() string { return "toggle_play_pause" }

func (c AdjustVolume) String() string {
	return fmt.Sprintf("adjust_volume(%+.2f)", c.Delta)
}
