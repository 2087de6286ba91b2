package display

import "sync/atomic"

// VolumeIndicatorFrames is how many frames the volume bar stays up after
// the volume is changed.
const VolumeIndicatorFrames = 10

// VolumeTimer tracks how long the volume bar has been shown. Zero means
// hidden; N > 0 means shown, N frames since it was armed.
//
// The input listener arms it and the render loop ticks it, without a lock.
// A lost increment only shortens the display by a frame.
type VolumeTimer struct {
	frames atomic.Uint32
}

// NewVolumeTimer returns a disarmed timer.
func NewVolumeTimer() *VolumeTimer {
	return &VolumeTimer{}
}

// Arm (re)starts the countdown.
func (t *VolumeTimer) Arm() {
	t.frames.Store(1)
}

// Tick advances the timer by one frame and disarms it once it has been
// shown for longer than VolumeIndicatorFrames.
func (t *VolumeTimer) Tick() {
	v := t.frames.Load()
	switch {
	case v >= 1 && v <= VolumeIndicatorFrames:
		t.frames.Add(1)
	case v > VolumeIndicatorFrames:
		t.frames.Store(0)
	}
}

// Active reports whether the volume bar should be shown.
func (t *VolumeTimer) Active() bool {
	return t.frames.Load() != 0
}

// Value returns the raw frame counter.
func (t *VolumeTimer) Value() uint32 {
	return t.frames.Load()
}
