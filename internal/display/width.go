package display

// MaxWidth caps the panel's content width; FallbackWidth is used when the
// terminal size cannot be read.
const (
	MaxWidth      = 73
	FallbackWidth = 27

	// border is the box's "│ " + " │" around each row.
	border = 4
)

// Width returns the content width for a terminal of the given column count.
// Pass the error from the size query straight through.
func Width(columns int, err error) int {
	if err != nil {
		return FallbackWidth
	}
	w := columns - border
	if w < 0 {
		return 0
	}
	if w > MaxWidth {
		return MaxWidth
	}
	return w
}
