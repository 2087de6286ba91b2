package display

import "github.com/charmbracelet/lipgloss"

// ── Styles ───────────────────────────────────────────────────────

var (
	// Action label: "playing", "paused", "loading".
	labelStyle = lipgloss.NewStyle().
			Bold(true)

	pausedStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#a1a1aa"))

	loadingStyle = lipgloss.NewStyle().
			Italic(true).
			Foreground(lipgloss.Color("#71717a"))

	trackStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#d4d4d8"))

	// Controls legend; dimmed so it reads as a hint.
	controlsStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#71717a"))
)

// barColor is the fill colour of the progress and volume bars.
const barColor = "#94a3b8"
