package display

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/x/ansi"
	"github.com/mattn/go-runewidth"

	"github.com/hammamikhairi/lullaby/internal/domain"
)

// Fixed decorations around the bars: " [" + "] mm:ss/mm:ss " and
// " volume: [" + "] " + "100%" + " ".
const (
	progressChrome = 16
	volumeChrome   = 17
)

// Rows builds the panel content for one frame. Each row is exactly width
// columns wide. The middle row is the volume bar when showVolume is set and
// the progress bar otherwise; the controls row is left out in minimalist
// mode.
func Rows(s domain.Snapshot, width int, showVolume, minimalist bool, legend []key.Binding) []string {
	rows := make([]string, 0, 3)
	rows = append(rows, Action(s, width))
	if showVolume {
		rows = append(rows, AudioBar(s.Volume, width))
	} else {
		rows = append(rows, ProgressBar(s, width))
	}
	if !minimalist {
		rows = append(rows, Controls(legend, width))
	}
	return rows
}

// Action renders "<state> <track>".
func Action(s domain.Snapshot, width int) string {
	var label string
	switch s.State {
	case domain.StatePaused:
		label = pausedStyle.Render(s.State.String())
	case domain.StateLoading, domain.StateStopped:
		label = loadingStyle.Render(s.State.String())
	default:
		label = labelStyle.Render(s.State.String())
	}

	name := s.Track.Name()
	if name == "" {
		return fit(label, width)
	}

	avail := width - ansi.StringWidth(label) - 1
	if avail <= 0 {
		return fit(label, width)
	}
	if runewidth.StringWidth(name) > avail {
		name = runewidth.Truncate(name, avail, "...")
	}
	return fit(label+" "+trackStyle.Render(name), width)
}

// ProgressBar renders " [////    ] 01:02/03:04 ".
func ProgressBar(s domain.Snapshot, width int) string {
	known := s.Duration > 0
	text := fmt.Sprintf(" [%s] %s/%s ",
		bar(width-progressChrome, s.Progress()),
		clock(s.Elapsed, known),
		clock(s.Duration, known),
	)
	return fit(text, width)
}

// AudioBar renders " volume: [////    ]  40% ". The bar is clamped to
// [0, 1]; the label is not.
func AudioBar(volume float64, width int) string {
	fill := math.Max(0, math.Min(1, volume))
	text := fmt.Sprintf(" volume: [%s] %4s ", bar(width-volumeChrome, fill), Percentage(volume))
	return fit(text, width)
}

// Percentage formats a volume fraction as shown next to the volume bar.
func Percentage(volume float64) string {
	return fmt.Sprintf("%d%%", int(math.Abs(math.Round(volume*100))))
}

// Controls renders the key legend, e.g. "[s]kip    [p]ause    [q]uit",
// spreading the entries across the width.
func Controls(legend []key.Binding, width int) string {
	var items []string
	total := 0
	for _, b := range legend {
		h := b.Help()
		if h.Key == "" {
			continue
		}
		item := legendItem(h.Key, h.Desc)
		items = append(items, item)
		total += ansi.StringWidth(item)
	}
	if len(items) < 2 {
		return fit(controlsStyle.Render(strings.Join(items, "")), width)
	}

	gaps := len(items) - 1
	spare := width - total
	if spare < gaps {
		return fit(controlsStyle.Render(strings.Join(items, " ")), width)
	}

	var b strings.Builder
	for i, item := range items {
		b.WriteString(item)
		if i == gaps {
			break
		}
		n := spare / gaps
		if i < spare%gaps {
			n++
		}
		b.WriteString(strings.Repeat(" ", n))
	}
	return fit(controlsStyle.Render(b.String()), width)
}

// legendItem folds the key into the description when it is its first
// letter: ("s", "skip") -> "[s]kip".
func legendItem(k, desc string) string {
	if strings.HasPrefix(desc, k) {
		return "[" + k + "]" + strings.TrimPrefix(desc, k)
	}
	return "[" + k + "] " + desc
}

// bar renders a fill bar of exactly width columns.
func bar(width int, percent float64) string {
	if width <= 0 {
		return ""
	}
	m := progress.New(
		progress.WithWidth(width),
		progress.WithoutPercentage(),
		progress.WithFillCharacters('/', ' '),
		progress.WithSolidFill(barColor),
	)
	return m.ViewAs(percent)
}

// clock formats a duration as mm:ss, capped at 99:59 so the label keeps
// its width.
func clock(d time.Duration, known bool) string {
	if !known {
		return "--:--"
	}
	if d < 0 {
		d = 0
	}
	secs := int(d / time.Second)
	m, s := secs/60, secs%60
	if m > 99 {
		m, s = 99, 59
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}

// fit truncates or pads s (which may carry ANSI styling) to exactly width
// visible columns.
func fit(s string, width int) string {
	if width <= 0 {
		return ""
	}
	w := ansi.StringWidth(s)
	if w > width {
		s = ansi.Truncate(s, width, "")
		w = ansi.StringWidth(s)
	}
	if w < width {
		s += strings.Repeat(" ", width-w)
	}
	return s
}
