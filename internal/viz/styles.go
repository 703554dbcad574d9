package viz

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// styles are rebuilt whenever the theme changes.
type styles struct {
	canvas   lipgloss.Style
	panel    lipgloss.Style
	header   lipgloss.Style
	label    lipgloss.Style
	value    lipgloss.Style
	accent   lipgloss.Style
	graph    lipgloss.Style
	help     lipgloss.Style
	running  lipgloss.Style
	paused   lipgloss.Style
	warning  lipgloss.Style
	barHigh  lipgloss.Style
	barMid   lipgloss.Style
	barLow   lipgloss.Style
	trackDim lipgloss.Style
}

func newStyles(t Theme) styles {
	return styles{
		canvas: lipgloss.NewStyle().Foreground(t.Secondary).Padding(0, 1),
		panel: lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(t.Muted).
			Padding(0, 2).
			Width(42),
		header:   lipgloss.NewStyle().Foreground(t.Primary).Bold(true).MarginBottom(1),
		label:    lipgloss.NewStyle().Foreground(t.Muted).Width(10),
		value:    lipgloss.NewStyle().Foreground(t.Text),
		accent:   lipgloss.NewStyle().Foreground(t.Accent).Bold(true),
		graph:    lipgloss.NewStyle().Foreground(t.Secondary),
		help:     lipgloss.NewStyle().Foreground(t.Muted).MarginTop(1),
		running:  lipgloss.NewStyle().Foreground(t.Success).Bold(true),
		paused:   lipgloss.NewStyle().Foreground(t.Warning).Bold(true),
		warning:  lipgloss.NewStyle().Foreground(t.Error).Bold(true),
		barHigh:  lipgloss.NewStyle().Foreground(t.Success),
		barMid:   lipgloss.NewStyle().Foreground(t.Warning),
		barLow:   lipgloss.NewStyle().Foreground(t.Primary),
		trackDim: lipgloss.NewStyle().Foreground(t.Muted),
	}
}

// ChannelBar renders a normalized channel value. Centered channels fill
// outward from the middle of the track; the throttle fills from the left.
func (s styles) ChannelBar(v float64, centered bool, width int) string {
	if width < 3 {
		width = 3
	}
	if math.IsNaN(v) {
		v = 0
	}
	track := []rune(strings.Repeat("░", width))

	if !centered {
		v = math.Max(0, math.Min(1, v))
		filled := int(math.Round(v * float64(width)))
		bar := strings.Repeat("█", filled)
		style := s.barLow
		if v > 0.8 {
			style = s.barHigh
		} else if v > 0.4 {
			style = s.barMid
		}
		return style.Render(bar) + s.trackDim.Render(string(track[filled:]))
	}

	v = math.Max(-1, math.Min(1, v))
	mid := width / 2
	n := int(math.Round(math.Abs(v) * float64(mid)))
	for i := 0; i < n; i++ {
		if v > 0 {
			track[min(mid+1+i, width-1)] = '█'
		} else {
			track[max(mid-1-i, 0)] = '█'
		}
	}
	track[mid] = '│'
	return s.barMid.Render(string(track))
}

// SparklineChart renders a mini sparkline from values.
func (s styles) SparklineChart(values []float64, width int) string {
	if len(values) == 0 {
		return strings.Repeat("─", width)
	}

	chars := []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

	lo, hi := values[0], values[0]
	for _, v := range values {
		lo, hi = math.Min(lo, v), math.Max(hi, v)
	}
	rng := hi - lo
	if rng == 0 {
		rng = 1
	}

	// newest samples on the right
	if len(values) > width {
		values = values[len(values)-width:]
	}

	var result strings.Builder
	for _, v := range values {
		norm := (v - lo) / rng
		idx := int(norm * float64(len(chars)-1))
		idx = max(0, min(idx, len(chars)-1))
		c := string(chars[idx])
		switch {
		case norm > 0.7:
			result.WriteString(s.barHigh.Render(c))
		case norm > 0.3:
			result.WriteString(s.barMid.Render(c))
		default:
			result.WriteString(s.barLow.Render(c))
		}
	}
	return result.String()
}

func (s styles) Separator(width int) string {
	mid := width / 2
	left := strings.Repeat("─", max(mid-3, 0))
	right := strings.Repeat("─", max(width-mid-3, 0))
	return s.trackDim.Render(left + " ◆ " + right)
}
