package viz

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Styles is the set of lipgloss styles derived from a Theme.
type Styles struct {
	Panel  lipgloss.Style
	Title  lipgloss.Style
	Label  lipgloss.Style
	Value  lipgloss.Style
	Muted  lipgloss.Style
	Good   lipgloss.Style
	Warn   lipgloss.Style
	Bad    lipgloss.Style
	Header lipgloss.Style
}

func NewStyles(t Theme) Styles {
	return Styles{
		Panel: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(t.Muted).
			Padding(1, 2),
		Title: lipgloss.NewStyle().Bold(true).Foreground(t.Primary),
		Label: lipgloss.NewStyle().Foreground(t.Muted).Width(14),
		Value: lipgloss.NewStyle().Foreground(t.Text).Bold(true),
		Muted: lipgloss.NewStyle().Foreground(t.Muted),
		Good:  lipgloss.NewStyle().Bold(true).Foreground(t.Success),
		Warn:  lipgloss.NewStyle().Bold(true).Foreground(t.Warning),
		Bad:   lipgloss.NewStyle().Bold(true).Foreground(t.Error),
		Header: lipgloss.NewStyle().
			Bold(true).
			Foreground(t.Secondary).
			BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true).
			BorderForeground(t.Muted),
	}
}

// ProgressBar renders a bar filled to percent (0..1).
func (s Styles) ProgressBar(percent float64, width int) string {
	filled := int(percent * float64(width))
	filled = max(0, min(filled, width))
	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)

	switch {
	case percent > 0.8:
		return s.Good.Render(bar)
	case percent > 0.4:
		return s.Warn.Render(bar)
	}
	return s.Bad.Render(bar)
}

var sparkChars = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// Sparkline renders values as a row of block characters, sampled down to
// width. Non-finite values are drawn as the lowest block.
func Sparkline(values []float64, width int) string {
	if len(values) == 0 || width <= 0 {
		return strings.Repeat("─", max(width, 0))
	}

	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		lo, hi = math.Min(lo, v), math.Max(hi, v)
	}
	rng := hi - lo
	if !(rng > 0) {
		rng = 1
	}

	step := max(len(values)/width, 1)
	var b strings.Builder
	for i := 0; i < width && i*step < len(values); i++ {
		v := values[i*step]
		idx := 0
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			idx = int((v - lo) / rng * float64(len(sparkChars)-1))
			idx = max(0, min(idx, len(sparkChars)-1))
		}
		b.WriteRune(sparkChars[idx])
	}
	return b.String()
}

func (s Styles) Separator(width int) string {
	mid := width / 2
	left := strings.Repeat("─", max(mid-3, 0))
	right := strings.Repeat("─", max(width-mid-3, 0))
	return s.Muted.Render(left + " ◆ " + right)
}
