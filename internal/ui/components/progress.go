package components

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/ulilazmi100/micro-skill/internal/ui/theme"
)

// SuccessBar displays the share of successful calls as a horizontal bar,
// with failures in the error color.
type SuccessBar struct {
	Label    string
	Success  int
	Failures int
	Width    int
}

// NewSuccessBar creates a new success bar.
func NewSuccessBar(label string, success, failures, width int) SuccessBar {
	return SuccessBar{
		Label:    label,
		Success:  success,
		Failures: failures,
		Width:    width,
	}
}

// Percent returns the success ratio in [0, 1]. No calls counts as 0.
func (b SuccessBar) Percent() float64 {
	total := b.Success + b.Failures
	if total <= 0 {
		return 0
	}
	return float64(b.Success) / float64(total)
}

// View renders the bar.
func (b SuccessBar) View() string {
	var result string

	if b.Label != "" {
		result += lipgloss.NewStyle().Foreground(theme.Text).Render(b.Label) + "  "
	}

	labelWidth := lipgloss.Width(result)
	percentWidth := 6 // "  100%"

	barWidth := max(b.Width-labelWidth-percentWidth, 4)

	filled := min(max(int(float64(barWidth)*b.Percent()), 0), barWidth)
	rest := barWidth - filled

	restStyle := theme.ProgressEmpty
	if b.Failures > 0 {
		restStyle = theme.ProgressFailed
	}

	result += theme.ProgressFilled.Render(strings.Repeat(" ", filled)) +
		restStyle.Render(strings.Repeat(" ", rest))

	result += lipgloss.NewStyle().
		Foreground(theme.TextDim).
		Render(fmt.Sprintf("  %d%%", int(b.Percent()*100)))

	return result
}
