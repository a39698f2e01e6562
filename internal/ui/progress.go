package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/progress"
)

const defaultBarWidth = 30

// ProgressBar renders static progress lines for non-interactive output.
type ProgressBar struct {
	bar progress.Model
}

// NewProgressBar creates a gradient bar of the given width (30 when <= 0).
func NewProgressBar(width int) *ProgressBar {
	if width <= 0 {
		width = defaultBarWidth
	}
	return &ProgressBar{bar: progress.New(progress.WithDefaultGradient(), progress.WithWidth(width))}
}

// Render draws the bar for step of total followed by a step counter.
func (p *ProgressBar) Render(step, total int) string {
	percent := 0.0
	if total > 0 {
		percent = float64(step) / float64(total)
	}
	if percent > 1 {
		percent = 1
	}
	return fmt.Sprintf("%s %d/%d", p.bar.ViewAs(percent), step, total)
}
