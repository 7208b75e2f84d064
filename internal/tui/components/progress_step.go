package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/credisur/credisur/internal/tui/styles"
)

// ProgressStep shows the wizard's step indicator.
type ProgressStep struct {
	Steps   []string
	Current int // 0-indexed
	// Busy marks the current step as leaving; its dot renders hollow.
	Busy bool
}

// Render returns the indicator. Completed steps are green, the current step
// is emerald and bold, future steps are muted.
func (p ProgressStep) Render() string {
	if len(p.Steps) == 0 {
		return ""
	}

	var parts []string
	for i, label := range p.Steps {
		var dot, labelStr string
		switch {
		case i < p.Current:
			dot = lipgloss.NewStyle().Foreground(styles.StatusOK).Render("●")
			labelStr = lipgloss.NewStyle().Foreground(styles.StatusOK).Render(label)
		case i == p.Current:
			glyph := "●"
			if p.Busy {
				glyph = "◌"
			}
			dot = lipgloss.NewStyle().Foreground(styles.AccentPrimary).Bold(true).Render(glyph)
			labelStr = lipgloss.NewStyle().Foreground(styles.AccentPrimary).Bold(true).Render(label)
		default:
			dot = lipgloss.NewStyle().Foreground(styles.TextMuted).Render("○")
			labelStr = lipgloss.NewStyle().Foreground(styles.TextMuted).Render(label)
		}
		parts = append(parts, dot+" "+labelStr)
	}

	sep := lipgloss.NewStyle().Foreground(styles.TextMuted).Render(" ─ ")
	return strings.Join(parts, sep)
}
