package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/credisur/credisur/internal/tui/styles"
)

// TabBar is a one-line filter selector (risk tiers, article categories).
// When Counts has one entry per tab, each label carries its match count.
type TabBar struct {
	Tabs   []string
	Counts []int
	Active int
	Width  int
}

func (t TabBar) Render() string {
	if len(t.Tabs) == 0 {
		return ""
	}

	active := lipgloss.NewStyle().
		Foreground(styles.BgDeep).
		Background(styles.AccentPrimary).
		Bold(true).
		Padding(0, 1)
	idle := lipgloss.NewStyle().
		Foreground(styles.TextSecondary).
		Padding(0, 1)
	empty := idle.Foreground(styles.TextMuted)

	withCounts := len(t.Counts) == len(t.Tabs)
	parts := make([]string, 0, len(t.Tabs))
	for i, name := range t.Tabs {
		label := name
		if withCounts {
			label = fmt.Sprintf("%s %d", name, t.Counts[i])
		}
		switch {
		case i == t.Active:
			parts = append(parts, active.Render(label))
		case withCounts && t.Counts[i] == 0:
			parts = append(parts, empty.Render(label))
		default:
			parts = append(parts, idle.Render(label))
		}
	}

	bar := strings.Join(parts, " ")
	if t.Width > 0 {
		bar = lipgloss.NewStyle().MaxWidth(t.Width).Render(bar)
	}
	return bar
}
