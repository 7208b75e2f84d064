package components

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/credisur/credisur/internal/tui/styles"
)

// Header renders the app header bar.
type Header struct {
	Rule    string // financing rule name
	Client  string // selected client's name, empty when none
	Offline bool   // clients came from the static fallback
	Width   int
}

// Render returns the styled header string.
func (h Header) Render() string {
	width := h.Width
	if width <= 0 {
		width = 80
	}

	logo := lipgloss.NewStyle().
		Foreground(styles.AccentPrimary).
		Bold(true).
		Render(styles.CompactLogo)

	sep := lipgloss.NewStyle().Foreground(styles.TextMuted).Render("  │  ")

	rule := styles.Label.Render("Rule: ") +
		lipgloss.NewStyle().Foreground(styles.AccentGold).Bold(true).Render(h.Rule)

	client := styles.Label.Render("Client: ")
	if h.Client == "" {
		client += styles.Dim("none")
	} else {
		client += styles.Value.Render(h.Client)
	}

	content := logo + sep + rule + sep + client
	if h.Offline {
		content += sep + lipgloss.NewStyle().Foreground(styles.StatusWarn).Render("offline catalog")
	}

	headerStyle := lipgloss.NewStyle().
		Background(styles.BgDeep).
		Foreground(styles.TextPrimary).
		Width(width).
		PaddingLeft(1).
		PaddingRight(1)

	return headerStyle.Render(content)
}
