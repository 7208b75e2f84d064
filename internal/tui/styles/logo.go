package styles

import "github.com/charmbracelet/lipgloss"

// CompactLogo is the one-line wordmark used in headers.
const CompactLogo = "◆ CrediSur"

// Logo renders the wordmark with its tagline for the version banner.
func Logo() string {
	mark := lipgloss.NewStyle().Foreground(AccentPrimary).Bold(true).Render(CompactLogo)
	tag := lipgloss.NewStyle().Foreground(TextSecondary).Italic(true).Render("installment credit")
	return mark + "  " + tag
}
