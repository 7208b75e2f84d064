package styles

import (
	"github.com/charmbracelet/lipgloss"
)

// Emerald renders s in AccentPrimary.
func Emerald(s string) string {
	return lipgloss.NewStyle().Foreground(AccentPrimary).Render(s)
}

// Gold renders s in AccentGold.
func Gold(s string) string {
	return lipgloss.NewStyle().Foreground(AccentGold).Render(s)
}

// Green renders s in StatusOK.
func Green(s string) string {
	return lipgloss.NewStyle().Foreground(StatusOK).Render(s)
}

// Red renders s in StatusError.
func Red(s string) string {
	return lipgloss.NewStyle().Foreground(StatusError).Render(s)
}

// Warn renders s in StatusWarn.
func Warn(s string) string {
	return lipgloss.NewStyle().Foreground(StatusWarn).Render(s)
}

// Dim renders s in TextMuted.
func Dim(s string) string {
	return lipgloss.NewStyle().Foreground(TextMuted).Render(s)
}

// Bold renders s in bold TextPrimary.
func Bold(s string) string {
	return lipgloss.NewStyle().Bold(true).Foreground(TextPrimary).Render(s)
}

// TruncateWithEllipsis shortens s to max runes, appending "..." when it
// cuts. Below 4 runes the string is simply cut.
func TruncateWithEllipsis(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	if max < 4 {
		return string(runes[:max])
	}
	return string(runes[:max-3]) + "..."
}

// PadRight pads s with spaces to width display cells.
func PadRight(s string, width int) string {
	return lipgloss.NewStyle().Width(width).Render(s)
}
