package styles

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// ---------------------------------------------------------------------------
// Panels
// ---------------------------------------------------------------------------

// Panel is the default panel style.
var Panel = lipgloss.NewStyle().
	Background(BgPanel).
	Border(RoundedBorder).
	BorderForeground(BorderNormal).
	Padding(1)

// PanelFocused is Panel with the focus border.
var PanelFocused = lipgloss.NewStyle().
	Background(BgPanel).
	Border(RoundedBorder).
	BorderForeground(BorderFocused).
	Padding(1)

// Card is a compact surface with a thin border and horizontal padding only.
var Card = lipgloss.NewStyle().
	Background(BgSurface).
	Border(ThinBorder).
	BorderForeground(BorderNormal).
	PaddingLeft(1).
	PaddingRight(1)

// ---------------------------------------------------------------------------
// Badges
// ---------------------------------------------------------------------------

// Badge returns an inline badge such as "● GREEN" in the given color.
func Badge(text string, color lipgloss.Color) string {
	dot := lipgloss.NewStyle().Foreground(color).Render("●")
	label := lipgloss.NewStyle().
		Foreground(color).
		Bold(true).
		Render(text)
	return dot + " " + label
}

// TierBadge colors a risk tier name. Unknown tiers render muted.
func TierBadge(tier string) string {
	tier = strings.ToUpper(tier)
	switch tier {
	case "GREEN":
		return Badge(tier, TierGreen)
	case "YELLOW":
		return Badge(tier, TierYellow)
	case "RED":
		return Badge(tier, TierRed)
	case "BLACKLIST":
		return Badge(tier, TierBlacklist)
	default:
		return Badge(tier, TextMuted)
	}
}

// StatusBadge returns a badge for "ok", "warn", "error" or "info".
func StatusBadge(status string) string {
	switch strings.ToLower(status) {
	case "ok":
		return Badge("OK", StatusOK)
	case "warn":
		return Badge("WARN", StatusWarn)
	case "error":
		return Badge("ERROR", StatusError)
	default:
		return Badge(strings.ToUpper(status), StatusInfo)
	}
}

// ---------------------------------------------------------------------------
// Typography
// ---------------------------------------------------------------------------

// Title is bold AccentPrimary text for section headings.
var Title = lipgloss.NewStyle().
	Foreground(AccentPrimary).
	Bold(true)

var Subtitle = lipgloss.NewStyle().
	Foreground(TextSecondary)

// Label is TextMuted text for field labels. Pass uppercase strings for the
// LABEL look.
var Label = lipgloss.NewStyle().
	Foreground(TextMuted)

var Value = lipgloss.NewStyle().
	Foreground(TextPrimary).
	Bold(true)

// Amount is bold gold for money values.
var Amount = lipgloss.NewStyle().
	Foreground(AccentGold).
	Bold(true)

// ErrorText is bold red for validation messages.
var ErrorText = lipgloss.NewStyle().
	Foreground(StatusError).
	Bold(true)

// ---------------------------------------------------------------------------
// Tables
// ---------------------------------------------------------------------------

// TableHeader is bold, underlined TextSecondary for column headings.
var TableHeader = lipgloss.NewStyle().
	Foreground(TextSecondary).
	Bold(true).
	Underline(true)

// TableRow returns a zebra-striped row style; selected rows use BgHover.
func TableRow(even, selected bool) lipgloss.Style {
	bg := BgPanel
	if !even {
		bg = BgSurface
	}
	if selected {
		bg = BgHover
	}
	return lipgloss.NewStyle().
		Foreground(TextPrimary).
		Background(bg)
}

// Divider returns a horizontal rule of the given width.
func Divider(width int) string {
	if width <= 0 {
		return ""
	}
	line := strings.Repeat("─", width)
	return lipgloss.NewStyle().Foreground(BorderNormal).Render(line)
}
