package styles

import "github.com/charmbracelet/lipgloss"

// Sur Nocturno palette: slate backgrounds, emerald primary accent, amber for
// money.

var (
	// Backgrounds (darkest to lightest)
	BgDeep    = lipgloss.Color("#0b1110")
	BgPanel   = lipgloss.Color("#121a19")
	BgSurface = lipgloss.Color("#1b2624")
	BgHover   = lipgloss.Color("#243331") // selected row

	// Accents
	AccentPrimary   = lipgloss.Color("#34d399") // emerald: focus, actions
	AccentSecondary = lipgloss.Color("#60a5fa") // blue: headings, categories
	AccentTertiary  = lipgloss.Color("#a78bfa") // violet: dialogs
	AccentGold      = lipgloss.Color("#fbbf24") // amounts

	// Status
	StatusOK    = lipgloss.Color("#22c55e")
	StatusWarn  = lipgloss.Color("#f59e0b")
	StatusError = lipgloss.Color("#ef4444")
	StatusInfo  = lipgloss.Color("#60a5fa")

	// Text
	TextPrimary   = lipgloss.Color("#e5e7eb")
	TextSecondary = lipgloss.Color("#9ca3af")
	TextMuted     = lipgloss.Color("#6b7280")

	// Borders
	BorderNormal  = lipgloss.Color("#2f3d3a")
	BorderFocused = lipgloss.Color("#34d399")

	// Risk tiers
	TierGreen     = lipgloss.Color("#22c55e")
	TierYellow    = lipgloss.Color("#eab308")
	TierRed       = lipgloss.Color("#ef4444")
	TierBlacklist = lipgloss.Color("#e5e7eb")
)
