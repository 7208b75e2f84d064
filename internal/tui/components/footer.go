package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/credisur/credisur/internal/tui/styles"
)

// KeyHint is one key and what it does on the current screen.
type KeyHint struct {
	Key  string
	Desc string
}

// HintGroup is a labelled run of hints, such as the cart or the catalog
// bindings of the article step.
type HintGroup struct {
	Label string
	Hints []KeyHint
}

// Footer shows the active step as a badge, then its hint groups, with the
// global hints (back, quit) pinned to the right edge. Groups that do not fit
// the width are dropped from the end; the first group always stays.
type Footer struct {
	Step   string
	Groups []HintGroup
	Global []KeyHint
	Width  int
}

var (
	footerKey   = lipgloss.NewStyle().Foreground(styles.AccentPrimary).Bold(true)
	footerDesc  = lipgloss.NewStyle().Foreground(styles.TextMuted)
	footerLabel = lipgloss.NewStyle().Foreground(styles.TextMuted).Italic(true)
	footerBadge = lipgloss.NewStyle().Foreground(styles.BgDeep).Background(styles.AccentPrimary).Bold(true).Padding(0, 1)
	footerSep   = footerDesc.Render(" │ ")
)

func renderHints(hints []KeyHint) string {
	parts := make([]string, 0, len(hints))
	for _, h := range hints {
		parts = append(parts, footerKey.Render(h.Key)+" "+footerDesc.Render(h.Desc))
	}
	return strings.Join(parts, "  ")
}

func (g HintGroup) render() string {
	if g.Label == "" {
		return renderHints(g.Hints)
	}
	return footerLabel.Render(strings.ToLower(g.Label)+":") + " " + renderHints(g.Hints)
}

// Render returns the styled footer string.
func (f Footer) Render() string {
	width := f.Width
	if width <= 0 {
		width = 80
	}
	inner := width - 2

	var badge string
	if f.Step != "" {
		badge = footerBadge.Render(f.Step) + " "
	}
	right := renderHints(f.Global)

	groups := make([]string, 0, len(f.Groups))
	for _, g := range f.Groups {
		if len(g.Hints) > 0 {
			groups = append(groups, g.render())
		}
	}
	left := badge + strings.Join(groups, footerSep)
	for len(groups) > 1 && lipgloss.Width(left)+lipgloss.Width(right)+1 > inner {
		groups = groups[:len(groups)-1]
		left = badge + strings.Join(groups, footerSep)
	}

	gap := inner - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	content := left + strings.Repeat(" ", gap) + right

	return lipgloss.NewStyle().
		Background(styles.BgDeep).
		Foreground(styles.TextMuted).
		Width(width).
		PaddingLeft(1).
		PaddingRight(1).
		Render(content)
}

// ListGroup holds the bindings shared by the client and article pickers.
func ListGroup() HintGroup {
	return HintGroup{Label: "list", Hints: []KeyHint{
		{Key: "↑↓", Desc: "navigate"},
		{Key: "/", Desc: "search"},
	}}
}

// FormFooter is the footer used while a nested form is open.
func FormFooter(width int) Footer {
	return Footer{
		Step: "form",
		Groups: []HintGroup{{Label: "fields", Hints: []KeyHint{
			{Key: "tab", Desc: "next"},
			{Key: "shift+tab", Desc: "prev"},
			{Key: "enter", Desc: "submit"},
		}}},
		Global: []KeyHint{{Key: "esc", Desc: "cancel"}},
		Width:  width,
	}
}
