package components

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/credisur/credisur/internal/tui/styles"
)

// ConfirmDialog is a modal yes/no dialog.
type ConfirmDialog struct {
	Title     string
	Message   string
	Confirmed bool
	Done      bool
	selected  int // 0 = Yes, 1 = No
}

// NewConfirmDialog creates a dialog with "No" preselected.
func NewConfirmDialog(title, message string) ConfirmDialog {
	return ConfirmDialog{
		Title:    title,
		Message:  message,
		selected: 1,
	}
}

// Update handles the dialog keys. Done is set once the user answers.
func (d ConfirmDialog) Update(msg tea.Msg) (ConfirmDialog, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return d, nil
	}
	switch key.String() {
	case "y", "Y":
		d.Confirmed = true
		d.Done = true
	case "n", "N", "esc":
		d.Confirmed = false
		d.Done = true
	case "enter":
		d.Confirmed = d.selected == 0
		d.Done = true
	case "left", "h", "tab":
		d.selected = 0
	case "right", "l", "shift+tab":
		d.selected = 1
	}
	return d, nil
}

// View returns the styled dialog.
func (d ConfirmDialog) View() string {
	title := lipgloss.NewStyle().
		Foreground(styles.AccentPrimary).
		Bold(true).
		Render(d.Title)

	message := lipgloss.NewStyle().
		Foreground(styles.TextSecondary).
		Render(d.Message)

	selectedStyle := lipgloss.NewStyle().
		Background(styles.AccentPrimary).
		Foreground(styles.BgDeep).
		Bold(true).
		Padding(0, 1)

	unselectedStyle := lipgloss.NewStyle().
		Background(styles.BgSurface).
		Foreground(styles.TextSecondary).
		Padding(0, 1)

	yesBtn, noBtn := unselectedStyle.Render(" Yes "), selectedStyle.Render(" No ")
	if d.selected == 0 {
		yesBtn, noBtn = selectedStyle.Render(" Yes "), unselectedStyle.Render(" No ")
	}
	buttons := lipgloss.JoinHorizontal(lipgloss.Center, yesBtn, "  ", noBtn)

	hint := lipgloss.NewStyle().Foreground(styles.TextMuted).
		Render("y/n or ←→ + enter")

	content := lipgloss.JoinVertical(lipgloss.Center,
		title, "", message, "", buttons, "", hint,
	)

	return lipgloss.NewStyle().
		Background(styles.BgPanel).
		Border(styles.RoundedBorder).
		BorderForeground(styles.AccentTertiary).
		Padding(1, 2).
		Width(52).
		Align(lipgloss.Center).
		Render(content)
}
