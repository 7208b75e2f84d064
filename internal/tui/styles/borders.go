package styles

import "github.com/charmbracelet/lipgloss"

// RoundedBorder frames panels and dialogs.
var RoundedBorder = lipgloss.RoundedBorder()

// ThinBorder frames cards such as the cart.
var ThinBorder = lipgloss.NormalBorder()
