package cli

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/nathoo/metaleague/types"
)

// Styles used by styled reports.
var (
	styleTitle = lipgloss.NewStyle().
			Background(lipgloss.Color("236")).
			Foreground(lipgloss.Color("252")).
			Bold(true).
			Padding(0, 1)

	styleHeading = lipgloss.NewStyle().
			Bold(true)

	styleWin = lipgloss.NewStyle().
			Foreground(lipgloss.Color("34"))

	styleLoss = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	styleDraw = lipgloss.NewStyle().
			Foreground(lipgloss.Color("228"))

	styleDim = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))

	styleSystem = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))

	styleError = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))
)

// painter applies styles, or nothing in plain mode.
type painter struct {
	styled bool
}

func (p painter) paint(s lipgloss.Style, text string) string {
	if !p.styled {
		return text
	}
	return s.Render(text)
}

// result colours a per-character or board result.
func (p painter) result(r, text string) string {
	switch r {
	case types.ResultWin:
		return p.paint(styleWin, text)
	case types.ResultLoss:
		return p.paint(styleLoss, text)
	case types.ResultDraw:
		return p.paint(styleDraw, text)
	default:
		return p.paint(styleDim, text)
	}
}
