package calculator

import (
	"strings"

	"charm.land/lipgloss/v2"
)

// Color palette (Catppuccin Mocha)
var (
	colorPrimary  = lipgloss.Color("#cba6f7") // Mauve
	colorText     = lipgloss.Color("#cdd6f4") // Text
	colorSubtext0 = lipgloss.Color("#a6adc8") // Subtext0
	colorSubtext1 = lipgloss.Color("#bac2de") // Subtext1
	colorSurface2 = lipgloss.Color("#585b70") // Surface2
	colorGreen    = lipgloss.Color("#a6e3a1") // Green
	colorRed      = lipgloss.Color("#f38ba8") // Red
	colorBorder   = lipgloss.Color("#b4befe") // Lavender
)

var (
	styleContainer = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder).
			Padding(1, 2)

	styleStepLabel = lipgloss.NewStyle().
			Foreground(colorSubtext0).
			Bold(true)

	styleTitle = lipgloss.NewStyle().
			Foreground(colorPrimary).
			Bold(true).
			MarginBottom(1)

	styleBody = lipgloss.NewStyle().
			Foreground(colorText)

	styleSelected = lipgloss.NewStyle().
			Foreground(colorPrimary).
			Bold(true)

	styleMuted = lipgloss.NewStyle().
			Foreground(colorSurface2)

	styleFieldLabel = lipgloss.NewStyle().
			Foreground(colorSubtext1).
			Bold(true)

	styleInput = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorSurface2).
			Padding(0, 1)

	styleInputFocused = styleInput.
				BorderForeground(colorBorder)

	styleButton = lipgloss.NewStyle().
			Foreground(colorText).
			Padding(0, 2)

	styleButtonPrimary = lipgloss.NewStyle().
				Foreground(colorPrimary).
				Bold(true).
				Border(lipgloss.RoundedBorder()).
				BorderForeground(colorPrimary).
				Padding(0, 2)

	styleButtonDisabled = styleButtonPrimary.
				Foreground(colorSurface2).
				BorderForeground(colorSurface2).
				Bold(false)

	styleSuccess = lipgloss.NewStyle().
			Foreground(colorGreen).
			Bold(true)

	styleError = lipgloss.NewStyle().
			Foreground(colorRed).
			Bold(true)
)

// Hint bar styles
var (
	styleHintKey = lipgloss.NewStyle().
			Foreground(colorSubtext1).
			Bold(true)

	styleHintDesc = lipgloss.NewStyle().
			Foreground(colorSubtext0)

	styleHintSeparator = lipgloss.NewStyle().
				Foreground(colorSurface2)
)

// renderHintBar renders a hint bar with the given key-description pairs.
// Example: renderHintBar("↑↓", "mover", "espacio", "marcar")
// Returns: "↑↓ mover • espacio marcar"
func renderHintBar(pairs ...string) string {
	if len(pairs) == 0 || len(pairs)%2 != 0 {
		return ""
	}

	var result string
	for i := 0; i < len(pairs); i += 2 {
		if i > 0 {
			result += " " + styleHintSeparator.Render("•") + " "
		}
		result += styleHintKey.Render(pairs[i]) + " " + styleHintDesc.Render(pairs[i+1])
	}
	return result
}

// renderProgress draws one segment per step, filled up to current.
func renderProgress(current, total int) string {
	segments := make([]string, total)
	for i := range segments {
		if i < current {
			segments[i] = styleSelected.Render("━━━━")
		} else {
			segments[i] = styleMuted.Render("━━━━")
		}
	}
	return strings.Join(segments, " ")
}
