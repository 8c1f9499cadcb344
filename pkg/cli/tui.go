package cli

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Theme defines the color scheme for terminal output.
type Theme struct {
	Primary lipgloss.Color // Main accent color
	Dim     lipgloss.Color // Dimmed/help text color
}

// DefaultTheme is the default sky blue theme.
var DefaultTheme = Theme{
	Primary: lipgloss.Color("#4fc3f7"),
	Dim:     lipgloss.Color("#6e7681"),
}

// Styles holds all styles derived from a theme.
type Styles struct {
	Title lipgloss.Style
	Label lipgloss.Style
	Value lipgloss.Style
	Help  lipgloss.Style
}

// NewStyles creates styles from a theme.
func NewStyles(t Theme) Styles {
	return Styles{
		Title: lipgloss.NewStyle().Bold(true).Foreground(t.Primary),
		Label: lipgloss.NewStyle().Bold(true).Foreground(t.Primary),
		Value: lipgloss.NewStyle(),
		Help:  lipgloss.NewStyle().Foreground(t.Dim),
	}
}

// WeightBar renders a weight in [0, 1] as a fixed-width bar, filled
// portion in the primary color.
func (s Styles) WeightBar(weight float64, width int) string {
	if width <= 0 {
		return ""
	}
	if weight < 0 {
		weight = 0
	}
	if weight > 1 {
		weight = 1
	}
	filled := int(weight*float64(width) + 0.5)
	return s.Label.Render(strings.Repeat("█", filled)) +
		s.Help.Render(strings.Repeat("░", width-filled))
}

// Swatch renders a colored block for a hex color token, or a blank
// placeholder when the token is empty.
func Swatch(hex string) string {
	if hex == "" {
		return "  "
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(hex)).Render("██")
}
