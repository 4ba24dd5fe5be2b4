package output

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Styles holds the lipgloss styles used across commands. When color
// is disabled every style is a no-op, so rendered text carries no
// escape codes.
type Styles struct {
	Header1 lipgloss.Style
	Header2 lipgloss.Style
	Bold    lipgloss.Style
	Muted   lipgloss.Style
	Info    lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
}

// newStyles builds the style set. Plain styles keep output identical
// to the unstyled text, which the pipe-friendly paths rely on.
func newStyles(colored bool) *Styles {
	if !colored {
		plain := lipgloss.NewStyle()
		return &Styles{
			Header1: plain,
			Header2: plain,
			Bold:    plain,
			Muted:   plain,
			Info:    plain,
			Warning: plain,
			Error:   plain,
		}
	}
	return &Styles{
		Header1: lipgloss.NewStyle().Bold(true).Underline(true),
		Header2: lipgloss.NewStyle().Bold(true),
		Bold:    lipgloss.NewStyle().Bold(true),
		Muted:   lipgloss.NewStyle().Faint(true),
		Info:    lipgloss.NewStyle().Foreground(lipgloss.Color("12")),
		Warning: lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
		Error:   lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
	}
}

// colorEnabled decides whether styles should emit color. NO_COLOR and
// dumb terminals win over TTY detection.
func colorEnabled(isTTY bool) bool {
	if !isTTY {
		return false
	}
	if termenv.EnvNoColor() {
		return false
	}
	return termenv.EnvColorProfile() != termenv.Ascii
}
