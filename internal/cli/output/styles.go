package output

import (
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Styles holds the lipgloss styles used by text output.
type Styles struct {
	Header1 lipgloss.Style
	Header2 lipgloss.Style
	Bold    lipgloss.Style
	Muted   lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
	Info    lipgloss.Style
	Field   lipgloss.Style

	StatusSuccess lipgloss.Style
	StatusFailed  lipgloss.Style
	StatusWarning lipgloss.Style
}

// newStyles builds styles bound to w. Without a terminal the profile is
// Ascii and every style renders plain text.
func newStyles(w io.Writer, isTTY bool) *Styles {
	profile := termenv.Ascii
	if isTTY {
		profile = termenv.NewOutput(w).EnvColorProfile()
	}
	r := lipgloss.NewRenderer(w, termenv.WithProfile(profile))

	green := lipgloss.AdaptiveColor{Light: "28", Dark: "42"}
	yellow := lipgloss.AdaptiveColor{Light: "136", Dark: "214"}
	red := lipgloss.AdaptiveColor{Light: "160", Dark: "203"}
	blue := lipgloss.AdaptiveColor{Light: "25", Dark: "75"}
	grey := lipgloss.AdaptiveColor{Light: "244", Dark: "242"}

	return &Styles{
		Header1: r.NewStyle().Bold(true).Foreground(blue),
		Header2: r.NewStyle().Bold(true),
		Bold:    r.NewStyle().Bold(true),
		Muted:   r.NewStyle().Foreground(grey),
		Success: r.NewStyle().Foreground(green),
		Warning: r.NewStyle().Foreground(yellow),
		Error:   r.NewStyle().Foreground(red).Bold(true),
		Info:    r.NewStyle().Foreground(blue),
		Field:   r.NewStyle().Foreground(blue),

		StatusSuccess: r.NewStyle().Foreground(green).SetString("✓"),
		StatusFailed:  r.NewStyle().Foreground(red).SetString("✗"),
		StatusWarning: r.NewStyle().Foreground(yellow).SetString("!"),
	}
}
