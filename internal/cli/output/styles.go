package output

import "github.com/charmbracelet/lipgloss"

// Styles holds the lipgloss styles used for terminal output.
type Styles struct {
	Header1 lipgloss.Style
	Header2 lipgloss.Style
	Bold    lipgloss.Style
	Muted   lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
	Info    lipgloss.Style

	StatusSuccess lipgloss.Style
	StatusFailed  lipgloss.Style
	StatusWarning lipgloss.Style
	StatusSkipped lipgloss.Style
}

var (
	colorGreen  = lipgloss.AdaptiveColor{Light: "#1a7f37", Dark: "#3fb950"}
	colorRed    = lipgloss.AdaptiveColor{Light: "#cf222e", Dark: "#f85149"}
	colorYellow = lipgloss.AdaptiveColor{Light: "#9a6700", Dark: "#d29922"}
	colorBlue   = lipgloss.AdaptiveColor{Light: "#0969da", Dark: "#58a6ff"}
	colorGray   = lipgloss.AdaptiveColor{Light: "#6e7781", Dark: "#8b949e"}
)

// DefaultStyles returns colored styles for terminals.
func DefaultStyles() *Styles {
	return &Styles{
		Header1: lipgloss.NewStyle().Bold(true).Foreground(colorBlue),
		Header2: lipgloss.NewStyle().Bold(true),
		Bold:    lipgloss.NewStyle().Bold(true),
		Muted:   lipgloss.NewStyle().Foreground(colorGray),
		Success: lipgloss.NewStyle().Foreground(colorGreen),
		Warning: lipgloss.NewStyle().Foreground(colorYellow),
		Error:   lipgloss.NewStyle().Foreground(colorRed),
		Info:    lipgloss.NewStyle().Foreground(colorBlue),

		StatusSuccess: lipgloss.NewStyle().SetString("✓").Foreground(colorGreen),
		StatusFailed:  lipgloss.NewStyle().SetString("✗").Foreground(colorRed),
		StatusWarning: lipgloss.NewStyle().SetString("!").Foreground(colorYellow),
		StatusSkipped: lipgloss.NewStyle().SetString("-").Foreground(colorGray),
	}
}

// PlainStyles returns styles that render text unchanged.
func PlainStyles() *Styles {
	plain := lipgloss.NewStyle()
	return &Styles{
		Header1: plain,
		Header2: plain,
		Bold:    plain,
		Muted:   plain,
		Success: plain,
		Warning: plain,
		Error:   plain,
		Info:    plain,

		StatusSuccess: plain.SetString("[ok]"),
		StatusFailed:  plain.SetString("[fail]"),
		StatusWarning: plain.SetString("[warn]"),
		StatusSkipped: plain.SetString("[skip]"),
	}
}
