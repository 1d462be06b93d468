package renderer

import (
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/etnz/tradestats"
)

// Theme is a colour scheme shared by the console and HTML renderers.
type Theme struct {
	Name       string
	Background string
	Surface    string // cards and table headers
	Border     string
	Text       string
	Muted      string
	Positive   string
	Negative   string
	Accent     string // cumulative P&L line
	Outlined   bool   // thick outlined borders instead of soft rounded ones
	Dark       bool
}

// Slate is the dark theme.
var Slate = Theme{
	Name:       "slate",
	Background: "#0f172a",
	Surface:    "#1e293b",
	Border:     "#475569",
	Text:       "#f1f5f9",
	Muted:      "#cbd5e1",
	Positive:   tradestats.WinColor,
	Negative:   tradestats.LossColor,
	Accent:     tradestats.WinColor,
	Dark:       true,
}

// Card is the light theme: cream background and outlined cards.
var Card = Theme{
	Name:       "card",
	Background: "#f2f0e6",
	Surface:    "#e6e4da",
	Border:     "#0f0f0f",
	Text:       "#0f0f0f",
	Muted:      "#555555",
	Positive:   tradestats.WinColor,
	Negative:   tradestats.LossColor,
	Accent:     "#0f0f0f",
	Outlined:   true,
}

var themes = []Theme{Slate, Card}

// ThemeNames returns the names of the available themes.
func ThemeNames() []string {
	names := make([]string, len(themes))
	for i, t := range themes {
		names[i] = t.Name
	}
	return names
}

// ThemeByName returns the theme called name.
func ThemeByName(name string) (Theme, error) {
	i := slices.IndexFunc(themes, func(t Theme) bool { return t.Name == strings.ToLower(name) })
	if i < 0 {
		return Theme{}, fmt.Errorf("unknown theme %q, valid themes are %s", name, strings.Join(ThemeNames(), ", "))
	}
	return themes[i], nil
}

// SignColor returns the colour of a value with sign s.
func (t Theme) SignColor(s tradestats.Sign) string {
	switch s {
	case tradestats.Positive:
		return t.Positive
	case tradestats.Negative:
		return t.Negative
	default:
		return t.Text
	}
}

// styles are the lipgloss styles derived from a theme.
type styles struct {
	Title    lipgloss.Style
	Heading  lipgloss.Style
	Header   lipgloss.Style
	Cell     lipgloss.Style
	Muted    lipgloss.Style
	Border   lipgloss.Style
	Card     lipgloss.Style
	Positive lipgloss.Style
	Negative lipgloss.Style
	Neutral  lipgloss.Style
	border   lipgloss.Border
}

func newStyles(t Theme) styles {
	border := lipgloss.RoundedBorder()
	if t.Outlined {
		border = lipgloss.ThickBorder()
	}
	text := lipgloss.Color(t.Text)
	return styles{
		Title: lipgloss.NewStyle().
			Foreground(text).
			Bold(true).
			MarginBottom(1),
		Heading: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Muted)).
			Bold(true),
		Header: lipgloss.NewStyle().
			Foreground(text).
			Background(lipgloss.Color(t.Surface)).
			Bold(true).
			Padding(0, 1),
		Cell: lipgloss.NewStyle().
			Foreground(text).
			Padding(0, 1),
		Muted: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Muted)).
			Padding(0, 1),
		Border: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Border)),
		Card: lipgloss.NewStyle().
			Border(border).
			BorderForeground(lipgloss.Color(t.Border)).
			Padding(0, 2),
		Positive: lipgloss.NewStyle().Foreground(lipgloss.Color(t.Positive)).Bold(true),
		Negative: lipgloss.NewStyle().Foreground(lipgloss.Color(t.Negative)).Bold(true),
		Neutral:  lipgloss.NewStyle().Foreground(text),
		border:   border,
	}
}

// value returns the style of a value with sign s.
func (s styles) value(sign tradestats.Sign) lipgloss.Style {
	switch sign {
	case tradestats.Positive:
		return s.Positive
	case tradestats.Negative:
		return s.Negative
	default:
		return s.Neutral
	}
}
