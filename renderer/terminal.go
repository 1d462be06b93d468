package renderer

import (
	"fmt"
	"io"

	"github.com/charmbracelet/glamour"
	"github.com/etnz/tradestats"
)

// Terminal renders the markdown dashboard with glamour for a terminal.
type Terminal struct {
	Title string
	// Style is a glamour standard style ("dark", "light", "notty"...), empty
	// means detected from the terminal.
	Style string
	// Width wraps words at this column, 0 means 100.
	Width int
}

func (t Terminal) Render(w io.Writer, d *tradestats.Dashboard) error {
	width := t.Width
	if width <= 0 {
		width = 100
	}
	style := glamour.WithAutoStyle()
	if t.Style != "" {
		style = glamour.WithStandardStyle(t.Style)
	}
	r, err := glamour.NewTermRenderer(style, glamour.WithWordWrap(width))
	if err != nil {
		return fmt.Errorf("cannot create terminal renderer: %w", err)
	}
	out, err := r.Render(DashboardMarkdown(d, t.Title))
	if err != nil {
		return fmt.Errorf("cannot render markdown: %w", err)
	}
	_, err = io.WriteString(w, out)
	return err
}
