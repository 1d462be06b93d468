// Package renderer presents a tradestats dashboard.
//
// Every renderer consumes the same read model, only the presentation
// changes: markdown, terminal (glamour), colour console and HTML themes, and
// JSON.
package renderer

import (
	"fmt"
	"io"
	"strings"

	"github.com/etnz/tradestats"
)

// Renderer writes a dashboard to w.
type Renderer interface {
	Render(w io.Writer, d *tradestats.Dashboard) error
}

// Names returns the renderer names accepted by New.
func Names() []string {
	return []string{"markdown", "terminal", "slate", "card", "html-slate", "html-card", "json"}
}

// New returns the renderer called name, titled with title.
//
// Theme names alone select the console renderer, "html-" prefixed ones the
// HTML page.
func New(name, title string) (Renderer, error) {
	switch name {
	case "markdown", "md":
		return Markdown{Title: title}, nil
	case "terminal":
		return Terminal{Title: title}, nil
	case "json":
		return JSON{Indent: true}, nil
	}
	if theme, ok := strings.CutPrefix(name, "html-"); ok {
		t, err := ThemeByName(theme)
		if err != nil {
			return nil, err
		}
		return HTML{Theme: t, Title: title}, nil
	}
	if t, err := ThemeByName(name); err == nil {
		return Console{Theme: t, Title: title}, nil
	}
	return nil, fmt.Errorf("unknown format %q, valid formats are %s", name, strings.Join(Names(), ", "))
}
