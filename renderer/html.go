package renderer

import (
	"embed"
	"fmt"
	"html/template"
	"io"

	"github.com/etnz/tradestats"
)

//go:embed templates/*.html
var templates embed.FS

var pageTemplate = template.Must(template.New("dashboard.html").Funcs(template.FuncMap{
	"signColor": func(t Theme, s tradestats.Sign) string { return t.SignColor(s) },
	"css":       func(s string) template.CSS { return template.CSS(s) },
}).ParseFS(templates, "templates/*.html"))

// HTML renders a self-contained themed page.
type HTML struct {
	Theme Theme
	Title string
}

// page is the data of the dashboard page template.
type page struct {
	Title      string
	Theme      Theme
	Themes     []string
	Keys       []KeyMetric
	Dashboard  *tradestats.Dashboard
	Pie        []pieSlice
	PieCSS     string
	Cumulative areaChart
}

func (h HTML) Render(w io.Writer, d *tradestats.Dashboard) error {
	title := h.Title
	if title == "" {
		title = DefaultTitle
	}
	slices := pieSlices(d.WinLoss)
	p := page{
		Title:      title,
		Theme:      h.Theme,
		Themes:     ThemeNames(),
		Keys:       keyMetrics(d),
		Dashboard:  d,
		Pie:        slices,
		PieCSS:     conicGradient(slices, h.Theme.Surface),
		Cumulative: newAreaChart(d.Cumulative),
	}
	if err := pageTemplate.ExecuteTemplate(w, "dashboard.html", p); err != nil {
		return fmt.Errorf("cannot render %s dashboard page: %w", h.Theme.Name, err)
	}
	return nil
}
