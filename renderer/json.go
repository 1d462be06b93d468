package renderer

import (
	"encoding/json"
	"io"

	"github.com/etnz/tradestats"
)

// JSON writes the read model as JSON, the format served by the HTTP API.
type JSON struct {
	Indent bool
}

func (j JSON) Render(w io.Writer, d *tradestats.Dashboard) error {
	enc := json.NewEncoder(w)
	if j.Indent {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(d)
}
