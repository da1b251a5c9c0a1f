package output

import (
	"encoding/json"
	"io"
)

// JSONFormatter writes data as JSON. Stat names and text readout values
// are written without HTML escaping so they read the same as on the server.
type JSONFormatter struct {
	// Compact disables indentation.
	Compact bool
}

// Format encodes data followed by a newline.
func (f *JSONFormatter) Format(w io.Writer, data any) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if !f.Compact {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(data)
}
