package output

import (
	"encoding/json"
	"io"

	"github.com/jmylchreest/wallpaperd/internal/model"
)

// JSONFormatter formats status as JSON.
type JSONFormatter struct {
	opts FormatterOptions
}

// NewJSONFormatter creates a new JSON formatter.
func NewJSONFormatter(opts FormatterOptions) *JSONFormatter {
	return &JSONFormatter{opts: opts}
}

// Format writes status as a JSON object.
func (f *JSONFormatter) Format(w io.Writer, status model.Status) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(newDocument(status))
}
