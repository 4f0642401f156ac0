package output

import (
	"io"

	"gopkg.in/yaml.v3"

	"github.com/jmylchreest/wallpaperd/internal/model"
)

// YAMLFormatter formats status as YAML.
type YAMLFormatter struct {
	opts FormatterOptions
}

// NewYAMLFormatter creates a new YAML formatter.
func NewYAMLFormatter(opts FormatterOptions) *YAMLFormatter {
	return &YAMLFormatter{opts: opts}
}

// Format writes status as a YAML document.
func (f *YAMLFormatter) Format(w io.Writer, status model.Status) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(newDocument(status)); err != nil {
		return err
	}
	return encoder.Close()
}
