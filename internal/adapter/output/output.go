// Package output provides output formatters for daemon status.
package output

import (
	"io"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/jmylchreest/wallpaperd/internal/model"
)

// Formatter formats a daemon status snapshot for output.
type Formatter interface {
	// Format writes the formatted status to the writer.
	Format(w io.Writer, status model.Status) error
}

// FormatType represents an output format type.
type FormatType string

const (
	FormatPlain FormatType = "plain"
	FormatJSON  FormatType = "json"
	FormatYAML  FormatType = "yaml"
)

// FormatTypes lists the accepted format names.
var FormatTypes = []FormatType{FormatPlain, FormatJSON, FormatYAML}

// NewFormatter creates a formatter for the specified format type.
func NewFormatter(format FormatType, opts FormatterOptions) Formatter {
	switch format {
	case FormatJSON:
		return NewJSONFormatter(opts)
	case FormatYAML:
		return NewYAMLFormatter(opts)
	case FormatPlain:
		fallthrough
	default:
		return NewPlainFormatter(opts)
	}
}

// FormatterOptions configures formatter behavior.
type FormatterOptions struct {
	Template string // Custom template for plain format
	Field    string // Single field to print (plain format only)
}

// document is the serialised form of a status shared by the json and yaml
// formatters.
type document struct {
	Wallpaper       string     `json:"wallpaper" yaml:"wallpaper"`
	Mode            string     `json:"mode" yaml:"mode"`
	IntervalSeconds int64      `json:"interval_seconds" yaml:"interval_seconds"`
	Fallback        bool       `json:"fallback" yaml:"fallback"`
	LastChanged     *time.Time `json:"last_changed,omitempty" yaml:"last_changed,omitempty"`
	ImageSize       int64      `json:"image_size,omitempty" yaml:"image_size,omitempty"`
	ImageModified   *time.Time `json:"image_modified,omitempty" yaml:"image_modified,omitempty"`
}

func newDocument(s model.Status) document {
	doc := document{
		Wallpaper:       s.Wallpaper,
		Mode:            s.Mode.String(),
		IntervalSeconds: int64(s.Interval / time.Second),
		Fallback:        s.Fallback,
		ImageSize:       s.ImageSize,
	}
	if !s.LastChanged.IsZero() {
		t := s.LastChanged
		doc.LastChanged = &t
	}
	if !s.ImageModified.IsZero() {
		t := s.ImageModified
		doc.ImageModified = &t
	}
	return doc
}

// templateData is passed to custom plain templates.
type templateData struct {
	model.Status
	Name            string // Base name of the wallpaper
	IntervalSeconds int64
	Size            string // Human readable image size
	Modified        string // Relative image modification time
	Changed         string // Relative time of the last image change
}

func newTemplateData(s model.Status) templateData {
	data := templateData{
		Status:          s,
		Name:            filepath.Base(s.Wallpaper),
		IntervalSeconds: int64(s.Interval / time.Second),
	}
	if s.ImageSize > 0 {
		data.Size = humanize.Bytes(uint64(s.ImageSize))
	}
	if !s.ImageModified.IsZero() {
		data.Modified = relativeTime(s.ImageModified)
	}
	if !s.LastChanged.IsZero() {
		data.Changed = relativeTime(s.LastChanged)
	}
	return data
}

// relativeTime formats t relative to now, e.g. "3 minutes ago".
func relativeTime(t time.Time) string {
	if t.IsZero() {
		return "never"
	}
	return humanize.Time(t)
}
