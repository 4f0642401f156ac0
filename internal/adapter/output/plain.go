package output

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/template"
	"time"

	"github.com/jmylchreest/wallpaperd/internal/model"
)

// PlainFormatter formats status as plain text.
type PlainFormatter struct {
	opts     FormatterOptions
	template *template.Template
}

// NewPlainFormatter creates a new plain text formatter.
func NewPlainFormatter(opts FormatterOptions) *PlainFormatter {
	f := &PlainFormatter{opts: opts}

	// Parse custom template if provided
	if opts.Template != "" {
		tmpl, err := template.New("plain").Parse(opts.Template)
		if err == nil {
			f.template = tmpl
		}
	}

	return f
}

// Format writes status as plain text.
func (f *PlainFormatter) Format(w io.Writer, status model.Status) error {
	if f.opts.Field != "" {
		_, err := fmt.Fprintln(w, FormatField(status, f.opts.Field))
		return err
	}

	// Use custom template if available
	if f.template != nil {
		if err := f.template.Execute(w, newTemplateData(status)); err != nil {
			return err
		}
		_, err := fmt.Fprintln(w)
		return err
	}

	data := newTemplateData(status)

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("wallpaper: %s\n", status.Wallpaper))
	if data.Size != "" || data.Modified != "" {
		var details []string
		if data.Size != "" {
			details = append(details, data.Size)
		}
		if data.Modified != "" {
			details = append(details, "modified "+data.Modified)
		}
		sb.WriteString(fmt.Sprintf("           %s\n", strings.Join(details, ", ")))
	}
	sb.WriteString(fmt.Sprintf("mode:      %s\n", status.Mode))
	sb.WriteString(fmt.Sprintf("interval:  %s\n", status.Interval))
	sb.WriteString(fmt.Sprintf("fallback:  %s\n", onOff(status.Fallback)))
	if !status.LastChanged.IsZero() {
		sb.WriteString(fmt.Sprintf("changed:   %s\n", newTemplateData(status).Changed))
	}

	_, err := w.Write([]byte(sb.String()))
	return err
}

// FormatField outputs a specific field from a status.
func FormatField(s model.Status, field string) string {
	switch strings.ToLower(field) {
	case "wallpaper", "path", "image":
		return s.Wallpaper
	case "name":
		return newTemplateData(s).Name
	case "mode":
		return s.Mode.String()
	case "interval", "duration":
		return strconv.FormatInt(newTemplateData(s).IntervalSeconds, 10)
	case "fallback":
		return strconv.FormatBool(s.Fallback)
	case "changed":
		if s.LastChanged.IsZero() {
			return "never"
		}
		return s.LastChanged.UTC().Format(time.RFC3339)
	default:
		return s.Wallpaper
	}
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}
