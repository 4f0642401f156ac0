package main

import (
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/wallpaperd/internal/adapter/output"
	"github.com/jmylchreest/wallpaperd/internal/model"
	"github.com/jmylchreest/wallpaperd/internal/protocol"
)

var statusOpts struct {
	format   string
	template string
	field    string
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the daemon's current state",
	Long: `Show the current wallpaper, mode, interval and fallback state.

Output formats:
  plain  - Human readable summary (default)
  json   - JSON object
  yaml   - YAML document

Template variables (plain format):
  {{.Wallpaper}}        Full path of the current image
  {{.Name}}             File name of the current image
  {{.Mode}}             Rotation mode
  {{.IntervalSeconds}}  Rotation interval in seconds
  {{.Fallback}}         Whether the fallback image is shown
  {{.Size}}             Human readable image size
  {{.Modified}}         Relative image modification time
  {{.Changed}}          Relative time of the last image change

Examples:
  wpctl status
  wpctl status --format json
  wpctl status --field wallpaper
  wpctl status --template '{{.Name}} ({{.Mode}})'`,
	Args: cobra.NoArgs,
	RunE: runStatus,
}

var getCmd = &cobra.Command{
	Use:   "get wallpaper|duration|mode|fallback|changed",
	Short: "Print a single daemon property",
	Long: `Print a single daemon property exactly as the daemon reports it.

Properties:
  wallpaper  path of the image on screen
  duration   rotation interval, e.g. "60 seconds"
  mode       linear, random or static
  fallback   true or false
  changed    time of the last image change (RFC 3339), or "never"`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"wallpaper", "duration", "mode", "fallback", "changed"},
	RunE:      runGet,
}

func init() {
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(getCmd)

	statusCmd.Flags().StringVar(&statusOpts.format, "format", "plain",
		"Output format: plain, json, yaml")
	statusCmd.Flags().StringVar(&statusOpts.template, "template", "",
		"Go template for plain output")
	statusCmd.Flags().StringVar(&statusOpts.field, "field", "",
		"Print a single field: wallpaper, name, mode, interval, fallback, changed")
}

func runStatus(cmd *cobra.Command, args []string) error {
	format := output.FormatType(strings.ToLower(statusOpts.format))
	if !slices.Contains(output.FormatTypes, format) {
		return fmt.Errorf("unknown format %q", statusOpts.format)
	}

	status, err := newClient().Status(cmd.Context())
	if err != nil {
		return err
	}
	statImage(&status)

	formatter := output.NewFormatter(format, output.FormatterOptions{
		Template: statusOpts.template,
		Field:    statusOpts.field,
	})
	return formatter.Format(os.Stdout, status)
}

func runGet(cmd *cobra.Command, args []string) error {
	text := protocol.Command{Kind: protocol.KindGet, Query: protocol.Query(strings.ToLower(args[0]))}.String()
	if _, err := protocol.Parse(text); err != nil {
		return err
	}

	resp, err := newClient().Send(cmd.Context(), text)
	if err != nil {
		return err
	}
	fmt.Println(resp)
	return nil
}

// statImage fills in file details when the image is readable from here.
func statImage(s *model.Status) {
	if s.Wallpaper == "" {
		return
	}
	info, err := os.Stat(s.Wallpaper)
	if err != nil {
		logger.Debug("cannot stat wallpaper", "path", s.Wallpaper, "error", err)
		return
	}
	s.ImageSize = info.Size()
	s.ImageModified = info.ModTime()
}
