package main

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/wallpaperd/internal/config"
	"github.com/jmylchreest/wallpaperd/internal/model"
)

var modeCmd = &cobra.Command{
	Use:   "mode linear|random|static [PATH]",
	Short: "Set the rotation mode",
	Long: `Set the rotation mode.

  linear   rotate through the image directory in order
  random   pick a random image on every rotation
  static   hold the current image, or PATH when given

Relative paths are resolved against the current directory.`,
	Args:      cobra.RangeArgs(1, 2),
	ValidArgs: []string{"linear", "random", "static"},
	RunE:      runMode,
}

var intervalCmd = &cobra.Command{
	Use:   "interval SECONDS|DURATION",
	Short: "Set the rotation interval",
	Long: `Set the rotation interval.

Accepts whole seconds (300) or a duration (5m, 1h30m). The new interval
applies from the next rotation.`,
	Args: cobra.ExactArgs(1),
	RunE: runInterval,
}

func init() {
	rootCmd.AddCommand(modeCmd)
	rootCmd.AddCommand(intervalCmd)
}

func runMode(cmd *cobra.Command, args []string) error {
	mode, err := model.ParseMode(args[0])
	if err != nil {
		return err
	}

	var image string
	if len(args) == 2 {
		if mode != model.ModeStatic {
			return fmt.Errorf("only static mode takes an image")
		}
		image, err = filepath.Abs(config.ExpandPath(args[1]))
		if err != nil {
			return fmt.Errorf("failed to resolve image path: %w", err)
		}
	}

	return newClient().SetMode(cmd.Context(), mode, image)
}

func runInterval(cmd *cobra.Command, args []string) error {
	var d config.Duration
	if err := d.UnmarshalText([]byte(args[0])); err != nil {
		return err
	}
	return newClient().SetInterval(cmd.Context(), d.Duration().Truncate(time.Second))
}
