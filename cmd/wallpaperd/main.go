// Package main is the entry point for the wallpaperd rotation daemon.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/wallpaperd/internal/config"
	"github.com/jmylchreest/wallpaperd/internal/model"
)

// Build-time variables (set via ldflags)
var (
	version   = "dev"
	commit    = "unknown"
	buildTime = "unknown"
)

var (
	opts struct {
		configPath  string
		fallback    string
		imageDir    string
		socket      string
		interval    string
		mode        string
		backend     string
		monitors    []string
		historySize int
		readyFD     int
		writeConfig bool
		verbose     bool
	}
	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "wallpaperd",
	Short: "Desktop wallpaper rotation daemon",
	Long: `wallpaperd rotates the desktop background through a directory of images.

It is controlled over a unix socket with wpctl, and sets the wallpaper with
an external program (feh by default) or by driving a running hyprpaper.

Settings are read from ~/.config/wallpaperd/wallpaperd.toml; flags override
the file.`,
	Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, buildTime),
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runDaemon,
}

func init() {
	addFlags(rootCmd)
}

// addFlags registers the daemon flags on cmd.
func addFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVar(&opts.configPath, "config", "",
		"Path to config file (default: ~/.config/wallpaperd/wallpaperd.toml)")
	flags.StringVarP(&opts.fallback, "fallback", "f", "",
		"Image shown at startup and while fallback is active")
	flags.StringVarP(&opts.imageDir, "path", "p", "",
		"Directory of images to rotate through (default: ~/Pictures/backgrounds)")
	flags.StringVarP(&opts.socket, "socket", "s", "",
		"Control socket path (default: $XDG_RUNTIME_DIR/wallpaperd)")
	flags.StringVar(&opts.interval, "interval", "",
		"Rotation interval, e.g. 90s, 15m or seconds")
	flags.StringVar(&opts.mode, "mode", "",
		"Initial rotation mode (linear, random, static)")
	flags.StringVar(&opts.backend, "backend", "",
		"Wallpaper backend (command, hyprpaper)")
	flags.StringArrayVar(&opts.monitors, "monitor", nil,
		"hyprpaper monitor to set, may be repeated (default: all)")
	flags.IntVar(&opts.historySize, "history-size", 0,
		"Number of images remembered for prev")
	flags.IntVar(&opts.readyFD, "ready-fd", 0,
		"Write a newline to this file descriptor once listening")
	flags.BoolVar(&opts.writeConfig, "write-config", false,
		"Write the effective configuration to the config file and exit")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false,
		"Enable verbose logging")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		if logger != nil {
			logger.Error("wallpaperd failed", "error", err)
		} else {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}

// setupLogger configures the global slog logger.
func setupLogger() {
	level := slog.LevelInfo
	if opts.verbose {
		level = slog.LevelDebug
	}

	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	logger = slog.New(handler)
	slog.SetDefault(logger)
}

// applyFlags overlays explicitly set flags onto cfg.
func applyFlags(cmd *cobra.Command, cfg *config.DaemonConfig) error {
	flags := cmd.Flags()

	if flags.Changed("fallback") {
		cfg.Rotation.FallbackImage = config.ExpandPath(opts.fallback)
	}
	if flags.Changed("path") {
		cfg.Rotation.ImageDir = config.ExpandPath(opts.imageDir)
	}
	if flags.Changed("socket") {
		cfg.Socket.Path = opts.socket
	}
	if flags.Changed("interval") {
		if err := cfg.Rotation.Interval.UnmarshalText([]byte(opts.interval)); err != nil {
			return fmt.Errorf("invalid --interval: %w", err)
		}
	}
	if flags.Changed("mode") {
		mode, err := model.ParseMode(opts.mode)
		if err != nil {
			return fmt.Errorf("invalid --mode: %w", err)
		}
		cfg.Rotation.Mode = mode
	}
	if flags.Changed("backend") {
		cfg.Backend.Kind = opts.backend
	}
	if flags.Changed("monitor") {
		cfg.Backend.Monitors = opts.monitors
	}
	if flags.Changed("history-size") {
		cfg.Rotation.HistorySize = opts.historySize
	}
	return nil
}
