package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/wallpaperd/internal/client"
)

// Build-time variables (set via ldflags)
var (
	version   = "dev"
	commit    = "unknown"
	buildTime = "unknown"
)

// Global configuration and state
var (
	globalOpts struct {
		verbose bool
		socket  string
		timeout time.Duration
	}
	logger *slog.Logger
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "wpctl",
	Short: "Control a running wallpaperd",
	Long: `wpctl sends commands to wallpaperd over its control socket.

Examples:
  wpctl next
  wpctl mode static ~/Pictures/backgrounds/lake.jpg
  wpctl interval 300
  wpctl status --format json`,
	Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, buildTime),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		setupLogger()
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&globalOpts.verbose, "verbose", "v", false,
		"Enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&globalOpts.socket, "socket", "s", "",
		"Control socket path (default: $XDG_RUNTIME_DIR/wallpaperd)")
	rootCmd.PersistentFlags().DurationVar(&globalOpts.timeout, "timeout", client.DefaultTimeout,
		"Timeout for each request")
}

// setupLogger configures the global slog logger.
func setupLogger() {
	level := slog.LevelWarn
	if globalOpts.verbose {
		level = slog.LevelDebug
	}

	// Log to stderr so stdout is clean for output
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	logger = slog.New(handler)
	slog.SetDefault(logger)
}

// newClient returns a client for the configured socket.
func newClient() *client.Client {
	c := client.New(globalOpts.socket)
	c.SetTimeout(globalOpts.timeout)
	if logger != nil {
		logger.Debug("using control socket", "socket", c.SocketPath())
	}
	return c
}

// simpleCommand builds a subcommand that takes no arguments and calls fn.
func simpleCommand(use, short string, fn func(ctx context.Context, c *client.Client) error) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return fn(cmd.Context(), newClient())
		},
	}
}
