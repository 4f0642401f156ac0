package backend

import (
	"context"
	"errors"
	"log/slog"
	"os/exec"
	"strings"
)

// pathPlaceholder is replaced with the image path in command arguments.
const pathPlaceholder = "%s"

// DefaultCommand is used when no command is configured.
var DefaultCommand = []string{"feh", "--bg-fill", pathPlaceholder}

// Command sets the wallpaper by running one external program per change.
type Command struct {
	logger *slog.Logger
	binary string
	args   []string
}

// NewCommand creates a Command backend. argv[0] is the program; any argument
// containing %s has it replaced with the image path. When no argument
// contains %s the path is appended.
func NewCommand(argv []string, logger *slog.Logger) (*Command, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if len(argv) == 0 {
		argv = DefaultCommand
	}
	if strings.TrimSpace(argv[0]) == "" {
		return nil, &Error{Backend: string(KindCommand), Message: "empty program name"}
	}

	args := make([]string, len(argv)-1)
	copy(args, argv[1:])

	return &Command{
		logger: logger,
		binary: argv[0],
		args:   args,
	}, nil
}

// Name returns the backend identifier.
func (c *Command) Name() string {
	return string(KindCommand)
}

// Args returns the program arguments for path.
func (c *Command) Args(path string) []string {
	args := make([]string, 0, len(c.args)+1)
	substituted := false
	for _, arg := range c.args {
		if strings.Contains(arg, pathPlaceholder) {
			arg = strings.ReplaceAll(arg, pathPlaceholder, path)
			substituted = true
		}
		args = append(args, arg)
	}
	if !substituted {
		args = append(args, path)
	}
	return args
}

// SetWallpaper runs the configured program with req.Path.
func (c *Command) SetWallpaper(ctx context.Context, req Request) error {
	args := c.Args(req.Path)

	c.logger.Debug("setting wallpaper", "command", c.binary, "args", args)

	cmd := exec.CommandContext(ctx, c.binary, args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		msg := "failed to run " + c.binary
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && len(output) > 0 {
			msg += " (output: " + strings.TrimSpace(string(output)) + ")"
		}
		return &Error{Backend: string(KindCommand), Message: msg, Err: err}
	}

	return nil
}
