// Package backend sets the desktop wallpaper through an external program.
package backend

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jmylchreest/wallpaperd/internal/config"
)

// Request describes one wallpaper change.
type Request struct {
	// Path is the image to display.
	Path string
	// Tail holds the last shown history entries, oldest first, ending with Path.
	Tail []string
}

// TailSize is the number of history entries a Request carries.
const TailSize = 3

// Backend applies a wallpaper change.
type Backend interface {
	// Name returns the backend identifier (e.g., "command", "hyprpaper").
	Name() string

	// SetWallpaper displays req.Path.
	SetWallpaper(ctx context.Context, req Request) error
}

// Kind identifies a backend variant.
type Kind string

const (
	KindCommand   Kind = "command"
	KindHyprpaper Kind = "hyprpaper"
)

// ErrUnknownKind is returned by New for unsupported backend kinds.
var ErrUnknownKind = errors.New("unknown backend kind")

// New creates the Backend selected by cfg.
func New(cfg config.BackendConfig, logger *slog.Logger) (Backend, error) {
	switch Kind(cfg.Kind) {
	case KindCommand, "":
		return NewCommand(cfg.Command, logger)
	case KindHyprpaper:
		return NewHyprpaper(cfg.Monitors, logger), nil
	default:
		return nil, fmt.Errorf("%w %q", ErrUnknownKind, cfg.Kind)
	}
}

// Error represents a backend invocation failure.
type Error struct {
	Backend string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Backend + ": " + e.Message + ": " + e.Err.Error()
	}
	return e.Backend + ": " + e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}
