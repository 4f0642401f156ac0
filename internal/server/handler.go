package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/jmylchreest/wallpaperd/internal/daemon"
	"github.com/jmylchreest/wallpaperd/internal/model"
	"github.com/jmylchreest/wallpaperd/internal/protocol"
)

// NotUnderstood is the response to text that is not a command.
const NotUnderstood = "I do not understand"

// Result is the outcome of one command.
type Result struct {
	Response string
	Stop     bool
}

// Execute parses text and applies it to state. Navigation no-ops and
// backend failures are logged; the caller always gets the command's normal
// response.
func Execute(ctx context.Context, state *daemon.State, text string, logger *slog.Logger) Result {
	if logger == nil {
		logger = slog.Default()
	}

	cmd, err := protocol.Parse(text)
	if err != nil {
		var argErr *protocol.ArgumentError
		if errors.As(err, &argErr) {
			logger.Debug("bad command argument", "text", text, "error", err)
			return Result{Response: NotUnderstood + ": " + argErr.Error()}
		}
		logger.Debug("unknown command", "text", text)
		return Result{Response: NotUnderstood}
	}

	logger.Debug("command received", "command", cmd.String())

	switch cmd.Kind {
	case protocol.KindNext:
		changeImage(ctx, state, model.DirectionNext, logger)
	case protocol.KindPrevious:
		changeImage(ctx, state, model.DirectionPrevious, logger)
	case protocol.KindStop:
		return Result{Stop: true}
	case protocol.KindMode:
		state.UpdateMode(cmd.Mode, cmd.Path)
	case protocol.KindFallback:
		state.ToggleFallback()
	case protocol.KindInterval:
		if err := state.SetInterval(cmd.Interval); err != nil {
			return Result{Response: NotUnderstood + ": " + err.Error()}
		}
	case protocol.KindGet:
		return Result{Response: query(state, cmd.Query)}
	case protocol.KindUpdate:
		n, err := state.RefreshDirectoryListing(ctx)
		if err != nil {
			logger.Warn("failed to update image listing", "error", err)
			return Result{Response: err.Error()}
		}
		return Result{Response: fmt.Sprintf("%d images", n)}
	case protocol.KindHelp:
		return Result{Response: protocol.HelpText}
	}

	return Result{}
}

func changeImage(ctx context.Context, state *daemon.State, dir model.Direction, logger *slog.Logger) {
	err := state.ChangeImage(ctx, dir)
	switch {
	case err == nil:
	case errors.Is(err, daemon.ErrRotationBlocked), errors.Is(err, daemon.ErrNoPrevious):
		logger.Debug("image unchanged", "direction", dir, "reason", err)
	default:
		logger.Warn("failed to change image", "direction", dir, "error", err)
	}
}

func query(state *daemon.State, q protocol.Query) string {
	status := state.Status()
	switch q {
	case protocol.QueryWallpaper:
		return status.Wallpaper
	case protocol.QueryDuration:
		return FormatSeconds(status.Interval)
	case protocol.QueryMode:
		return status.Mode.String()
	case protocol.QueryFallback:
		return strconv.FormatBool(status.Fallback)
	case protocol.QueryChanged:
		return FormatChanged(status.LastChanged)
	default:
		return NotUnderstood
	}
}

// FormatChanged renders a change time the way "get changed" reports it.
func FormatChanged(t time.Time) string {
	if t.IsZero() {
		return protocol.NeverChanged
	}
	return t.UTC().Format(time.RFC3339)
}

// FormatSeconds renders an interval the way "get duration" reports it.
func FormatSeconds(d time.Duration) string {
	return fmt.Sprintf("%d seconds", int64(d/time.Second))
}
