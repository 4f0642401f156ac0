package backend

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"strings"
)

// ErrNoSignature is returned when HYPRLAND_INSTANCE_SIGNATURE is not set.
var ErrNoSignature = errors.New("HYPRLAND_INSTANCE_SIGNATURE not set")

const hyprpaperSocketName = ".hyprpaper.sock"

// Hyprpaper drives a running hyprpaper instance over its IPC socket.
// Each change preloads the image, assigns it to every monitor and unloads
// the image that is no longer reachable in one step.
type Hyprpaper struct {
	logger   *slog.Logger
	monitors []string

	// socketPath overrides socket discovery when set.
	socketPath string
	dialer     net.Dialer
}

// NewHyprpaper creates a Hyprpaper backend for monitors. When monitors is
// empty the wallpaper is assigned with a wildcard.
func NewHyprpaper(monitors []string, logger *slog.Logger) *Hyprpaper {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hyprpaper{
		logger:   logger,
		monitors: append([]string(nil), monitors...),
	}
}

// WithSocketPath pins the hyprpaper socket path.
func (h *Hyprpaper) WithSocketPath(path string) *Hyprpaper {
	h.socketPath = path
	return h
}

// Name returns the backend identifier.
func (h *Hyprpaper) Name() string {
	return string(KindHyprpaper)
}

// Messages returns the IPC messages for req, in send order.
func (h *Hyprpaper) Messages(req Request) []string {
	msgs := []string{"preload " + req.Path}
	if len(h.monitors) == 0 {
		msgs = append(msgs, "wallpaper ,"+req.Path)
	}
	for _, mon := range h.monitors {
		msgs = append(msgs, fmt.Sprintf("wallpaper %s,%s", mon, req.Path))
	}
	if old, ok := UnloadCandidate(req.Tail); ok {
		msgs = append(msgs, "unload "+old)
	}
	return msgs
}

// SetWallpaper sends the preload / wallpaper / unload sequence.
func (h *Hyprpaper) SetWallpaper(ctx context.Context, req Request) error {
	path, err := h.resolveSocket()
	if err != nil {
		return &Error{Backend: string(KindHyprpaper), Message: "failed to locate hyprpaper socket", Err: err}
	}

	for _, msg := range h.Messages(req) {
		reply, err := h.send(ctx, path, msg)
		if err != nil {
			return &Error{Backend: string(KindHyprpaper), Message: fmt.Sprintf("failed to send %q", msg), Err: err}
		}
		h.logger.Debug("hyprpaper reply", "message", msg, "reply", reply)
		if reply != "" && reply != "ok" {
			return &Error{Backend: string(KindHyprpaper), Message: fmt.Sprintf("%q rejected: %s", msg, reply)}
		}
	}
	return nil
}

// send performs one request/response exchange on its own connection.
func (h *Hyprpaper) send(ctx context.Context, path, msg string) (string, error) {
	conn, err := h.dialer.DialContext(ctx, "unix", path)
	if err != nil {
		return "", fmt.Errorf("connect hyprpaper socket: %w", err)
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	if _, err := io.WriteString(conn, msg); err != nil {
		return "", fmt.Errorf("write message: %w", err)
	}
	if uc, ok := conn.(*net.UnixConn); ok {
		_ = uc.CloseWrite()
	}

	reply, err := io.ReadAll(conn)
	if err != nil {
		return "", fmt.Errorf("read reply: %w", err)
	}
	return strings.TrimSpace(string(reply)), nil
}

func (h *Hyprpaper) resolveSocket() (string, error) {
	if h.socketPath != "" {
		return h.socketPath, nil
	}
	return HyprpaperSocketPath()
}

// HyprpaperSocketPath locates the hyprpaper socket of the current Hyprland
// instance, preferring $XDG_RUNTIME_DIR/hypr over the legacy /tmp/hypr.
func HyprpaperSocketPath() (string, error) {
	sig := os.Getenv("HYPRLAND_INSTANCE_SIGNATURE")
	if sig == "" {
		return "", ErrNoSignature
	}
	if runtimeDir := os.Getenv("XDG_RUNTIME_DIR"); runtimeDir != "" {
		path := filepath.Join(runtimeDir, "hypr", sig, hyprpaperSocketName)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return filepath.Join("/tmp", "hypr", sig, hyprpaperSocketName), nil
}
