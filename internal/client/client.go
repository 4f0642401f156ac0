// Package client talks to a running wallpaperd over its control socket.
package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/jmylchreest/wallpaperd/internal/config"
	"github.com/jmylchreest/wallpaperd/internal/model"
	"github.com/jmylchreest/wallpaperd/internal/protocol"
)

// DefaultTimeout is used when the caller does not provide a context deadline.
const DefaultTimeout = 3 * time.Second

// maxResponseSize bounds how much of a response is read.
const maxResponseSize = 1 << 20

// ErrRejected is returned when the daemon does not understand a command.
var ErrRejected = errors.New("command rejected")

// Client sends commands to wallpaperd.
type Client struct {
	socketPath string
	timeout    time.Duration
}

// New creates a client for socketPath. When path is empty, the default
// runtime path is used.
func New(socketPath string) *Client {
	return &Client{
		socketPath: config.ResolveSocketPath(socketPath),
		timeout:    DefaultTimeout,
	}
}

// SetTimeout sets the timeout applied when ctx has no deadline.
func (c *Client) SetTimeout(d time.Duration) {
	if d > 0 {
		c.timeout = d
	}
}

// SocketPath returns the socket the client connects to.
func (c *Client) SocketPath() string {
	return c.socketPath
}

// Send writes one framed command and returns the raw response.
func (c *Client) Send(ctx context.Context, text string) (string, error) {
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	var d net.Dialer
	conn, err := d.DialContext(ctx, "unix", c.socketPath)
	if err != nil {
		return "", fmt.Errorf("dial control socket: %w", err)
	}
	defer conn.Close()
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	if err := protocol.WriteFrame(conn, text); err != nil {
		return "", err
	}
	if uc, ok := conn.(*net.UnixConn); ok {
		_ = uc.CloseWrite()
	}

	resp, err := io.ReadAll(io.LimitReader(conn, maxResponseSize))
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	return string(resp), nil
}

// do sends a command that answers with an empty response on success.
func (c *Client) do(ctx context.Context, text string) error {
	resp, err := c.Send(ctx, text)
	if err != nil {
		return err
	}
	if resp != "" {
		return rejected(resp)
	}
	return nil
}

// get sends a query and rejects "I do not understand" responses.
func (c *Client) get(ctx context.Context, text string) (string, error) {
	resp, err := c.Send(ctx, text)
	if err != nil {
		return "", err
	}
	if strings.HasPrefix(resp, "I do not understand") {
		return "", rejected(resp)
	}
	return resp, nil
}

func rejected(resp string) error {
	return fmt.Errorf("%w: %s", ErrRejected, resp)
}

// Next advances to the next image.
func (c *Client) Next(ctx context.Context) error {
	return c.do(ctx, "next")
}

// Previous returns to the previous image.
func (c *Client) Previous(ctx context.Context) error {
	return c.do(ctx, "prev")
}

// Stop shuts the daemon down.
func (c *Client) Stop(ctx context.Context) error {
	return c.do(ctx, "stop")
}

// SetMode changes the rotation mode. image is only sent for ModeStatic.
func (c *Client) SetMode(ctx context.Context, mode model.Mode, image string) error {
	cmd := protocol.Command{Kind: protocol.KindMode, Mode: mode}
	if mode == model.ModeStatic {
		cmd.Path = strings.TrimSpace(image)
	}
	return c.do(ctx, cmd.String())
}

// ToggleFallback switches the fallback image on or off.
func (c *Client) ToggleFallback(ctx context.Context) error {
	return c.do(ctx, "fallback")
}

// SetInterval changes the rotation interval. It is sent in whole seconds.
func (c *Client) SetInterval(ctx context.Context, d time.Duration) error {
	if d < time.Second {
		return fmt.Errorf("interval must be at least one second, got %s", d)
	}
	return c.do(ctx, protocol.Command{Kind: protocol.KindInterval, Interval: d}.String())
}

// Wallpaper returns the image being displayed.
func (c *Client) Wallpaper(ctx context.Context) (string, error) {
	return c.get(ctx, "get wallpaper")
}

// Interval returns the rotation interval.
func (c *Client) Interval(ctx context.Context) (time.Duration, error) {
	resp, err := c.get(ctx, "get duration")
	if err != nil {
		return 0, err
	}
	return ParseSeconds(resp)
}

// Mode returns the rotation mode.
func (c *Client) Mode(ctx context.Context) (model.Mode, error) {
	resp, err := c.get(ctx, "get mode")
	if err != nil {
		return 0, err
	}
	return model.ParseMode(resp)
}

// Fallback reports whether the fallback image is active.
func (c *Client) Fallback(ctx context.Context) (bool, error) {
	resp, err := c.get(ctx, "get fallback")
	if err != nil {
		return false, err
	}
	active, err := strconv.ParseBool(strings.TrimSpace(resp))
	if err != nil {
		return false, fmt.Errorf("unexpected fallback response %q", resp)
	}
	return active, nil
}

// Changed returns when the displayed image last changed. The zero time means
// no image has been shown yet.
func (c *Client) Changed(ctx context.Context) (time.Time, error) {
	resp, err := c.get(ctx, "get changed")
	if err != nil {
		return time.Time{}, err
	}
	return ParseChanged(resp)
}

// ParseChanged parses a "get changed" response.
func ParseChanged(resp string) (time.Time, error) {
	text := strings.TrimSpace(resp)
	if text == protocol.NeverChanged {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339, text)
	if err != nil {
		return time.Time{}, fmt.Errorf("unexpected changed response %q", resp)
	}
	return t, nil
}

// Update asks the daemon to rescan its image directory and returns the
// number of images found.
func (c *Client) Update(ctx context.Context) (int, error) {
	resp, err := c.get(ctx, "update")
	if err != nil {
		return 0, err
	}
	countText, ok := strings.CutSuffix(strings.TrimSpace(resp), " images")
	if !ok {
		return 0, fmt.Errorf("update failed: %s", resp)
	}
	n, err := strconv.Atoi(countText)
	if err != nil {
		return 0, fmt.Errorf("unexpected update response %q", resp)
	}
	return n, nil
}

// Help returns the daemon's command summary.
func (c *Client) Help(ctx context.Context) (string, error) {
	return c.get(ctx, "help")
}

// Status collects a snapshot with one query per field. The fields are read
// on separate connections, so a concurrent change may show between them.
func (c *Client) Status(ctx context.Context) (model.Status, error) {
	var (
		s   model.Status
		err error
	)
	if s.Wallpaper, err = c.Wallpaper(ctx); err != nil {
		return model.Status{}, err
	}
	if s.Mode, err = c.Mode(ctx); err != nil {
		return model.Status{}, err
	}
	if s.Interval, err = c.Interval(ctx); err != nil {
		return model.Status{}, err
	}
	if s.Fallback, err = c.Fallback(ctx); err != nil {
		return model.Status{}, err
	}
	if s.LastChanged, err = c.Changed(ctx); err != nil {
		return model.Status{}, err
	}
	return s, nil
}

// ParseSeconds parses a "get duration" response such as "60 seconds".
func ParseSeconds(resp string) (time.Duration, error) {
	text, _ := strings.CutSuffix(strings.TrimSpace(resp), " seconds")
	secs, err := strconv.ParseInt(strings.TrimSpace(text), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("unexpected duration response %q", resp)
	}
	return time.Duration(secs) * time.Second, nil
}
