package dbus

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/godbus/dbus/v5"
)

// caller is the subset of dbus.BusObject used by Client.
type caller interface {
	CallWithContext(ctx context.Context, method string, flags dbus.Flags, args ...any) *dbus.Call
}

// Client sends notifications to the session notification server.
type Client struct {
	mu     sync.Mutex
	conn   *dbus.Conn
	obj    caller
	logger *slog.Logger
}

// NewClient creates a Client. Connect must be called before Notify.
func NewClient(logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{logger: logger}
}

// Connect opens a private connection to the session bus.
func (c *Client) Connect() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.obj != nil {
		return nil
	}

	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return fmt.Errorf("failed to connect to session bus: %w", err)
	}

	c.conn = conn
	c.obj = conn.Object(DBusBusName, dbus.ObjectPath(DBusPath))
	c.logger.Debug("connected to session bus")
	return nil
}

// Notify sends n and returns the id assigned by the server.
func (c *Client) Notify(ctx context.Context, n *Notification) (uint32, error) {
	c.mu.Lock()
	obj := c.obj
	c.mu.Unlock()

	if obj == nil {
		return 0, fmt.Errorf("failed to notify: not connected")
	}

	var id uint32
	call := obj.CallWithContext(ctx, DBusInterface+".Notify", 0, n.args()...)
	if err := call.Store(&id); err != nil {
		return 0, fmt.Errorf("failed to notify: %w", err)
	}
	return id, nil
}

// CloseNotification asks the server to close a notification.
func (c *Client) CloseNotification(ctx context.Context, id uint32) error {
	c.mu.Lock()
	obj := c.obj
	c.mu.Unlock()

	if obj == nil {
		return fmt.Errorf("failed to close notification: not connected")
	}

	if err := obj.CallWithContext(ctx, DBusInterface+".CloseNotification", 0, id).Err; err != nil {
		return fmt.Errorf("failed to close notification %d: %w", id, err)
	}
	return nil
}

// Close releases the bus connection.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.obj = nil
	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.conn = nil
	return err
}
