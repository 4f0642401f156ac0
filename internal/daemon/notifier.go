package daemon

import (
	"context"
	"log/slog"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/jmylchreest/wallpaperd/internal/dbus"
)

// NotificationLevel indicates the urgency/severity of a desktop notification.
type NotificationLevel int

const (
	// NotificationLevelInfo is for informational messages (low urgency).
	NotificationLevelInfo NotificationLevel = iota
	// NotificationLevelWarning is for warning messages (normal urgency).
	NotificationLevelWarning
	// NotificationLevelError is for error messages (critical urgency).
	NotificationLevelError
)

// NotifySender delivers and withdraws notifications; *dbus.Client satisfies it.
type NotifySender interface {
	Notify(ctx context.Context, n *dbus.Notification) (uint32, error)
	CloseNotification(ctx context.Context, id uint32) error
}

var _ NotifySender = (*dbus.Client)(nil)

// Notifier sends desktop notifications about daemon events.
// It rate limits by key to prevent notification floods.
type Notifier struct {
	mu     sync.Mutex
	logger *slog.Logger

	sender NotifySender

	// Rate limiting
	lastNotifyTime map[string]time.Time // key -> last notification time
	minInterval    time.Duration        // minimum time between same notifications
	sendTimeout    time.Duration

	// Server ids of delivered notifications, by key
	ids map[string]uint32

	enabled bool
	now     func() time.Time
}

// NewNotifier creates a Notifier that delivers through sender.
// A nil sender disables notifications.
func NewNotifier(sender NotifySender, logger *slog.Logger) *Notifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Notifier{
		logger:         logger,
		sender:         sender,
		lastNotifyTime: make(map[string]time.Time),
		ids:            make(map[string]uint32),
		minInterval:    30 * time.Second,
		sendTimeout:    2 * time.Second,
		enabled:        sender != nil,
		now:            time.Now,
	}
}

// SetMinInterval sets the minimum interval between notifications with the same key.
func (n *Notifier) SetMinInterval(interval time.Duration) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.minInterval = interval
}

// Notify sends a notification unless rate-limited.
// A delivery failure disables further notifications.
func (n *Notifier) Notify(key, summary, body string, level NotificationLevel) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if !n.enabled {
		return
	}

	now := n.now()
	if lastTime, ok := n.lastNotifyTime[key]; ok && now.Sub(lastTime) < n.minInterval {
		n.logger.Debug("notification rate-limited", "key", key, "summary", summary)
		return
	}
	n.lastNotifyTime[key] = now

	notification := &dbus.Notification{
		AppName:       "wallpaperd",
		Summary:       summary,
		Body:          body,
		ExpireTimeout: 5000,
	}
	notification.SetHint("transient", true)
	notification.SetHint("desktop-entry", "wallpaperd")

	switch level {
	case NotificationLevelInfo:
		notification.SetUrgency(dbus.UrgencyLow)
		notification.AppIcon = "dialog-information"
	case NotificationLevelWarning:
		notification.SetUrgency(dbus.UrgencyNormal)
		notification.AppIcon = "dialog-warning"
	case NotificationLevelError:
		notification.SetUrgency(dbus.UrgencyCritical)
		notification.AppIcon = "dialog-error"
	}

	n.logger.Debug("sending notification", "key", key, "summary", summary, "level", level)

	ctx, cancel := context.WithTimeout(context.Background(), n.sendTimeout)
	defer cancel()
	id, err := n.sender.Notify(ctx, notification)
	if err != nil {
		n.logger.Warn("failed to send notification, disabling notifications", "error", err)
		n.enabled = false
		return
	}
	n.ids[key] = id
}

// Withdraw closes the last notification sent for key, if any, and lifts its
// rate limit so the next occurrence is reported at once.
func (n *Notifier) Withdraw(key string) {
	n.mu.Lock()
	defer n.mu.Unlock()

	id, ok := n.ids[key]
	if !ok {
		return
	}
	delete(n.ids, key)
	delete(n.lastNotifyTime, key)

	if !n.enabled {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), n.sendTimeout)
	defer cancel()
	if err := n.sender.CloseNotification(ctx, id); err != nil {
		n.logger.Debug("failed to close notification", "key", key, "id", id, "error", err)
	}
}

const backendErrorKey = "backend-error"

// NotifyBackendError reports a failed wallpaper change.
func (n *Notifier) NotifyBackendError(path string, err error) {
	n.Notify(
		backendErrorKey,
		"Wallpaper Error",
		"Failed to set "+filepath.Base(path)+": "+err.Error(),
		NotificationLevelError,
	)
}

// ClearBackendError withdraws a backend failure notice once a change succeeds.
func (n *Notifier) ClearBackendError() {
	n.Withdraw(backendErrorKey)
}

// NotifyFallback reports a fallback toggle.
func (n *Notifier) NotifyFallback(active bool, image string) {
	summary := "Fallback Disabled"
	body := "Rotation resumed with " + filepath.Base(image) + "."
	if active {
		summary = "Fallback Enabled"
		body = "Holding " + filepath.Base(image) + "."
	}
	n.Notify("fallback-"+strconv.FormatBool(active), summary, body, NotificationLevelInfo)
}

// NotifyNoImages reports an empty image directory.
func (n *Notifier) NotifyNoImages(dir string) {
	n.Notify(
		"no-images",
		"No Wallpapers",
		"No images found in "+dir+".",
		NotificationLevelWarning,
	)
}
