package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/jmylchreest/wallpaperd/internal/history"
	"github.com/jmylchreest/wallpaperd/internal/model"
)

// Duration is a time.Duration that can be unmarshaled from human-readable strings.
// Supports formats like "90s", "5m", "1h30m", or integer seconds.
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler for TOML parsing.
func (d *Duration) UnmarshalText(text []byte) error {
	s := strings.TrimSpace(string(text))

	// Bare integers are seconds, matching the "interval SECONDS" command.
	if secs, err := strconv.ParseInt(s, 10, 64); err == nil {
		*d = Duration(time.Duration(secs) * time.Second)
		return nil
	}

	dur, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: must be like '90s', '5m', '1h30m' or seconds: %w", s, err)
	}
	*d = Duration(dur)
	return nil
}

// MarshalText implements encoding.TextMarshaler for TOML output.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Duration returns the underlying time.Duration.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// DaemonConfig is the configuration for wallpaperd.
// Loaded from ~/.config/wallpaperd/wallpaperd.toml
type DaemonConfig struct {
	Rotation RotationConfig `toml:"rotation"`
	Socket   SocketConfig   `toml:"socket"`
	Backend  BackendConfig  `toml:"backend"`
	Watch    WatchConfig    `toml:"watch"`
	Notify   NotifyConfig   `toml:"notify"`
}

// RotationConfig contains image rotation settings.
type RotationConfig struct {
	Interval      Duration   `toml:"interval"`       // e.g., "60s", "15m", or "60"
	Mode          model.Mode `toml:"mode"`           // "linear", "random" or "static"
	HistorySize   int        `toml:"history_size"`   // Max entries retained for "prev"
	ImageDir      string     `toml:"image_dir"`      // Directory of candidate images
	FallbackImage string     `toml:"fallback_image"` // Shown at startup and while fallback is active
}

// SocketConfig contains control socket settings.
type SocketConfig struct {
	Path        string   `toml:"path"`         // Empty = $XDG_RUNTIME_DIR/wallpaperd
	ReadTimeout Duration `toml:"read_timeout"` // Deadline for reading one framed command
}

// BackendConfig selects and configures the wallpaper backend.
type BackendConfig struct {
	Kind     string   `toml:"kind"`     // "command" or "hyprpaper"
	Command  []string `toml:"command"`  // argv for the command backend, %s = image path
	Monitors []string `toml:"monitors"` // hyprpaper monitor names, empty = all
	Timeout  Duration `toml:"timeout"`  // Per-change bound on backend I/O
}

// WatchConfig contains image directory watch settings.
type WatchConfig struct {
	Enabled  bool     `toml:"enabled"`
	Debounce Duration `toml:"debounce"`
}

// NotifyConfig contains desktop notification settings.
type NotifyConfig struct {
	Enabled     bool     `toml:"enabled"`      // Send desktop notifications on backend failures
	MinInterval Duration `toml:"min_interval"` // Minimum gap between repeats of one notification
}

// Backend kinds accepted by Validate.
const (
	BackendCommand   = "command"
	BackendHyprpaper = "hyprpaper"
)

// DefaultDaemonConfig returns a new DaemonConfig with default values.
func DefaultDaemonConfig() *DaemonConfig {
	return &DaemonConfig{
		Rotation: RotationConfig{
			Interval:    Duration(60 * time.Second),
			Mode:        model.ModeLinear,
			HistorySize: 50,
			ImageDir:    DefaultImageDir(),
		},
		Socket: SocketConfig{
			Path:        "",
			ReadTimeout: Duration(5 * time.Second),
		},
		Backend: BackendConfig{
			Kind:    BackendCommand,
			Command: []string{"feh", "--bg-fill", "%s"},
			Timeout: Duration(10 * time.Second),
		},
		Watch: WatchConfig{
			Enabled:  true,
			Debounce: Duration(500 * time.Millisecond),
		},
		Notify: NotifyConfig{
			Enabled:     true,
			MinInterval: Duration(30 * time.Second),
		},
	}
}

// DaemonConfigPath returns the path to the daemon config file.
func DaemonConfigPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "wallpaperd", "wallpaperd.toml"), nil
}

// LoadDaemonConfig loads the daemon configuration from path, or from
// DaemonConfigPath when path is empty.
// If the file doesn't exist, returns the default configuration.
func LoadDaemonConfig(path string) (*DaemonConfig, error) {
	if path == "" {
		var err error
		path, err = DaemonConfigPath()
		if err != nil {
			return nil, fmt.Errorf("failed to get config path: %w", err)
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return DefaultDaemonConfig(), nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Start with defaults, then overlay with file contents
	config := DefaultDaemonConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	config.Rotation.ImageDir = ExpandPath(config.Rotation.ImageDir)
	config.Rotation.FallbackImage = ExpandPath(config.Rotation.FallbackImage)
	config.Socket.Path = ExpandPath(config.Socket.Path)

	return config, nil
}

// SaveDaemonConfig writes config to path atomically.
func SaveDaemonConfig(config *DaemonConfig, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := toml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// Write atomically via temp file
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return os.Rename(tmpPath, path)
}

// Validate checks if the configuration is valid.
// It is called after command-line overrides have been applied.
func (c *DaemonConfig) Validate() error {
	if c.Rotation.FallbackImage == "" {
		return errors.New("fallback_image is required")
	}
	if c.Rotation.Interval.Duration() <= 0 {
		return fmt.Errorf("interval must be positive, got %s", c.Rotation.Interval.Duration())
	}
	if c.Rotation.HistorySize < history.MinRoundTripCapacity {
		return fmt.Errorf("history_size must be at least %d, got %d", history.MinRoundTripCapacity, c.Rotation.HistorySize)
	}
	if c.Rotation.ImageDir == "" {
		return errors.New("image_dir must not be empty")
	}

	switch c.Backend.Kind {
	case BackendCommand:
		if len(c.Backend.Command) == 0 || strings.TrimSpace(c.Backend.Command[0]) == "" {
			return errors.New("backend command must name a program")
		}
	case BackendHyprpaper:
	default:
		return fmt.Errorf("invalid backend %q, must be one of: %v", c.Backend.Kind, []string{BackendCommand, BackendHyprpaper})
	}

	if c.Backend.Timeout.Duration() < 0 {
		return fmt.Errorf("backend timeout must not be negative, got %s", c.Backend.Timeout.Duration())
	}
	if c.Socket.ReadTimeout.Duration() < 0 {
		return fmt.Errorf("socket read_timeout must not be negative, got %s", c.Socket.ReadTimeout.Duration())
	}

	return nil
}

// ExpandPath expands ~ to the user's home directory.
func ExpandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}
