// Package config handles configuration file loading and path resolution.
package config

import (
	"os"
	"path/filepath"
)

// Default locations.
const (
	SocketName        = "wallpaperd"
	FallbackSocketDir = "/tmp"
	DefaultImageSub   = "Pictures/backgrounds"
)

// SocketPath returns the default control socket path.
// Uses XDG_RUNTIME_DIR if set, otherwise /tmp.
func SocketPath() string {
	if runtimeDir := os.Getenv("XDG_RUNTIME_DIR"); runtimeDir != "" {
		return filepath.Join(runtimeDir, SocketName)
	}
	return filepath.Join(FallbackSocketDir, SocketName)
}

// ResolveSocketPath returns path when set, otherwise the default socket path.
func ResolveSocketPath(path string) string {
	if path != "" {
		return ExpandPath(path)
	}
	return SocketPath()
}

// DefaultImageDir returns ~/Pictures/backgrounds.
func DefaultImageDir() string {
	home := os.Getenv("HOME")
	if home == "" {
		var err error
		home, err = os.UserHomeDir()
		if err != nil {
			return ""
		}
	}
	return filepath.Join(home, DefaultImageSub)
}
