// Package model defines the core data types shared by wallpaperd and wpctl.
package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Mode is the rotation strategy of the daemon.
type Mode int

const (
	// ModeLinear walks the image directory in listing order.
	ModeLinear Mode = iota
	// ModeRandom draws uniformly from the image directory.
	ModeRandom
	// ModeStatic freezes the current image.
	ModeStatic
)

// ErrUnknownMode is returned by ParseMode for unrecognised names.
var ErrUnknownMode = errors.New("unknown mode")

// String returns the wire representation of the mode.
func (m Mode) String() string {
	switch m {
	case ModeLinear:
		return "Linear"
	case ModeRandom:
		return "Random"
	case ModeStatic:
		return "Static"
	default:
		return "Unknown"
	}
}

// ParseMode parses a mode name case-insensitively.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "linear", "lin":
		return ModeLinear, nil
	case "random", "rng":
		return ModeRandom, nil
	case "static", "hold":
		return ModeStatic, nil
	default:
		return 0, fmt.Errorf("%w %q", ErrUnknownMode, s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (m Mode) MarshalText() ([]byte, error) {
	return []byte(strings.ToLower(m.String())), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *Mode) UnmarshalText(text []byte) error {
	parsed, err := ParseMode(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// Direction selects which way ChangeImage moves through history.
type Direction int

const (
	// DirectionNext advances (redo or a fresh candidate).
	DirectionNext Direction = iota
	// DirectionPrevious rewinds one entry.
	DirectionPrevious
)

// String returns the string representation of the direction.
func (d Direction) String() string {
	if d == DirectionPrevious {
		return "previous"
	}
	return "next"
}

// Status is a point-in-time snapshot of the daemon state.
type Status struct {
	Wallpaper   string        `json:"wallpaper" yaml:"wallpaper"`
	Mode        Mode          `json:"mode" yaml:"mode"`
	Interval    time.Duration `json:"interval" yaml:"interval"`
	Fallback    bool          `json:"fallback" yaml:"fallback"`
	LastChanged time.Time     `json:"last_changed,omitzero" yaml:"last_changed,omitempty"`

	// Details of the image file, filled in by the client when it can stat it.
	ImageSize     int64     `json:"image_size,omitempty" yaml:"image_size,omitempty"`
	ImageModified time.Time `json:"image_modified,omitzero" yaml:"image_modified,omitempty"`
}
