// Package protocol implements the wallpaperd control protocol: a
// length-prefixed command frame answered by a raw response read until EOF.
package protocol

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"
)

// HeaderSize is the width of the length prefix in bytes.
const HeaderSize = 8

// MaxFrameSize bounds the command body a peer may announce.
const MaxFrameSize = 64 * 1024

var (
	// ErrFrameTooLarge is returned when the announced length exceeds MaxFrameSize.
	ErrFrameTooLarge = errors.New("frame too large")
	// ErrInvalidUTF8 is returned when the command body is not valid UTF-8.
	ErrInvalidUTF8 = errors.New("command is not valid UTF-8")
)

// ReadFrame reads one length-prefixed command. The prefix is a native-endian
// uint64. A peer that disconnects before the full body arrives yields
// io.ErrUnexpectedEOF.
func ReadFrame(r io.Reader) (string, error) {
	var header [HeaderSize]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return "", fmt.Errorf("read length: %w", err)
	}

	n := binary.NativeEndian.Uint64(header[:])
	if n > MaxFrameSize {
		return "", fmt.Errorf("%w: %d bytes", ErrFrameTooLarge, n)
	}

	body := make([]byte, n)
	if _, err := io.ReadFull(r, body); err != nil {
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		return "", fmt.Errorf("read body: %w", err)
	}
	if !utf8.Valid(body) {
		return "", ErrInvalidUTF8
	}
	return string(body), nil
}

// WriteFrame writes cmd with its length prefix. Surrounding whitespace is
// trimmed before framing.
func WriteFrame(w io.Writer, cmd string) error {
	cmd = strings.TrimSpace(cmd)
	if len(cmd) > MaxFrameSize {
		return fmt.Errorf("%w: %d bytes", ErrFrameTooLarge, len(cmd))
	}

	buf := make([]byte, HeaderSize+len(cmd))
	binary.NativeEndian.PutUint64(buf[:HeaderSize], uint64(len(cmd)))
	copy(buf[HeaderSize:], cmd)

	if _, err := w.Write(buf); err != nil {
		return fmt.Errorf("write frame: %w", err)
	}
	return nil
}
