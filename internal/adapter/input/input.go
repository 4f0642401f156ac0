// Package input provides sources of control commands for wpctl batch mode.
package input

import (
	"context"
	"fmt"
	"os"
)

// CommandSource yields control commands in order.
type CommandSource interface {
	// Name returns the source identifier (e.g., "stdin", a file path).
	Name() string

	// Commands reads all commands from the source.
	// Blank lines and lines starting with '#' are skipped.
	Commands(ctx context.Context) ([]string, error)
}

// NewSource creates a CommandSource for name. "-" reads standard input;
// anything else is a file path.
func NewSource(name string) (CommandSource, error) {
	if name == "" || name == "-" {
		return NewStdinAdapter(), nil
	}

	f, err := os.Open(name)
	if err != nil {
		return nil, &AdapterError{
			Source:  name,
			Message: "failed to open command file",
			Err:     err,
		}
	}
	return NewReaderAdapter(name, f), nil
}

// AdapterError represents an input-related error.
type AdapterError struct {
	Source  string
	Line    int
	Message string
	Err     error
}

func (e *AdapterError) Error() string {
	msg := e.Message
	if e.Line > 0 {
		msg = fmt.Sprintf("%s:%d: %s", e.Source, e.Line, e.Message)
	}
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg
}

func (e *AdapterError) Unwrap() error {
	return e.Err
}
