package input

import (
	"bufio"
	"context"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/jmylchreest/wallpaperd/internal/protocol"
)

// ReaderAdapter reads newline-separated commands from a reader.
type ReaderAdapter struct {
	name   string
	reader io.Reader
}

// NewStdinAdapter creates a ReaderAdapter reading from os.Stdin.
func NewStdinAdapter() *ReaderAdapter {
	return &ReaderAdapter{name: "stdin", reader: os.Stdin}
}

// NewReaderAdapter creates a ReaderAdapter with a custom reader.
// The reader is closed after Commands when it implements io.Closer.
func NewReaderAdapter(name string, r io.Reader) *ReaderAdapter {
	return &ReaderAdapter{name: name, reader: r}
}

// Name returns the source identifier.
func (a *ReaderAdapter) Name() string {
	return a.name
}

// Commands reads and validates every command before returning any, so a
// typo on the last line does not leave a half-applied batch.
func (a *ReaderAdapter) Commands(ctx context.Context) ([]string, error) {
	if c, ok := a.reader.(io.Closer); ok && a.reader != os.Stdin {
		defer c.Close()
	}

	scanner := bufio.NewScanner(a.reader)
	scanner.Buffer(make([]byte, 4*1024), protocol.MaxFrameSize)

	var commands []string
	line := 0
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		line++

		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		if _, err := protocol.Parse(text); err != nil {
			return nil, &AdapterError{
				Source:  a.name,
				Line:    line,
				Message: "invalid command " + strconv.Quote(text),
				Err:     err,
			}
		}
		commands = append(commands, text)
	}

	if err := scanner.Err(); err != nil {
		return nil, &AdapterError{
			Source:  a.name,
			Message: "failed to read commands",
			Err:     err,
		}
	}

	return commands, nil
}
