package protocol

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/jmylchreest/wallpaperd/internal/model"
)

// Kind identifies a control command.
type Kind int

const (
	KindNext Kind = iota
	KindPrevious
	KindStop
	KindMode
	KindFallback
	KindInterval
	KindGet
	KindUpdate
	KindHelp
)

var kindNames = map[Kind]string{
	KindNext:     "next",
	KindPrevious: "prev",
	KindStop:     "stop",
	KindMode:     "mode",
	KindFallback: "fallback",
	KindInterval: "interval",
	KindGet:      "get",
	KindUpdate:   "update",
	KindHelp:     "help",
}

// String returns the canonical keyword for the kind.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// Query is the subject of a get command.
type Query string

const (
	QueryWallpaper Query = "wallpaper"
	QueryDuration  Query = "duration"
	QueryMode      Query = "mode"
	QueryFallback  Query = "fallback"
	QueryChanged   Query = "changed"
)

// NeverChanged is the "get changed" response before any image was shown.
const NeverChanged = "never"

// Command is a parsed control command.
type Command struct {
	Kind Kind

	// Mode and Path are set for KindMode. Path is only meaningful for
	// ModeStatic and may be empty.
	Mode model.Mode
	Path string

	// Interval is set for KindInterval.
	Interval time.Duration

	// Query is set for KindGet.
	Query Query
}

// String renders the command in wire form.
func (c Command) String() string {
	switch c.Kind {
	case KindMode:
		s := "mode " + strings.ToLower(c.Mode.String())
		if c.Path != "" {
			s += " " + c.Path
		}
		return s
	case KindInterval:
		return fmt.Sprintf("interval %d", int64(c.Interval/time.Second))
	case KindGet:
		return "get " + string(c.Query)
	default:
		return c.Kind.String()
	}
}

// ErrUnknownCommand is returned for text that matches no command.
var ErrUnknownCommand = errors.New("unknown command")

// ArgumentError reports a recognised command with an unusable argument.
type ArgumentError struct {
	Command string
	Reason  string
}

func (e *ArgumentError) Error() string {
	return e.Command + ": " + e.Reason
}

func argError(cmd, format string, args ...any) error {
	return &ArgumentError{Command: cmd, Reason: fmt.Sprintf(format, args...)}
}

// maxIntervalSeconds keeps the interval representable as a time.Duration.
const maxIntervalSeconds = math.MaxInt64 / int64(time.Second)

// Parse parses one command line. Keywords are case-insensitive; arguments
// keep their case. The path of "mode static PATH" is the remainder of the
// line and may contain spaces.
func Parse(text string) (Command, error) {
	word, rest := cutWord(text)
	switch strings.ToLower(word) {
	case "next":
		return noArgs(KindNext, word, rest)
	case "prev", "previous":
		return noArgs(KindPrevious, word, rest)
	case "stop":
		return noArgs(KindStop, word, rest)
	case "fallback":
		return noArgs(KindFallback, word, rest)
	case "update":
		return noArgs(KindUpdate, word, rest)
	case "help":
		return noArgs(KindHelp, word, rest)
	case "mode":
		return parseMode(rest)
	case "interval":
		return parseInterval(rest)
	case "get":
		return parseGet(rest)
	default:
		return Command{}, ErrUnknownCommand
	}
}

func noArgs(kind Kind, word, rest string) (Command, error) {
	if strings.TrimSpace(rest) != "" {
		return Command{}, argError(strings.ToLower(word), "takes no arguments")
	}
	return Command{Kind: kind}, nil
}

func parseMode(rest string) (Command, error) {
	word, rest := cutWord(rest)
	if word == "" {
		return Command{}, argError("mode", "expected linear, random or static")
	}

	mode, err := model.ParseMode(word)
	if err != nil {
		return Command{}, argError("mode", "unknown mode %q", word)
	}

	cmd := Command{Kind: KindMode, Mode: mode}
	path := strings.TrimSpace(rest)
	if path != "" {
		if mode != model.ModeStatic {
			return Command{}, argError("mode", "%s takes no image", strings.ToLower(mode.String()))
		}
		cmd.Path = path
	}
	return cmd, nil
}

func parseInterval(rest string) (Command, error) {
	word, rest := cutWord(rest)
	if word == "" {
		return Command{}, argError("interval", "expected a number of seconds")
	}
	if strings.TrimSpace(rest) != "" {
		return Command{}, argError("interval", "expected a single number of seconds")
	}

	secs, err := strconv.ParseInt(word, 10, 64)
	if err != nil {
		return Command{}, argError("interval", "%q is not a number of seconds", word)
	}
	if secs <= 0 {
		return Command{}, argError("interval", "must be positive")
	}
	if secs > maxIntervalSeconds {
		return Command{}, argError("interval", "too large")
	}
	return Command{Kind: KindInterval, Interval: time.Duration(secs) * time.Second}, nil
}

func parseGet(rest string) (Command, error) {
	word, rest := cutWord(rest)
	if strings.TrimSpace(rest) != "" {
		return Command{}, argError("get", "expected a single property")
	}

	q := Query(strings.ToLower(word))
	switch q {
	case QueryWallpaper, QueryDuration, QueryMode, QueryFallback, QueryChanged:
		return Command{Kind: KindGet, Query: q}, nil
	case "":
		return Command{}, argError("get", "expected wallpaper, duration, mode, fallback or changed")
	default:
		return Command{}, argError("get", "unknown property %q", word)
	}
}

// cutWord splits s into its first whitespace-delimited word and the text
// after it.
func cutWord(s string) (word, rest string) {
	s = strings.TrimLeftFunc(s, unicode.IsSpace)
	i := strings.IndexFunc(s, unicode.IsSpace)
	if i < 0 {
		return s, ""
	}
	return s[:i], s[i:]
}

// HelpText is the response to the help command.
const HelpText = `commands:
  next                     show the next image
  prev                     show the previous image
  stop                     shut the daemon down
  mode linear              rotate through the directory in order
  mode random              rotate through the directory at random
  mode static [PATH]       hold the current image, or PATH
  fallback                 toggle the fallback image
  interval SECONDS         set the rotation interval
  get wallpaper            print the current image
  get duration             print the rotation interval
  get mode                 print the rotation mode
  get fallback             print whether the fallback image is active
  get changed              print when the image last changed (RFC 3339)
  update                   rescan the image directory
  help                     print this text`
