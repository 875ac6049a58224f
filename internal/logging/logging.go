package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Key constants for structured log fields.
const (
	KeyComponent = "component"
	KeySession   = "session"
	KeyPath      = "path"
	KeyBackend   = "backend"
	KeyPid       = "pid"

	// KeyChildPid names a process started by this one; KeyPid is always
	// the logging process itself.
	KeyChildPid = "child_pid"
)

var pid = os.Getpid()

// New builds the root logger.
// format: "json" or "text" (default "text")
// level: "trace", "debug", "info", "warn", "error" (default "info")
// w: writer to log to (nil = os.Stderr)
func New(format, level string, w io.Writer) zerolog.Logger {
	if w == nil {
		w = os.Stderr
	}

	if !strings.EqualFold(format, "json") {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: "15:04:05.000"}
	}

	zerolog.TimeFieldFormat = time.RFC3339Nano
	return zerolog.New(w).
		Level(ParseLevel(level)).
		With().
		Timestamp().
		Int(KeyPid, pid).
		Logger()
}

// Component returns a child logger tagged with the component name.
func Component(l zerolog.Logger, name string) zerolog.Logger {
	return l.With().Str(KeyComponent, name).Logger()
}

// Discard is a logger that writes nothing, for tests and defaults.
func Discard() zerolog.Logger {
	return zerolog.Nop()
}

// ParseLevel maps a level name to a zerolog level, defaulting to info.
func ParseLevel(level string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}
