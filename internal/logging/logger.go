// =============================================================================
// Branch Dashboard - Logging
// =============================================================================
//
// Components log through the small Logger interface below so that the CLI,
// the server and the tests can each decide where output goes. The default
// implementation writes structured records through log/slog.
//
// =============================================================================

package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Logger is an interface for printf-style logging.
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
}

// ParseLevel converts a config level name to a slog level. Unknown names
// map to info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// New returns a Logger writing text records to w at the given level.
func New(w io.Writer, level string) Logger {
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{Level: ParseLevel(level)})
	return FromSlog(slog.New(handler))
}

// NewStderr returns a Logger writing to stderr.
func NewStderr(level string) Logger {
	return New(os.Stderr, level)
}

// FromSlog adapts an existing slog.Logger.
func FromSlog(l *slog.Logger) Logger {
	return &slogLogger{l: l}
}

// Discard returns a Logger that drops everything.
func Discard() Logger {
	return New(io.Discard, "error")
}

type slogLogger struct {
	l *slog.Logger
}

func (s *slogLogger) Debug(msg string, args ...interface{}) {
	s.l.Debug(fmt.Sprintf(msg, args...))
}

func (s *slogLogger) Info(msg string, args ...interface{}) {
	s.l.Info(fmt.Sprintf(msg, args...))
}

func (s *slogLogger) Warn(msg string, args ...interface{}) {
	s.l.Warn(fmt.Sprintf(msg, args...))
}

func (s *slogLogger) Error(msg string, args ...interface{}) {
	s.l.Error(fmt.Sprintf(msg, args...))
}
