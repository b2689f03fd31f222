// Package logging configures the process-wide slog logger.
//
// Long running processes (the HTTP server) log JSON with name and version
// attached to every record. The CLI logs human readable text to stderr so
// that stdout stays clean for serialized output.
//
// The level defaults to info and can be overridden with the LOG_LEVEL
// environment variable (debug, info, warn, error).
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// EnvLogLevel names the environment variable read for the log level.
const EnvLogLevel = "LOG_LEVEL"

// ParseLevel maps a level name onto a slog.Level. Unknown names map to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// LevelFromEnv returns the level from LOG_LEVEL, or info when unset.
func LevelFromEnv() slog.Level {
	return ParseLevel(os.Getenv(EnvLogLevel))
}

// NewStructuredLogger returns a JSON logger that tags every record with the
// module name and version.
func NewStructuredLogger(w io.Writer, name, version string, level slog.Level) *slog.Logger {
	h := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level:     level,
		AddSource: level == slog.LevelDebug,
	})
	return slog.New(h).With(
		slog.String("module", name),
		slog.String("version", version),
	)
}

// NewCLILogger returns a text logger without timestamps, suited for terminals.
func NewCLILogger(w io.Writer, level slog.Level) *slog.Logger {
	h := slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if len(groups) == 0 && a.Key == slog.TimeKey {
				return slog.Attr{}
			}
			return a
		},
	})
	return slog.New(h)
}

// SetDefaultStructuredLogger installs a JSON logger on stderr as the slog
// default, using the level from LOG_LEVEL.
func SetDefaultStructuredLogger(name, version string) {
	slog.SetDefault(NewStructuredLogger(os.Stderr, name, version, LevelFromEnv()))
}

// SetDefaultCLILogger installs a text logger on stderr as the slog default.
func SetDefaultCLILogger(level slog.Level) {
	slog.SetDefault(NewCLILogger(os.Stderr, level))
}
