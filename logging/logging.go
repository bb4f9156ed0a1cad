// Package logging configures the diagnostic logger of canthus-deploy. It is
// separate from the deployment log, which is written by the deploy package.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"strings"
)

// levelSilent is above every slog level so nothing gets through
const levelSilent = slog.Level(1000)

// ParseLogLevel converts a string log level to slog.Level
func ParseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	case "silent":
		return levelSilent
	default:
		return slog.LevelInfo
	}
}

// ValidLogLevels returns the list of valid log levels
func ValidLogLevels() []string {
	return []string{"debug", "info", "warning", "error", "silent"}
}

// InitLogging initializes logging to stderr with the specified log level
func InitLogging(logLevel string) {
	InitLoggingTo(os.Stderr, logLevel)
}

// InitLoggingTo initializes logging to w with the specified log level
func InitLoggingTo(w io.Writer, logLevel string) {
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: ParseLogLevel(logLevel),
	})

	logger := slog.New(handler).With("service", "canthus-deploy")
	slog.SetDefault(logger)
}

// LogLevel is a flag for setting the log level
var LogLevel = &logLevelFlag{value: "silent", set: false}

type logLevelFlag struct {
	value string
	set   bool
}

func (l *logLevelFlag) Set(value string) error {
	if !slices.Contains(ValidLogLevels(), value) {
		return fmt.Errorf("invalid value '%s'. Allowed values: %s",
			value, strings.Join(ValidLogLevels(), ", "))
	}
	l.value = value
	l.set = true
	return nil
}

func (l *logLevelFlag) String() string {
	return l.value
}

func (l *logLevelFlag) Type() string {
	return fmt.Sprintf("one of [%s]", strings.Join(ValidLogLevels(), "|"))
}

// IsSet returns true if the flag was explicitly set via command line
func (l *logLevelFlag) IsSet() bool {
	return l.set
}

// Reset restores the flag default
func (l *logLevelFlag) Reset() {
	l.value = "silent"
	l.set = false
}
