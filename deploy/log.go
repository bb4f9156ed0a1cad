package deploy

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Level is the severity tag written into the deployment log
type Level string

const (
	LevelInfo    Level = "INFO"
	LevelWarning Level = "WARNING"
	LevelError   Level = "ERROR"
	LevelDryRun  Level = "DRY_RUN"
)

// TimestampLayout is the layout of the timestamp prefix of every log line
const TimestampLayout = "2006-01-02 15:04:05"

// ErrLogAlreadyFlushed is returned when a log is flushed a second time
var ErrLogAlreadyFlushed = errors.New("deployment log already flushed")

// Entry is a single line of the deployment log
type Entry struct {
	Time    time.Time
	Level   Level
	Message string
}

func (e Entry) String() string {
	return fmt.Sprintf("[%s] [%s] %s", e.Time.Format(TimestampLayout), e.Level, e.Message)
}

// Log accumulates the entries of one deployment run in emission order and
// writes them to disk exactly once.
type Log struct {
	entries []Entry
	now     func() time.Time
	echo    func(Entry)
	path    string
}

// NewLog creates an empty log. echo, when not nil, receives every entry as it
// is appended.
func NewLog(now func() time.Time, echo func(Entry)) *Log {
	if now == nil {
		now = time.Now
	}
	return &Log{now: now, echo: echo}
}

// Append records a message and returns the resulting entry
func (l *Log) Append(level Level, message string) Entry {
	entry := Entry{Time: l.now(), Level: level, Message: message}
	l.entries = append(l.entries, entry)
	if l.echo != nil {
		l.echo(entry)
	}
	return entry
}

// Entries returns a copy of the recorded entries
func (l *Log) Entries() []Entry {
	entries := make([]Entry, len(l.entries))
	copy(entries, l.entries)
	return entries
}

// Lines returns the formatted entries
func (l *Log) Lines() []string {
	lines := make([]string, len(l.entries))
	for i, entry := range l.entries {
		lines[i] = entry.String()
	}
	return lines
}

// Flush writes the newline-joined lines to dir/name, creating dir if needed,
// and returns the path of the written file.
func (l *Log) Flush(dir, name string) (string, error) {
	if l.path != "" {
		return l.path, ErrLogAlreadyFlushed
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		slog.Error("Service operation failed",
			"layer", "deploy",
			"operation", "create_logs_dir",
			"dir", dir,
			"error", err)
		return "", fmt.Errorf("creating logs directory: %w", err)
	}

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(strings.Join(l.Lines(), "\n")), 0o644); err != nil {
		slog.Error("Service operation failed",
			"layer", "deploy",
			"operation", "write_log_file",
			"path", path,
			"error", err)
		return "", fmt.Errorf("writing log file: %w", err)
	}

	l.path = path
	slog.Debug("Deployment log written", "path", path, "entries", len(l.entries))
	return path, nil
}

// Path returns the file the log was flushed to, empty before Flush succeeds
func (l *Log) Path() string {
	return l.path
}
