package deploy

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock(start time.Time) func() time.Time {
	current := start
	return func() time.Time {
		t := current
		current = current.Add(time.Second)
		return t
	}
}

func TestEntry_String(t *testing.T) {
	entry := Entry{
		Time:    time.Date(2025, 6, 1, 9, 5, 3, 0, time.UTC),
		Level:   LevelDryRun,
		Message: "DRY RUN: Command would be executed",
	}

	assert.Equal(t, "[2025-06-01 09:05:03] [DRY_RUN] DRY RUN: Command would be executed", entry.String())
}

func TestLog_AppendKeepsOrderAndEchoes(t *testing.T) {
	var echoed []Entry
	l := NewLog(fixedClock(time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)), func(e Entry) {
		echoed = append(echoed, e)
	})

	l.Append(LevelInfo, "first")
	l.Append(LevelWarning, "second")
	l.Append(LevelError, "third")

	entries := l.Entries()
	require.Len(t, entries, 3)
	assert.Equal(t, entries, echoed)
	assert.Equal(t, []string{
		"[2025-06-01 09:00:00] [INFO] first",
		"[2025-06-01 09:00:01] [WARNING] second",
		"[2025-06-01 09:00:02] [ERROR] third",
	}, l.Lines())
	assert.True(t, entries[0].Time.Before(entries[2].Time))

	// Entries returns a copy
	entries[0].Message = "changed"
	assert.Equal(t, "first", l.Entries()[0].Message)
}

func TestLog_FlushWritesOnce(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "logs")
	l := NewLog(fixedClock(time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)), nil)
	l.Append(LevelInfo, "one")
	l.Append(LevelInfo, "two")

	path, err := l.Flush(dir, "deployment-staging-20250601-090000.log")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "deployment-staging-20250601-090000.log"), path)
	assert.Equal(t, path, l.Path())

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "[2025-06-01 09:00:00] [INFO] one\n[2025-06-01 09:00:01] [INFO] two", string(content))

	// Entries appended after flushing do not reach the file
	l.Append(LevelInfo, "three")
	_, err = l.Flush(dir, "other.log")
	assert.ErrorIs(t, err, ErrLogAlreadyFlushed)

	files, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, files, 1)
}

func TestLog_FlushFailsWhenDirectoryIsAFile(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "logs")
	require.NoError(t, os.WriteFile(blocker, []byte("not a directory"), 0o644))

	l := NewLog(nil, nil)
	l.Append(LevelInfo, "message")

	_, err := l.Flush(blocker, "deployment.log")
	assert.Error(t, err)
	assert.Empty(t, l.Path())
}
