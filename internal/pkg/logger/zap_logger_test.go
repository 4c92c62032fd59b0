package logger

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFileLogger(t *testing.T) *ZapLogger {
	t.Helper()
	return NewIsolatedLogger(filepath.Join(t.TempDir(), "app.log"))
}

func TestGetLogsReturnsNewestFirstWithStableIds(t *testing.T) {
	l := newFileLogger(t)
	l.Info("Reconcile", "signal resolved", map[string]interface{}{"reference": "DON-20260801120000-A1B2C3"})
	l.Error("Dispatcher", "notification failed", map[string]interface{}{"error": "smtp timeout"})
	require.NoError(t, l.Sync())

	entries, err := l.GetLogs("", 10, 0)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, "notification failed", entries[0].Message)
	assert.Equal(t, "Dispatcher", entries[0].Module)
	assert.Equal(t, "signal resolved", entries[1].Message)
	assert.NotEmpty(t, entries[0].Id)
	assert.NotEqual(t, entries[0].Id, entries[1].Id)

	errorsOnly, err := l.GetLogs("ERROR", 10, 0)
	require.NoError(t, err)
	require.Len(t, errorsOnly, 1)
	assert.Equal(t, "notification failed", errorsOnly[0].Message)
}

func TestGetLogByIdRoundTrip(t *testing.T) {
	l := newFileLogger(t)
	l.Warn("Scheduler", "due pledge skipped", map[string]interface{}{"pledge_id": "p-1"})
	require.NoError(t, l.Sync())

	entries, err := l.GetLogs("", 1, 0)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	entry, err := l.GetLogById(entries[0].Id)
	require.NoError(t, err)
	assert.Equal(t, "due pledge skipped", entry.Message)

	_, err = l.GetLogById("deadbeef")
	assert.True(t, errors.Is(err, ErrLogNotFound))
}

func TestGetLogsOnMissingFileIsEmpty(t *testing.T) {
	l := NewIsolatedLogger(filepath.Join(t.TempDir(), "never-written.log"))
	entries, err := l.GetLogs("", 10, 0)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
