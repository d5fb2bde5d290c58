package logger

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"photocrawl/pkg/config"
)

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input   string
		want    zerolog.Level
		wantErr bool
	}{
		{"debug", zerolog.DebugLevel, false},
		{"info", zerolog.InfoLevel, false},
		{"warn", zerolog.WarnLevel, false},
		{"warning", zerolog.WarnLevel, false},
		{"ERROR", zerolog.ErrorLevel, false},
		{"disabled", zerolog.Disabled, false},
		{"verbose", zerolog.InfoLevel, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := parseLogLevel(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	_, err := New(&config.LoggingConfig{Level: "chatty"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid log level")
}

// readLogLines decodes the JSON lines a file-backed logger wrote
func readLogLines(t *testing.T, path string) []map[string]interface{} {
	t.Helper()

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var lines []map[string]interface{}
	for _, raw := range strings.Split(strings.TrimSpace(string(data)), "\n") {
		if raw == "" {
			continue
		}
		var entry map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(raw), &entry))
		lines = append(lines, entry)
	}
	return lines
}

func TestFileOutputWritesStructuredLines(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "crawl.log")
	log, err := New(&config.LoggingConfig{Level: "debug", File: logFile})
	require.NoError(t, err)

	log.InfoWithFields("photo saved", map[string]interface{}{
		"position": 7,
		"photo_id": "12345",
	})

	lines := readLogLines(t, logFile)
	require.Len(t, lines, 1)
	assert.Equal(t, "photo saved", lines[0]["message"])
	assert.Equal(t, "photocrawl", lines[0]["app"])
	assert.Equal(t, "12345", lines[0]["photo_id"])
	assert.Equal(t, float64(7), lines[0]["position"])
}

func TestWithFieldDoesNotMutateParent(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "crawl.log")
	log, err := New(&config.LoggingConfig{Level: "debug", File: logFile})
	require.NoError(t, err)

	child := log.WithField("photo_id", "999")
	child.Info("from child")
	log.Info("from parent")

	lines := readLogLines(t, logFile)
	require.Len(t, lines, 2)
	assert.Equal(t, "999", lines[0]["photo_id"])
	_, leaked := lines[1]["photo_id"]
	assert.False(t, leaked, "parent logger picked up the child's field")
}

func TestWithErrorNilReturnsSameLogger(t *testing.T) {
	log, err := New(&config.LoggingConfig{Level: "info"})
	require.NoError(t, err)
	assert.Same(t, log, log.WithError(nil))
}

func TestInitializeSetsGlobalLogger(t *testing.T) {
	prev := globalLogger
	t.Cleanup(func() { globalLogger = prev })

	logFile := filepath.Join(t.TempDir(), "crawl.log")
	require.NoError(t, Initialize(&config.LoggingConfig{Level: "info", File: logFile}))

	Info("global logger up")

	lines := readLogLines(t, logFile)
	require.Len(t, lines, 1)
	assert.Equal(t, "global logger up", lines[0]["message"])
}

func TestTestLoggerCapturesContext(t *testing.T) {
	log := NewTestLogger()

	log.WithField("photo_id", "111").Warn("photo is private")
	log.WithError(errors.New("boom")).WithFields(map[string]interface{}{
		"position": 3,
	}).Error("download failed")

	require.Len(t, log.Entries(), 2)
	assert.True(t, log.Logged("photo is private"))

	warns := log.EntriesAt("warn")
	require.Len(t, warns, 1)
	assert.Equal(t, "111", warns[0].Fields["photo_id"])

	errs := log.EntriesAt("error")
	require.Len(t, errs, 1)
	assert.EqualError(t, errs[0].Err, "boom")
	assert.Equal(t, 3, errs[0].Fields["position"])

	log.Reset()
	assert.Empty(t, log.Entries())
}

func TestTestLoggerDerivedSharesSink(t *testing.T) {
	log := NewTestLogger()
	derived := log.WithField("worker", 2)

	derived.Info("first")
	derived.WithField("photo_id", "5").Info("second")

	entries := log.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, 2, entries[0].Fields["worker"])
	assert.Equal(t, "5", entries[1].Fields["photo_id"])
	assert.Equal(t, 2, entries[1].Fields["worker"])
}

func TestLogDownloadLevels(t *testing.T) {
	prev := globalLogger
	capture := NewTestLogger()
	globalLogger = capture
	t.Cleanup(func() { globalLogger = prev })

	LogDownload(0, "111", true, nil)
	LogDownload(1, "222", false, errors.New("no candidate URL succeeded"))
	LogDownload(2, "333", false, nil)

	require.Len(t, capture.EntriesAt("info"), 1)
	require.Len(t, capture.EntriesAt("error"), 1)
	require.Len(t, capture.EntriesAt("warn"), 1)

	failed := capture.EntriesAt("error")[0]
	assert.Equal(t, "222", failed.Fields["photo_id"])
	assert.EqualError(t, failed.Err, "no candidate URL succeeded")
}
