package logger

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
)

// Entry is a single captured log line
type Entry struct {
	Level   string
	Message string
	Fields  map[string]interface{}
	Err     error
}

// TestLogger implements Logger by recording every log call instead of
// writing output. With* return derived loggers that share the same
// recording, so context accumulated anywhere in the code under test
// ends up in one place.
type TestLogger struct {
	sink   *entrySink
	fields map[string]interface{}
	err    error
}

type entrySink struct {
	mu      sync.Mutex
	entries []Entry
	nop     zerolog.Logger
}

// NewTestLogger creates a capturing logger for tests
func NewTestLogger() *TestLogger {
	return &TestLogger{sink: &entrySink{nop: zerolog.Nop()}}
}

func (l *TestLogger) record(level, msg string, extra map[string]interface{}) {
	fields := make(map[string]interface{}, len(l.fields)+len(extra))
	for k, v := range l.fields {
		fields[k] = v
	}
	for k, v := range extra {
		fields[k] = v
	}

	l.sink.mu.Lock()
	defer l.sink.mu.Unlock()
	l.sink.entries = append(l.sink.entries, Entry{
		Level:   level,
		Message: msg,
		Fields:  fields,
		Err:     l.err,
	})
}

func (l *TestLogger) Debug(msg string) { l.record("debug", msg, nil) }
func (l *TestLogger) Info(msg string)  { l.record("info", msg, nil) }
func (l *TestLogger) Warn(msg string)  { l.record("warn", msg, nil) }
func (l *TestLogger) Error(msg string) { l.record("error", msg, nil) }
func (l *TestLogger) Fatal(msg string) { l.record("fatal", msg, nil) }

func (l *TestLogger) DebugWithFields(msg string, fields map[string]interface{}) {
	l.record("debug", msg, fields)
}

func (l *TestLogger) InfoWithFields(msg string, fields map[string]interface{}) {
	l.record("info", msg, fields)
}

func (l *TestLogger) WarnWithFields(msg string, fields map[string]interface{}) {
	l.record("warn", msg, fields)
}

func (l *TestLogger) ErrorWithFields(msg string, fields map[string]interface{}) {
	l.record("error", msg, fields)
}

func (l *TestLogger) FatalWithFields(msg string, fields map[string]interface{}) {
	l.record("fatal", msg, fields)
}

func (l *TestLogger) WithField(key string, value interface{}) Logger {
	return l.derive(map[string]interface{}{key: value}, l.err)
}

func (l *TestLogger) WithFields(fields map[string]interface{}) Logger {
	return l.derive(fields, l.err)
}

func (l *TestLogger) WithError(err error) Logger {
	return l.derive(nil, err)
}

func (l *TestLogger) WithContext(ctx context.Context) Logger {
	return l
}

func (l *TestLogger) GetZerolog() *zerolog.Logger {
	return &l.sink.nop
}

// derive copies the logger with extra context attached; the sink stays
// shared
func (l *TestLogger) derive(extra map[string]interface{}, err error) *TestLogger {
	fields := make(map[string]interface{}, len(l.fields)+len(extra))
	for k, v := range l.fields {
		fields[k] = v
	}
	for k, v := range extra {
		fields[k] = v
	}
	return &TestLogger{sink: l.sink, fields: fields, err: err}
}

// Entries returns a copy of everything recorded so far
func (l *TestLogger) Entries() []Entry {
	l.sink.mu.Lock()
	defer l.sink.mu.Unlock()
	out := make([]Entry, len(l.sink.entries))
	copy(out, l.sink.entries)
	return out
}

// EntriesAt returns the recorded entries of one level
func (l *TestLogger) EntriesAt(level string) []Entry {
	var out []Entry
	for _, e := range l.Entries() {
		if e.Level == level {
			out = append(out, e)
		}
	}
	return out
}

// Logged reports whether a message with the exact text was recorded
func (l *TestLogger) Logged(msg string) bool {
	for _, e := range l.Entries() {
		if e.Message == msg {
			return true
		}
	}
	return false
}

// Reset drops all recorded entries
func (l *TestLogger) Reset() {
	l.sink.mu.Lock()
	defer l.sink.mu.Unlock()
	l.sink.entries = nil
}
