// Copyright 2025 The Rivaas Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package logging

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// LogEntry represents a parsed log entry for testing.
type LogEntry struct {
	Time    time.Time
	Level   string
	Message string
	Attrs   map[string]any
}

// NewTestLogger creates a debug-level JSON [Logger] writing to an in-memory
// buffer. Inspect the buffer with [ParseJSONLogEntries].
func NewTestLogger() (*Logger, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	return MustNew(WithJSONHandler(), WithOutput(buf), WithLevel(LevelDebug)), buf
}

// ParseJSONLogEntries parses the JSON lines in buf without consuming it.
func ParseJSONLogEntries(buf *bytes.Buffer) ([]LogEntry, error) {
	var entries []LogEntry
	scanner := bufio.NewScanner(bytes.NewReader(buf.Bytes()))
	for scanner.Scan() {
		var raw map[string]any
		if err := json.Unmarshal(scanner.Bytes(), &raw); err != nil {
			return nil, err
		}

		le := LogEntry{Attrs: make(map[string]any, len(raw))}
		le.Message, _ = raw["msg"].(string)
		le.Level, _ = raw["level"].(string)
		if ts, ok := raw["time"].(string); ok {
			le.Time, _ = time.Parse(time.RFC3339Nano, ts)
		}
		for k, v := range raw {
			if k != "time" && k != "level" && k != "msg" {
				le.Attrs[k] = v
			}
		}
		entries = append(entries, le)
	}
	return entries, scanner.Err()
}

// TestHelper provides utilities for testing with the logging package.
type TestHelper struct {
	Logger *Logger
	Buffer *bytes.Buffer
}

// NewTestHelper creates a [TestHelper] with in-memory JSON logging at
// debug level. opts are applied after the defaults.
func NewTestHelper(t *testing.T, opts ...Option) *TestHelper {
	t.Helper()

	buf := &bytes.Buffer{}
	all := append([]Option{WithJSONHandler(), WithOutput(buf), WithLevel(LevelDebug)}, opts...)
	return &TestHelper{Logger: MustNew(all...), Buffer: buf}
}

// Logs returns all parsed log entries.
func (th *TestHelper) Logs() ([]LogEntry, error) {
	return ParseJSONLogEntries(th.Buffer)
}

// LastLog returns the most recent log entry.
func (th *TestHelper) LastLog() (*LogEntry, error) {
	entries, err := th.Logs()
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, errors.New("no log entries found")
	}
	return &entries[len(entries)-1], nil
}

// ContainsLog reports whether any entry has message msg.
func (th *TestHelper) ContainsLog(msg string) bool {
	entries, _ := th.Logs()
	for _, e := range entries {
		if e.Message == msg {
			return true
		}
	}
	return false
}

// ContainsAttr reports whether any entry has attribute key equal to value.
func (th *TestHelper) ContainsAttr(key string, value any) bool {
	entries, _ := th.Logs()
	for _, e := range entries {
		if v, ok := e.Attrs[key]; ok && matchValue(v, value) {
			return true
		}
	}
	return false
}

// CountLevel returns the number of entries at level ("INFO", "WARN", ...).
func (th *TestHelper) CountLevel(level string) int {
	entries, _ := th.Logs()
	n := 0
	for _, e := range entries {
		if e.Level == level {
			n++
		}
	}
	return n
}

// Reset clears the buffer.
func (th *TestHelper) Reset() {
	th.Buffer.Reset()
}

// AssertLog fails t unless an entry with level, msg and all attrs exists.
func (th *TestHelper) AssertLog(t *testing.T, level, msg string, attrs map[string]any) {
	t.Helper()

	entries, err := th.Logs()
	require.NoError(t, err, "failed to parse logs")

	for _, e := range entries {
		if e.Level != level || e.Message != msg {
			continue
		}
		match := true
		for k, want := range attrs {
			got, ok := e.Attrs[k]
			if !ok || !matchValue(got, want) {
				match = false
				break
			}
		}
		if match {
			return
		}
	}
	require.Fail(t, "log entry not found", "level=%s msg=%s attrs=%v", level, msg, attrs)
}

// matchValue compares a decoded JSON value with an expected Go value.
// JSON numbers decode to float64.
func matchValue(got, want any) bool {
	if f, ok := got.(float64); ok {
		switch w := want.(type) {
		case int:
			return f == float64(w)
		case int64:
			return f == float64(w)
		case float64:
			return f == w
		}
	}
	return fmt.Sprint(got) == fmt.Sprint(want)
}

// HandlerSpy is a [slog.Handler] that keeps every record.
type HandlerSpy struct {
	mu      sync.Mutex
	records []slog.Record
}

func (hs *HandlerSpy) Enabled(context.Context, slog.Level) bool { return true }

func (hs *HandlerSpy) Handle(_ context.Context, r slog.Record) error {
	hs.mu.Lock()
	defer hs.mu.Unlock()
	hs.records = append(hs.records, r.Clone())
	return nil
}

func (hs *HandlerSpy) WithAttrs([]slog.Attr) slog.Handler { return hs }
func (hs *HandlerSpy) WithGroup(string) slog.Handler      { return hs }

// Records returns a copy of the captured records.
func (hs *HandlerSpy) Records() []slog.Record {
	hs.mu.Lock()
	defer hs.mu.Unlock()
	return append([]slog.Record(nil), hs.records...)
}

// RecordCount returns the number of captured records.
func (hs *HandlerSpy) RecordCount() int {
	hs.mu.Lock()
	defer hs.mu.Unlock()
	return len(hs.records)
}
