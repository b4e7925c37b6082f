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
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"

	"rivaas.dev/commonlog/middleware"
)

func TestNew_Validation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		opts    []Option
		wantErr error
	}{
		{name: "defaults"},
		{name: "text", opts: []Option{WithTextHandler()}},
		{name: "console", opts: []Option{WithConsoleHandler()}},
		{name: "unknown handler", opts: []Option{WithHandlerType("xml")}, wantErr: ErrInvalidHandler},
		{name: "nil custom logger", opts: []Option{WithCustomLogger(nil)}, wantErr: ErrNilLogger},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			opts := append([]Option{WithOutput(&bytes.Buffer{})}, tt.opts...)
			_, err := New(opts...)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
		})
	}

	assert.Panics(t, func() { MustNew(WithOutput(nil)) })
}

func TestLogger_JSON(t *testing.T) {
	t.Parallel()

	th := NewTestHelper(t, WithServiceName("clfserver"), WithEnvironment("test"))
	th.Logger.Info("server started", "addr", ":8080", "workers", 4)

	th.AssertLog(t, "INFO", "server started", map[string]any{
		"addr":    ":8080",
		"workers": 4,
		"service": "clfserver",
		"env":     "test",
	})
	assert.Equal(t, 1, th.CountLevel("INFO"))
}

func TestLogger_Redaction(t *testing.T) {
	t.Parallel()

	th := NewTestHelper(t, WithRedactKeys("X-Api-Key"))
	th.Logger.Warn("request rejected",
		"Authorization", "Basic ZnJhbms6c2VjcmV0",
		"password", "hunter2",
		"x-api-key", "k",
		"user", "frank",
	)

	entry, err := th.LastLog()
	require.NoError(t, err)
	assert.Equal(t, redacted, entry.Attrs["Authorization"])
	assert.Equal(t, redacted, entry.Attrs["password"])
	assert.Equal(t, redacted, entry.Attrs["x-api-key"])
	assert.Equal(t, "frank", entry.Attrs["user"])
	assert.NotContains(t, th.Buffer.String(), "hunter2")
}

func TestLogger_ReplaceAttrAfterRedaction(t *testing.T) {
	t.Parallel()

	th := NewTestHelper(t, WithReplaceAttr(func(_ []string, a slog.Attr) slog.Attr {
		if a.Key == "drop" {
			return slog.Attr{}
		}
		return a
	}))
	th.Logger.Info("msg", "drop", 1, "keep", 2)

	entry, err := th.LastLog()
	require.NoError(t, err)
	assert.NotContains(t, entry.Attrs, "drop")
	assert.Contains(t, entry.Attrs, "keep")
}

func TestLogger_SetLevel(t *testing.T) {
	t.Parallel()

	th := NewTestHelper(t, WithLevel(LevelWarn))
	th.Logger.Info("hidden")
	assert.False(t, th.ContainsLog("hidden"))

	require.NoError(t, th.Logger.SetLevel(LevelDebug))
	assert.Equal(t, LevelDebug, th.Logger.Level())
	th.Logger.Debug("visible")
	assert.True(t, th.ContainsLog("visible"))

	custom := MustNew(WithCustomLogger(slog.New(slog.DiscardHandler)))
	require.ErrorIs(t, custom.SetLevel(LevelDebug), ErrCannotChangeLevel)
}

func TestParseLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want Level
		err  bool
	}{
		{"", LevelInfo, false},
		{"DEBUG", LevelDebug, false},
		{" warning ", LevelWarn, false},
		{"warn", LevelWarn, false},
		{"error", LevelError, false},
		{"trace", LevelInfo, true},
	}

	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if tt.err {
			require.ErrorIs(t, err, ErrInvalidLevel)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestLogger_Helpers(t *testing.T) {
	t.Parallel()

	th := NewTestHelper(t)
	th.Logger.LogError(errors.New("disk full"), "sink write failed", "path", "/var/log/access.log")
	th.Logger.LogDuration("drained", time.Now().Add(-time.Second), "lines", 3)
	th.Logger.ErrorWithStack("unexpected", errors.New("boom"), true)

	th.AssertLog(t, "ERROR", "sink write failed", map[string]any{"error": "disk full", "path": "/var/log/access.log"})
	assert.True(t, th.ContainsAttr("lines", 3))

	entries, err := th.Logs()
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.GreaterOrEqual(t, entries[1].Attrs["duration_ms"], float64(1000))
	assert.Contains(t, entries[2].Attrs["stack"], "TestLogger_Helpers")
}

func TestLogger_Shutdown(t *testing.T) {
	t.Parallel()

	th := NewTestHelper(t)
	require.NoError(t, th.Logger.Shutdown(context.Background()))
	require.NoError(t, th.Logger.Shutdown(context.Background()))

	th.Logger.Info("after shutdown")
	th.Logger.LogError(errors.New("x"), "after shutdown")
	assert.False(t, th.Logger.IsEnabled())
	assert.Empty(t, th.Buffer.String())
}

func TestContextCorrelation(t *testing.T) {
	t.Parallel()

	traceID := trace.TraceID{0x4b, 0xf9, 0x2f, 0x35, 0x77, 0xb3, 0x4d, 0xa6, 0xa3, 0xce, 0x92, 0x9d, 0x0e, 0x0e, 0x47, 0x36}
	spanID := trace.SpanID{0x00, 0xf0, 0x67, 0xaa, 0x0b, 0xa9, 0x02, 0xb7}
	sc := trace.NewSpanContext(trace.SpanContextConfig{TraceID: traceID, SpanID: spanID, TraceFlags: trace.FlagsSampled})

	ctx := trace.ContextWithSpanContext(context.Background(), sc)
	ctx = context.WithValue(ctx, middleware.RequestIDKey, "req-1")

	th := NewTestHelper(t)
	cl := NewContextLogger(ctx, th.Logger)
	cl.Warn("access log line dropped", "reason", "sink_error")

	assert.Equal(t, traceID.String(), cl.TraceID())
	assert.Equal(t, spanID.String(), cl.SpanID())
	assert.Equal(t, "req-1", cl.RequestID())
	th.AssertLog(t, "WARN", "access log line dropped", map[string]any{
		"trace_id":   traceID.String(),
		"span_id":    spanID.String(),
		"request_id": "req-1",
	})

	t.Run("explicit request id wins", func(t *testing.T) {
		t.Parallel()
		th := NewTestHelper(t)
		th.Logger.Logger().InfoContext(ctx, "msg", "request_id", "explicit")
		entry, err := th.LastLog()
		require.NoError(t, err)
		assert.Equal(t, "explicit", entry.Attrs["request_id"])
		assert.Equal(t, 1, strings.Count(th.Buffer.String(), "request_id"))
	})

	t.Run("plain context adds nothing", func(t *testing.T) {
		t.Parallel()
		th := NewTestHelper(t)
		NewContextLogger(context.Background(), th.Logger).Info("msg")
		entry, err := th.LastLog()
		require.NoError(t, err)
		assert.NotContains(t, entry.Attrs, "trace_id")
		assert.NotContains(t, entry.Attrs, "request_id")
	})
}

func TestHandlerSpy(t *testing.T) {
	t.Parallel()

	spy := &HandlerSpy{}
	logger := MustNew(WithCustomLogger(slog.New(spy)))
	logger.Info("one")
	logger.Debug("two")

	assert.Equal(t, 2, spy.RecordCount())
	assert.Equal(t, "one", spy.Records()[0].Message)
}
