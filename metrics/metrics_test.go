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

package metrics_test

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"rivaas.dev/commonlog/metrics"
	"rivaas.dev/commonlog/middleware/accesslog"
	"rivaas.dev/commonlog/sink"
)

var _ accesslog.Recorder = (*metrics.Recorder)(nil)

func TestRecorder_Counters(t *testing.T) {
	t.Parallel()

	recorder, reader := metrics.TestingRecorder(t)
	ctx := context.Background()

	recorder.RecordEmitted(ctx, 200, 15*time.Millisecond)
	recorder.RecordEmitted(ctx, 404, 2*time.Millisecond)
	recorder.RecordEmitted(ctx, 0, time.Millisecond)
	recorder.RecordDropped(ctx, accesslog.DropReasonError)
	recorder.RecordAborted(ctx)
	recorder.RecordAborted(ctx)

	assert.Equal(t, int64(3), metrics.CounterValue(t, reader, "accesslog_lines_emitted"))
	assert.Equal(t, int64(1), metrics.CounterValue(t, reader, "accesslog_lines_dropped"))
	assert.Equal(t, int64(2), metrics.CounterValue(t, reader, "accesslog_requests_aborted"))
	assert.Equal(t, uint64(3), metrics.HistogramCount(t, reader, "accesslog_request_duration"))
}

func TestRecorder_ThroughAccessLog(t *testing.T) {
	t.Parallel()

	recorder, reader := metrics.TestingRecorder(t)
	var out bytes.Buffer

	h := accesslog.Wrap(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, "ok")
	}), accesslog.WithSink(sink.NewWriter(&out)), accesslog.WithRecorder(recorder))

	for range 4 {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	}

	assert.Equal(t, int64(4), metrics.CounterValue(t, reader, "accesslog_lines_emitted"))
	assert.Equal(t, int64(0), metrics.CounterValue(t, reader, "accesslog_requests_aborted"))
	assert.Equal(t, 4, bytes.Count(out.Bytes(), []byte("\n")))
}

func TestRecorder_ShutdownStopsRecording(t *testing.T) {
	t.Parallel()

	reader := sdkmetric.NewManualReader()
	recorder, err := metrics.New(metrics.WithReader(reader))
	require.NoError(t, err)

	require.NoError(t, recorder.Shutdown(context.Background()))
	require.NoError(t, recorder.Shutdown(context.Background()), "shutdown is idempotent")

	assert.NotPanics(t, func() {
		recorder.RecordEmitted(context.Background(), 200, time.Millisecond)
		recorder.RecordDropped(context.Background(), accesslog.DropReasonQueueFull)
		recorder.RecordAborted(context.Background())
	})
}

func TestRecorder_PrometheusHandler(t *testing.T) {
	t.Parallel()

	recorder, err := metrics.New(
		metrics.WithPrometheus(":0", "/metrics"),
		metrics.WithServerDisabled(),
		metrics.WithServiceName("clf-test"),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = recorder.Shutdown(context.Background()) })

	recorder.RecordEmitted(context.Background(), 200, 15*time.Millisecond)
	recorder.RecordDropped(context.Background(), accesslog.DropReasonPanic)

	handler, err := recorder.Handler()
	require.NoError(t, err)
	assert.Empty(t, recorder.ServerAddress())

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "accesslog_lines_emitted")
	assert.Contains(t, body, "accesslog_lines_dropped")
	assert.Contains(t, body, `reason="sink_panic"`)
	assert.Contains(t, body, `service_name="clf-test"`)
	assert.Contains(t, body, "accesslog_request_duration")
}

func TestRecorder_PrometheusServer(t *testing.T) {
	t.Parallel()

	recorder, err := metrics.New(metrics.WithPrometheus("127.0.0.1:0", "/metrics"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = recorder.Shutdown(context.Background()) })

	addr := recorder.ServerAddress()
	require.NotEmpty(t, addr)
	recorder.RecordAborted(context.Background())

	resp, err := http.Get("http://" + addr + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "accesslog_requests_aborted")
}

func TestRecorder_HandlerRequiresPrometheus(t *testing.T) {
	t.Parallel()

	recorder, err := metrics.New(metrics.WithStdoutWriter(io.Discard))
	require.NoError(t, err)
	t.Cleanup(func() { _ = recorder.Shutdown(context.Background()) })

	assert.Equal(t, metrics.StdoutProvider, recorder.Provider())
	_, err = recorder.Handler()
	require.ErrorIs(t, err, metrics.ErrNotPrometheus)
}

func TestNew_Validation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		opts []metrics.Option
		want error
	}{
		{
			name: "conflicting providers",
			opts: []metrics.Option{metrics.WithStdout(), metrics.WithOTLP("http://localhost:4318")},
			want: metrics.ErrConflictingProviders,
		},
		{name: "empty service name", opts: []metrics.Option{metrics.WithServiceName(""), metrics.WithServerDisabled()}},
		{name: "non-positive interval", opts: []metrics.Option{metrics.WithExportInterval(0), metrics.WithServerDisabled()}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := metrics.New(tt.opts...)
			require.Error(t, err)
			if tt.want != nil {
				require.ErrorIs(t, err, tt.want)
			}
		})
	}

	assert.Panics(t, func() { metrics.MustNew(metrics.WithServiceName("")) })
}

func TestRecorder_EventHandler(t *testing.T) {
	t.Parallel()

	var events []metrics.Event
	recorder, err := metrics.New(
		metrics.WithStdoutWriter(io.Discard),
		metrics.WithExportInterval(100*time.Millisecond),
		metrics.WithEventHandler(func(e metrics.Event) { events = append(events, e) }),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = recorder.Shutdown(context.Background()) })

	require.NotEmpty(t, events)
	assert.Equal(t, metrics.EventWarning, events[0].Type)
}
