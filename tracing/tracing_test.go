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

package tracing

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"rivaas.dev/commonlog/middleware"
)

func TestNew(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		opts    []Option
		want    Provider
		wantErr string
	}{
		{name: "defaults", want: NoopProvider},
		{name: "stdout", opts: []Option{WithStdoutWriter(&bytes.Buffer{})}, want: StdoutProvider},
		{name: "otlp", opts: []Option{WithOTLP("localhost:4317", OTLPInsecure())}, want: OTLPProvider},
		{name: "otlp http", opts: []Option{WithOTLPHTTP("http://localhost:4318")}, want: OTLPHTTPProvider},
		{name: "two providers", opts: []Option{WithNoop(), WithStdout()}, wantErr: "multiple providers"},
		{name: "empty service", opts: []Option{WithServiceName("")}, wantErr: "service name cannot be empty"},
		{name: "sample rate too high", opts: []Option{WithSampleRate(1.5)}, wantErr: "sample rate must be between 0 and 1"},
		{name: "negative sample rate", opts: []Option{WithSampleRate(-0.1)}, wantErr: "sample rate must be between 0 and 1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			tr, err := New(tt.opts...)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, tr.Provider())
			assert.NoError(t, tr.Shutdown(context.Background()))
		})
	}
}

func TestMustNew_Panics(t *testing.T) {
	t.Parallel()

	assert.Panics(t, func() { MustNew(WithSampleRate(2)) })
}

func TestNoopProvider_RecordsSpanContext(t *testing.T) {
	t.Parallel()

	tr := MustNew(WithServiceName("svc"))
	t.Cleanup(func() { _ = tr.Shutdown(context.Background()) })

	ctx, span := tr.Tracer().Start(context.Background(), "op")
	defer span.End()

	assert.Len(t, TraceID(ctx), 32)
	assert.Len(t, SpanID(ctx), 16)
}

func TestStdoutProvider_Exports(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	tr := MustNew(WithServiceName("svc"), WithStdoutWriter(&buf))

	_, span := tr.Tracer().Start(context.Background(), "exported-op")
	span.End()
	require.NoError(t, tr.Shutdown(context.Background()))

	assert.Contains(t, buf.String(), "exported-op")
	assert.Contains(t, buf.String(), "svc")
}

func TestStart_OTLPHTTP(t *testing.T) {
	t.Parallel()

	tr := MustNew(WithOTLPHTTP("http://127.0.0.1:4318/v1/traces"))

	_, before := tr.Tracer().Start(context.Background(), "op")
	assert.False(t, before.SpanContext().IsValid())
	before.End()

	require.NoError(t, tr.Start(context.Background()))
	require.NoError(t, tr.Start(context.Background()))

	_, span := tr.Tracer().Start(context.Background(), "op")
	assert.True(t, span.SpanContext().IsValid())
	span.End()
}

func TestTraceID_NoSpan(t *testing.T) {
	t.Parallel()

	assert.Empty(t, TraceID(context.Background()))
	assert.Empty(t, SpanID(context.Background()))
}

func TestParseEndpoint(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in       string
		want     string
		insecure bool
	}{
		{"localhost:4318", "localhost:4318", false},
		{"http://collector:4318", "collector:4318", true},
		{"https://collector:4318/v1/traces", "collector:4318", false},
	}
	for _, tt := range tests {
		got, insecure := parseEndpoint(tt.in)
		assert.Equal(t, tt.want, got, tt.in)
		assert.Equal(t, tt.insecure, insecure, tt.in)
	}
}

func TestEventHandler(t *testing.T) {
	t.Parallel()

	var events []Event
	tr := MustNew(
		WithStdoutWriter(&bytes.Buffer{}),
		WithEventHandler(func(e Event) { events = append(events, e) }),
	)
	t.Cleanup(func() { _ = tr.Shutdown(context.Background()) })

	require.NotEmpty(t, events)
	assert.Equal(t, EventInfo, events[0].Type)
	assert.Equal(t, "Tracing initialized", events[0].Message)
}

func TestMiddleware(t *testing.T) {
	t.Parallel()

	tr, spans := TestingTracer(t)

	mux := http.NewServeMux()
	mux.HandleFunc("/ok", func(w http.ResponseWriter, r *http.Request) {
		assert.NotEmpty(t, TraceID(r.Context()))
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("/missing", http.NotFound)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	h := Middleware(tr,
		WithExcludePaths("/healthz"),
		WithHeaders("X-Tenant", "Authorization"),
	)(mux)

	serve := func(path string, mod func(*http.Request)) {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		if mod != nil {
			mod(req)
		}
		h.ServeHTTP(httptest.NewRecorder(), req)
	}

	serve("/ok", func(r *http.Request) {
		r.Header.Set("X-Tenant", "acme")
		r.Header.Set("Authorization", "Bearer secret")
	})
	serve("/missing", nil)
	serve("/healthz", nil)

	got := spans.GetSpans()
	require.Len(t, got, 2)

	ok := got[0]
	assert.Equal(t, "GET /ok", ok.Name)
	assert.Equal(t, trace.SpanKindServer, ok.SpanKind)
	assert.Equal(t, codes.Ok, ok.Status.Code)
	assert.Contains(t, ok.Attributes, attribute.Int("http.status_code", 200))
	assert.Contains(t, ok.Attributes, attribute.String("http.request.header.x-tenant", "acme"))
	for _, kv := range ok.Attributes {
		assert.NotEqual(t, attribute.Key("http.request.header.authorization"), kv.Key)
	}

	missing := got[1]
	assert.Equal(t, codes.Error, missing.Status.Code)
	assert.Contains(t, missing.Attributes, attribute.Int("http.status_code", 404))
}

func TestMiddleware_RequestID(t *testing.T) {
	t.Parallel()

	tr, spans := TestingTracer(t)
	h := Middleware(tr)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(context.WithValue(req.Context(), middleware.RequestIDKey, "req-42"))
	h.ServeHTTP(httptest.NewRecorder(), req)

	got := spans.GetSpans()
	require.Len(t, got, 1)
	assert.Contains(t, got[0].Attributes, attribute.String("http.request_id", "req-42"))
	assert.Contains(t, got[0].Attributes, attribute.Int("http.status_code", 200))
}

func TestMiddleware_ContinuesRemoteTrace(t *testing.T) {
	t.Parallel()

	tr, spans := TestingTracer(t)
	h := Middleware(tr)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))

	const parent = "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01"
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("traceparent", parent)
	h.ServeHTTP(httptest.NewRecorder(), req)

	got := spans.GetSpans()
	require.Len(t, got, 1)
	assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", got[0].SpanContext.TraceID().String())
	assert.Equal(t, "00f067aa0ba902b7", got[0].Parent.SpanID().String())
}
