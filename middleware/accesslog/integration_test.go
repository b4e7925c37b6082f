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

// This file contains integration tests for the access log with the request
// ID, recovery and basic auth middleware behind a real HTTP server.

//go:build integration

package accesslog_test

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"rivaas.dev/commonlog/metrics"
	"rivaas.dev/commonlog/middleware"
	"rivaas.dev/commonlog/middleware/accesslog"
	"rivaas.dev/commonlog/middleware/basicauth"
	"rivaas.dev/commonlog/middleware/recovery"
	"rivaas.dev/commonlog/middleware/requestid"
	"rivaas.dev/commonlog/sink"
)

// testLogHandler captures log records for testing.
type testLogHandler struct {
	mu      sync.Mutex
	records []testLogRecord
}

type testLogRecord struct {
	level slog.Level
	msg   string
	attrs map[string]any
}

func (h *testLogHandler) Enabled(context.Context, slog.Level) bool { return true }

func (h *testLogHandler) Handle(_ context.Context, r slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	attrs := make(map[string]any)
	r.Attrs(func(a slog.Attr) bool {
		attrs[a.Key] = a.Value.Any()
		return true
	})
	h.records = append(h.records, testLogRecord{level: r.Level, msg: r.Message, attrs: attrs})
	return nil
}

func (h *testLogHandler) WithAttrs([]slog.Attr) slog.Handler { return h }
func (h *testLogHandler) WithGroup(string) slog.Handler      { return h }

func (h *testLogHandler) messages(level slog.Level) []string {
	h.mu.Lock()
	defer h.mu.Unlock()

	var out []string
	for _, r := range h.records {
		if r.level == level {
			out = append(out, r.msg)
		}
	}
	return out
}

// lockedBuffer is a bytes.Buffer safe for the async sink's worker.
type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) lines() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return strings.Split(strings.TrimSuffix(b.buf.String(), "\n"), "\n")
}

// fakeRecorder records into a manual reader without a testing.TB.
func fakeRecorder() (*metrics.Recorder, *sdkmetric.ManualReader) {
	reader := sdkmetric.NewManualReader()
	rec := metrics.MustNew(metrics.WithReader(reader), metrics.WithServerDisabled())
	DeferCleanup(func() { _ = rec.Shutdown(context.Background()) })
	return rec, reader
}

var _ = Describe("AccessLog Integration", Label("integration", "accesslog"), func() {
	var (
		out     *lockedBuffer
		async   *sink.Async
		logs    *testLogHandler
		server  *httptest.Server
		reader  *sdkmetric.ManualReader
		counter func(name string) int64
	)

	BeforeEach(func() {
		out = &lockedBuffer{}
		logs = &testLogHandler{}
		async = sink.NewAsync(sink.NewWriter(out), sink.WithQueueSize(64))
		DeferCleanup(func() { _ = async.Close(context.Background()) })

		var rec *metrics.Recorder
		rec, reader = fakeRecorder()
		counter = func(name string) int64 { return metrics.CounterValue(GinkgoT(), reader, name) }

		mux := http.NewServeMux()
		mux.HandleFunc("/hello", func(w http.ResponseWriter, r *http.Request) {
			_, _ = io.WriteString(w, "hello "+basicauth.Username(r.Context()))
		})
		mux.HandleFunc("/panic", func(http.ResponseWriter, *http.Request) {
			panic("boom")
		})

		handler := middleware.Chain(mux,
			requestid.New(),
			accesslog.New(
				accesslog.WithSink(async),
				accesslog.WithRecorder(rec),
				accesslog.WithLogger(slog.New(logs)),
			),
			recovery.New(recovery.WithLogger(slog.New(logs)), recovery.WithStackTrace(false)),
			basicauth.New(
				basicauth.WithUsers(map[string]string{"frank": "secret"}),
				basicauth.WithSkipPaths("/panic"),
			),
		)
		server = httptest.NewServer(handler)
		DeferCleanup(server.Close)
	})

	flush := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		Expect(async.Close(ctx)).To(Succeed())
	}

	get := func(path, user, pass string) *http.Response {
		req, err := http.NewRequest(http.MethodGet, server.URL+path, nil)
		Expect(err).NotTo(HaveOccurred())
		if user != "" {
			req.SetBasicAuth(user, pass)
		}
		resp, err := server.Client().Do(req)
		Expect(err).NotTo(HaveOccurred())
		_, _ = io.Copy(io.Discard, resp.Body)
		Expect(resp.Body.Close()).To(Succeed())
		return resp
	}

	Describe("with BasicAuth", func() {
		It("logs the user authenticated downstream", func() {
			resp := get("/hello", "frank", "secret")
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			Expect(resp.Header.Get(requestid.DefaultHeader)).NotTo(BeEmpty())

			flush()
			lines := out.lines()
			Expect(lines).To(HaveLen(1))
			Expect(lines[0]).To(HavePrefix("127.0.0.1 - frank ["))
			Expect(lines[0]).To(ContainSubstring(`"GET /hello HTTP/1.1" 200 11 `))
		})

		It("logs rejected credentials without a user", func() {
			resp := get("/hello", "frank", "wrong")
			Expect(resp.StatusCode).To(Equal(http.StatusUnauthorized))

			flush()
			lines := out.lines()
			Expect(lines).To(HaveLen(1))
			Expect(lines[0]).To(HavePrefix("127.0.0.1 - - ["))
			Expect(lines[0]).To(ContainSubstring(`"GET /hello HTTP/1.1" 401 `))
		})
	})

	Describe("with Recovery", func() {
		It("logs the 500 written by the recovery middleware", func() {
			resp := get("/panic", "", "")
			Expect(resp.StatusCode).To(Equal(http.StatusInternalServerError))

			flush()
			Expect(out.lines()).To(ConsistOf(ContainSubstring(`"GET /panic HTTP/1.1" 500 `)))
			Expect(logs.messages(slog.LevelError)).To(ContainElement("panic recovered"))
			Expect(counter("accesslog_requests_aborted")).To(BeZero())
		})
	})

	Describe("with concurrent clients", func() {
		It("writes exactly one line per request", func() {
			const n = 32
			var wg sync.WaitGroup
			for range n {
				wg.Add(1)
				go func() {
					defer GinkgoRecover()
					defer wg.Done()
					get("/hello", "frank", "secret")
				}()
			}
			wg.Wait()

			flush()
			Expect(out.lines()).To(HaveLen(n))
			Expect(counter("accesslog_lines_emitted")).To(Equal(int64(n)))
			Expect(counter("accesslog_lines_dropped")).To(BeZero())
		})
	})

	Describe("with a closed sink", func() {
		It("reports dropped lines with the request id", func() {
			flush()

			resp := get("/hello", "frank", "secret")
			Expect(resp.StatusCode).To(Equal(http.StatusOK))

			Eventually(func() []string { return logs.messages(slog.LevelWarn) }).
				Should(ContainElement("access log line dropped"))
			Expect(counter("accesslog_lines_dropped")).To(Equal(int64(1)))
			Expect(counter("accesslog_lines_emitted")).To(BeZero())
		})
	})
})
