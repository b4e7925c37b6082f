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

package recovery

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"rivaas.dev/commonlog/middleware"
)

// defaultHandler sends a plain 500 Internal Server Error response.
func defaultHandler(w http.ResponseWriter, _ *http.Request, _ any) {
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

// New returns a middleware that recovers from panics in request handlers.
// It reports the panic with an optional stack trace and lets the configured
// handler write the response.
//
// Basic usage:
//
//	h := middleware.Chain(mux, recovery.New())
//
// With custom configuration:
//
//	recovery.New(
//	    recovery.WithStackSize(8 << 10),
//	    recovery.WithLogger(logger),
//	)
func New(opts ...Option) middleware.Middleware {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				err := recover()
				if err == nil {
					return
				}
				if e, ok := err.(error); ok && errors.Is(e, http.ErrAbortHandler) {
					panic(err)
				}

				markSpan(r, err)

				var stack []byte
				if cfg.stackTrace {
					stack = debug.Stack()
					if cfg.stackSize > 0 && len(stack) > cfg.stackSize {
						stack = stack[:cfg.stackSize]
					}
				}

				cfg.report(r, err, stack)
				cfg.handler(w, r, err)
			}()

			next.ServeHTTP(w, r)
		})
	}
}

func (cfg *config) report(r *http.Request, err any, stack []byte) {
	if cfg.logFunc != nil {
		cfg.logFunc(r, err, stack)
		return
	}

	logger := cfg.logger
	if logger == nil {
		logger = slog.Default()
	}
	attrs := []slog.Attr{
		slog.String("error", fmt.Sprint(err)),
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
	}
	if id, ok := r.Context().Value(middleware.RequestIDKey).(string); ok && id != "" {
		attrs = append(attrs, slog.String("request_id", id))
	}
	if len(stack) > 0 {
		attrs = append(attrs, slog.String("stack", string(stack)))
	}
	logger.LogAttrs(r.Context(), slog.LevelError, "panic recovered", attrs...)
}

// markSpan flags the active span, if any, with an escaped exception.
func markSpan(r *http.Request, err any) {
	span := trace.SpanFromContext(r.Context())
	if !span.SpanContext().IsValid() {
		return
	}
	span.SetStatus(codes.Error, "panic recovered")
	span.SetAttributes(
		attribute.Bool("exception.escaped", true),
		attribute.String("exception.type", fmt.Sprintf("%T", err)),
		attribute.String("exception.message", fmt.Sprint(err)),
	)
	if e, ok := err.(error); ok {
		span.RecordError(e)
	}
}
