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
	"net/http"
	"strconv"
	"strings"

	"github.com/felixge/httpsnoop"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"rivaas.dev/commonlog/middleware"
)

// MiddlewareOption configures [Middleware].
type MiddlewareOption func(*middlewareConfig)

type middlewareConfig struct {
	excludePaths    map[string]bool
	excludePrefixes []string
	headers         []string
}

// sensitiveHeaders are never recorded.
var sensitiveHeaders = map[string]bool{
	"authorization":       true,
	"cookie":              true,
	"set-cookie":          true,
	"x-api-key":           true,
	"x-auth-token":        true,
	"proxy-authorization": true,
}

// WithExcludePaths skips tracing for exact path matches.
func WithExcludePaths(paths ...string) MiddlewareOption {
	return func(c *middlewareConfig) {
		for _, p := range paths {
			c.excludePaths[p] = true
		}
	}
}

// WithExcludePrefixes skips tracing for paths with the given prefixes.
func WithExcludePrefixes(prefixes ...string) MiddlewareOption {
	return func(c *middlewareConfig) {
		c.excludePrefixes = append(c.excludePrefixes, prefixes...)
	}
}

// WithHeaders records the named request headers as http.request.header.*
// attributes. Credentials are never recorded.
func WithHeaders(headers ...string) MiddlewareOption {
	return func(c *middlewareConfig) {
		for _, h := range headers {
			if sensitiveHeaders[strings.ToLower(h)] {
				continue
			}
			c.headers = append(c.headers, h)
		}
	}
}

func (c *middlewareConfig) excluded(path string) bool {
	if c.excludePaths[path] {
		return true
	}
	for _, prefix := range c.excludePrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// Middleware starts a server span per request, continuing a trace carried
// in the request headers. Place it after requestid so the span carries the
// request id.
func Middleware(t *Tracer, opts ...MiddlewareOption) middleware.Middleware {
	cfg := &middlewareConfig{excludePaths: make(map[string]bool)}
	for _, opt := range opts {
		opt(cfg)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if cfg.excluded(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			ctx := t.Extract(r.Context(), r.Header)
			ctx, span := t.Tracer().Start(ctx, r.Method+" "+r.URL.Path,
				trace.WithSpanKind(trace.SpanKindServer),
				trace.WithAttributes(t.requestAttributes(r, cfg)...),
			)
			defer span.End()

			status := 0
			sw := httpsnoop.Wrap(w, httpsnoop.Hooks{
				WriteHeader: func(next httpsnoop.WriteHeaderFunc) httpsnoop.WriteHeaderFunc {
					return func(code int) {
						if status == 0 {
							status = code
						}
						next(code)
					}
				},
				Write: func(next httpsnoop.WriteFunc) httpsnoop.WriteFunc {
					return func(b []byte) (int, error) {
						if status == 0 {
							status = http.StatusOK
						}
						return next(b)
					}
				},
			})

			next.ServeHTTP(sw, r.WithContext(ctx))

			if status == 0 {
				status = http.StatusOK
			}
			finishSpan(span, status)
		})
	}
}

func (t *Tracer) requestAttributes(r *http.Request, cfg *middlewareConfig) []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		attribute.String("http.method", r.Method),
		attribute.String("http.url", r.URL.String()),
		attribute.String("http.host", r.Host),
		attribute.String("http.scheme", scheme(r)),
		attribute.String("http.flavor", strconv.Itoa(r.ProtoMajor)+"."+strconv.Itoa(r.ProtoMinor)),
		attribute.String("service.name", t.serviceName),
	}
	if t.serviceVersion != "" {
		attrs = append(attrs, attribute.String("service.version", t.serviceVersion))
	}
	if ua := r.UserAgent(); ua != "" {
		attrs = append(attrs, attribute.String("http.user_agent", ua))
	}
	if id, ok := r.Context().Value(middleware.RequestIDKey).(string); ok && id != "" {
		attrs = append(attrs, attribute.String("http.request_id", id))
	}
	for _, h := range cfg.headers {
		if v := r.Header.Get(h); v != "" {
			attrs = append(attrs, attribute.String("http.request.header."+strings.ToLower(h), v))
		}
	}
	return attrs
}

func finishSpan(span trace.Span, status int) {
	span.SetAttributes(attribute.Int("http.status_code", status))
	if status >= http.StatusBadRequest {
		span.SetStatus(codes.Error, http.StatusText(status))
		return
	}
	span.SetStatus(codes.Ok, "")
}

func scheme(r *http.Request) string {
	if r.TLS != nil {
		return "https"
	}
	return "http"
}
