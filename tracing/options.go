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
	"io"
	"log/slog"

	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// Option configures a [Tracer].
type Option func(*Tracer)

// WithServiceName sets the service.name resource attribute.
func WithServiceName(name string) Option {
	return func(t *Tracer) {
		t.serviceName = name
	}
}

// WithServiceVersion sets the service.version resource attribute.
func WithServiceVersion(version string) Option {
	return func(t *Tracer) {
		t.serviceVersion = version
	}
}

// WithSampleRate sets the fraction of new traces that are sampled, 0.0 to
// 1.0. Requests that carry a sampled parent are always traced.
func WithSampleRate(rate float64) Option {
	return func(t *Tracer) {
		t.sampleRate = rate
	}
}

// WithNoop records spans without exporting them. This is the default.
func WithNoop() Option {
	return func(t *Tracer) {
		t.provider = NoopProvider
		t.providerSetCount++
	}
}

// WithStdout prints finished spans to stdout.
func WithStdout() Option {
	return func(t *Tracer) {
		t.provider = StdoutProvider
		t.providerSetCount++
	}
}

// WithStdoutWriter prints finished spans to w. It implies [WithStdout].
func WithStdoutWriter(w io.Writer) Option {
	return func(t *Tracer) {
		t.provider = StdoutProvider
		t.stdoutWriter = w
		t.providerSetCount++
	}
}

// WithOTLP exports spans over OTLP/gRPC. An empty endpoint uses the
// exporter default (localhost:4317 or OTEL_EXPORTER_OTLP_ENDPOINT).
func WithOTLP(endpoint string, opts ...OTLPOption) Option {
	return func(t *Tracer) {
		t.provider = OTLPProvider
		t.otlpEndpoint = endpoint
		t.providerSetCount++
		for _, opt := range opts {
			opt(t)
		}
	}
}

// WithOTLPHTTP exports spans over OTLP/HTTP. An http:// endpoint disables
// TLS.
func WithOTLPHTTP(endpoint string, opts ...OTLPOption) Option {
	return func(t *Tracer) {
		t.provider = OTLPHTTPProvider
		t.otlpEndpoint = endpoint
		t.providerSetCount++
		for _, opt := range opts {
			opt(t)
		}
	}
}

// OTLPOption configures OTLP export.
type OTLPOption func(*Tracer)

// OTLPInsecure disables TLS for OTLP export.
func OTLPInsecure() OTLPOption {
	return func(t *Tracer) {
		t.otlpInsecure = true
	}
}

// WithTracerProvider uses a caller-managed provider. [Tracer.Shutdown]
// leaves it running.
func WithTracerProvider(provider trace.TracerProvider) Option {
	return func(t *Tracer) {
		t.tracerProvider = provider
		t.customTracerProvider = provider != nil
	}
}

// WithGlobalTracerProvider registers the provider and propagator with the
// otel global package.
func WithGlobalTracerProvider() Option {
	return func(t *Tracer) {
		t.registerGlobal = true
	}
}

// WithPropagator replaces the W3C trace-context and baggage propagator.
func WithPropagator(propagator propagation.TextMapPropagator) Option {
	return func(t *Tracer) {
		if propagator != nil {
			t.propagator = propagator
		}
	}
}

// WithEventHandler receives internal events.
func WithEventHandler(handler EventHandler) Option {
	return func(t *Tracer) {
		t.eventHandler = handler
	}
}

// WithLogger sends internal events to logger.
func WithLogger(logger *slog.Logger) Option {
	return func(t *Tracer) {
		t.eventHandler = DefaultEventHandler(logger)
	}
}
