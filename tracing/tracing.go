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
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// Provider selects the span exporter.
type Provider string

// Providers.
const (
	NoopProvider     Provider = "noop"
	StdoutProvider   Provider = "stdout"
	OTLPProvider     Provider = "otlp"
	OTLPHTTPProvider Provider = "otlp-http"
)

// Defaults.
const (
	DefaultServiceName = "commonlog"
	DefaultSampleRate  = 1.0
)

const scopeName = "rivaas.dev/commonlog/tracing"

// Tracer owns a tracer provider and creates request spans.
// It is safe for concurrent use.
type Tracer struct {
	mu             sync.RWMutex
	tracer         trace.Tracer
	tracerProvider trace.TracerProvider
	sdkProvider    *sdktrace.TracerProvider
	propagator     propagation.TextMapPropagator
	eventHandler   EventHandler

	provider       Provider
	serviceName    string
	serviceVersion string
	sampleRate     float64
	otlpEndpoint   string
	otlpInsecure   bool
	stdoutWriter   io.Writer

	started              bool
	customTracerProvider bool
	registerGlobal       bool
	providerSetCount     int

	shutdownOnce sync.Once
	shutdownErr  error
}

// New creates a Tracer. The noop and stdout providers are ready on
// return; OTLP providers need [Tracer.Start].
func New(opts ...Option) (*Tracer, error) {
	t := &Tracer{
		provider:    NoopProvider,
		serviceName: DefaultServiceName,
		sampleRate:  DefaultSampleRate,
		propagator: propagation.NewCompositeTextMapPropagator(
			propagation.TraceContext{},
			propagation.Baggage{},
		),
		tracer: noop.NewTracerProvider().Tracer(scopeName),
	}
	for _, opt := range opts {
		opt(t)
	}

	if err := t.validate(); err != nil {
		return nil, fmt.Errorf("invalid tracing configuration: %w", err)
	}
	if err := t.initializeProvider(); err != nil {
		return nil, fmt.Errorf("failed to initialize tracing: %w", err)
	}
	return t, nil
}

// MustNew is like [New] but panics on error.
func MustNew(opts ...Option) *Tracer {
	t, err := New(opts...)
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize tracing: %v", err))
	}
	return t
}

func (t *Tracer) validate() error {
	if t.providerSetCount > 1 {
		return errors.New("multiple providers configured, choose one")
	}
	if t.serviceName == "" {
		return errors.New("service name cannot be empty")
	}
	if t.sampleRate < 0 || t.sampleRate > 1 {
		return fmt.Errorf("sample rate must be between 0 and 1, got %v", t.sampleRate)
	}
	switch t.provider {
	case NoopProvider, StdoutProvider, OTLPProvider, OTLPHTTPProvider:
	default:
		return fmt.Errorf("unsupported tracing provider: %s", t.provider)
	}
	return nil
}

// Start creates the OTLP exporter. It is a no-op for other providers and
// on later calls.
func (t *Tracer) Start(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.started || t.customTracerProvider {
		return nil
	}
	switch t.provider {
	case OTLPProvider, OTLPHTTPProvider:
	default:
		return nil
	}

	exporter, err := t.newOTLPExporter(ctx)
	if err != nil {
		return err
	}
	t.install(exporter)
	t.started = true
	t.emit(EventInfo, "Tracing initialized", "provider", t.provider, "endpoint", t.otlpEndpoint, "service", t.serviceName)
	return nil
}

// Provider returns the configured provider.
func (t *Tracer) Provider() Provider {
	return t.provider
}

// ServiceName returns the service name.
func (t *Tracer) ServiceName() string {
	return t.serviceName
}

// Tracer returns the OpenTelemetry tracer spans are started with.
func (t *Tracer) Tracer() trace.Tracer {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.tracer
}

// Extract returns ctx with the trace context carried by headers.
func (t *Tracer) Extract(ctx context.Context, headers map[string][]string) context.Context {
	return t.propagator.Extract(ctx, propagation.HeaderCarrier(headers))
}

// Inject writes the trace context of ctx into headers.
func (t *Tracer) Inject(ctx context.Context, headers map[string][]string) {
	t.propagator.Inject(ctx, propagation.HeaderCarrier(headers))
}

// ForceFlush exports finished spans that are still buffered.
func (t *Tracer) ForceFlush(ctx context.Context) error {
	t.mu.RLock()
	tp := t.sdkProvider
	t.mu.RUnlock()
	if tp == nil {
		return nil
	}
	return tp.ForceFlush(ctx)
}

// Shutdown flushes and stops the tracer provider unless it is user
// managed. Only the first call has an effect.
func (t *Tracer) Shutdown(ctx context.Context) error {
	t.shutdownOnce.Do(func() {
		t.mu.RLock()
		tp := t.sdkProvider
		t.mu.RUnlock()
		if tp == nil || t.customTracerProvider {
			return
		}
		if err := tp.Shutdown(ctx); err != nil {
			t.emit(EventError, "Error shutting down tracer provider", "error", err)
			t.shutdownErr = fmt.Errorf("tracer provider shutdown: %w", err)
		}
	})
	return t.shutdownErr
}

// TraceID returns the trace id of the span in ctx, or "".
func TraceID(ctx context.Context) string {
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		return sc.TraceID().String()
	}
	return ""
}

// SpanID returns the span id of the span in ctx, or "".
func SpanID(ctx context.Context) string {
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		return sc.SpanID().String()
	}
	return ""
}

// setGlobal registers tp as the global provider when requested.
func (t *Tracer) setGlobal(tp trace.TracerProvider) {
	if t.registerGlobal {
		otel.SetTracerProvider(tp)
		otel.SetTextMapPropagator(t.propagator)
	}
}
