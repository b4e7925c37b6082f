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
	"fmt"
	"os"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

func (t *Tracer) initializeProvider() error {
	if t.customTracerProvider {
		t.tracer = t.tracerProvider.Tracer(scopeName)
		t.setGlobal(t.tracerProvider)
		t.emit(EventDebug, "Using custom user-provided tracer provider")
		return nil
	}

	switch t.provider {
	case NoopProvider:
		t.install(nil)
	case StdoutProvider:
		w := t.stdoutWriter
		if w == nil {
			w = os.Stdout
		}
		exporter, err := stdouttrace.New(stdouttrace.WithWriter(w))
		if err != nil {
			return fmt.Errorf("failed to create stdout exporter: %w", err)
		}
		t.install(exporter)
		t.emit(EventInfo, "Tracing initialized", "provider", "stdout", "service", t.serviceName)
	case OTLPProvider, OTLPHTTPProvider:
		// Exporters are created by Start.
	}
	return nil
}

// install builds the SDK provider around exporter. A nil exporter records
// spans without exporting them.
func (t *Tracer) install(exporter sdktrace.SpanExporter) {
	opts := []sdktrace.TracerProviderOption{
		sdktrace.WithResource(t.resource()),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(t.sampleRate))),
	}
	if exporter != nil {
		opts = append(opts, sdktrace.WithBatcher(exporter))
	}
	tp := sdktrace.NewTracerProvider(opts...)

	t.sdkProvider = tp
	t.tracerProvider = tp
	t.tracer = tp.Tracer(scopeName)
	t.setGlobal(tp)
}

func (t *Tracer) resource() *resource.Resource {
	attrs := []attribute.KeyValue{attribute.String("service.name", t.serviceName)}
	if t.serviceVersion != "" {
		attrs = append(attrs, attribute.String("service.version", t.serviceVersion))
	}
	return resource.NewSchemaless(attrs...)
}

func (t *Tracer) newOTLPExporter(ctx context.Context) (sdktrace.SpanExporter, error) {
	if t.provider == OTLPProvider {
		var opts []otlptracegrpc.Option
		if t.otlpEndpoint != "" {
			opts = append(opts, otlptracegrpc.WithEndpoint(t.otlpEndpoint))
		}
		if t.otlpInsecure {
			opts = append(opts, otlptracegrpc.WithInsecure())
		}
		exporter, err := otlptracegrpc.New(ctx, opts...)
		if err != nil {
			return nil, fmt.Errorf("failed to create OTLP gRPC exporter: %w", err)
		}
		return exporter, nil
	}

	var opts []otlptracehttp.Option
	if t.otlpEndpoint != "" {
		endpoint, insecure := parseEndpoint(t.otlpEndpoint)
		opts = append(opts, otlptracehttp.WithEndpoint(endpoint))
		if insecure || t.otlpInsecure {
			opts = append(opts, otlptracehttp.WithInsecure())
		}
	}
	exporter, err := otlptracehttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create OTLP HTTP exporter: %w", err)
	}
	return exporter, nil
}

// parseEndpoint strips the scheme and path from an endpoint URL and reports
// whether it used plain http.
func parseEndpoint(endpoint string) (hostport string, insecure bool) {
	if rest, ok := strings.CutPrefix(endpoint, "http://"); ok {
		endpoint, insecure = rest, true
	} else if rest, ok := strings.CutPrefix(endpoint, "https://"); ok {
		endpoint = rest
	}
	if i := strings.Index(endpoint, "/"); i != -1 {
		endpoint = endpoint[:i]
	}
	return endpoint, insecure
}
