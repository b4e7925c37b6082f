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

package metrics

import (
	"context"
	"fmt"
	"strings"

	promclient "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
)

const scopeName = "rivaas.dev/commonlog"

// initializeProvider initializes the metrics provider based on configuration.
func (r *Recorder) initializeProvider() error {
	if r.customMeterProvider {
		if r.meterProvider == nil {
			return fmt.Errorf("custom meter provider is nil")
		}
		r.emit(EventDebug, "Using custom user-provided meter provider")
		r.meter = r.meterProvider.Meter(scopeName)
		return r.initializeMetrics()
	}

	if r.reader != nil {
		return r.installReader(r.reader, "reader")
	}

	switch r.provider {
	case PrometheusProvider:
		return r.initPrometheusProvider()
	case OTLPProvider:
		return r.initOTLPProvider()
	case StdoutProvider:
		return r.initStdoutProvider()
	default:
		return fmt.Errorf("unsupported metrics provider: %s", r.provider)
	}
}

func (r *Recorder) resource() *resource.Resource {
	return resource.NewSchemaless(
		attribute.String("service.name", r.serviceName),
		attribute.String("service.version", r.serviceVersion),
	)
}

// installReader builds an owned meter provider around reader and creates
// the instruments.
func (r *Recorder) installReader(reader sdkmetric.Reader, name string) error {
	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(reader),
		sdkmetric.WithResource(r.resource()),
	)
	r.meterProvider = mp

	if r.registerGlobal {
		r.emit(EventDebug, "Setting global OpenTelemetry meter provider", "provider", name)
		otel.SetMeterProvider(mp)
	}

	r.meter = mp.Meter(scopeName)
	return r.initializeMetrics()
}

func (r *Recorder) initPrometheusProvider() error {
	// A private registry keeps several recorders in one process apart.
	r.prometheusRegistry = promclient.NewRegistry()

	exporter, err := prometheus.New(prometheus.WithRegisterer(r.prometheusRegistry))
	if err != nil {
		return fmt.Errorf("failed to create Prometheus exporter: %w", err)
	}
	r.prometheusHandler = promhttp.HandlerFor(r.prometheusRegistry, promhttp.HandlerOpts{})

	if err := r.installReader(exporter, string(PrometheusProvider)); err != nil {
		return err
	}
	if r.autoStartServer {
		return r.startMetricsServer()
	}
	return nil
}

func (r *Recorder) initOTLPProvider() error {
	endpoint, insecure := parseEndpoint(r.otlpEndpoint)
	opts := []otlpmetrichttp.Option{otlpmetrichttp.WithEndpoint(endpoint)}
	if insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}

	exporter, err := otlpmetrichttp.New(context.Background(), opts...)
	if err != nil {
		return fmt.Errorf("failed to create OTLP exporter: %w", err)
	}
	reader := sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(r.exportInterval))
	return r.installReader(reader, string(OTLPProvider))
}

func (r *Recorder) initStdoutProvider() error {
	var opts []stdoutmetric.Option
	if r.stdoutWriter != nil {
		opts = append(opts, stdoutmetric.WithWriter(r.stdoutWriter))
	}
	exporter, err := stdoutmetric.New(opts...)
	if err != nil {
		return fmt.Errorf("failed to create stdout exporter: %w", err)
	}
	reader := sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(r.exportInterval))
	return r.installReader(reader, string(StdoutProvider))
}

// parseEndpoint strips scheme and path from an OTLP endpoint URL and
// reports whether it used plain http.
func parseEndpoint(raw string) (endpoint string, insecure bool) {
	endpoint = raw
	switch {
	case strings.HasPrefix(endpoint, "http://"):
		endpoint = strings.TrimPrefix(endpoint, "http://")
		insecure = true
	case strings.HasPrefix(endpoint, "https://"):
		endpoint = strings.TrimPrefix(endpoint, "https://")
	}
	if idx := strings.Index(endpoint, "/"); idx != -1 {
		endpoint = endpoint[:idx]
	}
	return endpoint, insecure
}
