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
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	promclient "github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// DefaultDurationBuckets are histogram boundaries for request duration in
// seconds. Covers sub-millisecond to 10 second responses.
var DefaultDurationBuckets = []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10}

// Provider represents the available metrics providers.
type Provider string

const (
	// PrometheusProvider uses the Prometheus exporter (default).
	PrometheusProvider Provider = "prometheus"
	// OTLPProvider uses the OTLP HTTP exporter.
	OTLPProvider Provider = "otlp"
	// StdoutProvider uses the stdout exporter (development/testing).
	StdoutProvider Provider = "stdout"
)

// Sentinel errors.
var (
	// ErrNotPrometheus is returned by [Recorder.Handler] for other providers.
	ErrNotPrometheus = errors.New("metrics: handler only available with Prometheus provider")

	// ErrConflictingProviders is returned when more than one provider option is used.
	ErrConflictingProviders = errors.New("metrics: only one of WithPrometheus, WithOTLP or WithStdout can be used")
)

// Recorder holds OpenTelemetry metrics configuration and runtime state.
// All methods are safe for concurrent use.
type Recorder struct {
	meter              metric.Meter
	meterProvider      metric.MeterProvider
	prometheusHandler  http.Handler
	prometheusRegistry *promclient.Registry
	eventHandler       EventHandler

	linesEmitted    metric.Int64Counter
	linesDropped    metric.Int64Counter
	requestsAborted metric.Int64Counter
	requestDuration metric.Float64Histogram

	durationBuckets []float64
	exportInterval  time.Duration
	reader          sdkmetric.Reader
	stdoutWriter    io.Writer

	serviceName    string
	serviceVersion string
	otlpEndpoint   string
	metricsAddr    string
	metricsPath    string

	serviceNameAttr attribute.KeyValue

	serverMu      sync.Mutex
	metricsServer *http.Server

	provider            Provider
	providerSetCount    int
	isShuttingDown      atomic.Bool
	autoStartServer     bool
	customMeterProvider bool // user manages the provider lifecycle
	registerGlobal      bool // sets otel.SetMeterProvider()
}

// New creates a new [Recorder] with the given options.
// For a version that panics on error, use [MustNew].
func New(opts ...Option) (*Recorder, error) {
	r := &Recorder{
		serviceName:     "commonlog",
		serviceVersion:  "1.0.0",
		provider:        PrometheusProvider,
		exportInterval:  30 * time.Second,
		metricsAddr:     ":9090",
		metricsPath:     "/metrics",
		autoStartServer: true,
		durationBuckets: DefaultDurationBuckets,
	}
	for _, opt := range opts {
		opt(r)
	}

	if err := r.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	r.serviceNameAttr = attribute.String("service.name", r.serviceName)

	if err := r.initializeProvider(); err != nil {
		return nil, fmt.Errorf("failed to initialize metrics: %w", err)
	}
	return r, nil
}

// MustNew is like [New] but panics on error.
func MustNew(opts ...Option) *Recorder {
	r, err := New(opts...)
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize metrics: %v", err))
	}
	return r
}

func (r *Recorder) validate() error {
	if r.providerSetCount > 1 {
		return ErrConflictingProviders
	}
	if r.serviceName == "" {
		return errors.New("service name cannot be empty")
	}
	if r.exportInterval <= 0 {
		return fmt.Errorf("export interval must be positive, got %v", r.exportInterval)
	}
	if r.exportInterval < time.Second {
		r.emit(EventWarning, "Export interval is very low, may cause high CPU usage", "interval", r.exportInterval)
	}

	switch r.provider {
	case PrometheusProvider:
		if r.metricsPath == "" {
			return errors.New("metrics path cannot be empty for Prometheus provider")
		}
		if r.autoStartServer && r.metricsAddr == "" {
			return errors.New("metrics address cannot be empty for Prometheus provider")
		}
	case OTLPProvider:
		if r.otlpEndpoint == "" {
			r.emit(EventWarning, "OTLP endpoint not specified, will use default", "default", "http://localhost:4318")
			r.otlpEndpoint = "http://localhost:4318"
		}
	case StdoutProvider:
	default:
		return fmt.Errorf("unsupported metrics provider: %s", r.provider)
	}
	return nil
}

// Handler returns the Prometheus metrics [http.Handler], for mounting on an
// application mux when the dedicated server is disabled.
func (r *Recorder) Handler() (http.Handler, error) {
	if r.prometheusHandler == nil {
		return nil, fmt.Errorf("%w, current provider: %s", ErrNotPrometheus, r.provider)
	}
	return r.prometheusHandler, nil
}

// Provider returns the configured provider.
func (r *Recorder) Provider() Provider {
	return r.provider
}

// ServerAddress returns the listening address of the dedicated metrics
// server, or "" when it is not running.
func (r *Recorder) ServerAddress() string {
	r.serverMu.Lock()
	defer r.serverMu.Unlock()
	if r.metricsServer == nil {
		return ""
	}
	return r.metricsServer.Addr
}

// Path returns the path of the Prometheus endpoint.
func (r *Recorder) Path() string {
	return r.metricsPath
}

// ForceFlush exports pending data for push-based providers.
func (r *Recorder) ForceFlush(ctx context.Context) error {
	if r.isShuttingDown.Load() {
		return nil
	}
	if mp, ok := r.meterProvider.(*sdkmetric.MeterProvider); ok {
		if err := mp.ForceFlush(ctx); err != nil {
			return fmt.Errorf("metrics force flush: %w", err)
		}
	}
	return nil
}

// Shutdown stops the metrics server and flushes and shuts down the meter
// provider unless it is user managed. It is idempotent.
func (r *Recorder) Shutdown(ctx context.Context) error {
	if !r.isShuttingDown.CompareAndSwap(false, true) {
		return nil
	}

	var errs []error
	if err := r.stopMetricsServer(ctx); err != nil {
		errs = append(errs, err)
	}

	if mp, ok := r.meterProvider.(*sdkmetric.MeterProvider); ok && !r.customMeterProvider {
		if err := mp.ForceFlush(ctx); err != nil {
			r.emit(EventWarning, "metrics flush warning", "error", err)
		}
		if err := mp.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("meter provider shutdown: %w", err))
		}
	}
	return errors.Join(errs...)
}

// startMetricsServer binds the dedicated Prometheus server synchronously so
// that address errors surface from New.
func (r *Recorder) startMetricsServer() error {
	ln, err := net.Listen("tcp", r.metricsAddr)
	if err != nil {
		return fmt.Errorf("metrics server listen %s: %w", r.metricsAddr, err)
	}

	mux := http.NewServeMux()
	mux.Handle(r.metricsPath, r.prometheusHandler)
	server := &http.Server{
		Addr:              ln.Addr().String(),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
	}

	r.serverMu.Lock()
	r.metricsServer = server
	r.serverMu.Unlock()

	r.emit(EventInfo, "Metrics server starting", "address", server.Addr+r.metricsPath)
	go func() {
		if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			r.emit(EventError, "Metrics server error", "error", err)
		}
	}()
	return nil
}

func (r *Recorder) stopMetricsServer(ctx context.Context) error {
	r.serverMu.Lock()
	server := r.metricsServer
	r.metricsServer = nil
	r.serverMu.Unlock()

	if server == nil {
		return nil
	}
	if err := server.Shutdown(ctx); err != nil {
		r.emit(EventError, "Error shutting down metrics server", "error", err)
		return fmt.Errorf("metrics server shutdown: %w", err)
	}
	return nil
}
