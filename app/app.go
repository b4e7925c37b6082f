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

package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"sync"
	"time"

	"rivaas.dev/commonlog/clf"
	"rivaas.dev/commonlog/config"
	"rivaas.dev/commonlog/logging"
	"rivaas.dev/commonlog/metrics"
	"rivaas.dev/commonlog/middleware"
	"rivaas.dev/commonlog/middleware/accesslog"
	"rivaas.dev/commonlog/middleware/recovery"
	"rivaas.dev/commonlog/middleware/requestid"
	"rivaas.dev/commonlog/sink"
	"rivaas.dev/commonlog/tracing"
)

// Environment values that change how the server presents itself.
const (
	EnvironmentDevelopment = "development"
	EnvironmentProduction  = "production"
)

// App owns the components built from [config.Settings].
type App struct {
	settings *config.Settings
	opts     options

	logger    *logging.Logger
	recorder  *metrics.Recorder
	tracer    *tracing.Tracer
	ownTracer bool
	access    *accesslog.Interceptor
	closeSink func(context.Context) error

	mu         sync.Mutex
	onShutdown []func(context.Context)
	shutdown   bool
}

// New builds an App. A nil settings means [config.Default].
func New(settings *config.Settings, opts ...Option) (*App, error) {
	if settings == nil {
		settings = config.Default()
	}
	if err := settings.Validate(); err != nil {
		return nil, err
	}

	a := &App{settings: settings}
	for _, opt := range opts {
		opt(&a.opts)
	}

	logger, err := newLogger(settings, a.opts.logOutput)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	a.logger = logger

	if settings.Metrics.Enabled || a.opts.reader != nil {
		recorder, err := newRecorder(settings, logger, a.opts)
		if err != nil {
			return nil, fmt.Errorf("failed to create metrics recorder: %w", err)
		}
		a.recorder = recorder
	}

	switch {
	case a.opts.tracer != nil:
		a.tracer = a.opts.tracer
	case settings.Tracing.Enabled:
		tracer, err := newTracer(settings, logger)
		if err != nil {
			return nil, errors.Join(fmt.Errorf("failed to create tracer: %w", err), a.shutdownRecorder())
		}
		a.tracer, a.ownTracer = tracer, true
	}

	out, closeSink, err := a.buildSink(settings.Sink, a.opts.accessOutput)
	if err != nil {
		return nil, errors.Join(fmt.Errorf("failed to create sink: %w", err), a.shutdownTelemetry())
	}
	a.closeSink = closeSink

	accessOpts, err := accessLogOptions(settings.AccessLog)
	if err != nil {
		return nil, errors.Join(err, closeSink(context.Background()), a.shutdownTelemetry())
	}
	accessOpts = append(accessOpts,
		accesslog.WithSink(out),
		accesslog.WithLogger(logger.Logger()),
	)
	if settings.Sink.Async {
		accessOpts = append(accessOpts, accesslog.WithAsync(sink.WithQueueSize(settings.Sink.QueueSize)))
	}
	if a.recorder != nil {
		accessOpts = append(accessOpts, accesslog.WithRecorder(a.recorder))
	}
	accessOpts = append(accessOpts, a.opts.accessOpts...)

	access, err := accesslog.Build(accessOpts...)
	if err != nil {
		return nil, errors.Join(fmt.Errorf("failed to create access log: %w", err), closeSink(context.Background()), a.shutdownTelemetry())
	}
	a.access = access

	return a, nil
}

// MustNew is like [New] but panics on error.
func MustNew(settings *config.Settings, opts ...Option) *App {
	a, err := New(settings, opts...)
	if err != nil {
		panic(fmt.Sprintf("app.MustNew: %v", err))
	}
	return a
}

func newLogger(s *config.Settings, out io.Writer) (*logging.Logger, error) {
	level, err := logging.ParseLevel(s.Logging.Level)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = os.Stderr
		if s.Logging.Output == "stdout" {
			out = os.Stdout
		}
	}
	return logging.New(
		logging.WithHandlerType(logging.HandlerType(s.Logging.Handler)),
		logging.WithLevel(level),
		logging.WithOutput(out),
		logging.WithServiceName(s.Logging.ServiceName),
		logging.WithEnvironment(s.Server.Environment),
		logging.WithSource(s.Logging.Source),
	)
}

func newRecorder(s *config.Settings, logger *logging.Logger, o options) (*metrics.Recorder, error) {
	opts := []metrics.Option{
		metrics.WithServiceName(s.Logging.ServiceName),
		metrics.WithLogger(logger.Logger()),
		metrics.WithExportInterval(s.Metrics.ExportInterval),
		metrics.WithServerDisabled(),
	}
	switch {
	case o.reader != nil:
		opts = append(opts, metrics.WithReader(o.reader))
	case s.Metrics.Provider == string(metrics.OTLPProvider):
		opts = append(opts, metrics.WithOTLP(s.Metrics.Endpoint))
	case s.Metrics.Provider == string(metrics.StdoutProvider):
		opts = append(opts, metrics.WithStdout())
	default:
		opts = append(opts, metrics.WithPrometheus("", s.Metrics.Path))
	}
	return metrics.New(opts...)
}

func newTracer(s *config.Settings, logger *logging.Logger) (*tracing.Tracer, error) {
	opts := []tracing.Option{
		tracing.WithServiceName(s.Logging.ServiceName),
		tracing.WithSampleRate(s.Tracing.SampleRate),
		tracing.WithLogger(logger.Logger()),
		tracing.WithGlobalTracerProvider(),
	}
	var otlpOpts []tracing.OTLPOption
	if s.Tracing.Insecure {
		otlpOpts = append(otlpOpts, tracing.OTLPInsecure())
	}
	switch tracing.Provider(s.Tracing.Provider) {
	case tracing.StdoutProvider:
		opts = append(opts, tracing.WithStdout())
	case tracing.OTLPProvider:
		opts = append(opts, tracing.WithOTLP(s.Tracing.Endpoint, otlpOpts...))
	case tracing.OTLPHTTPProvider:
		opts = append(opts, tracing.WithOTLPHTTP(s.Tracing.Endpoint, otlpOpts...))
	default:
		opts = append(opts, tracing.WithNoop())
	}
	return tracing.New(opts...)
}

// accessLogOptions translates settings into access log options.
func accessLogOptions(s config.AccessLogSettings) ([]accesslog.Option, error) {
	unit, err := clf.ParseDurationUnit(s.DurationUnit)
	if err != nil {
		return nil, err
	}
	zero, err := s.ZeroBytesMode()
	if err != nil {
		return nil, err
	}
	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		return nil, err
	}

	opts := []accesslog.Option{
		accesslog.WithDurationUnit(unit),
		accesslog.WithZeroBytes(zero),
		accesslog.WithLocation(loc),
		accesslog.WithProxyMaxHops(s.ProxyMaxHops),
	}
	if s.DisableDuration {
		opts = append(opts, accesslog.WithoutDuration())
	}
	if len(s.ExcludePaths) > 0 {
		opts = append(opts, accesslog.WithExcludePaths(s.ExcludePaths...))
	}
	if len(s.ExcludePrefixes) > 0 {
		opts = append(opts, accesslog.WithExcludePrefixes(s.ExcludePrefixes...))
	}
	if len(s.TrustedProxies) > 0 {
		opts = append(opts, accesslog.WithTrustedProxies(s.TrustedProxies...))
	}
	if len(s.ProxyHeaders) > 0 {
		opts = append(opts, accesslog.WithProxyHeaders(s.ProxyHeaders...))
	}
	return opts, nil
}

// Settings returns the settings the App was built from.
func (a *App) Settings() *config.Settings {
	return a.settings
}

// Logger returns the diagnostic logger.
func (a *App) Logger() *logging.Logger {
	return a.logger
}

// Metrics returns the recorder, or nil when metrics are disabled.
func (a *App) Metrics() *metrics.Recorder {
	return a.recorder
}

// Tracer returns the tracer, or nil when tracing is disabled.
func (a *App) Tracer() *tracing.Tracer {
	return a.tracer
}

// AccessLog returns the access log interceptor.
func (a *App) AccessLog() *accesslog.Interceptor {
	return a.access
}

// Handler wraps h with request ids, tracing, the access log and panic
// recovery.
func (a *App) Handler(h http.Handler) http.Handler {
	var trace middleware.Middleware
	if a.tracer != nil {
		exclude := []string{"/healthz"}
		if a.recorder != nil && a.recorder.Path() != "" {
			exclude = append(exclude, a.recorder.Path())
		}
		trace = tracing.Middleware(a.tracer, tracing.WithExcludePaths(exclude...))
	}
	return middleware.Chain(h,
		requestid.New(),
		trace,
		a.access.Wrap,
		recovery.New(recovery.WithLogger(a.logger.Logger())),
	)
}

// Mount registers the built-in endpoints on mux: GET /healthz and, with the
// Prometheus provider, the metrics endpoint.
func (a *App) Mount(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Cache-Control", "no-store")
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = io.WriteString(w, "ok")
	})

	if a.recorder == nil {
		return
	}
	if h, err := a.recorder.Handler(); err == nil {
		mux.Handle("GET "+a.recorder.Path(), h)
	}
}

// OnShutdown registers fn to run during [App.Shutdown]. Functions run in
// reverse registration order before the sink is closed.
func (a *App) OnShutdown(fn func(context.Context)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.onShutdown = append(a.onShutdown, fn)
}

// Shutdown runs shutdown hooks, drains and closes the sink, flushes metrics
// and spans, and closes the logger. Only the first call has an effect.
func (a *App) Shutdown(ctx context.Context) error {
	a.mu.Lock()
	if a.shutdown {
		a.mu.Unlock()
		return nil
	}
	a.shutdown = true
	hooks := a.onShutdown
	a.mu.Unlock()

	for i := len(hooks) - 1; i >= 0; i-- {
		hooks[i](ctx)
	}

	var errs []error
	if err := errors.Join(a.access.Close(ctx), a.closeSink(ctx)); err != nil {
		errs = append(errs, fmt.Errorf("sink close failed: %w", err))
	}
	if q := a.access.Async(); q != nil && q.Dropped()+q.Failed() > 0 {
		a.logger.Warn("access log lines dropped", "count", q.Dropped(), "failed", q.Failed())
	}
	if err := a.shutdownTelemetry(); err != nil {
		errs = append(errs, err)
	}
	if err := a.logger.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("logger shutdown failed: %w", err))
	}
	return errors.Join(errs...)
}

func (a *App) shutdownRecorder() error {
	if a.recorder == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := a.recorder.Shutdown(ctx); err != nil {
		return fmt.Errorf("metrics shutdown failed: %w", err)
	}
	return nil
}

func (a *App) shutdownTracer() error {
	if a.tracer == nil || !a.ownTracer {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := a.tracer.Shutdown(ctx); err != nil {
		return fmt.Errorf("tracing shutdown failed: %w", err)
	}
	return nil
}

func (a *App) shutdownTelemetry() error {
	return errors.Join(a.shutdownTracer(), a.shutdownRecorder())
}
