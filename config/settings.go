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

package config

import (
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"rivaas.dev/commonlog/clf"
	"rivaas.dev/commonlog/logging"
	"rivaas.dev/commonlog/tracing"
)

// Settings is the complete server configuration.
type Settings struct {
	Server    ServerSettings    `config:"server"`
	AccessLog AccessLogSettings `config:"accesslog"`
	Sink      SinkSettings      `config:"sink"`
	Logging   LoggingSettings   `config:"logging"`
	Metrics   MetricsSettings   `config:"metrics"`
	Tracing   TracingSettings   `config:"tracing"`
}

// ServerSettings configures the HTTP server of cmd/clfserver.
type ServerSettings struct {
	Addr              string        `config:"addr" default:":8080"`
	Environment       string        `config:"environment" default:"development"`
	ReadHeaderTimeout time.Duration `config:"read_header_timeout" default:"5s"`
	ShutdownTimeout   time.Duration `config:"shutdown_timeout" default:"10s"`
}

// AccessLogSettings configures the access log middleware.
type AccessLogSettings struct {
	DurationUnit    string   `config:"duration_unit" default:"ms"`
	DisableDuration bool     `config:"disable_duration"`
	ZeroBytes       string   `config:"zero_bytes" default:"zero"`
	Timezone        string   `config:"timezone" default:"UTC"`
	ExcludePaths    []string `config:"exclude_paths"`
	ExcludePrefixes []string `config:"exclude_prefixes"`
	TrustedProxies  []string `config:"trusted_proxies"`
	ProxyHeaders    []string `config:"proxy_headers"`
	ProxyMaxHops    int      `config:"proxy_max_hops" default:"1"`
}

// SinkSettings selects where access log lines go.
type SinkSettings struct {
	Type      string `config:"type" default:"stdout"` // stdout, stderr, file or slog
	Path      string `config:"path"`
	Async     bool   `config:"async" default:"true"`
	QueueSize int    `config:"queue_size" default:"1024"`
	Level     string `config:"level" default:"info"` // slog sink only
}

// LoggingSettings configures the diagnostic logger.
type LoggingSettings struct {
	Handler     string `config:"handler" default:"json"`
	Level       string `config:"level" default:"info"`
	Output      string `config:"output" default:"stderr"`
	ServiceName string `config:"service_name" default:"clfserver"`
	Source      bool   `config:"source"`
}

// MetricsSettings configures the access log metrics.
type MetricsSettings struct {
	Enabled        bool          `config:"enabled"`
	Provider       string        `config:"provider" default:"prometheus"`
	Path           string        `config:"path" default:"/metrics"`
	Endpoint       string        `config:"endpoint"`
	ExportInterval time.Duration `config:"export_interval" default:"30s"`
}

// TracingSettings configures request spans.
type TracingSettings struct {
	Enabled    bool    `config:"enabled"`
	Provider   string  `config:"provider" default:"noop"` // noop, stdout, otlp or otlp-http
	Endpoint   string  `config:"endpoint"`
	Insecure   bool    `config:"insecure"`
	SampleRate float64 `config:"sample_rate" default:"1.0"`
}

// Sink types.
const (
	SinkStdout = "stdout"
	SinkStderr = "stderr"
	SinkFile   = "file"
	SinkSlog   = "slog"
)

// Default returns Settings with every default applied.
func Default() *Settings {
	s := &Settings{}
	if err := applyDefaults(s); err != nil {
		panic(err)
	}
	return s
}

// Validate checks values that the access log, sink, logger, metrics and
// tracing constructors would reject.
func (s *Settings) Validate() error {
	var errs []error
	fail := func(field string, err error) {
		errs = append(errs, NewFieldError("settings", field, "validate", err))
	}

	if s.Server.Addr == "" {
		fail("server.addr", errors.New("must not be empty"))
	} else if _, _, err := net.SplitHostPort(s.Server.Addr); err != nil {
		fail("server.addr", err)
	}
	if s.Server.ShutdownTimeout < 0 {
		fail("server.shutdown_timeout", errors.New("must not be negative"))
	}

	if _, err := clf.ParseDurationUnit(s.AccessLog.DurationUnit); err != nil {
		fail("accesslog.duration_unit", err)
	}
	if _, err := s.AccessLog.ZeroBytesMode(); err != nil {
		fail("accesslog.zero_bytes", err)
	}
	if _, err := time.LoadLocation(s.AccessLog.Timezone); err != nil {
		fail("accesslog.timezone", err)
	}
	if s.AccessLog.ProxyMaxHops < 0 {
		fail("accesslog.proxy_max_hops", errors.New("must not be negative"))
	}

	switch s.Sink.Type {
	case SinkStdout, SinkStderr, SinkSlog:
	case SinkFile:
		if s.Sink.Path == "" {
			fail("sink.path", errors.New("required for file sink"))
		}
	default:
		fail("sink.type", fmt.Errorf("unknown sink %q", s.Sink.Type))
	}
	if s.Sink.Async && s.Sink.QueueSize <= 0 {
		fail("sink.queue_size", errors.New("must be positive"))
	}
	if _, err := logging.ParseLevel(s.Sink.Level); err != nil {
		fail("sink.level", err)
	}

	switch logging.HandlerType(s.Logging.Handler) {
	case logging.JSONHandler, logging.TextHandler, logging.ConsoleHandler:
	default:
		fail("logging.handler", fmt.Errorf("%w: %s", logging.ErrInvalidHandler, s.Logging.Handler))
	}
	if _, err := logging.ParseLevel(s.Logging.Level); err != nil {
		fail("logging.level", err)
	}
	if s.Logging.Output != "stdout" && s.Logging.Output != "stderr" {
		fail("logging.output", fmt.Errorf("must be stdout or stderr, got %q", s.Logging.Output))
	}

	if s.Metrics.Enabled {
		switch s.Metrics.Provider {
		case "prometheus":
			if !strings.HasPrefix(s.Metrics.Path, "/") {
				fail("metrics.path", errors.New("must start with /"))
			}
		case "otlp", "stdout":
		default:
			fail("metrics.provider", fmt.Errorf("unknown provider %q", s.Metrics.Provider))
		}
		if s.Metrics.ExportInterval <= 0 {
			fail("metrics.export_interval", errors.New("must be positive"))
		}
	}

	if s.Tracing.Enabled {
		switch tracing.Provider(s.Tracing.Provider) {
		case tracing.NoopProvider, tracing.StdoutProvider, tracing.OTLPProvider, tracing.OTLPHTTPProvider:
		default:
			fail("tracing.provider", fmt.Errorf("unknown provider %q", s.Tracing.Provider))
		}
		if s.Tracing.SampleRate < 0 || s.Tracing.SampleRate > 1 {
			fail("tracing.sample_rate", fmt.Errorf("must be between 0 and 1, got %v", s.Tracing.SampleRate))
		}
	}

	return errors.Join(errs...)
}

// ZeroBytesMode maps zero_bytes ("zero" or "dash") to the formatter option.
func (a AccessLogSettings) ZeroBytesMode() (clf.ZeroBytes, error) {
	switch strings.ToLower(a.ZeroBytes) {
	case "", "zero":
		return clf.ZeroBytesZero, nil
	case "dash":
		return clf.ZeroBytesDash, nil
	default:
		return clf.ZeroBytesZero, fmt.Errorf("must be dash or zero, got %q", a.ZeroBytes)
	}
}
