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
	"io"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"rivaas.dev/commonlog/middleware/accesslog"
	"rivaas.dev/commonlog/tracing"
)

// Option customizes an [App] beyond what [config.Settings] covers.
type Option func(*options)

type options struct {
	accessOutput io.Writer
	logOutput    io.Writer
	bannerOutput io.Writer
	noBanner     bool
	reader       sdkmetric.Reader
	tracer       *tracing.Tracer
	accessOpts   []accesslog.Option
}

// WithAccessOutput replaces stdout or stderr for the stdout and stderr sinks.
func WithAccessOutput(w io.Writer) Option {
	return func(o *options) { o.accessOutput = w }
}

// WithLogOutput replaces the output of the diagnostic logger.
func WithLogOutput(w io.Writer) Option {
	return func(o *options) { o.logOutput = w }
}

// WithBannerOutput sets where the startup banner is printed. Defaults to
// stdout.
func WithBannerOutput(w io.Writer) Option {
	return func(o *options) { o.bannerOutput = w }
}

// WithoutBanner disables the startup banner.
func WithoutBanner() Option {
	return func(o *options) { o.noBanner = true }
}

// WithMetricsReader exports metrics through reader instead of the configured
// provider. Metrics are enabled even if the settings disable them.
func WithMetricsReader(reader sdkmetric.Reader) Option {
	return func(o *options) { o.reader = reader }
}

// WithAccessLogOptions appends options to the ones derived from settings,
// for example [accesslog.WithIdentityFunc].
func WithAccessLogOptions(opts ...accesslog.Option) Option {
	return func(o *options) { o.accessOpts = append(o.accessOpts, opts...) }
}

// WithTracer traces requests with t instead of a tracer built from the
// settings. The App does not shut t down.
func WithTracer(t *tracing.Tracer) Option {
	return func(o *options) { o.tracer = t }
}
