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

package accesslog

import (
	"log/slog"
	"net/http"
	"time"

	"rivaas.dev/commonlog/clf"
	"rivaas.dev/commonlog/sink"
)

// Option defines functional options for the access log middleware.
type Option func(*config)

// config holds access log configuration.
type config struct {
	// sink receives formatted lines; nil means stdout
	sink Sink

	// async selects whether sink is wrapped in an owned [sink.Async]
	async     asyncMode
	asyncOpts []sink.AsyncOption

	// logger reports sink failures
	logger *slog.Logger

	// onError is called for every line a sink failed to accept
	onError ErrorHandler

	// recorder receives lifecycle outcomes
	recorder Recorder

	clock Clock

	// formatter, when set, replaces formatOpts
	formatter  *clf.Formatter
	formatOpts []clf.Option

	// excludePaths are exact paths to skip
	excludePaths map[string]bool

	// excludePrefixes are path prefixes to skip (e.g., "/metrics")
	excludePrefixes []string

	proxies      []string
	proxyHeaders []string
	proxyMaxHops int
	identityFunc func(*http.Request) string
	stageHook    func(*http.Request, Stage)
}

type asyncMode int

const (
	// asyncDefault queues writes only for the built-in stdout sink.
	asyncDefault asyncMode = iota
	asyncOn
	asyncOff
)

func defaultConfig() *config {
	return &config{
		recorder:     noopRecorder{},
		clock:        SystemClock{},
		excludePaths: make(map[string]bool),
	}
}

// WithSink sets the destination of access lines. Defaults to stdout behind
// an asynchronous queue.
//
// A sink set here is called on the request goroutine before the handler
// returns, so it must not block. Combine it with [WithAsync] when the
// destination can be slow.
func WithSink(s Sink) Option {
	return func(c *config) {
		if s != nil {
			c.sink = s
		}
	}
}

// WithAsync puts the sink behind a bounded queue drained by a worker owned
// by the [Interceptor]. Requests never wait for the sink; a full queue drops
// the line with reason queue_full. Lines are counted as emitted once the
// worker wrote them. Call [Interceptor.Close] to flush on shutdown.
//
//	i := accesslog.MustBuild(
//		accesslog.WithSink(fileSink),
//		accesslog.WithAsync(sink.WithQueueSize(4096)),
//	)
//	defer i.Close(ctx)
func WithAsync(opts ...sink.AsyncOption) Option {
	return func(c *config) {
		c.async = asyncOn
		c.asyncOpts = append(c.asyncOpts, opts...)
	}
}

// WithSyncWrites writes every line on the request goroutine, including for
// the default stdout sink.
func WithSyncWrites() Option {
	return func(c *config) {
		c.async = asyncOff
		c.asyncOpts = nil
	}
}

// WithLogger sets the logger used to report sink failures.
// Defaults to slog.Default().
//
//	logger := slog.New(slog.NewJSONHandler(os.Stderr, nil))
//	accesslog.New(accesslog.WithLogger(logger))
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// WithErrorHandler sets a function called with every line a sink failed to
// accept. It runs on the request goroutine, or on the queue worker for
// failures behind [WithAsync], and must not block.
func WithErrorHandler(fn ErrorHandler) Option {
	return func(c *config) {
		c.onError = fn
	}
}

// WithRecorder sets the [Recorder] that receives lifecycle outcomes.
func WithRecorder(r Recorder) Option {
	return func(c *config) {
		if r != nil {
			c.recorder = r
		}
	}
}

// WithClock sets the time source. Defaults to [SystemClock].
func WithClock(clock Clock) Option {
	return func(c *config) {
		if clock != nil {
			c.clock = clock
		}
	}
}

// WithDurationUnit sets the unit of the trailing duration field.
//
//	accesslog.New(accesslog.WithDurationUnit(clf.Microseconds))
func WithDurationUnit(u clf.DurationUnit) Option {
	return func(c *config) {
		c.formatOpts = append(c.formatOpts, clf.WithDurationUnit(u))
	}
}

// WithoutDuration drops the trailing duration field, producing strict CLF.
func WithoutDuration() Option {
	return func(c *config) {
		c.formatOpts = append(c.formatOpts, clf.WithoutDuration())
	}
}

// WithLocation sets the time zone of the timestamp. Defaults to UTC.
func WithLocation(loc *time.Location) Option {
	return func(c *config) {
		c.formatOpts = append(c.formatOpts, clf.WithLocation(loc))
	}
}

// WithZeroBytes sets how an empty response body is rendered.
func WithZeroBytes(z clf.ZeroBytes) Option {
	return func(c *config) {
		c.formatOpts = append(c.formatOpts, clf.WithZeroBytes(z))
	}
}

// WithFormatter sets a prebuilt formatter. Formatting options given
// alongside it are ignored.
func WithFormatter(f *clf.Formatter) Option {
	return func(c *config) {
		c.formatter = f
	}
}

// WithExcludePaths skips logging for exact path matches.
// Nothing is excluded by default.
//
//	accesslog.New(
//		accesslog.WithExcludePaths("/health", "/metrics"),
//	)
func WithExcludePaths(paths ...string) Option {
	return func(c *config) {
		for _, path := range paths {
			c.excludePaths[path] = true
		}
	}
}

// WithExcludePrefixes skips logging for paths with given prefixes.
//
//	accesslog.New(
//		accesslog.WithExcludePrefixes("/debug/"),
//	)
func WithExcludePrefixes(prefixes ...string) Option {
	return func(c *config) {
		c.excludePrefixes = append(c.excludePrefixes, prefixes...)
	}
}

// WithTrustedProxies sets the CIDR ranges whose forwarding headers are
// trusted. A bare IP is treated as a single-host range.
//
//	accesslog.New(accesslog.WithTrustedProxies("10.0.0.0/8", "127.0.0.1"))
func WithTrustedProxies(cidrs ...string) Option {
	return func(c *config) {
		c.proxies = append(c.proxies, cidrs...)
	}
}

// WithProxyHeaders sets which headers are consulted for a trusted peer, in
// order of preference. Defaults to X-Forwarded-For, X-Real-IP.
func WithProxyHeaders(headers ...string) Option {
	return func(c *config) {
		c.proxyHeaders = headers
	}
}

// WithProxyMaxHops sets how many trusted proxies may be skipped in
// X-Forwarded-For. Defaults to 1.
func WithProxyMaxHops(n int) Option {
	return func(c *config) {
		c.proxyMaxHops = n
	}
}

// WithIdentityFunc sets a function that resolves the CLF authuser field.
// An empty result falls back to the context based lookup.
func WithIdentityFunc(fn func(*http.Request) string) Option {
	return func(c *config) {
		c.identityFunc = fn
	}
}

// WithStageHook sets a function called at each lifecycle [Stage]. It runs on
// the request goroutine and must not block.
func WithStageHook(fn func(*http.Request, Stage)) Option {
	return func(c *config) {
		c.stageHook = fn
	}
}
