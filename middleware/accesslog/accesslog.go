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
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"rivaas.dev/commonlog/clf"
	"rivaas.dev/commonlog/middleware"
	"rivaas.dev/commonlog/sink"
)

// Interceptor is a compiled access log configuration. It is immutable and
// safe for concurrent use; one Interceptor may wrap any number of handlers.
//
// When writes are queued (the default for the stdout sink, or [WithAsync])
// the Interceptor owns a worker goroutine. Close flushes and stops it.
type Interceptor struct {
	cfg       *config
	sink      Sink
	async     *sink.Async
	formatter *clf.Formatter
	extractor extractor
	timer     Timer
}

// Build compiles opts into an [Interceptor]. It fails on invalid trusted
// proxy ranges.
func Build(opts ...Option) (*Interceptor, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	realIP, err := compileProxies(cfg.proxies, cfg.proxyHeaders, cfg.proxyMaxHops)
	if err != nil {
		return nil, err
	}

	formatter := cfg.formatter
	if formatter == nil {
		formatter = clf.NewFormatter(cfg.formatOpts...)
	}

	i := &Interceptor{
		cfg:       cfg,
		sink:      cfg.sink,
		formatter: formatter,
		extractor: extractor{realIP: realIP, identityFunc: cfg.identityFunc},
		timer:     NewTimer(cfg.clock),
	}
	if i.sink == nil {
		i.sink = sink.NewWriter(os.Stdout)
	}
	if cfg.async == asyncOn || (cfg.async == asyncDefault && cfg.sink == nil) {
		opts := append([]sink.AsyncOption{}, cfg.asyncOpts...)
		opts = append(opts, sink.WithResultHandler(i.delivered))
		i.async = sink.NewAsync(i.sink, opts...)
		i.sink = i.async
	}
	return i, nil
}

// MustBuild is like [Build] but panics on error.
func MustBuild(opts ...Option) *Interceptor {
	i, err := Build(opts...)
	if err != nil {
		panic(fmt.Sprintf("accesslog: %v", err))
	}
	return i
}

// New creates an access log middleware. It panics on invalid options; use
// [Build] to handle the error instead.
//
// Example:
//
//	h := middleware.Chain(mux,
//		accesslog.New(
//			accesslog.WithSink(sink.NewWriter(os.Stdout)),
//			accesslog.WithExcludePaths("/health"),
//		),
//		recovery.New(),
//	)
func New(opts ...Option) middleware.Middleware {
	return MustBuild(opts...).Wrap
}

// Wrap returns next wrapped by a new access log middleware.
func Wrap(next http.Handler, opts ...Option) http.Handler {
	return MustBuild(opts...).Wrap(next)
}

// Wrap returns an http.Handler that logs every exchange served by next.
func (i *Interceptor) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		i.serve(next, w, r)
	})
}

// Formatter returns the formatter used to render lines.
func (i *Interceptor) Formatter() *clf.Formatter {
	return i.formatter
}

// Async returns the queue in front of the sink, or nil when lines are
// written on the request goroutine.
func (i *Interceptor) Async() *sink.Async {
	return i.async
}

// Close waits until queued lines were written or ctx is done. Lines logged
// after Close are dropped with reason sink_closed. It is a no-op without a
// queue.
func (i *Interceptor) Close(ctx context.Context) error {
	if i.async == nil {
		return nil
	}
	return i.async.Close(ctx)
}

func (i *Interceptor) serve(next http.Handler, w http.ResponseWriter, r *http.Request) {
	i.stage(r, StageEntered)

	if i.skip(r) {
		i.stage(r, StageSkipped)
		next.ServeHTTP(w, r)
		return
	}

	start := i.timer.Start()
	req := i.extractor.capture(r, start)
	i.stage(r, StageRequestCaptured)

	ctx, slot := middleware.WithIdentitySlot(r.Context())
	r = r.WithContext(ctx)

	obs := newObserver(r)
	rw := obs.wrap(w)

	// The post-hook runs on every exit path. A panic or runtime.Goexit in
	// next leaves completed false and produces no line.
	completed := false
	defer func() {
		if !completed {
			i.stage(r, StageAborted)
			i.cfg.recorder.RecordAborted(r.Context())
		}
	}()

	i.stage(r, StageAwaitingResponse)
	next.ServeHTTP(rw, r)

	elapsed := i.timer.Elapsed(start)
	if r.Context().Err() != nil && !obs.responded() {
		// Client went away before anything was sent.
		return
	}
	completed = true

	status, bytes := obs.snapshot()
	resp := clf.ResponseSnapshot{Status: status, Bytes: bytes, End: start.Add(elapsed)}
	if req.User == "" {
		req.User = slot.User()
	}
	i.stage(r, StageResponseCaptured)

	i.emit(r, req, resp)
}

// skip reports whether r bypasses the access log.
func (i *Interceptor) skip(r *http.Request) bool {
	if e, ok := i.sink.(Enabler); ok && !e.Enabled(r.Context()) {
		return true
	}

	path := r.URL.Path
	if i.cfg.excludePaths[path] {
		return true
	}
	for _, prefix := range i.cfg.excludePrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// maxPooledLine keeps buffers grown by huge request URIs out of the pool.
const maxPooledLine = 64 << 10

var bufPool = sync.Pool{
	New: func() any {
		b := make([]byte, 0, 256)
		return &b
	},
}

func (i *Interceptor) emit(r *http.Request, req clf.RequestSnapshot, resp clf.ResponseSnapshot) {
	ctx := r.Context()

	bp := bufPool.Get().(*[]byte)
	line := i.formatter.AppendLine((*bp)[:0], req, resp)
	defer func() {
		if cap(line) <= maxPooledLine {
			*bp = line[:0]
			bufPool.Put(bp)
		}
	}()
	i.stage(r, StageFormatted)

	em := emission{status: resp.Status, elapsed: clf.Elapsed(req, resp)}
	if i.async != nil {
		ctx = context.WithValue(ctx, emissionKey{}, em)
	}
	if err := i.write(ctx, line); err != nil {
		i.stage(r, StageEmittedDropped)
		i.cfg.recorder.RecordDropped(ctx, DropReason(err))
		i.report(ctx, line, err)
		return
	}

	// A queued line is recorded by delivered once the worker wrote it.
	i.stage(r, StageEmitted)
	if i.async == nil {
		i.cfg.recorder.RecordEmitted(ctx, em.status, em.elapsed)
	}
}

// emission carries the outcome fields of a queued line to the worker.
type emission struct {
	status  int
	elapsed time.Duration
}

type emissionKey struct{}

// delivered runs on the queue worker after each write attempt.
func (i *Interceptor) delivered(ctx context.Context, line []byte, err error) {
	if err != nil {
		i.cfg.recorder.RecordDropped(ctx, DropReason(err))
		i.report(ctx, line, err)
		return
	}
	em, _ := ctx.Value(emissionKey{}).(emission)
	i.cfg.recorder.RecordEmitted(ctx, em.status, em.elapsed)
}

// write hands line to the sink, turning a sink panic into an error.
func (i *Interceptor) write(ctx context.Context, line []byte) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("%w: %v", ErrSinkPanic, p)
		}
	}()
	return i.sink.WriteLine(ctx, line)
}

// report sends a sink failure to the secondary channels.
func (i *Interceptor) report(ctx context.Context, line []byte, err error) {
	if i.cfg.onError != nil {
		i.cfg.onError(ctx, line, err)
	}

	logger := i.cfg.logger
	if logger == nil {
		logger = slog.Default()
	}
	attrs := []slog.Attr{
		slog.String("error", err.Error()),
		slog.String("reason", DropReason(err)),
		slog.String("line", string(line)),
	}
	if id, ok := ctx.Value(middleware.RequestIDKey).(string); ok && id != "" {
		attrs = append(attrs, slog.String("request_id", id))
	}
	logger.LogAttrs(ctx, slog.LevelWarn, "access log line dropped", attrs...)
}

func (i *Interceptor) stage(r *http.Request, s Stage) {
	if i.cfg.stageHook != nil {
		i.cfg.stageHook(r, s)
	}
}
