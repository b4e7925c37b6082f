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

package sink

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
)

// DefaultQueueSize is the queue capacity of [NewAsync] without [WithQueueSize].
const DefaultQueueSize = 1024

// AsyncOption configures an [Async] sink.
type AsyncOption func(*asyncConfig)

type asyncConfig struct {
	queueSize int
	onError   func(ctx context.Context, line []byte, err error)
	onResult  func(ctx context.Context, line []byte, err error)
}

// WithQueueSize sets the number of lines buffered before WriteLine starts
// returning [ErrQueueFull]. Values below 1 are ignored.
func WithQueueSize(n int) AsyncOption {
	return func(c *asyncConfig) {
		if n > 0 {
			c.queueSize = n
		}
	}
}

// WithErrorHandler sets a function called by the worker when the wrapped
// sink fails or panics. Such failures happen after WriteLine returned and
// cannot be reported to the caller. ctx carries the values of the context
// the line was queued with.
func WithErrorHandler(fn func(ctx context.Context, line []byte, err error)) AsyncOption {
	return func(c *asyncConfig) {
		c.onError = fn
	}
}

// WithResultHandler sets a function called by the worker after every write
// attempt, with a nil err on success. It runs after the error handler.
func WithResultHandler(fn func(ctx context.Context, line []byte, err error)) AsyncOption {
	return func(c *asyncConfig) {
		c.onResult = fn
	}
}

// entry is a queued line with the context it was written with.
type entry struct {
	ctx  context.Context
	line []byte
}

// Async decouples request handling from a slow sink with a bounded queue
// drained by a single worker goroutine. WriteLine never blocks.
//
// The wrapped sink is called with a context that keeps the values of the
// caller's context (trace span, request id) but is never canceled. A panic
// in the wrapped sink is recovered and reported as [ErrPanic].
type Async struct {
	next     LineWriter
	onError  func(ctx context.Context, line []byte, err error)
	onResult func(ctx context.Context, line []byte, err error)

	mu     sync.RWMutex
	queue  chan entry
	closed bool
	done   chan struct{}

	dropped atomic.Uint64
	failed  atomic.Uint64
}

// NewAsync starts the worker and returns the sink. Call Close to stop it.
func NewAsync(next LineWriter, opts ...AsyncOption) *Async {
	cfg := asyncConfig{queueSize: DefaultQueueSize}
	for _, opt := range opts {
		opt(&cfg)
	}

	a := &Async{
		next:     next,
		onError:  cfg.onError,
		onResult: cfg.onResult,
		queue:    make(chan entry, cfg.queueSize),
		done:     make(chan struct{}),
	}
	go a.run()
	return a
}

// WriteLine copies line into the queue. It returns [ErrQueueFull] when the
// queue is full and [ErrClosed] after Close.
func (a *Async) WriteLine(ctx context.Context, line []byte) error {
	a.mu.RLock()
	defer a.mu.RUnlock()

	if a.closed {
		return ErrClosed
	}

	if ctx == nil {
		ctx = context.Background()
	}
	buf := make([]byte, len(line))
	copy(buf, line)
	select {
	case a.queue <- entry{ctx: context.WithoutCancel(ctx), line: buf}:
		return nil
	default:
		a.dropped.Add(1)
		return ErrQueueFull
	}
}

// Enabled forwards to the wrapped sink when it can report it.
func (a *Async) Enabled(ctx context.Context) bool {
	if e, ok := a.next.(interface{ Enabled(context.Context) bool }); ok {
		return e.Enabled(ctx)
	}
	return true
}

func (a *Async) run() {
	defer close(a.done)
	for e := range a.queue {
		err := a.write(e)
		if err != nil {
			a.failed.Add(1)
			if a.onError != nil {
				a.onError(e.ctx, e.line, err)
			}
		}
		if a.onResult != nil {
			a.onResult(e.ctx, e.line, err)
		}
	}
}

// write hands one line to the wrapped sink. A panic is returned as an
// error so that the worker keeps draining the queue.
func (a *Async) write(e entry) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("%w: %v", ErrPanic, p)
		}
	}()
	return a.next.WriteLine(e.ctx, e.line)
}

// Close stops accepting lines and waits until the queued ones were written
// or ctx is done. It is safe to call more than once.
func (a *Async) Close(ctx context.Context) error {
	a.mu.Lock()
	if !a.closed {
		a.closed = true
		close(a.queue)
	}
	a.mu.Unlock()

	select {
	case <-a.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Len returns the number of queued lines.
func (a *Async) Len() int {
	return len(a.queue)
}

// Dropped returns the number of lines rejected with [ErrQueueFull].
func (a *Async) Dropped() uint64 {
	return a.dropped.Load()
}

// Failed returns the number of lines the wrapped sink failed to write,
// panics included.
func (a *Async) Failed() uint64 {
	return a.failed.Load()
}
