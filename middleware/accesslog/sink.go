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
	"errors"
	"time"

	"rivaas.dev/commonlog/sink"
)

// Sink receives formatted lines, without a trailing newline.
//
// The line slice is only valid for the duration of the call; implementations
// that keep it must copy it. WriteLine may be called concurrently.
//
// Unless [WithAsync] is set, WriteLine runs on the request goroutine before
// the response is complete and must not block.
type Sink interface {
	WriteLine(ctx context.Context, line []byte) error
}

// Enabler is an optional [Sink] capability. When Enabled reports false the
// middleware skips the whole lifecycle for the request.
type Enabler interface {
	Enabled(ctx context.Context) bool
}

// Recorder receives lifecycle outcomes, typically to export them as metrics.
// Every line is counted exactly once, as emitted or dropped. With [WithAsync]
// the outcome is recorded by the worker after the write. A queueing sink
// passed to [WithSink] directly accepts lines before writing them, so
// worker failures behind it are only visible to its own handlers.
type Recorder interface {
	// RecordEmitted is called after a line was accepted by the sink.
	RecordEmitted(ctx context.Context, status int, elapsed time.Duration)

	// RecordDropped is called when the sink rejected or lost a line.
	RecordDropped(ctx context.Context, reason string)

	// RecordAborted is called when a request ended without a line.
	RecordAborted(ctx context.Context)
}

// ErrorHandler is called with the line a sink failed to accept.
type ErrorHandler func(ctx context.Context, line []byte, err error)

// Reasons passed to [Recorder.RecordDropped].
const (
	DropReasonError     = "sink_error"
	DropReasonPanic     = "sink_panic"
	DropReasonQueueFull = "queue_full"
	DropReasonClosed    = "sink_closed"
)

// DropReason classifies a sink error.
func DropReason(err error) string {
	switch {
	case errors.Is(err, ErrSinkPanic), errors.Is(err, sink.ErrPanic):
		return DropReasonPanic
	case errors.Is(err, sink.ErrQueueFull):
		return DropReasonQueueFull
	case errors.Is(err, sink.ErrClosed):
		return DropReasonClosed
	default:
		return DropReasonError
	}
}

type noopRecorder struct{}

func (noopRecorder) RecordEmitted(context.Context, int, time.Duration) {}
func (noopRecorder) RecordDropped(context.Context, string)             {}
func (noopRecorder) RecordAborted(context.Context)                     {}
