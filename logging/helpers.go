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

package logging

import (
	"fmt"
	"log/slog"
	"runtime"
	"strings"
	"time"
)

// LogError logs err under the "error" key with extra attributes.
//
//	if err := sink.Close(); err != nil {
//	    logger.LogError(err, "closing access log sink", "path", path)
//	}
func (l *Logger) LogError(err error, msg string, extra ...any) {
	if l.isShuttingDown.Load() {
		return
	}
	args := make([]any, 0, 2+len(extra))
	args = append(args, "error", err.Error())
	args = append(args, extra...)
	l.log(LevelError, msg, args...)
}

// LogDuration logs msg with duration_ms and duration since start.
func (l *Logger) LogDuration(msg string, start time.Time, extra ...any) {
	if l.isShuttingDown.Load() {
		return
	}
	d := time.Since(start)
	args := make([]any, 0, 4+len(extra))
	args = append(args, "duration_ms", d.Milliseconds(), "duration", d.String())
	args = append(args, extra...)
	l.log(LevelInfo, msg, args...)
}

// ErrorWithStack logs an error, optionally with the caller's stack.
func (l *Logger) ErrorWithStack(msg string, err error, includeStack bool, extra ...any) {
	if l.isShuttingDown.Load() {
		return
	}
	args := make([]any, 0, 4+len(extra))
	args = append(args, "error", err.Error())
	if includeStack {
		args = append(args, "stack", captureStack(3))
	}
	args = append(args, extra...)
	l.log(slog.LevelError, msg, args...)
}

// captureStack formats up to ten frames, skipping skip frames.
func captureStack(skip int) string {
	var buf strings.Builder
	pcs := make([]uintptr, 10)
	n := runtime.Callers(skip, pcs)
	frames := runtime.CallersFrames(pcs[:n])
	for {
		frame, more := frames.Next()
		fmt.Fprintf(&buf, "%s\n\t%s:%d\n", frame.Function, frame.File, frame.Line)
		if !more {
			break
		}
	}
	return buf.String()
}
