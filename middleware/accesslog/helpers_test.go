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
	"sync"
	"time"
)

// captureSink keeps every line it receives.
type captureSink struct {
	mu    sync.Mutex
	lines []string
	err   error
}

func (s *captureSink) WriteLine(_ context.Context, line []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.lines = append(s.lines, string(line))
	return nil
}

func (s *captureSink) Lines() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.lines...)
}

// gatedSink is a captureSink that also implements Enabler.
type gatedSink struct {
	captureSink
	on bool
}

func (s *gatedSink) Enabled(context.Context) bool { return s.on }

// panicSink panics on every write.
type panicSink struct{}

func (panicSink) WriteLine(context.Context, []byte) error { panic("sink exploded") }

// stepClock advances by step on every reading.
type stepClock struct {
	mu   sync.Mutex
	now  time.Time
	step time.Duration
}

func newStepClock(start time.Time, step time.Duration) *stepClock {
	return &stepClock{now: start, step: step}
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now
	c.now = c.now.Add(c.step)
	return now
}

// countingRecorder counts lifecycle outcomes.
type countingRecorder struct {
	mu      sync.Mutex
	emitted []int
	elapsed []time.Duration
	dropped []string
	aborted int
}

func (r *countingRecorder) RecordEmitted(_ context.Context, status int, d time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.emitted = append(r.emitted, status)
	r.elapsed = append(r.elapsed, d)
}

func (r *countingRecorder) RecordDropped(_ context.Context, reason string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.dropped = append(r.dropped, reason)
}

func (r *countingRecorder) RecordAborted(context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.aborted++
}

func (r *countingRecorder) snapshot() (emitted []int, dropped []string, aborted int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]int(nil), r.emitted...), append([]string(nil), r.dropped...), r.aborted
}
