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

import "time"

// Clock is the time source of the access log.
//
// Implementations should return values that carry a monotonic clock reading,
// as [time.Now] does, so that durations are immune to wall clock steps.
type Clock interface {
	Now() time.Time
}

// SystemClock is the [Clock] backed by [time.Now].
type SystemClock struct{}

// Now returns the current local time.
func (SystemClock) Now() time.Time { return time.Now() }

// ClockFunc adapts a function to a [Clock].
type ClockFunc func() time.Time

// Now calls f.
func (f ClockFunc) Now() time.Time { return f() }

// Timer measures one request.
type Timer struct {
	clock Clock
}

// NewTimer returns a Timer reading from c. A nil c means [SystemClock].
func NewTimer(c Clock) Timer {
	if c == nil {
		c = SystemClock{}
	}
	return Timer{clock: c}
}

// Start records the start of a request.
func (t Timer) Start() time.Time {
	return t.clock.Now()
}

// Elapsed returns the time since start, never negative.
func (t Timer) Elapsed(start time.Time) time.Duration {
	d := t.clock.Now().Sub(start)
	if d < 0 {
		return 0
	}
	return d
}
