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

import "errors"

// Sentinel errors returned by sinks.
var (
	// ErrQueueFull is returned by [Async.WriteLine] when the queue is full.
	ErrQueueFull = errors.New("sink: queue full")

	// ErrClosed is returned after a sink was closed.
	ErrClosed = errors.New("sink: closed")

	// ErrPanic wraps a value recovered from a panicking sink behind [Async].
	ErrPanic = errors.New("sink: panicked")
)
