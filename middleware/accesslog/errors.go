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

import "errors"

// Sentinel errors reported by the access log.
var (
	// ErrSinkPanic wraps a value recovered from a panicking [Sink].
	ErrSinkPanic = errors.New("accesslog: sink panicked")

	// ErrInvalidProxy is returned by [Build] for a malformed trusted proxy range.
	ErrInvalidProxy = errors.New("accesslog: invalid trusted proxy")
)
