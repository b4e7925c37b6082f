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

package clf

import "time"

// Placeholder is rendered for any field whose value is unknown.
const Placeholder = "-"

// UnknownBytes marks a response size that could not be determined, for
// example because the connection was hijacked.
const UnknownBytes int64 = -1

// RequestSnapshot is the request side of an exchange, captured once when the
// request enters the middleware. Empty string fields render as [Placeholder].
type RequestSnapshot struct {
	// ClientAddr is the client host without port.
	ClientAddr string

	// Ident is the RFC 1413 identity. Servers almost never know it.
	Ident string

	// User is the authenticated user name, if upstream middleware set one.
	User string

	Method string

	// URI is the request target: path plus optional query.
	URI string

	// Proto is the protocol version without the "HTTP/" prefix, e.g. "1.1".
	Proto string

	// Start is the instant the middleware began handling the request. It
	// should carry a monotonic clock reading (as returned by time.Now) so
	// that durations are immune to wall clock adjustments.
	Start time.Time
}

// ResponseSnapshot is the response side of an exchange, captured once after
// the downstream handler chain returned.
type ResponseSnapshot struct {
	Status int

	// Bytes is the number of body bytes written, or [UnknownBytes].
	Bytes int64

	// End is the instant the response was observed. It must come from the
	// same clock as [RequestSnapshot.Start].
	End time.Time
}

// Elapsed returns End minus Start, clamped to zero.
//
// When both instants carry monotonic readings the subtraction uses them and
// ignores the wall clock.
func Elapsed(req RequestSnapshot, resp ResponseSnapshot) time.Duration {
	d := resp.End.Sub(req.Start)
	if d < 0 {
		return 0
	}
	return d
}
