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

// Package requestid provides net/http middleware that assigns every request
// an ID for log correlation.
//
// The ID is taken from the X-Request-ID header when present and allowed,
// otherwise generated. It is echoed in the response header and stored in the
// request context under middleware.RequestIDKey, where the access log picks it
// up when it reports a dropped line.
//
//	h := middleware.Chain(mux,
//	    requestid.New(),
//	    accesslog.New(accesslog.WithSink(s)),
//	)
//
// # Request ID Generation
//
// By default UUID v7 is used. It is time-ordered and lexicographically
// sortable (RFC 9562). [WithULID] selects the compact 26-character ULID
// instead, and [WithGenerator] any custom scheme.
package requestid
