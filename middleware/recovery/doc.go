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

// Package recovery provides net/http middleware that recovers from panics in
// downstream handlers and turns them into 500 responses.
//
// Placed inside the access log, it converts crashes into ordinary, logged
// error responses:
//
//	h := middleware.Chain(mux,
//	    accesslog.New(accesslog.WithSink(s)),
//	    recovery.New(recovery.WithLogger(logger)),
//	)
//
// Placed outside, the access log sees the panic and writes no line.
//
// [http.ErrAbortHandler] is never recovered: it is re-raised so that
// net/http aborts the response as intended.
package recovery
