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

// Package accesslog provides net/http middleware that writes one Common Log
// Format line per completed HTTP exchange.
//
// Each line follows the NCSA common log format with a trailing, non-standard
// duration field:
//
//	203.0.113.5 - frank [10/Oct/2023:13:55:36 +0000] "GET /index.html HTTP/1.1" 200 1024 15
//
// The middleware captures the request at entry, observes the response through
// a wrapped [http.ResponseWriter] and, once the downstream handler returns,
// formats the line with package clf and hands it to a [Sink].
//
// # Basic Usage
//
//	import (
//	    "os"
//
//	    "rivaas.dev/commonlog/middleware/accesslog"
//	    "rivaas.dev/commonlog/sink"
//	)
//
//	h := accesslog.Wrap(mux,
//	    accesslog.WithSink(sink.NewWriter(os.Stdout)),
//	    accesslog.WithDurationUnit(clf.Microseconds),
//	)
//	http.ListenAndServe(":8080", h)
//
// # Guarantees
//
//   - Exactly one line per completed request, at most one per request.
//   - No line when the downstream handler panics or when the client goes
//     away before any response header was written.
//   - Handled error responses (4xx, 5xx, including those produced by a
//     recovery middleware placed inside the access log) are logged.
//   - Sink failures never reach the client. They are reported to the
//     configured error handler, logger and [Recorder].
//
// # Sinks
//
// Without [WithSink] lines go to stdout through a bounded queue owned by the
// [Interceptor]; call [Interceptor.Close] to flush it. A sink given to
// [WithSink] is called on the request goroutine and delays the response
// while it runs. Use [WithAsync] for destinations that can be slow.
//
// # Identity
//
// The CLF authuser field is taken, in order, from a custom
// [WithIdentityFunc], from [WithIdentity] on the request context, from the
// authenticated username stored by the basicauth middleware, or reported late
// by a downstream authenticator through middleware.SetIdentity.
//
// # Client Address
//
// The client field is the peer address of the connection. Forwarding headers
// are consulted only when the peer belongs to a range configured with
// [WithTrustedProxies].
package accesslog
