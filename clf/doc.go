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

// Package clf renders HTTP exchanges as Common Log Format lines.
//
// A line is a pure function of two immutable snapshots: a [RequestSnapshot]
// captured when the request enters the access log middleware, and a
// [ResponseSnapshot] captured once the downstream handler chain has produced
// its response. The rendered layout is
//
//	<client> <ident> <user> [<timestamp>] "<method> <uri> HTTP/<version>" <status> <bytes> <duration>
//
// The trailing duration field is the only deviation from strict CLF and can
// be disabled with [WithoutDuration].
//
// # Basic Usage
//
//	f := clf.NewFormatter(clf.WithDurationUnit(clf.Milliseconds))
//	line := f.Format(req, resp)
//	// 203.0.113.5 - - [10/Oct/2023:13:55:36 +0000] "GET /index.html HTTP/1.1" 200 1024 15
//
// # Unknown Values
//
// Fields whose value is unknown render as "-": a missing client address or
// user and an unknown response size ([UnknownBytes]). A known empty body
// renders as "0" unless [WithZeroBytes] selects Apache's %b dash.
//
// # Escaping
//
// Formatting never fails. Quotes and backslashes in the method and URI are
// backslash-escaped; control bytes and invalid UTF-8 are rendered as \xHH so
// that one exchange always produces exactly one parseable line.
package clf
