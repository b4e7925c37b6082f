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

// Package metrics exports access log outcomes as OpenTelemetry metrics.
//
// A [Recorder] implements the access log's Recorder interface and maintains:
//
//   - accesslog_lines_emitted: lines accepted by the sink, by status_class
//   - accesslog_lines_dropped: lines lost to sink failures, by reason
//   - accesslog_requests_aborted: requests that ended without a line
//   - accesslog_request_duration: request duration histogram in seconds
//
// # Basic Usage
//
//	recorder := metrics.MustNew(
//	    metrics.WithPrometheus(":9090", "/metrics"),
//	    metrics.WithServiceName("my-service"),
//	)
//	defer recorder.Shutdown(context.Background())
//
//	h := accesslog.Wrap(mux, accesslog.WithRecorder(recorder))
//
// # Global State
//
// By default, this package does NOT set the global OpenTelemetry meter provider.
// Use [WithGlobalMeterProvider] if you want global registration.
//
// # Providers
//
// Three providers are supported:
//   - [PrometheusProvider] (default): Exposes metrics via HTTP endpoint
//   - [OTLPProvider]: Sends metrics to an OTLP collector over HTTP
//   - [StdoutProvider]: Prints metrics to stdout (for development/testing)
//
// [WithMeterProvider] and [WithReader] plug in a provider or reader managed
// elsewhere.
package metrics
