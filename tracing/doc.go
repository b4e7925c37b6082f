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

// Package tracing starts an OpenTelemetry server span for every HTTP request.
//
// The span is stored in the request context, so records logged through the
// logging package carry its trace_id and span_id. Responses with a status of
// 400 or more mark the span as failed.
//
//	tracer := tracing.MustNew(
//	    tracing.WithServiceName("clfserver"),
//	    tracing.WithOTLPHTTP("http://localhost:4318"),
//	)
//	if err := tracer.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	defer tracer.Shutdown(context.Background())
//
//	handler := tracing.Middleware(tracer, tracing.WithExcludePaths("/healthz"))(mux)
//
// # Providers
//
//   - [NoopProvider]: spans are created and propagated but not exported (default)
//   - [StdoutProvider]: spans are printed as JSON
//   - [OTLPProvider]: OTLP over gRPC
//   - [OTLPHTTPProvider]: OTLP over HTTP
//
// OTLP exporters are created by [Tracer.Start]; until then the Tracer hands
// out non-recording spans.
package tracing
