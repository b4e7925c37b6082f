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

// Package app assembles the access log stack from [config.Settings]: the
// diagnostic logger, the metrics recorder, the tracer, the line sink and the
// access log middleware, and runs an HTTP server with graceful shutdown.
//
// Basic usage:
//
//	settings, err := config.Load(ctx, config.WithEnv("COMMONLOG_"))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	a, err := app.New(settings)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	mux := http.NewServeMux()
//	a.Mount(mux)
//	mux.HandleFunc("GET /", index)
//
//	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
//	defer stop()
//	if err := a.Run(ctx, mux); err != nil {
//	    log.Fatal(err)
//	}
//
// The handler passed to [App.Run] or [App.Handler] is wrapped so that the
// request id is assigned first and the request span (when tracing is enabled)
// covers the access log. The access log observes the final response and
// handler panics are turned into 500 responses inside it.
package app
