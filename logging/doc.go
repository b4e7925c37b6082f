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

// Package logging configures the structured logger used for the access
// log's diagnostics: dropped lines, recovered panics, configuration and
// lifecycle events. Access log lines themselves go to a sink, not here.
//
// # Basic Usage
//
//	logger := logging.MustNew(
//	    logging.WithJSONHandler(),
//	    logging.WithServiceName("clfserver"),
//	)
//	defer logger.Shutdown(context.Background())
//	logger.Info("server started", "addr", ":8080")
//
// # Handlers
//
// [JSONHandler] (default) and [TextHandler] wrap the slog handlers.
// [ConsoleHandler] prints compact colored lines for local development.
//
// # Request Correlation
//
// Records logged with a context carry trace_id and span_id of an active
// OpenTelemetry span and the request_id set by the requestid middleware:
//
//	logger.Logger().WarnContext(r.Context(), "access log line dropped")
//
// # Redaction
//
// Values of password, token, secret, api_key, authorization and cookie
// attributes are replaced with "***REDACTED***". [WithRedactKeys] adds keys.
//
// # Dynamic Log Levels
//
//	logger.SetLevel(logging.LevelDebug)
package logging
