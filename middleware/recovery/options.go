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

package recovery

import (
	"log/slog"
	"net/http"
)

// Option defines functional options for recovery middleware configuration.
type Option func(*config)

// config holds the configuration for the recovery middleware.
type config struct {
	// stackTrace enables/disables capturing stack traces on panic
	stackTrace bool

	// stackSize sets the maximum size of the stack trace in bytes
	stackSize int

	// logger receives panic reports
	logger *slog.Logger

	// logFunc replaces the slog report when set
	logFunc func(r *http.Request, err any, stack []byte)

	// handler writes the response after a panic
	handler func(w http.ResponseWriter, r *http.Request, err any)
}

// defaultConfig returns the default configuration for recovery middleware.
func defaultConfig() *config {
	return &config{
		stackTrace: true,
		stackSize:  4 << 10, // 4KB
		handler:    defaultHandler,
	}
}

// WithStackTrace enables or disables stack trace capture.
// Default: true
func WithStackTrace(enabled bool) Option {
	return func(cfg *config) {
		cfg.stackTrace = enabled
	}
}

// WithStackSize sets the maximum size of the captured stack trace in bytes.
// Default: 4KB (4 << 10). Zero or less keeps the full stack.
//
//	recovery.New(recovery.WithStackSize(8 << 10)) // 8KB
func WithStackSize(size int) Option {
	return func(cfg *config) {
		cfg.stackSize = size
	}
}

// WithLogger sets the logger that reports recovered panics.
// Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *config) {
		cfg.logger = logger
	}
}

// WithLogFunc replaces the slog report with a custom function.
//
//	recovery.New(recovery.WithLogFunc(func(r *http.Request, err any, stack []byte) {
//	    myLogger.Error("panic recovered", "error", err, "stack", string(stack))
//	}))
func WithLogFunc(fn func(r *http.Request, err any, stack []byte)) Option {
	return func(cfg *config) {
		cfg.logFunc = fn
	}
}

// WithHandler sets the function that writes the response after a panic.
//
//	recovery.New(recovery.WithHandler(func(w http.ResponseWriter, r *http.Request, err any) {
//	    http.Error(w, "something went wrong", http.StatusServiceUnavailable)
//	}))
func WithHandler(handler func(w http.ResponseWriter, r *http.Request, err any)) Option {
	return func(cfg *config) {
		if handler != nil {
			cfg.handler = handler
		}
	}
}
