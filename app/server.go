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

package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
)

// Run serves h, wrapped by [App.Handler], on the configured address until
// ctx is canceled, then shuts the server and the App down within the
// configured shutdown timeout.
//
// Pass a context from signal.NotifyContext to stop on OS signals.
func (a *App) Run(ctx context.Context, h http.Handler) error {
	ln, err := net.Listen("tcp", a.settings.Server.Addr)
	if err != nil {
		return errors.Join(fmt.Errorf("failed to listen on %s: %w", a.settings.Server.Addr, err), a.Shutdown(context.Background()))
	}
	return a.Serve(ctx, ln, h)
}

// Serve is like [App.Run] on an existing listener.
func (a *App) Serve(ctx context.Context, ln net.Listener, h http.Handler) error {
	server := &http.Server{
		Handler:           a.Handler(h),
		ReadHeaderTimeout: a.settings.Server.ReadHeaderTimeout,
		ErrorLog:          slog.NewLogLogger(a.logger.Logger().Handler(), slog.LevelWarn),
	}
	addr := ln.Addr().String()

	if a.tracer != nil {
		if err := a.tracer.Start(ctx); err != nil {
			return errors.Join(fmt.Errorf("failed to start tracing: %w", err), a.Shutdown(context.Background()))
		}
	}

	if !a.opts.noBanner {
		out := a.opts.bannerOutput
		if out == nil {
			out = os.Stdout
		}
		a.printBanner(out, addr)
	}
	a.logger.Info("server starting",
		"address", addr,
		"environment", a.settings.Server.Environment,
		"sink", a.settings.Sink.Type,
		"metrics_enabled", a.recorder != nil,
		"tracing_enabled", a.tracer != nil,
	)

	serverErr := make(chan error, 1)
	go func() {
		if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			return errors.Join(fmt.Errorf("server failed: %w", err), a.Shutdown(context.Background()))
		}
	case <-ctx.Done():
		a.logger.Info("server shutting down", "reason", context.Cause(ctx))
	}

	// ctx is already done; the shutdown gets its own deadline.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.settings.Server.ShutdownTimeout)
	defer cancel()

	var errs []error
	if err := server.Shutdown(shutdownCtx); err != nil {
		errs = append(errs, fmt.Errorf("server forced to shutdown: %w", err))
	}
	// In-flight requests have finished; their lines are in the sink queue.
	a.logger.Info("server exited", "address", addr)
	if err := a.Shutdown(shutdownCtx); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
