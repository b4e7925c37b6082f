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

// Command clfserver is a demo HTTP server that writes one Common Log Format
// line per request.
//
// Configuration is read, in increasing precedence, from the files given with
// -config, the .env files given with -dotenv, Consul (when CONSUL_HTTP_ADDR
// is set and -consul-key is given) and environment variables starting with
// -env-prefix:
//
//	clfserver -config clfserver.yaml
//	COMMONLOG_ACCESSLOG_DURATION_UNIT=us COMMONLOG_SINK_ASYNC=true clfserver
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/charmbracelet/log"

	"rivaas.dev/commonlog/app"
	"rivaas.dev/commonlog/config"
	"rivaas.dev/commonlog/config/codec"
	"rivaas.dev/commonlog/logging"
	"rivaas.dev/commonlog/middleware"
	"rivaas.dev/commonlog/middleware/basicauth"
)

type stringList []string

func (l *stringList) String() string     { return strings.Join(*l, ",") }
func (l *stringList) Set(v string) error { *l = append(*l, v); return nil }

func main() {
	if err := run(); err != nil {
		logger := log.NewWithOptions(os.Stderr, log.Options{
			Prefix:          "clfserver",
			ReportTimestamp: false,
		})
		logger.Fatal("startup failed", "err", err)
	}
}

func run() error {
	var (
		files     stringList
		dotenvs   stringList
		envPrefix = flag.String("env-prefix", "COMMONLOG_", "prefix of configuration environment variables")
		consulKey = flag.String("consul-key", "", "Consul KV key holding a configuration document")
		dump      = flag.String("dump", "", "print the merged configuration as yaml, toml or json and exit")
		adminUser = flag.String("admin-user", "admin", "user for the /admin endpoint")
		adminPass = flag.String("admin-password", os.Getenv("CLFSERVER_ADMIN_PASSWORD"), "password for the /admin endpoint; empty disables it")
	)
	flag.Var(&files, "config", "configuration file (yaml, toml or json); may be repeated")
	flag.Var(&dotenvs, "dotenv", ".env file; may be repeated")
	flag.Parse()

	opts := []config.Option{config.WithJSONSchema(config.DefaultSchema)}
	for _, f := range files {
		opts = append(opts, config.WithFile(f))
	}
	if len(dotenvs) > 0 {
		opts = append(opts, config.WithDotEnv(*envPrefix, dotenvs...))
	}
	if *consulKey != "" {
		opts = append(opts, config.WithConsul(*consulKey))
	}
	opts = append(opts, config.WithEnv(*envPrefix))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	loader, err := config.New(opts...)
	if err != nil {
		return err
	}
	settings, err := loader.Load(ctx)
	if err != nil {
		return err
	}
	if *dump != "" {
		return loader.Dump(os.Stdout, codec.Type(*dump))
	}

	a, err := app.New(settings)
	if err != nil {
		return err
	}

	mux := http.NewServeMux()
	a.Mount(mux)
	routes(mux, a.Logger())
	if *adminPass != "" {
		admin := basicauth.New(
			basicauth.WithUsers(map[string]string{*adminUser: *adminPass}),
			basicauth.WithRealm("clfserver"),
		)
		mux.Handle("GET /admin", admin(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = fmt.Fprintf(w, "hello %s\n", basicauth.Username(r.Context()))
		})))
	}

	return a.Run(ctx, mux)
}

func routes(mux *http.ServeMux, logger *logging.Logger) {
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, "clfserver\n")
	})

	mux.HandleFunc("GET /hello/{name}", func(w http.ResponseWriter, r *http.Request) {
		name := r.PathValue("name")
		// The user field of the access log line.
		middleware.SetIdentity(r.Context(), name)
		logging.NewContextLogger(r.Context(), logger).Debug("greeting", "name", name)
		_, _ = fmt.Fprintf(w, "hello %s\n", name)
	})

	mux.HandleFunc("GET /slow", func(w http.ResponseWriter, r *http.Request) {
		d, err := time.ParseDuration(r.URL.Query().Get("d"))
		if err != nil || d <= 0 || d > 30*time.Second {
			d = time.Second
		}
		select {
		case <-time.After(d):
			_, _ = io.WriteString(w, "done\n")
		case <-r.Context().Done():
		}
	})

	mux.HandleFunc("POST /echo", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", r.Header.Get("Content-Type"))
		if _, err := io.Copy(w, http.MaxBytesReader(w, r.Body, 1<<20)); err != nil {
			logging.NewContextLogger(r.Context(), logger).Warn("echo failed", "error", err)
		}
	})

	mux.HandleFunc("GET /panic", func(http.ResponseWriter, *http.Request) {
		panic("requested panic")
	})
}
