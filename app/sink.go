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
	"fmt"
	"io"
	"os"

	"rivaas.dev/commonlog/config"
	"rivaas.dev/commonlog/logging"
	"rivaas.dev/commonlog/middleware/accesslog"
	"rivaas.dev/commonlog/sink"
)

// buildSink creates the line sink selected by settings and the function
// that releases it. Queueing is left to the access log.
func (a *App) buildSink(s config.SinkSettings, out io.Writer) (accesslog.Sink, func(context.Context) error, error) {
	var (
		base    sink.LineWriter
		closeFn = func(context.Context) error { return nil }
	)

	switch s.Type {
	case config.SinkStdout, config.SinkStderr:
		if out == nil {
			out = os.Stdout
			if s.Type == config.SinkStderr {
				out = os.Stderr
			}
		}
		base = sink.NewWriter(out)
	case config.SinkFile:
		w, err := sink.NewFile(s.Path)
		if err != nil {
			return nil, nil, err
		}
		base = w
		closeFn = func(context.Context) error { return w.Close() }
	case config.SinkSlog:
		level, err := logging.ParseLevel(s.Level)
		if err != nil {
			return nil, nil, err
		}
		base = sink.NewSlog(a.logger.Logger().With("log", "access"), level)
	default:
		return nil, nil, fmt.Errorf("unknown sink type %q", s.Type)
	}

	return base, closeFn, nil
}
