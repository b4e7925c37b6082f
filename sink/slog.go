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

package sink

import (
	"context"
	"log/slog"
)

// Slog emits each line as the message of a log record at a fixed level.
type Slog struct {
	logger *slog.Logger
	level  slog.Level
}

// NewSlog returns a sink on logger. A nil logger means slog.Default().
func NewSlog(logger *slog.Logger, level slog.Level) *Slog {
	if logger == nil {
		logger = slog.Default()
	}
	return &Slog{logger: logger, level: level}
}

// Enabled reports whether the logger would emit a record at the sink level.
// The access log skips requests entirely while it reports false.
func (s *Slog) Enabled(ctx context.Context) bool {
	return s.logger.Enabled(ctx, s.level)
}

// WriteLine implements the access log sink.
func (s *Slog) WriteLine(ctx context.Context, line []byte) error {
	s.logger.Log(ctx, s.level, string(line))
	return nil
}
