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

package logging

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync/atomic"
)

// HandlerType represents the type of logging handler.
type HandlerType string

const (
	// JSONHandler outputs structured JSON logs.
	JSONHandler HandlerType = "json"
	// TextHandler outputs key=value text logs.
	TextHandler HandlerType = "text"
	// ConsoleHandler outputs human-readable colored logs.
	ConsoleHandler HandlerType = "console"
)

// Level represents log level.
type Level = slog.Level

const (
	LevelDebug = slog.LevelDebug
	LevelInfo  = slog.LevelInfo
	LevelWarn  = slog.LevelWarn
	LevelError = slog.LevelError
)

const redacted = "***REDACTED***"

var defaultRedactKeys = []string{"password", "token", "secret", "api_key", "authorization", "cookie"}

// ParseLevel converts a level name (debug, info, warn, warning, error) to
// a [Level]. The empty string yields [LevelInfo].
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "info":
		return LevelInfo, nil
	case "debug":
		return LevelDebug, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	default:
		return LevelInfo, fmt.Errorf("%w: %q", ErrInvalidLevel, s)
	}
}

// Logger wraps a [slog.Logger] built from functional options.
// All methods are safe for concurrent use.
type Logger struct {
	handlerType HandlerType
	output      io.Writer
	level       slog.LevelVar

	serviceName    string
	serviceVersion string
	environment    string

	addSource   bool
	replaceAttr func(groups []string, a slog.Attr) slog.Attr
	redactKeys  map[string]struct{}

	customLogger   *slog.Logger
	useCustom      bool
	registerGlobal bool

	slogger        *slog.Logger
	isShuttingDown atomic.Bool
}

// Option is a functional option for configuring the logger.
type Option func(*Logger)

func defaultLogger() *Logger {
	l := &Logger{
		handlerType: JSONHandler,
		output:      os.Stdout,
		redactKeys:  make(map[string]struct{}, len(defaultRedactKeys)),
	}
	for _, k := range defaultRedactKeys {
		l.redactKeys[k] = struct{}{}
	}
	l.level.Set(LevelInfo)
	return l
}

// New creates a new Logger with the given options.
//
// New does not touch the global slog default unless [WithGlobalLogger]
// is given.
func New(opts ...Option) (*Logger, error) {
	l := defaultLogger()
	for _, opt := range opts {
		opt(l)
	}

	if err := l.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if err := l.initializeHandler(); err != nil {
		return nil, err
	}
	return l, nil
}

// MustNew creates a new Logger or panics on error.
func MustNew(opts ...Option) *Logger {
	l, err := New(opts...)
	if err != nil {
		panic("logging initialization failed: " + err.Error())
	}
	return l
}

// Validate checks if the configuration is valid.
func (l *Logger) Validate() error {
	if l.useCustom {
		if l.customLogger == nil {
			return ErrNilLogger
		}
		return nil
	}
	if l.output == nil {
		return errors.New("output writer cannot be nil")
	}
	switch l.handlerType {
	case JSONHandler, TextHandler, ConsoleHandler:
		return nil
	default:
		return fmt.Errorf("%w: %s", ErrInvalidHandler, l.handlerType)
	}
}

func (l *Logger) initializeHandler() error {
	if l.useCustom {
		l.slogger = l.customLogger
	} else {
		opts := &slog.HandlerOptions{
			Level:       &l.level,
			AddSource:   l.addSource,
			ReplaceAttr: l.buildReplaceAttr(),
		}

		var handler slog.Handler
		switch l.handlerType {
		case JSONHandler:
			handler = slog.NewJSONHandler(l.output, opts)
		case TextHandler:
			handler = slog.NewTextHandler(l.output, opts)
		case ConsoleHandler:
			handler = newConsoleHandler(l.output, opts)
		default:
			return fmt.Errorf("%w: %s", ErrInvalidHandler, l.handlerType)
		}

		var attrs []slog.Attr
		if l.serviceName != "" {
			attrs = append(attrs, slog.String("service", l.serviceName))
		}
		if l.serviceVersion != "" {
			attrs = append(attrs, slog.String("version", l.serviceVersion))
		}
		if l.environment != "" {
			attrs = append(attrs, slog.String("env", l.environment))
		}
		if len(attrs) > 0 {
			handler = handler.WithAttrs(attrs)
		}
		l.slogger = slog.New(newContextHandler(handler))
	}

	if l.registerGlobal {
		slog.SetDefault(l.slogger)
	}
	return nil
}

// buildReplaceAttr redacts credential attributes before the user replacer runs.
func (l *Logger) buildReplaceAttr() func(groups []string, a slog.Attr) slog.Attr {
	return func(groups []string, a slog.Attr) slog.Attr {
		if _, ok := l.redactKeys[strings.ToLower(a.Key)]; ok {
			return slog.String(a.Key, redacted)
		}
		if l.replaceAttr != nil {
			return l.replaceAttr(groups, a)
		}
		return a
	}
}

// Logger returns the underlying [slog.Logger].
func (l *Logger) Logger() *slog.Logger {
	return l.slogger
}

// With returns a [slog.Logger] with additional attributes.
func (l *Logger) With(args ...any) *slog.Logger {
	return l.slogger.With(args...)
}

func (l *Logger) log(level slog.Level, msg string, args ...any) {
	if l.isShuttingDown.Load() {
		return
	}
	ctx := context.Background()
	if !l.slogger.Enabled(ctx, level) {
		return
	}
	l.slogger.Log(ctx, level, msg, args...)
}

// Debug logs a debug message with structured attributes.
func (l *Logger) Debug(msg string, args ...any) { l.log(LevelDebug, msg, args...) }

// Info logs an informational message with structured attributes.
func (l *Logger) Info(msg string, args ...any) { l.log(LevelInfo, msg, args...) }

// Warn logs a warning message with structured attributes.
func (l *Logger) Warn(msg string, args ...any) { l.log(LevelWarn, msg, args...) }

// Error logs an error message with structured attributes.
func (l *Logger) Error(msg string, args ...any) { l.log(LevelError, msg, args...) }

// SetLevel changes the minimum level at runtime. Loggers created with
// [WithCustomLogger] return [ErrCannotChangeLevel].
func (l *Logger) SetLevel(level Level) error {
	if l.useCustom {
		return ErrCannotChangeLevel
	}
	l.level.Set(level)
	return nil
}

// Level returns the current minimum log level.
func (l *Logger) Level() Level {
	return l.level.Level()
}

// ServiceName returns the service name.
func (l *Logger) ServiceName() string {
	return l.serviceName
}

// IsEnabled reports whether the logger has not been shut down.
func (l *Logger) IsEnabled() bool {
	return !l.isShuttingDown.Load()
}

// Shutdown stops the convenience methods from logging and closes the
// output when it is an [io.Closer] other than stdout or stderr.
func (l *Logger) Shutdown(_ context.Context) error {
	if !l.isShuttingDown.CompareAndSwap(false, true) {
		return nil
	}
	if l.output == os.Stdout || l.output == os.Stderr {
		return nil
	}
	if c, ok := l.output.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
