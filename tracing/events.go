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

package tracing

import "log/slog"

// EventType classifies an internal event.
type EventType int

// Event types.
const (
	EventError EventType = iota
	EventWarning
	EventInfo
	EventDebug
)

// Event is an internal operational event of the Tracer.
type Event struct {
	Type    EventType
	Message string
	Args    []any
}

// EventHandler receives internal events.
type EventHandler func(Event)

// DefaultEventHandler logs events to logger, or slog.Default() when nil.
func DefaultEventHandler(logger *slog.Logger) EventHandler {
	return func(e Event) {
		l := logger
		if l == nil {
			l = slog.Default()
		}
		switch e.Type {
		case EventError:
			l.Error(e.Message, e.Args...)
		case EventWarning:
			l.Warn(e.Message, e.Args...)
		case EventInfo:
			l.Info(e.Message, e.Args...)
		case EventDebug:
			l.Debug(e.Message, e.Args...)
		}
	}
}

func (t *Tracer) emit(typ EventType, msg string, args ...any) {
	if t.eventHandler != nil {
		t.eventHandler(Event{Type: typ, Message: msg, Args: args})
	}
}
