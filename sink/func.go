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
	"errors"
)

// Func adapts a function to a sink.
type Func func(ctx context.Context, line []byte) error

// WriteLine calls f.
func (f Func) WriteLine(ctx context.Context, line []byte) error {
	return f(ctx, line)
}

// Discard accepts and drops every line.
var Discard = Func(func(context.Context, []byte) error { return nil })

// LineWriter is the method set shared by all sinks.
type LineWriter interface {
	WriteLine(ctx context.Context, line []byte) error
}

// Multi writes each line to every sink in order. All sinks are attempted;
// their errors are joined.
func Multi(sinks ...LineWriter) LineWriter {
	all := make([]LineWriter, 0, len(sinks))
	for _, s := range sinks {
		if s != nil {
			all = append(all, s)
		}
	}
	return multi(all)
}

type multi []LineWriter

func (m multi) WriteLine(ctx context.Context, line []byte) error {
	var errs []error
	for _, s := range m {
		if err := s.WriteLine(ctx, line); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
