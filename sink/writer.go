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
	"fmt"
	"io"
	"os"
	"sync"
)

// Writer writes each line to an [io.Writer] followed by a newline.
// Lines are written with a single Write call under a mutex, so concurrent
// lines never interleave.
type Writer struct {
	mu     sync.Mutex
	w      io.Writer
	buf    []byte
	closer io.Closer
	closed bool
}

// NewWriter returns a Writer on w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// NewFile opens path for appending, creating it if needed, and returns a
// Writer that owns the file. Close releases it.
func NewFile(path string) (*Writer, error) {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0o644)
	if err != nil {
		return nil, fmt.Errorf("sink: open %s: %w", path, err)
	}
	return &Writer{w: f, closer: f}, nil
}

// WriteLine implements the access log sink.
func (s *Writer) WriteLine(_ context.Context, line []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}

	s.buf = append(s.buf[:0], line...)
	s.buf = append(s.buf, '\n')
	n, err := s.w.Write(s.buf)
	if err != nil {
		return fmt.Errorf("sink: write: %w", err)
	}
	if n != len(s.buf) {
		return fmt.Errorf("sink: write: %w", io.ErrShortWrite)
	}
	return nil
}

// Close closes the underlying file for writers created by [NewFile].
// Later writes return [ErrClosed].
func (s *Writer) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	if s.closer != nil {
		return s.closer.Close()
	}
	return nil
}
