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

package clf

import (
	"strconv"
	"sync"
	"time"
)

// TimestampLayout is the CLF timestamp layout, e.g. 10/Oct/2023:13:55:36 +0000.
const TimestampLayout = "02/Jan/2006:15:04:05 -0700"

// ZeroBytes selects how a zero response size is rendered.
type ZeroBytes int

// A known empty body renders as "0" by default so that it stays distinct
// from [UnknownBytes], which always renders as "-".
const (
	// ZeroBytesZero renders zero as "0" like Apache's %B (default).
	ZeroBytesZero ZeroBytes = iota
	// ZeroBytesDash renders zero as "-" like Apache's %b.
	ZeroBytesDash
)

// Option configures a [Formatter].
type Option func(*Formatter)

// Formatter renders snapshots as CLF lines.
// A Formatter is immutable after construction and safe for concurrent use.
type Formatter struct {
	unit      DurationUnit
	duration  bool
	location  *time.Location
	zeroBytes ZeroBytes
}

// WithDurationUnit sets the unit of the trailing duration field.
// Unknown units are ignored.
func WithDurationUnit(u DurationUnit) Option {
	return func(f *Formatter) {
		if u.Valid() {
			f.unit = u
		}
	}
}

// WithoutDuration omits the trailing duration field, producing strict CLF.
func WithoutDuration() Option {
	return func(f *Formatter) { f.duration = false }
}

// WithLocation sets the time zone of the timestamp field. Defaults to UTC.
func WithLocation(loc *time.Location) Option {
	return func(f *Formatter) {
		if loc != nil {
			f.location = loc
		}
	}
}

// WithZeroBytes sets how a zero response size is rendered.
func WithZeroBytes(z ZeroBytes) Option {
	return func(f *Formatter) { f.zeroBytes = z }
}

// NewFormatter returns a Formatter with the given options applied over the
// defaults: milliseconds, duration field enabled, UTC, zero bytes as "-".
func NewFormatter(opts ...Option) *Formatter {
	f := &Formatter{
		unit:     Milliseconds,
		duration: true,
		location: time.UTC,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Unit returns the configured duration unit.
func (f *Formatter) Unit() DurationUnit {
	return f.unit
}

var defaultFormatter = NewFormatter()

// Format renders a line with the default [Formatter].
func Format(req RequestSnapshot, resp ResponseSnapshot) []byte {
	return defaultFormatter.Format(req, resp)
}

// linePool holds scratch buffers for Format.
var linePool = sync.Pool{
	New: func() any {
		b := make([]byte, 0, 256)
		return &b
	},
}

// Format renders req and resp as one line without a trailing newline.
// The returned slice is owned by the caller.
func (f *Formatter) Format(req RequestSnapshot, resp ResponseSnapshot) []byte {
	bp := linePool.Get().(*[]byte)
	buf := f.AppendLine((*bp)[:0], req, resp)
	line := make([]byte, len(buf))
	copy(line, buf)

	*bp = buf[:0]
	linePool.Put(bp)
	return line
}

// String is like Format but returns a string.
func (f *Formatter) String(req RequestSnapshot, resp ResponseSnapshot) string {
	return string(f.Format(req, resp))
}

// AppendLine appends the rendered line to dst and returns the extended
// buffer. It never fails: unknown values become "-" and unsafe bytes are
// escaped.
func (f *Formatter) AppendLine(dst []byte, req RequestSnapshot, resp ResponseSnapshot) []byte {
	dst = appendEscaped(dst, req.ClientAddr, true)
	dst = append(dst, ' ')
	dst = appendEscaped(dst, req.Ident, true)
	dst = append(dst, ' ')
	dst = appendEscaped(dst, req.User, true)

	dst = append(dst, " ["...)
	dst = f.appendTimestamp(dst, req.Start)
	dst = append(dst, "] \""...)

	dst = appendEscaped(dst, req.Method, true)
	dst = append(dst, ' ')
	dst = appendEscaped(dst, req.URI, false)
	dst = append(dst, " HTTP/"...)
	dst = appendEscaped(dst, req.Proto, true)
	dst = append(dst, "\" "...)

	if resp.Status > 0 {
		dst = strconv.AppendInt(dst, int64(resp.Status), 10)
	} else {
		dst = append(dst, Placeholder...)
	}
	dst = append(dst, ' ')
	dst = f.appendBytes(dst, resp.Bytes)

	if f.duration {
		dst = append(dst, ' ')
		dst = AppendDuration(dst, Elapsed(req, resp), f.unit)
	}
	return dst
}

func (f *Formatter) appendTimestamp(dst []byte, t time.Time) []byte {
	if t.IsZero() {
		return append(dst, Placeholder...)
	}
	return t.In(f.location).AppendFormat(dst, TimestampLayout)
}

func (f *Formatter) appendBytes(dst []byte, n int64) []byte {
	switch {
	case n < 0:
		return append(dst, Placeholder...)
	case n == 0 && f.zeroBytes == ZeroBytesDash:
		return append(dst, Placeholder...)
	default:
		return strconv.AppendInt(dst, n, 10)
	}
}
