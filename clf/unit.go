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
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidUnit is returned by [ParseDurationUnit] for unrecognized names.
var ErrInvalidUnit = errors.New("invalid duration unit")

// DurationUnit selects how the trailing duration field is rendered.
type DurationUnit string

const (
	// Milliseconds renders whole milliseconds, e.g. "15". This is the default.
	Milliseconds DurationUnit = "ms"

	// Microseconds renders whole microseconds, e.g. "15230".
	Microseconds DurationUnit = "us"

	// Seconds renders seconds with millisecond precision, e.g. "0.015".
	Seconds DurationUnit = "s"

	// Auto picks µs, ms or s by magnitude and appends the unit suffix,
	// e.g. "850µs", "15.23ms", "2.50s". Intended for humans, not parsers.
	Auto DurationUnit = "auto"
)

// ParseDurationUnit parses a unit name as found in configuration files.
// Long forms ("milliseconds", "microseconds", "seconds") are accepted.
func ParseDurationUnit(s string) (DurationUnit, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "ms", "millis", "milliseconds":
		return Milliseconds, nil
	case "us", "µs", "micros", "microseconds":
		return Microseconds, nil
	case "s", "sec", "seconds":
		return Seconds, nil
	case "auto":
		return Auto, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidUnit, s)
	}
}

// String implements fmt.Stringer.
func (u DurationUnit) String() string {
	return string(u)
}

// Valid reports whether u is one of the known units.
func (u DurationUnit) Valid() bool {
	switch u {
	case Milliseconds, Microseconds, Seconds, Auto:
		return true
	}
	return false
}

// AppendDuration appends d rendered in unit u. Unknown units fall back to
// [Milliseconds]. Negative durations render as zero.
func AppendDuration(dst []byte, d time.Duration, u DurationUnit) []byte {
	if d < 0 {
		d = 0
	}

	switch u {
	case Microseconds:
		return strconv.AppendInt(dst, d.Microseconds(), 10)
	case Seconds:
		return strconv.AppendFloat(dst, d.Seconds(), 'f', 3, 64)
	case Auto:
		micros := d.Microseconds()
		switch {
		case micros < 1000:
			dst = strconv.AppendInt(dst, micros, 10)
			return append(dst, "µs"...)
		case micros < 1000000:
			dst = strconv.AppendFloat(dst, float64(micros)/1000, 'f', 2, 64)
			return append(dst, "ms"...)
		default:
			dst = strconv.AppendFloat(dst, float64(micros)/1000000, 'f', 2, 64)
			return append(dst, 's')
		}
	default:
		return strconv.AppendInt(dst, d.Milliseconds(), 10)
	}
}
