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
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exchange(start time.Time, elapsed time.Duration) (RequestSnapshot, ResponseSnapshot) {
	req := RequestSnapshot{
		ClientAddr: "203.0.113.5",
		Method:     "GET",
		URI:        "/index.html",
		Proto:      "1.1",
		Start:      start,
	}
	resp := ResponseSnapshot{
		Status: 200,
		Bytes:  1024,
		End:    start.Add(elapsed),
	}
	return req, resp
}

func TestFormat_Examples(t *testing.T) {
	t.Parallel()

	t.Run("known client and size", func(t *testing.T) {
		t.Parallel()
		start := time.Date(2023, time.October, 10, 13, 55, 36, 0, time.UTC)
		req, resp := exchange(start, 15*time.Millisecond)

		assert.Equal(t,
			`203.0.113.5 - - [10/Oct/2023:13:55:36 +0000] "GET /index.html HTTP/1.1" 200 1024 15`,
			string(Format(req, resp)))
	})

	t.Run("unknown client and size", func(t *testing.T) {
		t.Parallel()
		start := time.Date(2023, time.October, 10, 13, 56, 0, 0, time.UTC)
		req := RequestSnapshot{Method: "GET", URI: "/missing", Proto: "1.1", Start: start}
		resp := ResponseSnapshot{Status: 404, Bytes: UnknownBytes, End: start.Add(2 * time.Millisecond)}

		assert.Equal(t,
			`- - - [10/Oct/2023:13:56:00 +0000] "GET /missing HTTP/1.1" 404 - 2`,
			string(Format(req, resp)))
	})
}

func TestFormat_Deterministic(t *testing.T) {
	t.Parallel()

	start := time.Date(2024, time.February, 29, 23, 59, 59, 999, time.UTC)
	req, resp := exchange(start, 1234*time.Microsecond)
	f := NewFormatter(WithDurationUnit(Microseconds))

	first := f.Format(req, resp)
	for range 100 {
		assert.Equal(t, first, f.Format(req, resp))
	}
	assert.Equal(t, first, f.AppendLine(nil, req, resp))
}

func TestFormat_Fields(t *testing.T) {
	t.Parallel()

	start := time.Date(2023, time.October, 10, 13, 55, 36, 0, time.UTC)

	tests := []struct {
		name   string
		opts   []Option
		modify func(*RequestSnapshot, *ResponseSnapshot)
		want   string
	}{
		{
			name: "authenticated user",
			modify: func(req *RequestSnapshot, _ *ResponseSnapshot) {
				req.User = "frank"
			},
			want: `203.0.113.5 - frank [10/Oct/2023:13:55:36 +0000] "GET /index.html HTTP/1.1" 200 1024 15`,
		},
		{
			name: "zero bytes as zero by default",
			modify: func(_ *RequestSnapshot, resp *ResponseSnapshot) {
				resp.Status = 204
				resp.Bytes = 0
			},
			want: `203.0.113.5 - - [10/Oct/2023:13:55:36 +0000] "GET /index.html HTTP/1.1" 204 0 15`,
		},
		{
			name: "zero bytes as dash",
			opts: []Option{WithZeroBytes(ZeroBytesDash)},
			modify: func(_ *RequestSnapshot, resp *ResponseSnapshot) {
				resp.Bytes = 0
			},
			want: `203.0.113.5 - - [10/Oct/2023:13:55:36 +0000] "GET /index.html HTTP/1.1" 200 - 15`,
		},
		{
			name: "unknown bytes as dash by default",
			modify: func(_ *RequestSnapshot, resp *ResponseSnapshot) {
				resp.Bytes = UnknownBytes
			},
			want: `203.0.113.5 - - [10/Oct/2023:13:55:36 +0000] "GET /index.html HTTP/1.1" 200 - 15`,
		},
		{
			name: "strict clf without duration",
			opts: []Option{WithoutDuration()},
			want: `203.0.113.5 - - [10/Oct/2023:13:55:36 +0000] "GET /index.html HTTP/1.1" 200 1024`,
		},
		{
			name: "seconds unit",
			opts: []Option{WithDurationUnit(Seconds)},
			want: `203.0.113.5 - - [10/Oct/2023:13:55:36 +0000] "GET /index.html HTTP/1.1" 200 1024 0.015`,
		},
		{
			name: "fixed zone location",
			opts: []Option{WithLocation(time.FixedZone("CEST", 2*60*60))},
			want: `203.0.113.5 - - [10/Oct/2023:15:55:36 +0200] "GET /index.html HTTP/1.1" 200 1024 15`,
		},
		{
			name: "unknown status and protocol",
			modify: func(req *RequestSnapshot, resp *ResponseSnapshot) {
				req.Proto = ""
				resp.Status = 0
			},
			want: `203.0.113.5 - - [10/Oct/2023:13:55:36 +0000] "GET /index.html HTTP/-" - 1024 15`,
		},
		{
			name: "clock went backwards",
			modify: func(req *RequestSnapshot, resp *ResponseSnapshot) {
				resp.End = req.Start.Add(-time.Second)
			},
			want: `203.0.113.5 - - [10/Oct/2023:13:55:36 +0000] "GET /index.html HTTP/1.1" 200 1024 0`,
		},
		{
			name: "http2",
			modify: func(req *RequestSnapshot, _ *ResponseSnapshot) {
				req.Proto = "2.0"
			},
			want: `203.0.113.5 - - [10/Oct/2023:13:55:36 +0000] "GET /index.html HTTP/2.0" 200 1024 15`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			req, resp := exchange(start, 15*time.Millisecond)
			if tt.modify != nil {
				tt.modify(&req, &resp)
			}
			assert.Equal(t, tt.want, NewFormatter(tt.opts...).String(req, resp))
		})
	}
}

func TestFormat_Escaping(t *testing.T) {
	t.Parallel()

	start := time.Date(2023, time.October, 10, 13, 55, 36, 0, time.UTC)

	tests := []struct {
		name   string
		method string
		uri    string
		user   string
		want   string
	}{
		{"quote and backslash", "GET", `/a"b\c`, "", `"GET /a\"b\\c HTTP/1.1"`},
		{"newline injection", "GET", "/x\ny", "", `"GET /x\x0ay HTTP/1.1"`},
		{"invalid utf8", "GET", "/\xff\xfe", "", `"GET /\xff\xfe HTTP/1.1"`},
		{"valid utf8 kept", "GET", "/café", "", `"GET /café HTTP/1.1"`},
		{"space in method", "GET X", "/", "", `"GET\x20X / HTTP/1.1"`},
		{"empty method", "", "/", "", `"- / HTTP/1.1"`},
		{"empty uri", "GET", "", "", `"GET - HTTP/1.1"`},
		{"space in user", "GET", "/", "john doe", `- john\x20doe [`},
		{"delete byte", "GET", "/\x7f", "", `"GET /\x7f HTTP/1.1"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			req, resp := exchange(start, 0)
			req.Method = tt.method
			req.URI = tt.uri
			req.User = tt.user

			line := string(Format(req, resp))
			assert.Contains(t, line, tt.want)
			assert.NotContains(t, line, "\n")
			assert.Len(t, strings.Fields(line), 11, "field count must stay stable: %s", line)
		})
	}
}

func TestAppendDuration(t *testing.T) {
	t.Parallel()

	tests := []struct {
		d    time.Duration
		unit DurationUnit
		want string
	}{
		{15 * time.Millisecond, Milliseconds, "15"},
		{15*time.Millisecond + 900*time.Microsecond, Milliseconds, "15"},
		{15230 * time.Microsecond, Microseconds, "15230"},
		{15 * time.Millisecond, Seconds, "0.015"},
		{2500 * time.Millisecond, Seconds, "2.500"},
		{850 * time.Microsecond, Auto, "850µs"},
		{15230 * time.Microsecond, Auto, "15.23ms"},
		{2500 * time.Millisecond, Auto, "2.50s"},
		{-time.Second, Milliseconds, "0"},
		{3 * time.Millisecond, DurationUnit("bogus"), "3"},
	}

	for _, tt := range tests {
		t.Run(string(tt.unit)+"/"+tt.d.String(), func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, string(AppendDuration(nil, tt.d, tt.unit)))
		})
	}
}

func TestParseDurationUnit(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    DurationUnit
		wantErr bool
	}{
		{"", Milliseconds, false},
		{"milliseconds", Milliseconds, false},
		{"US", Microseconds, false},
		{"µs", Microseconds, false},
		{"seconds", Seconds, false},
		{"auto", Auto, false},
		{"hours", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			got, err := ParseDurationUnit(tt.in)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidUnit)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormat_Concurrent(t *testing.T) {
	t.Parallel()

	start := time.Date(2023, time.October, 10, 13, 55, 36, 0, time.UTC)
	f := NewFormatter()

	var wg sync.WaitGroup
	lines := make([]string, 64)
	for i := range lines {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			req, resp := exchange(start, time.Duration(i)*time.Millisecond)
			req.URI = "/item/" + strings.Repeat("x", i)
			lines[i] = f.String(req, resp)
		}(i)
	}
	wg.Wait()

	for i, line := range lines {
		assert.Contains(t, line, `"GET /item/`+strings.Repeat("x", i)+` HTTP/1.1"`)
		assert.True(t, strings.HasSuffix(line, " 1024 "+strconv.Itoa(i)), line)
	}
}
