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

package accesslog

import (
	"bufio"
	"io"
	"net"
	"net/http"

	"github.com/felixge/httpsnoop"
	"golang.org/x/net/http/httpguts"

	"rivaas.dev/commonlog/clf"
)

// observer records what the downstream handler did with the response.
// It is owned by a single request and read only after the handler returned.
type observer struct {
	status      int
	bytes       int64
	wroteHeader bool
	hijacked    bool

	// upgrade is set when the request asked for a protocol switch
	upgrade bool
}

// newObserver returns an observer for r.
func newObserver(r *http.Request) *observer {
	return &observer{
		upgrade: r.Header.Get("Upgrade") != "" &&
			httpguts.HeaderValuesContainsToken(r.Header["Connection"], "upgrade"),
	}
}

// wrap returns w with hooks that feed o. The returned writer exposes the
// same optional interfaces as w (Flusher, Hijacker, Pusher, ReaderFrom) and
// unwraps for http.ResponseController.
func (o *observer) wrap(w http.ResponseWriter) http.ResponseWriter {
	return httpsnoop.Wrap(w, httpsnoop.Hooks{
		WriteHeader: func(next httpsnoop.WriteHeaderFunc) httpsnoop.WriteHeaderFunc {
			return func(code int) {
				next(code)
				o.header(code)
			}
		},
		Write: func(next httpsnoop.WriteFunc) httpsnoop.WriteFunc {
			return func(b []byte) (int, error) {
				o.header(http.StatusOK)
				n, err := next(b)
				o.bytes += int64(n)
				return n, err
			}
		},
		ReadFrom: func(next httpsnoop.ReadFromFunc) httpsnoop.ReadFromFunc {
			return func(src io.Reader) (int64, error) {
				o.header(http.StatusOK)
				n, err := next(src)
				o.bytes += n
				return n, err
			}
		},
		Flush: func(next httpsnoop.FlushFunc) httpsnoop.FlushFunc {
			return func() {
				o.header(http.StatusOK)
				next()
			}
		},
		Hijack: func(next httpsnoop.HijackFunc) httpsnoop.HijackFunc {
			return func() (net.Conn, *bufio.ReadWriter, error) {
				conn, rw, err := next()
				if err == nil {
					o.hijacked = true
				}
				return conn, rw, err
			}
		},
	})
}

// header records the final status. Informational 1xx codes other than
// 101 Switching Protocols are interim responses and do not count.
func (o *observer) header(code int) {
	if o.wroteHeader {
		return
	}
	if code >= 100 && code < 200 && code != http.StatusSwitchingProtocols {
		return
	}
	o.status = code
	o.wroteHeader = true
}

// responded reports whether anything reached the client.
func (o *observer) responded() bool {
	return o.wroteHeader || o.hijacked
}

// snapshot returns the response metadata observed so far.
func (o *observer) snapshot() (status int, bytes int64) {
	switch {
	case o.hijacked:
		// The handler owns the connection; what it wrote is not observable.
		// An upgrade answered on the raw connection is a protocol switch.
		if o.status == 0 && o.upgrade {
			return http.StatusSwitchingProtocols, clf.UnknownBytes
		}
		return o.status, clf.UnknownBytes
	case !o.wroteHeader:
		// net/http sends 200 with an empty body when the handler wrote nothing.
		return http.StatusOK, 0
	default:
		return o.status, o.bytes
	}
}
