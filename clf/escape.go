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

import "unicode/utf8"

const hexDigits = "0123456789abcdef"

// needsEscape reports whether appendEscaped would rewrite any byte of s.
func needsEscape(s string, space bool) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c < 0x20 || c == 0x7f || c == '"' || c == '\\' || c >= utf8.RuneSelf || (space && c == ' ') {
			return true
		}
	}
	return false
}

// appendEscaped appends s the way Apache escapes log items: quote and
// backslash are backslash-escaped, control bytes, DEL and bytes that are not
// part of valid UTF-8 become \xHH. Valid multi-byte UTF-8 is kept as is.
//
// Bare fields (client, ident, user) set space so that a value can never
// split into two fields. An empty s appends [Placeholder].
func appendEscaped(dst []byte, s string, space bool) []byte {
	if s == "" {
		return append(dst, Placeholder...)
	}
	if !needsEscape(s, space) {
		return append(dst, s...)
	}

	for i := 0; i < len(s); {
		c := s[i]
		switch {
		case c == '"' || c == '\\':
			dst = append(dst, '\\', c)
			i++
		case c < 0x20 || c == 0x7f || (space && c == ' '):
			dst = appendHexByte(dst, c)
			i++
		case c < utf8.RuneSelf:
			dst = append(dst, c)
			i++
		default:
			r, size := utf8.DecodeRuneInString(s[i:])
			if r == utf8.RuneError && size <= 1 {
				dst = appendHexByte(dst, c)
				i++
				continue
			}
			dst = append(dst, s[i:i+size]...)
			i += size
		}
	}
	return dst
}

func appendHexByte(dst []byte, c byte) []byte {
	return append(dst, '\\', 'x', hexDigits[c>>4], hexDigits[c&0x0f])
}
