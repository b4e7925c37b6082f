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

package codec

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"strings"
)

// EnvVarCodec decodes KEY=VALUE lines into a two-level map. The part of
// the key before the first underscore names the section, the rest is the
// field: ACCESSLOG_DURATION_UNIT=us becomes accesslog.duration_unit.
// A key without an underscore is a top-level value.
type EnvVarCodec struct{}

// Encode is not supported; environment variables are read-only.
func (EnvVarCodec) Encode(any) ([]byte, error) {
	return nil, errors.New("encoding to environment variables is not supported")
}

// Decode fills v, which must be a *map[string]any.
func (EnvVarCodec) Decode(data []byte, v any) error {
	ptr, ok := v.(*map[string]any)
	if !ok {
		return fmt.Errorf("EnvVarCodec.Decode: expected *map[string]any, got %T", v)
	}

	conf := make(map[string]any)
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		key, value, found := strings.Cut(scanner.Text(), "=")
		key = strings.Trim(strings.ToLower(strings.TrimSpace(key)), "_")
		if !found || key == "" {
			continue
		}
		value = strings.TrimSpace(value)

		section, field, nested := strings.Cut(key, "_")
		if !nested {
			conf[key] = value
			continue
		}
		m, ok := conf[section].(map[string]any)
		if !ok {
			m = make(map[string]any)
			conf[section] = m
		}
		m[strings.Trim(field, "_")] = value
	}
	if err := scanner.Err(); err != nil {
		return err
	}

	*ptr = conf
	return nil
}
