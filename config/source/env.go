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

package source

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strings"

	"github.com/joho/godotenv"

	"rivaas.dev/commonlog/config/codec"
)

// Env loads process environment variables that start with prefix.
// COMMONLOG_SINK_QUEUE_SIZE=64 with prefix "COMMONLOG_" becomes
// sink.queue_size.
type Env struct {
	prefix string
}

// NewEnv creates an environment source.
func NewEnv(prefix string) *Env {
	return &Env{prefix: prefix}
}

// Load reads the environment.
func (e *Env) Load(context.Context) (map[string]any, error) {
	return decodeEnv(e.prefix, os.Environ())
}

// DotEnv loads variables that start with prefix from .env files without
// touching the process environment. Missing files are skipped. Later
// files override earlier ones.
type DotEnv struct {
	prefix string
	paths  []string
}

// NewDotEnv creates a .env source. With no paths it reads ".env".
func NewDotEnv(prefix string, paths ...string) *DotEnv {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	return &DotEnv{prefix: prefix, paths: paths}
}

// Load parses the files.
func (d *DotEnv) Load(context.Context) (map[string]any, error) {
	vars := make(map[string]string)
	for _, path := range d.paths {
		m, err := godotenv.Read(path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
		for k, v := range m {
			vars[k] = v
		}
	}

	env := make([]string, 0, len(vars))
	for k, v := range vars {
		env = append(env, k+"="+v)
	}
	sort.Strings(env)
	return decodeEnv(d.prefix, env)
}

func decodeEnv(prefix string, environ []string) (map[string]any, error) {
	lines := make([]string, 0, len(environ))
	for _, kv := range environ {
		if strings.HasPrefix(kv, prefix) {
			lines = append(lines, strings.TrimPrefix(kv, prefix))
		}
	}

	var conf map[string]any
	if err := (codec.EnvVarCodec{}).Decode([]byte(strings.Join(lines, "\n")), &conf); err != nil {
		return nil, fmt.Errorf("failed to decode environment variables: %w", err)
	}
	return conf, nil
}
