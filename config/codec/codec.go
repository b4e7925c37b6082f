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

// Package codec decodes and encodes configuration documents.
package codec

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/goccy/go-yaml"
)

// Type names a document format.
type Type string

const (
	TypeYAML   Type = "yaml"
	TypeTOML   Type = "toml"
	TypeJSON   Type = "json"
	TypeEnvVar Type = "env_var"
)

// Decoder turns a document into a value.
type Decoder interface {
	Decode(data []byte, v any) error
}

// Encoder turns a value into a document.
type Encoder interface {
	Encode(v any) ([]byte, error)
}

// Codec is both.
type Codec interface {
	Encoder
	Decoder
}

// YAMLCodec uses goccy/go-yaml.
type YAMLCodec struct{}

func (YAMLCodec) Encode(v any) ([]byte, error)    { return yaml.Marshal(v) }
func (YAMLCodec) Decode(data []byte, v any) error { return yaml.Unmarshal(data, v) }

// TOMLCodec uses BurntSushi/toml.
type TOMLCodec struct{}

func (TOMLCodec) Encode(v any) ([]byte, error)    { return toml.Marshal(v) }
func (TOMLCodec) Decode(data []byte, v any) error { return toml.Unmarshal(data, v) }

// JSONCodec uses encoding/json.
type JSONCodec struct{}

func (JSONCodec) Encode(v any) ([]byte, error)    { return json.MarshalIndent(v, "", "  ") }
func (JSONCodec) Decode(data []byte, v any) error { return json.Unmarshal(data, v) }

var codecs = map[Type]Codec{
	TypeYAML:   YAMLCodec{},
	TypeTOML:   TOMLCodec{},
	TypeJSON:   JSONCodec{},
	TypeEnvVar: EnvVarCodec{},
}

// Lookup returns the codec registered for t.
func Lookup(t Type) (Codec, error) {
	c, ok := codecs[Type(strings.ToLower(string(t)))]
	if !ok {
		return nil, fmt.Errorf("codec not found for type: %s", t)
	}
	return c, nil
}

var extensionFormats = map[string]Type{
	".yaml": TypeYAML,
	".yml":  TypeYAML,
	".json": TypeJSON,
	".toml": TypeTOML,
}

// Detect returns the format implied by the extension of path.
func Detect(path string) (Type, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if t, ok := extensionFormats[ext]; ok {
		return t, nil
	}
	return "", fmt.Errorf("cannot detect format from extension %q", ext)
}
