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

package config

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"reflect"
	"strings"
	"sync"
	"time"

	"dario.cat/mergo"
	"github.com/go-viper/mapstructure/v2"
	"github.com/santhosh-tekuri/jsonschema/v6"
	"github.com/spf13/cast"

	"rivaas.dev/commonlog/config/codec"
	"rivaas.dev/commonlog/config/source"
)

// Source provides one layer of configuration as a nested map.
type Source interface {
	Load(ctx context.Context) (map[string]any, error)
}

// Option configures a [Loader].
type Option func(*Loader) error

// Loader merges sources into [Settings].
// Load is safe to call concurrently.
type Loader struct {
	mu         sync.RWMutex
	values     map[string]any
	sources    []Source
	schema     *jsonschema.Schema
	validators []func(map[string]any) error
}

// WithSource adds a custom source.
func WithSource(src Source) Option {
	return func(l *Loader) error {
		if src == nil {
			return errors.New("source must not be nil")
		}
		l.sources = append(l.sources, src)
		return nil
	}
}

// WithFile adds a file source. The format is detected from the extension.
func WithFile(path string) Option {
	return func(l *Loader) error {
		t, err := codec.Detect(path)
		if err != nil {
			return err
		}
		return WithFileAs(path, t)(l)
	}
}

// WithFileAs adds a file source with an explicit format.
func WithFileAs(path string, t codec.Type) Option {
	return func(l *Loader) error {
		dec, err := codec.Lookup(t)
		if err != nil {
			return err
		}
		l.sources = append(l.sources, source.NewFile(path, dec))
		return nil
	}
}

// WithContent adds an in-memory document.
func WithContent(data []byte, t codec.Type) Option {
	return func(l *Loader) error {
		dec, err := codec.Lookup(t)
		if err != nil {
			return err
		}
		l.sources = append(l.sources, source.NewFileContent(data, dec))
		return nil
	}
}

// WithEnv adds the process environment variables starting with prefix.
func WithEnv(prefix string) Option {
	return func(l *Loader) error {
		l.sources = append(l.sources, source.NewEnv(prefix))
		return nil
	}
}

// WithDotEnv adds variables starting with prefix read from .env files.
func WithDotEnv(prefix string, paths ...string) Option {
	return func(l *Loader) error {
		l.sources = append(l.sources, source.NewDotEnv(prefix, paths...))
		return nil
	}
}

// WithConsul adds a document stored in Consul's KV store. The format is
// detected from the key's extension. The option does nothing when
// CONSUL_HTTP_ADDR is not set.
func WithConsul(key string) Option {
	return func(l *Loader) error {
		if os.Getenv("CONSUL_HTTP_ADDR") == "" {
			return nil
		}
		t, err := codec.Detect(key)
		if err != nil {
			return err
		}
		dec, err := codec.Lookup(t)
		if err != nil {
			return err
		}
		src, err := source.NewConsul(key, dec, nil)
		if err != nil {
			return err
		}
		l.sources = append(l.sources, src)
		return nil
	}
}

// WithJSONSchema validates the merged map against schema.
// Use [DefaultSchema] for the built-in one.
func WithJSONSchema(schema []byte) Option {
	return func(l *Loader) error {
		doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(schema))
		if err != nil {
			return err
		}
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource("commonlog.schema.json", doc); err != nil {
			return err
		}
		s, err := compiler.Compile("commonlog.schema.json")
		if err != nil {
			return err
		}
		l.schema = s
		return nil
	}
}

// WithValidator adds a check on the merged map.
func WithValidator(fn func(map[string]any) error) Option {
	return func(l *Loader) error {
		if fn == nil {
			return errors.New("validator must not be nil")
		}
		l.validators = append(l.validators, fn)
		return nil
	}
}

// New creates a Loader. Errors from all options are joined.
func New(opts ...Option) (*Loader, error) {
	l := &Loader{values: map[string]any{}}
	var errs error
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(l); err != nil {
			errs = errors.Join(errs, err)
		}
	}
	if errs != nil {
		return nil, errs
	}
	return l, nil
}

// MustNew is like [New] but panics on error.
func MustNew(opts ...Option) *Loader {
	l, err := New(opts...)
	if err != nil {
		panic(fmt.Sprintf("config.MustNew: %v", err))
	}
	return l
}

// Load reads every source in order, merges, validates and decodes them.
// The previously loaded values are kept when any step fails.
func (l *Loader) Load(ctx context.Context) (*Settings, error) {
	values, err := l.merge(ctx)
	if err != nil {
		return nil, err
	}

	if l.schema != nil {
		if err := l.schema.Validate(toSchemaValue(values)); err != nil {
			return nil, NewError("json-schema", "validate", err)
		}
	}
	for _, fn := range l.validators {
		if err := fn(values); err != nil {
			return nil, NewError("custom", "validate", err)
		}
	}

	settings, err := decode(values)
	if err != nil {
		return nil, err
	}
	if err := settings.Validate(); err != nil {
		return nil, err
	}

	l.mu.Lock()
	l.values = values
	l.mu.Unlock()
	return settings, nil
}

// Load is a shortcut for New followed by Load.
func Load(ctx context.Context, opts ...Option) (*Settings, error) {
	l, err := New(opts...)
	if err != nil {
		return nil, err
	}
	return l.Load(ctx)
}

// Values returns a copy of the merged map from the last successful Load.
func (l *Loader) Values() map[string]any {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return normalizeKeys(l.values)
}

// Dump writes the merged map from the last successful Load encoded as t.
func (l *Loader) Dump(w io.Writer, t codec.Type) error {
	enc, err := codec.Lookup(t)
	if err != nil {
		return err
	}
	data, err := enc.Encode(l.Values())
	if err != nil {
		return NewError("dump", "encode", err)
	}
	_, err = w.Write(data)
	return err
}

func (l *Loader) merge(ctx context.Context) (map[string]any, error) {
	merged := make(map[string]any)
	for i, src := range l.sources {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		name := fmt.Sprintf("source[%d]", i)

		conf, err := src.Load(ctx)
		if err != nil {
			return nil, NewError(name, "load", err)
		}
		if conf == nil {
			continue
		}
		if err := mergo.Map(&merged, normalizeKeys(conf), mergo.WithOverride); err != nil {
			return nil, NewError(name, "merge", err)
		}
	}
	return merged, nil
}

// normalizeKeys lowercases keys at every level so that sources merge
// case-insensitively.
func normalizeKeys(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		if nested, ok := v.(map[string]any); ok {
			v = normalizeKeys(nested)
		}
		out[strings.ToLower(k)] = v
	}
	return out
}

// toSchemaValue converts decoded values to the types the schema validator
// understands: TOML and YAML yield int64 and uint64 where JSON yields
// float64.
func toSchemaValue(v any) any {
	switch x := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, e := range x {
			out[k] = toSchemaValue(e)
		}
		return out
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = toSchemaValue(e)
		}
		return out
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32:
		return cast.ToFloat64(x)
	default:
		return v
	}
}

func decode(values map[string]any) (*Settings, error) {
	settings := &Settings{}
	if err := applyDefaults(settings); err != nil {
		return nil, NewError("defaults", "decode", err)
	}

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "config",
		WeaklyTypedInput: true,
		Result:           settings,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	})
	if err != nil {
		return nil, NewError("settings", "decode", err)
	}
	if err := dec.Decode(values); err != nil {
		return nil, NewError("settings", "decode", err)
	}
	return settings, nil
}

var durationType = reflect.TypeOf(time.Duration(0))

// applyDefaults sets every field that has a default tag. It runs before
// decoding so that values from sources, including explicit zeros, win.
func applyDefaults(v any) error {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Pointer || rv.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("defaults: expected pointer to struct, got %T", v)
	}
	return setDefaults(rv.Elem())
}

func setDefaults(rv reflect.Value) error {
	rt := rv.Type()
	for i := range rt.NumField() {
		field := rv.Field(i)
		sf := rt.Field(i)
		if !sf.IsExported() {
			continue
		}
		if field.Kind() == reflect.Struct && field.Type() != durationType {
			if err := setDefaults(field); err != nil {
				return err
			}
			continue
		}
		def, ok := sf.Tag.Lookup("default")
		if !ok {
			continue
		}
		if err := setDefault(field, def); err != nil {
			return fmt.Errorf("field %s: %w", sf.Name, err)
		}
	}
	return nil
}

func setDefault(field reflect.Value, def string) error {
	switch field.Kind() {
	case reflect.String:
		field.SetString(def)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if field.Type() == durationType {
			d, err := cast.ToDurationE(def)
			if err != nil {
				return err
			}
			field.SetInt(int64(d))
			return nil
		}
		n, err := cast.ToInt64E(def)
		if err != nil {
			return err
		}
		field.SetInt(n)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := cast.ToUint64E(def)
		if err != nil {
			return err
		}
		field.SetUint(n)
	case reflect.Float32, reflect.Float64:
		f, err := cast.ToFloat64E(def)
		if err != nil {
			return err
		}
		field.SetFloat(f)
	case reflect.Bool:
		b, err := cast.ToBoolE(def)
		if err != nil {
			return err
		}
		field.SetBool(b)
	case reflect.Slice:
		if field.Type().Elem().Kind() != reflect.String {
			return fmt.Errorf("unsupported slice type %s", field.Type())
		}
		field.Set(reflect.ValueOf(cast.ToStringSlice(strings.Split(def, ","))))
	default:
		return fmt.Errorf("unsupported type for default tag: %s", field.Kind())
	}
	return nil
}
