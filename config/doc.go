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

// Package config loads [Settings] for the access log server from layered
// sources.
//
// Sources are applied in order and later ones override earlier ones:
//
//	loader := config.MustNew(
//	    config.WithFile("commonlog.yaml"),
//	    config.WithDotEnv("COMMONLOG_"),
//	    config.WithConsul("commonlog/config.yaml"), // skipped without CONSUL_HTTP_ADDR
//	    config.WithEnv("COMMONLOG_"),
//	)
//	settings, err := loader.Load(ctx)
//
// Keys are case-insensitive. Environment variables name the section first:
// COMMONLOG_ACCESSLOG_DURATION_UNIT=us sets accesslog.duration_unit and
// COMMONLOG_ACCESSLOG_EXCLUDE_PATHS=/healthz,/metrics sets a list.
//
// Fields left unset take the value of their default tag. The result is
// checked by [Settings.Validate]; [WithJSONSchema] and [WithValidator] add
// checks on the raw merged map.
package config
