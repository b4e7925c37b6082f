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

// DefaultSchema is a JSON Schema for the merged configuration map.
// Durations are strings such as "250ms" and lists may be a comma separated
// string, which is how environment variables deliver them.
var DefaultSchema = []byte(`{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "additionalProperties": false,
  "$defs": {
    "list": {
      "oneOf": [
        {"type": "string"},
        {"type": "array", "items": {"type": "string"}}
      ]
    },
    "boolish": {"type": ["boolean", "string"]},
    "intish": {"type": ["integer", "string"]}
  },
  "properties": {
    "server": {
      "type": "object",
      "additionalProperties": false,
      "properties": {
        "addr": {"type": "string"},
        "environment": {"type": "string"},
        "read_header_timeout": {"type": "string"},
        "shutdown_timeout": {"type": "string"}
      }
    },
    "accesslog": {
      "type": "object",
      "additionalProperties": false,
      "properties": {
        "duration_unit": {"enum": ["ms", "millis", "milliseconds", "us", "µs", "micros", "microseconds", "s", "sec", "seconds", "auto"]},
        "disable_duration": {"$ref": "#/$defs/boolish"},
        "zero_bytes": {"enum": ["dash", "zero"]},
        "timezone": {"type": "string"},
        "exclude_paths": {"$ref": "#/$defs/list"},
        "exclude_prefixes": {"$ref": "#/$defs/list"},
        "trusted_proxies": {"$ref": "#/$defs/list"},
        "proxy_headers": {"$ref": "#/$defs/list"},
        "proxy_max_hops": {"$ref": "#/$defs/intish"}
      }
    },
    "sink": {
      "type": "object",
      "additionalProperties": false,
      "properties": {
        "type": {"enum": ["stdout", "stderr", "file", "slog"]},
        "path": {"type": "string"},
        "async": {"$ref": "#/$defs/boolish"},
        "queue_size": {"$ref": "#/$defs/intish"},
        "level": {"enum": ["debug", "info", "warn", "warning", "error"]}
      }
    },
    "logging": {
      "type": "object",
      "additionalProperties": false,
      "properties": {
        "handler": {"enum": ["json", "text", "console"]},
        "level": {"enum": ["debug", "info", "warn", "warning", "error"]},
        "output": {"enum": ["stdout", "stderr"]},
        "service_name": {"type": "string"},
        "source": {"$ref": "#/$defs/boolish"}
      }
    },
    "metrics": {
      "type": "object",
      "additionalProperties": false,
      "properties": {
        "enabled": {"$ref": "#/$defs/boolish"},
        "provider": {"enum": ["prometheus", "otlp", "stdout"]},
        "path": {"type": "string"},
        "endpoint": {"type": "string"},
        "export_interval": {"type": "string"}
      }
    },
    "tracing": {
      "type": "object",
      "additionalProperties": false,
      "properties": {
        "enabled": {"$ref": "#/$defs/boolish"},
        "provider": {"enum": ["noop", "stdout", "otlp", "otlp-http"]},
        "endpoint": {"type": "string"},
        "insecure": {"$ref": "#/$defs/boolish"},
        "sample_rate": {"type": ["number", "string"]}
      }
    }
  }
}`)
