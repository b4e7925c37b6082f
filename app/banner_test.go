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

package app

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"rivaas.dev/commonlog/config"
)

func TestPrintBanner(t *testing.T) {
	t.Parallel()

	s := config.Default()
	s.AccessLog.TrustedProxies = []string{"10.0.0.0/8"}
	a, _, _ := newTestApp(t, s)

	var buf bytes.Buffer
	a.printBanner(&buf, "[::]:8080")
	out := buf.String()

	assert.NotContains(t, out, "\x1b[", "non-terminal output must be plain")
	assert.Contains(t, out, "http://0.0.0.0:8080")
	assert.Contains(t, out, "stdout (async, queue 1024)")
	assert.Contains(t, out, "1 trusted, 1 hops")
	assert.Contains(t, out, "Disabled")
}

func TestPrintBanner_Metrics(t *testing.T) {
	t.Parallel()

	a, _, _ := newTestApp(t, nil, WithMetricsReader(sdkmetric.NewManualReader()))
	require.NotNil(t, a.Metrics())

	var buf bytes.Buffer
	a.printBanner(&buf, "127.0.0.1:9000")
	assert.Contains(t, buf.String(), "Metrics:")
	assert.Equal(t, 1, strings.Count(buf.String(), "Disabled"), "only tracing is disabled")
}

func TestPrintBanner_Tracing(t *testing.T) {
	t.Parallel()

	s := config.Default()
	s.Tracing.Enabled = true
	s.Tracing.Provider = "noop"
	a, _, _ := newTestApp(t, s)
	require.NotNil(t, a.Tracer())

	var buf bytes.Buffer
	a.printBanner(&buf, "127.0.0.1:9000")
	assert.Contains(t, buf.String(), "Tracing:")
	assert.Contains(t, buf.String(), "noop")
}
