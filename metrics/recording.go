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

package metrics

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

var statusClasses = [...]string{"unknown", "1xx", "2xx", "3xx", "4xx", "5xx"}

// statusClass maps a status code to its class label. Codes outside
// 100..599 and the unknown status 0 map to "unknown".
func statusClass(status int) string {
	if status < 100 || status > 599 {
		return statusClasses[0]
	}
	return statusClasses[status/100]
}

func (r *Recorder) initializeMetrics() error {
	var err error

	r.linesEmitted, err = r.meter.Int64Counter(
		"accesslog_lines_emitted",
		metric.WithDescription("Access log lines accepted by the sink"),
	)
	if err != nil {
		return fmt.Errorf("failed to create lines emitted counter: %w", err)
	}

	r.linesDropped, err = r.meter.Int64Counter(
		"accesslog_lines_dropped",
		metric.WithDescription("Access log lines lost to sink failures"),
	)
	if err != nil {
		return fmt.Errorf("failed to create lines dropped counter: %w", err)
	}

	r.requestsAborted, err = r.meter.Int64Counter(
		"accesslog_requests_aborted",
		metric.WithDescription("Requests that ended without an access log line"),
	)
	if err != nil {
		return fmt.Errorf("failed to create requests aborted counter: %w", err)
	}

	r.requestDuration, err = r.meter.Float64Histogram(
		"accesslog_request_duration",
		metric.WithDescription("Duration of logged requests in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(r.durationBuckets...),
	)
	if err != nil {
		return fmt.Errorf("failed to create request duration histogram: %w", err)
	}
	return nil
}

// RecordEmitted counts a line accepted by the sink and observes elapsed.
func (r *Recorder) RecordEmitted(ctx context.Context, status int, elapsed time.Duration) {
	if r.isShuttingDown.Load() {
		return
	}
	attrs := metric.WithAttributes(r.serviceNameAttr, attribute.String("status_class", statusClass(status)))
	r.linesEmitted.Add(ctx, 1, attrs)
	r.requestDuration.Record(ctx, elapsed.Seconds(), attrs)
}

// RecordDropped counts a line the sink failed to accept.
func (r *Recorder) RecordDropped(ctx context.Context, reason string) {
	if r.isShuttingDown.Load() {
		return
	}
	r.linesDropped.Add(ctx, 1, metric.WithAttributes(r.serviceNameAttr, attribute.String("reason", reason)))
}

// RecordAborted counts a request that ended without a line.
func (r *Recorder) RecordAborted(ctx context.Context) {
	if r.isShuttingDown.Load() {
		return
	}
	r.requestsAborted.Add(ctx, 1, metric.WithAttributes(r.serviceNameAttr))
}
