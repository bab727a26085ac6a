// Copyright 2025 Google LLC
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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func setupOTel(t *testing.T) (*otelMetrics, *metric.ManualReader) {
	t.Helper()
	reader := metric.NewManualReader()
	provider := metric.NewMeterProvider(metric.WithReader(reader))
	otel.SetMeterProvider(provider)

	m, err := NewOTelMetrics()
	require.NoError(t, err)
	return m, reader
}

// gatherCounterMetrics collects all Sum[int64] metrics from the reader, keyed
// by metric name and then by encoded attribute set.
func gatherCounterMetrics(ctx context.Context, t *testing.T, rd *metric.ManualReader) map[string]map[string]int64 {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, rd.Collect(ctx, &rm))

	results := make(map[string]map[string]int64)
	encoder := attribute.DefaultEncoder()
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			sum, ok := m.Data.(metricdata.Sum[int64])
			if !ok {
				continue
			}
			metricMap := make(map[string]int64)
			for _, dp := range sum.DataPoints {
				metricMap[dp.Attributes.Encoded(encoder)] = dp.Value
			}
			results[m.Name] = metricMap
		}
	}
	return results
}

func TestJobsSubmittedCount(t *testing.T) {
	ctx := context.Background()
	m, rd := setupOTel(t)

	m.JobsSubmittedCount(3)
	m.JobsSubmittedCount(4)

	VerifyCounterMetric(t, ctx, rd, "pool/jobs_submitted_count", attribute.NewSet(), 7)
}

func TestJobsCompletedCount(t *testing.T) {
	tests := []struct {
		name     string
		incs     []int64
		expected int64
		present  bool
	}{
		{
			name:     "summed",
			incs:     []int64{1, 1, 5},
			expected: 7,
			present:  true,
		},
		{
			name:     "negative_increment_ignored",
			incs:     []int64{2, -1},
			expected: 2,
			present:  true,
		},
		{
			name:    "zero_not_reported",
			incs:    []int64{0},
			present: false,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ctx := context.Background()
			m, rd := setupOTel(t)

			for _, inc := range tc.incs {
				m.JobsCompletedCount(inc)
			}

			metrics := gatherCounterMetrics(ctx, t, rd)
			got, ok := metrics["pool/jobs_completed_count"]
			if !tc.present {
				assert.Empty(t, got)
				return
			}
			require.True(t, ok, "pool/jobs_completed_count metric not found")
			emptySet := attribute.NewSet()
			assert.Equal(t, map[string]int64{emptySet.Encoded(attribute.DefaultEncoder()): tc.expected}, got)
		})
	}
}

func TestWorkersBusy(t *testing.T) {
	ctx := context.Background()
	m, rd := setupOTel(t)

	m.WorkersBusy(1)
	m.WorkersBusy(1)
	m.WorkersBusy(1)
	VerifyCounterMetric(t, ctx, rd, "pool/busy_workers", attribute.NewSet(), 3)

	m.WorkersBusy(-3)
	VerifyCounterMetric(t, ctx, rd, "pool/busy_workers", attribute.NewSet(), 0)
}

func TestJobLatency(t *testing.T) {
	ctx := context.Background()
	m, rd := setupOTel(t)

	m.JobLatency(ctx, 120*time.Microsecond)
	m.JobLatency(ctx, 10*time.Millisecond)

	VerifyHistogramMetric(t, ctx, rd, "pool/job_latencies", attribute.NewSet(), 2)
	hist, ok := findMetric(t, ctx, rd, "pool/job_latencies").(metricdata.Histogram[int64])
	require.True(t, ok)
	require.Len(t, hist.DataPoints, 1)
	assert.Equal(t, int64(10120), hist.DataPoints[0].Sum)
}

func TestRequestsCount(t *testing.T) {
	tests := []struct {
		name     string
		f        func(m *otelMetrics)
		expected map[attribute.Set]int64
	}{
		{
			name: "route_index",
			f: func(m *otelMetrics) {
				m.RequestsCount(5, RouteIndexAttr)
			},
			expected: map[attribute.Set]int64{
				attribute.NewSet(attribute.String("route", "index")): 5,
			},
		},
		{
			name: "multiple_routes",
			f: func(m *otelMetrics) {
				m.RequestsCount(1, RouteIndexAttr)
				m.RequestsCount(2, RouteSleepAttr)
				m.RequestsCount(3, RouteNotFoundAttr)
				m.RequestsCount(1, RouteSleepAttr)
			},
			expected: map[attribute.Set]int64{
				attribute.NewSet(attribute.String("route", "index")):     1,
				attribute.NewSet(attribute.String("route", "sleep")):     3,
				attribute.NewSet(attribute.String("route", "not_found")): 3,
			},
		},
		{
			name: "undeclared_route_dropped",
			f: func(m *otelMetrics) {
				m.RequestsCount(4, Route("favicon"))
				m.RequestsCount(1, RouteNotFoundAttr)
			},
			expected: map[attribute.Set]int64{
				attribute.NewSet(attribute.String("route", "not_found")): 1,
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ctx := context.Background()
			encoder := attribute.DefaultEncoder()
			m, rd := setupOTel(t)

			tc.f(m)

			metrics := gatherCounterMetrics(ctx, t, rd)
			got, ok := metrics["server/requests_count"]
			require.True(t, ok, "server/requests_count metric not found")
			expectedMap := make(map[string]int64)
			for k, v := range tc.expected {
				expectedMap[k.Encoded(encoder)] = v
			}
			assert.Equal(t, expectedMap, got)
		})
	}
}

func TestNoopMetrics(t *testing.T) {
	m := NewNoopMetrics()

	assert.NotPanics(t, func() {
		m.JobsSubmittedCount(1)
		m.JobsCompletedCount(1)
		m.WorkersBusy(1)
		m.JobLatency(context.Background(), time.Second)
		m.RequestsCount(1, RouteSleepAttr)
	})
}
