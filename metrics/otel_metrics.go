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
	"errors"
	"sync/atomic"
	"time"

	"github.com/poolhttpd/poolhttpd/internal/logger"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "poolhttpd"

var (
	requestsCountRouteIndexAttrSet    = metric.WithAttributeSet(attribute.NewSet(attribute.String("route", string(RouteIndexAttr))))
	requestsCountRouteNotFoundAttrSet = metric.WithAttributeSet(attribute.NewSet(attribute.String("route", string(RouteNotFoundAttr))))
	requestsCountRouteSleepAttrSet    = metric.WithAttributeSet(attribute.NewSet(attribute.String("route", string(RouteSleepAttr))))
)

type otelMetrics struct {
	jobLatencies                     metric.Int64Histogram
	jobsCompletedCountAtomic         *atomic.Int64
	jobsSubmittedCountAtomic         *atomic.Int64
	poolBusyWorkersAtomic            *atomic.Int64
	requestsCountRouteIndexAtomic    *atomic.Int64
	requestsCountRouteNotFoundAtomic *atomic.Int64
	requestsCountRouteSleepAtomic    *atomic.Int64
}

func (o *otelMetrics) JobLatency(
	ctx context.Context, latency time.Duration) {
	o.jobLatencies.Record(ctx, latency.Microseconds())
}

func (o *otelMetrics) JobsCompletedCount(
	inc int64) {
	if inc < 0 {
		logger.Errorf("Counter metric pool/jobs_completed_count received a negative increment: %d", inc)
		return
	}
	o.jobsCompletedCountAtomic.Add(inc)
}

func (o *otelMetrics) JobsSubmittedCount(
	inc int64) {
	if inc < 0 {
		logger.Errorf("Counter metric pool/jobs_submitted_count received a negative increment: %d", inc)
		return
	}
	o.jobsSubmittedCountAtomic.Add(inc)
}

func (o *otelMetrics) WorkersBusy(
	inc int64) {
	o.poolBusyWorkersAtomic.Add(inc)
}

func (o *otelMetrics) RequestsCount(
	inc int64, route Route) {
	if inc < 0 {
		logger.Errorf("Counter metric server/requests_count received a negative increment: %d", inc)
		return
	}
	switch route {
	case RouteIndexAttr:
		o.requestsCountRouteIndexAtomic.Add(inc)
	case RouteNotFoundAttr:
		o.requestsCountRouteNotFoundAtomic.Add(inc)
	case RouteSleepAttr:
		o.requestsCountRouteSleepAtomic.Add(inc)
	default:
		logger.Tracef("Attribute %s is not declared", route)
	}
}

// NewOTelMetrics registers the poolhttpd instruments with the global meter
// provider. Call it after the provider has been installed.
func NewOTelMetrics() (*otelMetrics, error) {
	meter := otel.Meter(meterName)
	var jobsCompletedCountAtomic,
		jobsSubmittedCountAtomic,
		poolBusyWorkersAtomic atomic.Int64

	var requestsCountRouteIndexAtomic,
		requestsCountRouteNotFoundAtomic,
		requestsCountRouteSleepAtomic atomic.Int64

	jobLatencies, err0 := meter.Int64Histogram("pool/job_latencies",
		metric.WithDescription("The cumulative distribution of the time workers spent executing jobs."),
		metric.WithUnit("us"),
		metric.WithExplicitBucketBoundaries(50, 100, 200, 400, 800, 1200, 2000, 5000, 10000, 20000, 50000, 100000, 200000, 500000, 1000000, 2000000, 5000000, 10000000, 50000000))

	_, err1 := meter.Int64ObservableCounter("pool/jobs_completed_count",
		metric.WithDescription("The cumulative number of jobs whose execution returned."),
		metric.WithUnit(""),
		metric.WithInt64Callback(func(_ context.Context, obsrv metric.Int64Observer) error {
			conditionallyObserve(obsrv, &jobsCompletedCountAtomic)
			return nil
		}))

	_, err2 := meter.Int64ObservableCounter("pool/jobs_submitted_count",
		metric.WithDescription("The cumulative number of jobs accepted by the worker pool."),
		metric.WithUnit(""),
		metric.WithInt64Callback(func(_ context.Context, obsrv metric.Int64Observer) error {
			conditionallyObserve(obsrv, &jobsSubmittedCountAtomic)
			return nil
		}))

	_, err3 := meter.Int64ObservableUpDownCounter("pool/busy_workers",
		metric.WithDescription("The number of workers currently executing a job."),
		metric.WithUnit(""),
		metric.WithInt64Callback(func(_ context.Context, obsrv metric.Int64Observer) error {
			observeUpDownCounter(obsrv, &poolBusyWorkersAtomic)
			return nil
		}))

	_, err4 := meter.Int64ObservableCounter("server/requests_count",
		metric.WithDescription("The cumulative number of request lines served, along with the route they matched."),
		metric.WithUnit(""),
		metric.WithInt64Callback(func(_ context.Context, obsrv metric.Int64Observer) error {
			conditionallyObserve(obsrv, &requestsCountRouteIndexAtomic, requestsCountRouteIndexAttrSet)
			conditionallyObserve(obsrv, &requestsCountRouteNotFoundAtomic, requestsCountRouteNotFoundAttrSet)
			conditionallyObserve(obsrv, &requestsCountRouteSleepAtomic, requestsCountRouteSleepAttrSet)
			return nil
		}))

	errs := []error{err0, err1, err2, err3, err4}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}

	return &otelMetrics{
		jobLatencies:                     jobLatencies,
		jobsCompletedCountAtomic:         &jobsCompletedCountAtomic,
		jobsSubmittedCountAtomic:         &jobsSubmittedCountAtomic,
		poolBusyWorkersAtomic:            &poolBusyWorkersAtomic,
		requestsCountRouteIndexAtomic:    &requestsCountRouteIndexAtomic,
		requestsCountRouteNotFoundAtomic: &requestsCountRouteNotFoundAtomic,
		requestsCountRouteSleepAtomic:    &requestsCountRouteSleepAtomic,
	}, nil
}

func conditionallyObserve(obsrv metric.Int64Observer, counter *atomic.Int64, obsrvOptions ...metric.ObserveOption) {
	if val := counter.Load(); val > 0 {
		obsrv.Observe(val, obsrvOptions...)
	}
}

func observeUpDownCounter(obsrv metric.Int64Observer, counter *atomic.Int64, obsrvOptions ...metric.ObserveOption) {
	obsrv.Observe(counter.Load(), obsrvOptions...)
}
