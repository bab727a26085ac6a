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
	"time"
)

// Route is the value of the route attribute of server/requests_count.
type Route string

// Values of the route attribute.
const (
	RouteIndexAttr    Route = "index"
	RouteSleepAttr    Route = "sleep"
	RouteNotFoundAttr Route = "not_found"
)

// MetricHandle provides an interface for recording metrics.
// The methods of this interface are called by the code to record metrics.
type MetricHandle interface {
	// JobLatency - The cumulative distribution of the time workers spent executing jobs.
	JobLatency(ctx context.Context, duration time.Duration)

	// JobsCompletedCount - The cumulative number of jobs whose execution returned.
	JobsCompletedCount(inc int64)

	// JobsSubmittedCount - The cumulative number of jobs accepted by the worker pool.
	JobsSubmittedCount(inc int64)

	// WorkersBusy - The number of workers currently executing a job.
	WorkersBusy(inc int64)

	// RequestsCount - The cumulative number of request lines served, along with the route they matched.
	RequestsCount(inc int64, route Route)
}
