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
package workerpool

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/poolhttpd/poolhttpd/internal/logger"
	"github.com/poolhttpd/poolhttpd/metrics"
)

// WorkerState is the lifecycle state of a single worker.
type WorkerState int32

const (
	WorkerStarting WorkerState = iota
	WorkerIdle
	WorkerExecuting
	WorkerTerminated
)

func (s WorkerState) String() string {
	switch s {
	case WorkerStarting:
		return "Starting"
	case WorkerIdle:
		return "Idle"
	case WorkerExecuting:
		return "Executing"
	case WorkerTerminated:
		return "Terminated"
	default:
		return "Unknown"
	}
}

type worker struct {
	id       uint32
	poolName string
	queue    *workQueue
	metrics  metrics.MetricHandle

	state atomic.Int32

	// Closed when the worker's goroutine returns.
	done chan struct{}
}

func newWorker(id uint32, poolName string, queue *workQueue, metricHandle metrics.MetricHandle) *worker {
	w := &worker{
		id:       id,
		poolName: poolName,
		queue:    queue,
		metrics:  metricHandle,
		done:     make(chan struct{}),
	}
	w.state.Store(int32(WorkerStarting))
	return w
}

func (w *worker) State() WorkerState {
	return WorkerState(w.state.Load())
}

func (w *worker) start() {
	go w.run()
}

func (w *worker) run() {
	defer close(w.done)
	defer w.state.Store(int32(WorkerTerminated))

	for {
		w.state.Store(int32(WorkerIdle))
		job, ok := w.queue.pop()
		if !ok {
			logger.Debugf("%s: worker %d: queue closed, exiting.", w.poolName, w.id)
			return
		}
		w.execute(job)
	}
}

func (w *worker) execute(job Job) {
	w.state.Store(int32(WorkerExecuting))
	w.metrics.WorkersBusy(1)
	logger.Tracef("%s: worker %d: got a job; executing.", w.poolName, w.id)

	start := time.Now()
	job.Execute()

	w.metrics.JobLatency(context.Background(), time.Since(start))
	w.metrics.JobsCompletedCount(1)
	w.metrics.WorkersBusy(-1)
}

// join blocks until the worker's goroutine has returned.
func (w *worker) join() {
	<-w.done
}
