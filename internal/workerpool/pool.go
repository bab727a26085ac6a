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
	"errors"
	"fmt"
	"sync"

	"github.com/poolhttpd/poolhttpd/internal/logger"
	"github.com/poolhttpd/poolhttpd/internal/util"
	"github.com/poolhttpd/poolhttpd/metrics"
)

var (
	// ErrPoolStopped is returned by Submit once Stop has been called. It wraps
	// ErrQueueClosed.
	ErrPoolStopped = fmt.Errorf("worker pool is stopped: %w", ErrQueueClosed)

	ErrNilJob = errors.New("cannot submit a nil job")
)

const defaultPoolName = "workerpool"

var _ WorkerPool = (*Pool)(nil)

// Option configures a Pool.
type Option func(*Pool)

// WithMetrics sets the handle the pool and its workers report to.
func WithMetrics(metricHandle metrics.MetricHandle) Option {
	return func(p *Pool) {
		p.metrics = metricHandle
	}
}

// WithName sets the name used to prefix the pool's log lines.
func WithName(name string) Option {
	return func(p *Pool) {
		p.name = name
	}
}

// Pool is a fixed set of workers consuming jobs from a shared queue.
type Pool struct {
	name    string
	metrics metrics.MetricHandle

	queue   *workQueue
	workers []*worker

	// Serializes Stop so that each worker is joined exactly once.
	mu      sync.Mutex
	stopped bool
}

// NewPool creates a pool and starts size workers. No job runs before the
// first Submit. It panics if size is 0.
func NewPool(size uint32, opts ...Option) *Pool {
	if size == 0 {
		panic("workerpool: cannot create a pool with 0 workers")
	}

	p := &Pool{
		name:    defaultPoolName,
		metrics: metrics.NewNoopMetrics(),
		queue:   newWorkQueue(),
		workers: make([]*worker, 0, size),
	}
	for _, opt := range opts {
		opt(p)
	}

	for i := range size {
		w := newWorker(i, p.name, p.queue, p.metrics)
		p.workers = append(p.workers, w)
		w.start()
	}

	logger.Debugf("%s: started with %d workers.", p.name, size)
	return p
}

// NewPoolForCurrentCPU creates a pool with one worker per logical CPU.
func NewPoolForCurrentCPU(opts ...Option) *Pool {
	return newPoolForCurrentCPU(util.LogicalCPUCount, opts...)
}

func newPoolForCurrentCPU(numCPU func() int, opts ...Option) *Pool {
	n := numCPU()
	if n < 1 {
		n = 1
	}
	return NewPool(uint32(n), opts...)
}

// Submit queues the job for execution by some worker and returns without
// waiting for it to run.
func (p *Pool) Submit(job Job) error {
	if job == nil {
		return ErrNilJob
	}

	if err := p.queue.push(job); err != nil {
		if errors.Is(err, ErrQueueClosed) {
			return ErrPoolStopped
		}
		return fmt.Errorf("push: %w", err)
	}

	p.metrics.JobsSubmittedCount(1)
	return nil
}

// Stop closes the queue and waits for every worker to finish the jobs still
// queued and exit. Workers are joined in the order they were created. Calls
// after the first return immediately.
func (p *Pool) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.stopped {
		return
	}
	p.stopped = true

	logger.Debugf("%s: shutting down %d workers.", p.name, len(p.workers))
	p.queue.close()

	for _, w := range p.workers {
		logger.Tracef("%s: joining worker %d.", p.name, w.id)
		w.join()
	}
	logger.Debugf("%s: all workers exited.", p.name)
}

// Size returns the number of workers in the pool.
func (p *Pool) Size() int {
	return len(p.workers)
}

// WorkerStates returns a snapshot of each worker's state, indexed by worker id.
func (p *Pool) WorkerStates() []WorkerState {
	states := make([]WorkerState, len(p.workers))
	for i, w := range p.workers {
		states[i] = w.State()
	}
	return states
}
