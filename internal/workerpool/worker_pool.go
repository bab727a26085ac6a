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
// Package workerpool provides a fixed-size pool of long-lived workers that
// execute submitted jobs asynchronously.
//
// Jobs are kept in an unbounded FIFO queue shared by all workers. Each job is
// executed exactly once by exactly one worker. Stop closes the queue, lets the
// workers drain whatever is still queued and joins them in creation order.
//
// A job that panics is not recovered: the panic terminates the process, as
// any unrecovered panic in a goroutine does. Jobs that can fail must handle
// their own errors.
package workerpool

// Job interface defines the contract for a runnable unit of work.
type Job interface {
	Execute()
}

// JobFunc adapts an ordinary function to the Job interface.
type JobFunc func()

func (f JobFunc) Execute() {
	f()
}

type WorkerPool interface {
	// Submit adds a job to the pool for asynchronous execution.
	Submit(job Job) error

	// Stop gracefully shuts down the pool, waiting for all queued jobs to complete.
	Stop()
}
