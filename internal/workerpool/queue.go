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

	"github.com/jacobsa/syncutil"
)

// ErrQueueClosed is returned when pushing to a queue that has been closed.
var ErrQueueClosed = errors.New("work queue is closed")

type node struct {
	job  Job
	next *node
}

// workQueue is an unbounded FIFO of jobs shared between producers and the
// workers of a single pool.
type workQueue struct {
	/////////////////////////
	// Mutable state
	/////////////////////////

	mu syncutil.InvariantMutex

	// Signalled when a job is pushed or the queue is closed.
	nonEmptyOrClosed *sync.Cond

	// GUARDED_BY(mu)
	head, tail *node

	// GUARDED_BY(mu)
	size int

	// Once set, no more jobs are accepted. Jobs already queued are still
	// handed out by pop.
	//
	// GUARDED_BY(mu)
	closed bool
}

func newWorkQueue() *workQueue {
	q := &workQueue{}
	q.mu = syncutil.NewInvariantMutex(q.checkInvariants)
	q.nonEmptyOrClosed = sync.NewCond(&q.mu)
	return q
}

// LOCKS_REQUIRED(q.mu)
func (q *workQueue) checkInvariants() {
	if (q.head == nil) != (q.size == 0) {
		panic(fmt.Sprintf("head is nil: %v, size: %d", q.head == nil, q.size))
	}

	if (q.head == nil) != (q.tail == nil) {
		panic(fmt.Sprintf("head is nil: %v, tail is nil: %v", q.head == nil, q.tail == nil))
	}

	n := 0
	for cur := q.head; cur != nil; cur = cur.next {
		n++
		if cur.next == nil && cur != q.tail {
			panic("last node is not the tail")
		}
	}
	if n != q.size {
		panic(fmt.Sprintf("list length %d does not match size %d", n, q.size))
	}
}

// push appends a job to the end of the queue without blocking.
//
// LOCKS_EXCLUDED(q.mu)
func (q *workQueue) push(job Job) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return ErrQueueClosed
	}

	n := &node{job: job}
	if q.tail == nil {
		q.head = n
	} else {
		q.tail.next = n
	}
	q.tail = n
	q.size++

	q.nonEmptyOrClosed.Signal()
	return nil
}

// pop removes and returns the job at the front of the queue, blocking while
// the queue is empty and open. It returns false only once the queue has been
// closed and fully drained.
//
// LOCKS_EXCLUDED(q.mu)
func (q *workQueue) pop() (Job, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for q.size == 0 && !q.closed {
		q.nonEmptyOrClosed.Wait()
	}

	if q.size == 0 {
		return nil, false
	}

	n := q.head
	q.head = n.next
	if q.head == nil {
		q.tail = nil
	}
	q.size--

	return n.job, true
}

// close stops the queue from accepting jobs and wakes every blocked consumer.
// Calling it more than once has no further effect.
//
// LOCKS_EXCLUDED(q.mu)
func (q *workQueue) close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}
	q.closed = true
	q.nonEmptyOrClosed.Broadcast()
}

// LOCKS_EXCLUDED(q.mu)
func (q *workQueue) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	return q.size
}
