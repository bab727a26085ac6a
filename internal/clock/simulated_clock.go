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
package clock

import (
	"sync"
	"time"
)

type afterRequest struct {
	deadline time.Time
	ch       chan time.Time
}

// SimulatedClock is a Clock whose time only moves when SetTime or
// AdvanceTime is called. Safe for concurrent use.
type SimulatedClock struct {
	mu      sync.Mutex
	t       time.Time      // GUARDED_BY(mu)
	waiters []afterRequest // GUARDED_BY(mu)
}

func NewSimulatedClock(t time.Time) *SimulatedClock {
	return &SimulatedClock{t: t}
}

func (sc *SimulatedClock) Now() time.Time {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	return sc.t
}

// After returns a channel that receives the simulated time once the clock
// has been moved at least d past the current time.
func (sc *SimulatedClock) After(d time.Duration) <-chan time.Time {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	ch := make(chan time.Time, 1)
	if d <= 0 {
		ch <- sc.t
		return ch
	}
	sc.waiters = append(sc.waiters, afterRequest{deadline: sc.t.Add(d), ch: ch})
	return ch
}

// SetTime moves the clock to t. Every waiter whose deadline has passed
// receives its deadline.
func (sc *SimulatedClock) SetTime(t time.Time) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.setTimeLocked(t)
}

// AdvanceTime moves the clock forward by d.
func (sc *SimulatedClock) AdvanceTime(d time.Duration) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.setTimeLocked(sc.t.Add(d))
}

// PendingWaiters returns the number of After channels that have not fired.
func (sc *SimulatedClock) PendingWaiters() int {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	return len(sc.waiters)
}

// LOCKS_REQUIRED(sc.mu)
func (sc *SimulatedClock) setTimeLocked(t time.Time) {
	sc.t = t
	remaining := sc.waiters[:0]
	for _, w := range sc.waiters {
		if !w.deadline.After(t) {
			w.ch <- w.deadline
			continue
		}
		remaining = append(remaining, w)
	}
	sc.waiters = remaining
}
