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
package ratelimit

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChooseLimiterCapacity(t *testing.T) {
	tests := []struct {
		name     string
		rateHz   float64
		window   time.Duration
		expected uint64
		errMsg   string
	}{
		{
			name:   "negative rate",
			rateHz: -1,
			window: time.Second,
			errMsg: "illegal rate",
		},
		{
			name:   "zero rate",
			rateHz: 0,
			window: time.Second,
			errMsg: "illegal rate",
		},
		{
			name:   "infinite rate",
			rateHz: math.Inf(1),
			window: time.Second,
			errMsg: "illegal rate",
		},
		{
			name:   "zero window",
			rateHz: 1,
			window: 0,
			errMsg: "illegal window",
		},
		{
			name:     "capacity rounds down",
			rateHz:   10.5,
			window:   time.Second,
			expected: 10,
		},
		{
			name:     "capacity never below one",
			rateHz:   0.5,
			window:   time.Second,
			expected: 1,
		},
		{
			name:     "long window",
			rateHz:   20,
			window:   3 * time.Second,
			expected: 60,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			capacity, err := ChooseLimiterCapacity(tc.rateHz, tc.window)

			if tc.errMsg != "" {
				assert.ErrorContains(t, err, tc.errMsg)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, capacity)
		})
	}
}

func TestNewThrottle(t *testing.T) {
	throttle := NewThrottle(100, 5)

	assert.Equal(t, uint64(5), throttle.Capacity())
	// A full bucket serves its capacity without waiting.
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.NoError(t, throttle.Wait(ctx, 5))
}

func TestThrottle_WaitCancelled(t *testing.T) {
	throttle := NewThrottle(0.001, 1)
	require.NoError(t, throttle.Wait(context.Background(), 1))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := throttle.Wait(ctx, 1)

	assert.Error(t, err)
}
