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
package cfg

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRationalize(t *testing.T) {
	testCases := []struct {
		name             string
		config           *Config
		expectedWorkers  int64
		expectedSeverity LogSeverity
	}{
		{
			name:             "zero workers sized from cpu count",
			config:           &Config{Pool: PoolConfig{Workers: 0}},
			expectedWorkers:  6,
			expectedSeverity: InfoLogSeverity,
		},
		{
			name:             "explicit workers kept",
			config:           &Config{Pool: PoolConfig{Workers: 2}, Logging: LoggingConfig{Severity: TraceLogSeverity}},
			expectedWorkers:  2,
			expectedSeverity: TraceLogSeverity,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := rationalize(tc.config, func() int { return 6 })

			require.NoError(t, err)
			assert.Equal(t, tc.expectedWorkers, tc.config.Pool.Workers)
			assert.Equal(t, tc.expectedSeverity, tc.config.Logging.Severity)
		})
	}
}

func TestRationalizeUsesHostCPUCount(t *testing.T) {
	c := &Config{}

	require.NoError(t, Rationalize(c))

	assert.Positive(t, c.Pool.Workers)
}
