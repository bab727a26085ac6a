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
	"github.com/poolhttpd/poolhttpd/internal/util"
)

// Rationalize updates the config fields based on the values of other fields.
// It must run after ValidateConfig.
func Rationalize(c *Config) error {
	return rationalize(c, util.LogicalCPUCount)
}

func rationalize(c *Config, numCPU func() int) error {
	if c.Pool.Workers == 0 {
		c.Pool.Workers = int64(numCPU())
	}
	if c.Logging.Severity == "" {
		c.Logging.Severity = InfoLogSeverity
	}
	return nil
}
