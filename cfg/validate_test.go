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
	"time"

	"github.com/stretchr/testify/assert"
)

func validConfig() *Config {
	return &Config{
		Logging: LoggingConfig{
			Format:    TextLogFormat,
			Severity:  InfoLogSeverity,
			LogRotate: LogRotateLoggingConfig{BackupFileCount: 0, Compress: false, MaxFileSizeMb: 1},
		},
		Pool: PoolConfig{Workers: 4},
		Server: ServerConfig{
			Address:       "127.0.0.1:7878",
			IndexFile:     "index.html",
			NotFoundFile:  "404.html",
			SleepDuration: 5 * time.Second,
		},
	}
}

func TestValidateConfig(t *testing.T) {
	testCases := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{
			name:    "valid config",
			mutate:  func(c *Config) {},
			wantErr: false,
		},
		{
			name:    "zero workers means auto sizing",
			mutate:  func(c *Config) { c.Pool.Workers = 0 },
			wantErr: false,
		},
		{
			name:    "negative workers",
			mutate:  func(c *Config) { c.Pool.Workers = -1 },
			wantErr: true,
		},
		{
			name:    "too many workers",
			mutate:  func(c *Config) { c.Pool.Workers = MaxSupportedWorkers + 1 },
			wantErr: true,
		},
		{
			name:    "zero max file size",
			mutate:  func(c *Config) { c.Logging.LogRotate.MaxFileSizeMb = 0 },
			wantErr: true,
		},
		{
			name:    "negative backup file count",
			mutate:  func(c *Config) { c.Logging.LogRotate.BackupFileCount = -1 },
			wantErr: true,
		},
		{
			name:    "unknown log format",
			mutate:  func(c *Config) { c.Logging.Format = "xml" },
			wantErr: true,
		},
		{
			name:    "address without port",
			mutate:  func(c *Config) { c.Server.Address = "localhost" },
			wantErr: true,
		},
		{
			name:    "empty index file",
			mutate:  func(c *Config) { c.Server.IndexFile = "" },
			wantErr: true,
		},
		{
			name:    "empty not found file",
			mutate:  func(c *Config) { c.Server.NotFoundFile = "" },
			wantErr: true,
		},
		{
			name:    "negative sleep duration",
			mutate:  func(c *Config) { c.Server.SleepDuration = -time.Second },
			wantErr: true,
		},
		{
			name:    "negative accept rate",
			mutate:  func(c *Config) { c.Server.MaxAcceptRate = -0.5 },
			wantErr: true,
		},
		{
			name:    "prometheus port out of range",
			mutate:  func(c *Config) { c.Metrics.PrometheusPort = 70000 },
			wantErr: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			c := validConfig()
			tc.mutate(c)

			err := ValidateConfig(c)

			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
