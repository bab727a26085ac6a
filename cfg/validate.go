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
	"fmt"
	"net"
)

const (
	// MaxSupportedWorkers bounds pool.workers; every worker is a goroutine
	// that lives for the whole process.
	MaxSupportedWorkers = 1 << 16

	maxPort = 65535
)

func isValidLogRotateConfig(config *LogRotateLoggingConfig) error {
	if config.MaxFileSizeMb <= 0 {
		return fmt.Errorf("max-file-size-mb should be atleast 1")
	}
	if config.BackupFileCount < 0 {
		return fmt.Errorf("backup-file-count should be 0 (to retain all backup files) or a positive value")
	}
	return nil
}

func isValidLogFormat(format string) error {
	if format != TextLogFormat && format != JSONLogFormat {
		return fmt.Errorf("invalid log format: %q. It can only be %q or %q", format, TextLogFormat, JSONLogFormat)
	}
	return nil
}

func isValidMetricsConfig(c *MetricsConfig) error {
	if c.PrometheusPort < 0 || c.PrometheusPort > maxPort {
		return fmt.Errorf("prometheus-port should be between 0 and %d", maxPort)
	}
	return nil
}

func isValidPoolConfig(c *PoolConfig) error {
	if c.Workers < 0 {
		return fmt.Errorf("workers can't be negative")
	}
	if c.Workers > MaxSupportedWorkers {
		return fmt.Errorf("workers is too high. Max supported: %d", MaxSupportedWorkers)
	}
	return nil
}

func isValidServerConfig(c *ServerConfig) error {
	if _, _, err := net.SplitHostPort(c.Address); err != nil {
		return fmt.Errorf("invalid address %q: %w", c.Address, err)
	}
	if c.IndexFile == "" {
		return fmt.Errorf("index-file can't be empty")
	}
	if c.NotFoundFile == "" {
		return fmt.Errorf("not-found-file can't be empty")
	}
	if c.SleepDuration < 0 {
		return fmt.Errorf("sleep-duration can't be negative")
	}
	if c.MaxAcceptRate < 0 {
		return fmt.Errorf("max-accept-rate can't be negative")
	}
	return nil
}

// ValidateConfig returns a non-nil error if the config is invalid.
func ValidateConfig(config *Config) error {
	var err error

	if err = isValidLogRotateConfig(&config.Logging.LogRotate); err != nil {
		return fmt.Errorf("error parsing log-rotate config: %w", err)
	}

	if err = isValidLogFormat(config.Logging.Format); err != nil {
		return fmt.Errorf("error parsing logging config: %w", err)
	}

	if err = isValidMetricsConfig(&config.Metrics); err != nil {
		return fmt.Errorf("error parsing metrics config: %w", err)
	}

	if err = isValidPoolConfig(&config.Pool); err != nil {
		return fmt.Errorf("error parsing pool config: %w", err)
	}

	if err = isValidServerConfig(&config.Server); err != nil {
		return fmt.Errorf("error parsing server config: %w", err)
	}

	return nil
}
