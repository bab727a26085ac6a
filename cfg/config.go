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
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type Config struct {
	AppName string `yaml:"app-name"`

	Debug DebugConfig `yaml:"debug"`

	Logging LoggingConfig `yaml:"logging"`

	Metrics MetricsConfig `yaml:"metrics"`

	Pool PoolConfig `yaml:"pool"`

	Server ServerConfig `yaml:"server"`
}

type DebugConfig struct {
	ExitOnInvariantViolation bool `yaml:"exit-on-invariant-violation"`
}

type LogRotateLoggingConfig struct {
	BackupFileCount int64 `yaml:"backup-file-count"`

	Compress bool `yaml:"compress"`

	MaxFileSizeMb int64 `yaml:"max-file-size-mb"`
}

type LoggingConfig struct {
	FilePath ResolvedPath `yaml:"file-path"`

	Format string `yaml:"format"`

	LogRotate LogRotateLoggingConfig `yaml:"log-rotate"`

	Severity LogSeverity `yaml:"severity"`
}

type MetricsConfig struct {
	PrometheusPort int64 `yaml:"prometheus-port"`
}

type PoolConfig struct {
	Workers int64 `yaml:"workers"`
}

type ServerConfig struct {
	Address string `yaml:"address"`

	DocumentRoot ResolvedPath `yaml:"document-root"`

	IndexFile string `yaml:"index-file"`

	MaxAcceptRate float64 `yaml:"max-accept-rate"`

	NotFoundFile string `yaml:"not-found-file"`

	ReusePort bool `yaml:"reuse-port"`

	SleepDuration time.Duration `yaml:"sleep-duration"`
}

// BindFlags registers every poolhttpd flag on flagSet and binds it to its
// config key in v, so that flag values take precedence over the config file.
func BindFlags(v *viper.Viper, flagSet *pflag.FlagSet) error {
	var err error

	flagSet.StringP("app-name", "", "", "The application name used in log lines.")

	err = v.BindPFlag("app-name", flagSet.Lookup("app-name"))
	if err != nil {
		return err
	}

	flagSet.BoolP("debug_invariants", "", false, "Exit when internal invariants are violated.")

	err = v.BindPFlag("debug.exit-on-invariant-violation", flagSet.Lookup("debug_invariants"))
	if err != nil {
		return err
	}

	flagSet.StringP("log-file", "", "", "The file for storing logs that can be parsed by fluentd. When not provided, plain text logs are printed to stdout.")

	err = v.BindPFlag("logging.file-path", flagSet.Lookup("log-file"))
	if err != nil {
		return err
	}

	flagSet.StringP("log-format", "", "text", "The format of the log file: 'text' or 'json'.")

	err = v.BindPFlag("logging.format", flagSet.Lookup("log-format"))
	if err != nil {
		return err
	}

	flagSet.IntP("log-rotate-backup-file-count", "", 10, "The maximum number of backup log files to retain after they have been rotated. The default value is 10. When value is set to 0, all backup files are retained.")

	err = v.BindPFlag("logging.log-rotate.backup-file-count", flagSet.Lookup("log-rotate-backup-file-count"))
	if err != nil {
		return err
	}

	flagSet.BoolP("log-rotate-compress", "", true, "Controls whether the rotated log files should be compressed using gzip.")

	err = v.BindPFlag("logging.log-rotate.compress", flagSet.Lookup("log-rotate-compress"))
	if err != nil {
		return err
	}

	flagSet.IntP("log-rotate-max-file-size-mb", "", 512, "The maximum size in megabytes that a log file can reach before it is rotated.")

	err = v.BindPFlag("logging.log-rotate.max-file-size-mb", flagSet.Lookup("log-rotate-max-file-size-mb"))
	if err != nil {
		return err
	}

	flagSet.StringP("log-severity", "", "INFO", "Specifies the logging severity expressed as one of [trace, debug, info, warning, error, off]")

	err = v.BindPFlag("logging.severity", flagSet.Lookup("log-severity"))
	if err != nil {
		return err
	}

	flagSet.IntP("prometheus-port", "", 0, "Expose Prometheus metrics endpoint on this port and a path of /metrics.")

	err = v.BindPFlag("metrics.prometheus-port", flagSet.Lookup("prometheus-port"))
	if err != nil {
		return err
	}

	flagSet.IntP("workers", "", 4, "Number of workers serving connections. 0 sizes the pool to the number of logical CPUs.")

	err = v.BindPFlag("pool.workers", flagSet.Lookup("workers"))
	if err != nil {
		return err
	}

	flagSet.StringP("address", "", "127.0.0.1:7878", "The host:port the server listens on.")

	err = v.BindPFlag("server.address", flagSet.Lookup("address"))
	if err != nil {
		return err
	}

	flagSet.StringP("document-root", "", ".", "Directory the index and not-found files are read from.")

	err = v.BindPFlag("server.document-root", flagSet.Lookup("document-root"))
	if err != nil {
		return err
	}

	flagSet.StringP("index-file", "", "index.html", "File served for the index and sleep routes.")

	err = v.BindPFlag("server.index-file", flagSet.Lookup("index-file"))
	if err != nil {
		return err
	}

	flagSet.Float64P("max-accept-rate", "", 0, "Maximum number of connections accepted per second. 0 means no limit.")

	err = v.BindPFlag("server.max-accept-rate", flagSet.Lookup("max-accept-rate"))
	if err != nil {
		return err
	}

	flagSet.StringP("not-found-file", "", "404.html", "File served for unrecognized request lines.")

	err = v.BindPFlag("server.not-found-file", flagSet.Lookup("not-found-file"))
	if err != nil {
		return err
	}

	flagSet.BoolP("reuse-port", "", false, "Set SO_REUSEPORT on the listening socket.")

	err = v.BindPFlag("server.reuse-port", flagSet.Lookup("reuse-port"))
	if err != nil {
		return err
	}

	flagSet.DurationP("sleep-duration", "", 5*time.Second, "Artificial delay applied by the /sleep route.")

	err = v.BindPFlag("server.sleep-duration", flagSet.Lookup("sleep-duration"))
	if err != nil {
		return err
	}

	return nil
}
