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
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jacobsa/syncutil"
	"github.com/poolhttpd/poolhttpd/cfg"
	"github.com/poolhttpd/poolhttpd/common"
	"github.com/poolhttpd/poolhttpd/internal/clock"
	"github.com/poolhttpd/poolhttpd/internal/logger"
	"github.com/poolhttpd/poolhttpd/internal/monitor"
	"github.com/poolhttpd/poolhttpd/internal/server"
	"github.com/poolhttpd/poolhttpd/internal/workerpool"
	"github.com/poolhttpd/poolhttpd/metrics"
)

const (
	connectionPoolName = "connection-pool"

	metricsShutdownTimeout = 5 * time.Second
)

////////////////////////////////////////////////////////////////////////
// Helpers
////////////////////////////////////////////////////////////////////////

func registerTerminatingSignalHandler(cancel context.CancelFunc) {
	signalChan := make(chan os.Signal, 1)
	signal.Notify(signalChan, os.Interrupt, syscall.SIGTERM)

	// Start a goroutine that will stop the server when the signal is received.
	go func() {
		sig := <-signalChan
		signal.Stop(signalChan)
		sigName := "undefined"
		switch sig {
		case syscall.SIGTERM:
			sigName = "SIGTERM"
		case os.Interrupt:
			sigName = "SIGINT"
		}
		logger.Infof("Received %s, shutting down...", sigName)
		cancel()
	}()
}

func runServer(c *cfg.Config) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	registerTerminatingSignalHandler(cancel)

	return run(ctx, c)
}

// run serves connections until ctx is cancelled or the server fails, then
// drains the pool.
func run(ctx context.Context, c *cfg.Config) (err error) {
	logger.SetLogFormat(c.Logging.Format)
	if err = logger.InitLogFile(c.Logging); err != nil {
		return fmt.Errorf("init log file: %w", err)
	}
	defer logger.Close()

	logger.Infof("Start poolhttpd/%s for app %q on %s", common.GetVersion(), c.AppName, c.Server.Address)
	if configStr, err := cfg.Stringify(c); err != nil {
		logger.Warnf("Failed to stringify config: %v", err)
	} else {
		logger.Debugf("poolhttpd config:\n%s", configStr)
	}

	if c.Debug.ExitOnInvariantViolation {
		syncutil.EnableInvariantChecking()
	}

	var metricExporterShutdownFn common.ShutdownFn
	metricHandle := metrics.NewNoopMetrics()
	if c.Metrics.PrometheusPort > 0 {
		metricExporterShutdownFn = monitor.SetupOTelMetricExporters(ctx, c)
		if metricHandle, err = metrics.NewOTelMetrics(); err != nil {
			logger.Errorf("Failed to create otel metrics, continuing without them: %v", err)
			metricHandle = metrics.NewNoopMetrics()
		}
	}
	defer func() {
		if metricExporterShutdownFn == nil {
			return
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), metricsShutdownTimeout)
		defer cancel()
		if err := metricExporterShutdownFn(shutdownCtx); err != nil {
			logger.Errorf("Error while shutting down metric exporters: %v", err)
		}
	}()

	listener, err := server.Listen(ctx, c.Server)
	if err != nil {
		return err
	}

	pool := workerpool.NewPool(uint32(c.Pool.Workers),
		workerpool.WithMetrics(metricHandle),
		workerpool.WithName(connectionPoolName))
	defer pool.Stop()

	handler := server.NewHandler(c.Server, clock.RealClock{}, metricHandle)
	srv, err := server.New(c.Server, listener, pool, handler)
	if err != nil {
		listener.Close()
		return fmt.Errorf("server.New: %w", err)
	}

	if err = srv.Serve(ctx); err != nil {
		return fmt.Errorf("serve: %w", err)
	}
	logger.Info("Server stopped, waiting for queued connections.")
	return nil
}
