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
// Package server accepts TCP connections and hands each one to a worker pool
// as a job that serves a single request.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/google/uuid"
	"github.com/poolhttpd/poolhttpd/cfg"
	"github.com/poolhttpd/poolhttpd/internal/logger"
	"github.com/poolhttpd/poolhttpd/internal/ratelimit"
	"github.com/poolhttpd/poolhttpd/internal/workerpool"
	"golang.org/x/sync/errgroup"
)

type Server struct {
	listener net.Listener
	pool     workerpool.WorkerPool
	handler  *Handler

	// Nil when accepts are not rate limited.
	throttle ratelimit.Throttle
}

// New returns a server that accepts from listener and serves connections on
// pool. The caller keeps ownership of pool and must stop it after Serve
// returns.
func New(c cfg.ServerConfig, listener net.Listener, pool workerpool.WorkerPool, handler *Handler) (*Server, error) {
	s := &Server{
		listener: listener,
		pool:     pool,
		handler:  handler,
	}

	if c.MaxAcceptRate > 0 {
		capacity, err := ratelimit.ChooseLimiterCapacity(c.MaxAcceptRate, time.Second)
		if err != nil {
			return nil, fmt.Errorf("ChooseLimiterCapacity: %w", err)
		}
		s.throttle = ratelimit.NewThrottle(c.MaxAcceptRate, int(capacity))
	}

	return s, nil
}

// Addr returns the address the server is listening on.
func (s *Server) Addr() net.Addr {
	return s.listener.Addr()
}

// Serve accepts connections until ctx is cancelled or accepting fails, then
// closes the listener. Connections already submitted to the pool are served
// by it.
func (s *Server) Serve(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	listener := s.listener
	if s.throttle != nil {
		listener = ratelimit.ThrottledListener(ctx, listener, s.throttle)
	}

	g.Go(func() error {
		<-ctx.Done()
		if err := s.listener.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
			return fmt.Errorf("close listener: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		return s.acceptLoop(ctx, listener)
	})

	logger.Infof("Listening on %s", s.listener.Addr())
	return g.Wait()
}

func (s *Server) acceptLoop(ctx context.Context, listener net.Listener) error {
	for {
		conn, err := listener.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("accept: %w", err)
		}

		requestID := uuid.NewString()
		logger.Tracef("request %s: accepted connection from %s", requestID, conn.RemoteAddr())
		job := workerpool.JobFunc(func() {
			s.serveConn(requestID, conn)
		})
		if err := s.pool.Submit(job); err != nil {
			conn.Close()
			return fmt.Errorf("submit request %s: %w", requestID, err)
		}
	}
}

func (s *Server) serveConn(requestID string, conn net.Conn) {
	defer conn.Close()

	start := time.Now()
	if err := s.handler.Handle(conn); err != nil {
		logger.Errorf("request %s: %v", requestID, err)
		return
	}
	logger.Debugf("request %s from %s served in %v", requestID, conn.RemoteAddr(), time.Since(start))
}
