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
package logger

import (
	"fmt"
	"io"
	"os"
	"sync"
)

// AsyncLogger decouples callers from the latency of the underlying log
// writer: Write copies the message into a bounded buffer drained by a
// single goroutine. Messages are dropped, with a notice on stderr, when the
// buffer is full.
type AsyncLogger struct {
	w      io.WriteCloser
	buf    chan []byte
	done   chan struct{}
	mu     sync.RWMutex
	closed bool // GUARDED_BY(mu)
}

// NewAsyncLogger starts draining into w. The caller must call Close.
func NewAsyncLogger(w io.WriteCloser, bufferSize int) *AsyncLogger {
	a := &AsyncLogger{
		w:    w,
		buf:  make(chan []byte, bufferSize),
		done: make(chan struct{}),
	}
	go a.drain()
	return a
}

func (a *AsyncLogger) drain() {
	defer close(a.done)
	for msg := range a.buf {
		if _, err := a.w.Write(msg); err != nil {
			fmt.Fprintf(os.Stderr, "asynclogger: failed to write log message: %v\n", err)
		}
	}
}

func (a *AsyncLogger) Write(p []byte) (int, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.closed {
		return 0, os.ErrClosed
	}

	msg := make([]byte, len(p))
	copy(msg, p)
	select {
	case a.buf <- msg:
	default:
		fmt.Fprintln(os.Stderr, "asynclogger: log buffer is full, dropping message.")
	}
	return len(p), nil
}

// Close flushes the buffered messages and closes the underlying writer.
// Calls after the first are no-ops.
func (a *AsyncLogger) Close() error {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return nil
	}
	a.closed = true
	close(a.buf)
	a.mu.Unlock()

	<-a.done
	return a.w.Close()
}
