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
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/natefinch/lumberjack.v2"
)

// captureStderr captures everything written to os.Stderr during the execution of a function.
func captureStderr(f func()) string {
	oldStderr := os.Stderr
	r, w, _ := os.Pipe()
	os.Stderr = w
	defer func() {
		os.Stderr = oldStderr
	}()

	var stderrBuf bytes.Buffer
	copied := make(chan struct{})
	go func() {
		io.Copy(&stderrBuf, r)
		close(copied)
	}()

	f()
	w.Close()
	<-copied
	r.Close()
	return stderrBuf.String()
}

// blockingWriter holds every write until release is closed.
type blockingWriter struct {
	release chan struct{}
	mu      sync.Mutex
	lines   []string
}

func (b *blockingWriter) Write(p []byte) (int, error) {
	<-b.release
	b.mu.Lock()
	defer b.mu.Unlock()
	b.lines = append(b.lines, string(p))
	return len(p), nil
}

func (b *blockingWriter) Close() error { return nil }

func TestAsyncLogger_WriteAndClose(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "test.log")
	lj := &lumberjack.Logger{Filename: logPath}
	asyncLogger := NewAsyncLogger(lj, 10)

	fmt.Fprintln(asyncLogger, "message 1")
	fmt.Fprintln(asyncLogger, "message 2")
	fmt.Fprintln(asyncLogger, "message 3")
	err := asyncLogger.Close()

	require.NoError(t, err)
	content, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Equal(t, "message 1\nmessage 2\nmessage 3\n", string(content))
}

func TestAsyncLogger_DropMessageWhenBufferFull(t *testing.T) {
	w := &blockingWriter{release: make(chan struct{})}
	bufferSize := 2
	asyncLogger := NewAsyncLogger(w, bufferSize)

	capturedOutput := captureStderr(func() {
		// At most one message is held by the drain goroutine and bufferSize
		// more sit in the channel; the rest must be dropped.
		for i := range 10 {
			fmt.Fprintf(asyncLogger, "message %d\n", i)
		}
	})
	close(w.release)
	require.NoError(t, asyncLogger.Close())

	assert.Contains(t, capturedOutput, "asynclogger: log buffer is full, dropping message.")
	assert.LessOrEqual(t, len(w.lines), bufferSize+1)
	assert.GreaterOrEqual(t, len(w.lines), bufferSize)
	assert.Equal(t, "message 0\n", w.lines[0])
}

func TestAsyncLogger_WriteAfterClose(t *testing.T) {
	w := &blockingWriter{release: make(chan struct{})}
	close(w.release)
	asyncLogger := NewAsyncLogger(w, 1)
	require.NoError(t, asyncLogger.Close())

	_, err := asyncLogger.Write([]byte("late\n"))

	assert.ErrorIs(t, err, os.ErrClosed)
	assert.NoError(t, asyncLogger.Close(), "second Close should be a no-op")
	assert.False(t, strings.Contains(strings.Join(w.lines, ""), "late"))
}
