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
package server

import (
	"context"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListen(t *testing.T) {
	c := testServerConfig(t.TempDir())

	l, err := Listen(context.Background(), c)

	require.NoError(t, err)
	defer l.Close()
	assert.Equal(t, "tcp", l.Addr().Network())
}

func TestListen_InvalidAddress(t *testing.T) {
	c := testServerConfig(t.TempDir())
	c.Address = "127.0.0.1:-1"

	_, err := Listen(context.Background(), c)

	assert.ErrorContains(t, err, "listen on 127.0.0.1:-1")
}

func TestListen_ReusePort(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("SO_REUSEPORT load balancing is only exercised on linux")
	}
	c := testServerConfig(t.TempDir())
	c.ReusePort = true
	first, err := Listen(context.Background(), c)
	require.NoError(t, err)
	defer first.Close()

	c.Address = first.Addr().String()
	second, err := Listen(context.Background(), c)

	require.NoError(t, err)
	defer second.Close()
	assert.Equal(t, first.Addr().String(), second.Addr().String())
}
