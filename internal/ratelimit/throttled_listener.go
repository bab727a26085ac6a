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
package ratelimit

import (
	"context"
	"net"
)

// ThrottledListener returns a listener that takes one token from throttle
// before each call to the wrapped Accept. Waits are made under the supplied
// context; once it is cancelled Accept returns the context's error.
func ThrottledListener(
	ctx context.Context,
	wrapped net.Listener,
	throttle Throttle) net.Listener {
	return &throttledListener{
		Listener: wrapped,
		ctx:      ctx,
		throttle: throttle,
	}
}

type throttledListener struct {
	net.Listener
	ctx      context.Context
	throttle Throttle
}

func (tl *throttledListener) Accept() (c net.Conn, err error) {
	// Wait for permission to continue.
	err = tl.throttle.Wait(tl.ctx, 1)
	if err != nil {
		return
	}

	c, err = tl.Listener.Accept()
	return
}
