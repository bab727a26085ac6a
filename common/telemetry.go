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
package common

import (
	"context"
	"errors"
)

// ShutdownFn releases a telemetry component, waiting at most until ctx is done.
type ShutdownFn func(ctx context.Context) error

// JoinShutdownFunc combines the provided shutdown functions into a single function.
// Nil functions are skipped and every function is called even if an earlier one fails.
func JoinShutdownFunc(shutdownFns ...ShutdownFn) ShutdownFn {
	return func(ctx context.Context) error {
		errs := make([]error, 0, len(shutdownFns))
		for _, fn := range shutdownFns {
			if fn == nil {
				continue
			}
			errs = append(errs, fn(ctx))
		}
		return errors.Join(errs...)
	}
}
