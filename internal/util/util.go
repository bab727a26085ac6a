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

package util

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/shirou/gopsutil/v3/cpu"
)

// PARENT_PROCESS_DIR names the env var holding the directory relative
// paths are resolved against when poolhttpd is started by a supervisor
// from a different working directory.
const PARENT_PROCESS_DIR = "POOLHTTPD_PARENT_PROCESS_DIR"

// GetResolvedPath turns filePath into an absolute path:
//  1. Absolute paths and the empty string are returned unchanged.
//  2. Paths starting with ~/ are resolved against the home directory.
//  3. Any other relative path is resolved against PARENT_PROCESS_DIR when
//     set, and the current working directory otherwise.
func GetResolvedPath(filePath string) (resolvedPath string, err error) {
	if filePath == "" || path.IsAbs(filePath) {
		resolvedPath = filePath
		return
	}

	if strings.HasPrefix(filePath, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("fetch home dir: %w", err)
		}
		return filepath.Join(homeDir, filePath[2:]), nil
	}

	parentProcessDir, _ := os.LookupEnv(PARENT_PROCESS_DIR)
	parentProcessDir = strings.TrimSpace(parentProcessDir)
	if parentProcessDir == "" {
		return filepath.Abs(filePath)
	}
	return filepath.Join(parentProcessDir, filePath), nil
}

// LogicalCPUCount reports the number of logical CPUs on the host.
func LogicalCPUCount() int {
	return logicalCPUCount(cpu.Counts)
}

func logicalCPUCount(counts func(logical bool) (int, error)) int {
	n, err := counts(true)
	if err != nil || n <= 0 {
		return runtime.NumCPU()
	}
	return n
}
