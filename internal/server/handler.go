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
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/poolhttpd/poolhttpd/cfg"
	"github.com/poolhttpd/poolhttpd/internal/clock"
	"github.com/poolhttpd/poolhttpd/metrics"
)

const (
	statusOK       = "HTTP/1.1 200 OK"
	statusNotFound = "HTTP/1.1 404 NOT FOUND"

	requestIndex = "GET / HTTP/1.1"
	requestSleep = "GET /sleep HTTP/1.1"

	// Longest request line accepted, including the terminating newline.
	maxRequestLineBytes = 8 << 10
)

var errEmptyRequest = errors.New("connection closed before a request line was sent")

// route is the outcome of classifying a request line.
type route struct {
	status string
	file   string
	sleep  bool
	attr   metrics.Route
}

// Handler answers a single request read from a connection with the contents
// of a file from its document root.
type Handler struct {
	documentRoot  string
	indexFile     string
	notFoundFile  string
	sleepDuration time.Duration

	clock   clock.Clock
	metrics metrics.MetricHandle
}

func NewHandler(c cfg.ServerConfig, clk clock.Clock, metricHandle metrics.MetricHandle) *Handler {
	return &Handler{
		documentRoot:  string(c.DocumentRoot),
		indexFile:     c.IndexFile,
		notFoundFile:  c.NotFoundFile,
		sleepDuration: c.SleepDuration,
		clock:         clk,
		metrics:       metricHandle,
	}
}

func (h *Handler) route(requestLine string) route {
	switch requestLine {
	case requestIndex:
		return route{status: statusOK, file: h.indexFile, attr: metrics.RouteIndexAttr}
	case requestSleep:
		return route{status: statusOK, file: h.indexFile, sleep: true, attr: metrics.RouteSleepAttr}
	default:
		return route{status: statusNotFound, file: h.notFoundFile, attr: metrics.RouteNotFoundAttr}
	}
}

// Handle reads one request line from conn and writes back the matching
// response. Anything after the request line is ignored.
func (h *Handler) Handle(conn io.ReadWriter) error {
	requestLine, err := readRequestLine(conn)
	if err != nil {
		return fmt.Errorf("readRequestLine: %w", err)
	}

	r := h.route(requestLine)
	if r.sleep {
		<-h.clock.After(h.sleepDuration)
	}

	body, err := os.ReadFile(filepath.Join(h.documentRoot, r.file))
	if err != nil {
		return fmt.Errorf("ReadFile: %w", err)
	}

	if _, err := io.WriteString(conn, renderResponse(r.status, body)); err != nil {
		return fmt.Errorf("write response: %w", err)
	}

	h.metrics.RequestsCount(1, r.attr)
	return nil
}

// readRequestLine returns the first line read from r with its line ending
// removed.
func readRequestLine(r io.Reader) (string, error) {
	line, err := bufio.NewReader(io.LimitReader(r, maxRequestLineBytes)).ReadString('\n')
	switch {
	case err == io.EOF && line == "":
		return "", errEmptyRequest
	case err != nil && err != io.EOF:
		return "", err
	}

	return strings.TrimRight(line, "\r\n"), nil
}

func renderResponse(status string, body []byte) string {
	var sb strings.Builder
	sb.Grow(len(status) + len(body) + 40)
	sb.WriteString(status)
	sb.WriteString("\r\nContent-Length: ")
	sb.WriteString(strconv.Itoa(len(body)))
	sb.WriteString("\r\n\r\n")
	sb.Write(body)
	return sb.String()
}
