// SPDX-License-Identifier: Apache-2.0

// Package debug provides component-tagged debug logging. Output is off
// unless enabled with SetEnabled or DEBUG=1, and is always suppressed in
// MCP mode where stdout carries the protocol.
package debug

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
)

var (
	mu      sync.Mutex
	output  io.Writer = os.Stderr
	enabled bool
	mcpMode bool
)

// SetEnabled turns debug output on or off regardless of the environment.
func SetEnabled(on bool) {
	mu.Lock()
	defer mu.Unlock()
	enabled = on
}

// SetMCPMode suppresses all debug output while serving MCP over stdio.
func SetMCPMode(on bool) {
	mu.Lock()
	defer mu.Unlock()
	mcpMode = on
}

// SetOutput sets the writer for debug output. Nil disables output.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
}

// Enabled reports whether a Log call would write anything.
func Enabled() bool {
	mu.Lock()
	defer mu.Unlock()
	return enabledLocked()
}

func enabledLocked() bool {
	if mcpMode || output == nil {
		return false
	}
	if enabled {
		return true
	}
	v := os.Getenv("DEBUG")
	return v == "1" || v == "true"
}

// Log writes a "[DEBUG:component] ..." line.
func Log(component, format string, args ...any) {
	mu.Lock()
	defer mu.Unlock()
	if !enabledLocked() {
		return
	}
	msg := fmt.Sprintf(format, args...)
	if !strings.HasSuffix(msg, "\n") {
		msg += "\n"
	}
	fmt.Fprintf(output, "[DEBUG:%s] %s", component, msg)
}

func LogCatalog(format string, args ...any) {
	Log("CATALOG", format, args...)
}

func LogSearch(format string, args ...any) {
	Log("SEARCH", format, args...)
}

func LogMCP(format string, args ...any) {
	Log("MCP", format, args...)
}
