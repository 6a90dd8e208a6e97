// Copyright 2026 The Memgrid Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestWriteJSON(t *testing.T) {
	var buffer bytes.Buffer
	if err := WriteJSON(&buffer, map[string]int{"PID": 4}); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}
	if want := "{\n  \"PID\": 4\n}\n"; buffer.String() != want {
		t.Errorf("WriteJSON wrote %q, want %q", buffer.String(), want)
	}
}

func TestWriteJSON_NilSlice(t *testing.T) {
	var buffer bytes.Buffer
	var rows []string
	if err := WriteJSON(&buffer, rows); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}
	if got := strings.TrimSpace(buffer.String()); got != "[]" {
		t.Errorf("nil slice written as %q, want []", got)
	}
}

func TestNewLogger(t *testing.T) {
	var buffer bytes.Buffer
	logger := NewLogger(&buffer, false, slog.LevelInfo)
	logger.Debug("hidden")
	logger.Info("export committed", "name", "pslist")

	lines := strings.Split(strings.TrimSpace(buffer.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("logged %d lines, want 1: %q", len(lines), buffer.String())
	}
	var event map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &event); err != nil {
		t.Fatalf("JSON handler output is not JSON: %v", err)
	}
	if event["msg"] != "export committed" || event["name"] != "pslist" {
		t.Errorf("event = %v", event)
	}

	buffer.Reset()
	NewLogger(&buffer, true, slog.LevelDebug).Debug("visible", "pid", 4)
	if !strings.Contains(buffer.String(), "msg=visible") || !strings.Contains(buffer.String(), "pid=4") {
		t.Errorf("text handler output = %q", buffer.String())
	}
}

func TestExitError(t *testing.T) {
	err := &ExitError{Code: 3}
	if err.ExitCode() != 3 || err.Error() != "exit code 3" {
		t.Errorf("ExitError = %d, %q", err.ExitCode(), err.Error())
	}
}
