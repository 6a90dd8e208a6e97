// Copyright 2026 The Memgrid Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"io"
	"log/slog"
	"os"

	"golang.org/x/term"
)

// NewCommandLogger creates a structured logger on stderr at level. When
// stderr is a terminal it uses slog.TextHandler for human-readable
// output; otherwise slog.JSONHandler, so batch workers and pipelines
// get one parseable event per line.
//
// Callers scope the logger via With():
//
//	logger := cli.NewCommandLogger(slog.LevelInfo).With(
//	    "command", "graph",
//	    "run_id", runID,
//	)
func NewCommandLogger(level slog.Level) *slog.Logger {
	return NewLogger(os.Stderr, term.IsTerminal(int(os.Stderr.Fd())), level)
}

// NewLogger creates a logger on w: text when human is true, JSON
// otherwise.
func NewLogger(w io.Writer, human bool, level slog.Level) *slog.Logger {
	var handler slog.Handler
	options := &slog.HandlerOptions{Level: level}
	if human {
		handler = slog.NewTextHandler(w, options)
	} else {
		handler = slog.NewJSONHandler(w, options)
	}
	return slog.New(handler)
}
