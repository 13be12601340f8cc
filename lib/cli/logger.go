// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"golang.org/x/term"
)

// NewLogger creates the process logger. format is "text", "json" or
// "auto"; auto selects slog.TextHandler when w is a terminal and
// slog.JSONHandler otherwise, so piped output stays machine-parseable.
func NewLogger(w io.Writer, level, format string) (*slog.Logger, error) {
	var slogLevel slog.Level
	if err := slogLevel.UnmarshalText([]byte(strings.ToUpper(level))); err != nil {
		return nil, fmt.Errorf("cli: invalid log level %q", level)
	}
	options := &slog.HandlerOptions{Level: slogLevel}

	var handler slog.Handler
	switch format {
	case "text":
		handler = slog.NewTextHandler(w, options)
	case "json":
		handler = slog.NewJSONHandler(w, options)
	case "auto", "":
		if isTerminal(w) {
			handler = slog.NewTextHandler(w, options)
		} else {
			handler = slog.NewJSONHandler(w, options)
		}
	default:
		return nil, fmt.Errorf("cli: invalid log format %q", format)
	}
	return slog.New(handler), nil
}

// NewCommandLogger creates a logger for operator commands: info level
// on stderr, text on a terminal.
func NewCommandLogger() *slog.Logger {
	logger, _ := NewLogger(os.Stderr, "info", "auto")
	return logger
}

func isTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	return ok && term.IsTerminal(int(file.Fd()))
}
