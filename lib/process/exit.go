// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package process

import (
	"fmt"
	"io"
	"os"
)

// Fatal reports err and exits. Errors carrying their own exit code
// (an ExitCode() int method) exit with that code silently: the command
// has already explained itself. Everything else prints "error: err" to
// stderr and exits 1.
func Fatal(err error) {
	os.Exit(report(os.Stderr, err))
}

// report writes the message Fatal prints and returns the exit code.
func report(w io.Writer, err error) int {
	if coder, ok := err.(interface{ ExitCode() int }); ok {
		return coder.ExitCode()
	}
	fmt.Fprintf(w, "error: %v\n", err)
	return 1
}
