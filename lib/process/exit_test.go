// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package process

import (
	"bytes"
	"errors"
	"testing"

	"github.com/ahmed5528/masa-bot/lib/cli"
)

func TestReportPlainError(t *testing.T) {
	var buffer bytes.Buffer
	if code := report(&buffer, errors.New("opening database: disk full")); code != 1 {
		t.Errorf("code = %d, want 1", code)
	}
	if got := buffer.String(); got != "error: opening database: disk full\n" {
		t.Errorf("output = %q", got)
	}
}

func TestReportExitCodeIsSilent(t *testing.T) {
	var buffer bytes.Buffer
	if code := report(&buffer, &cli.ExitError{Code: 2}); code != 2 {
		t.Errorf("code = %d, want 2", code)
	}
	if buffer.Len() != 0 {
		t.Errorf("output = %q, want nothing", buffer.String())
	}
}
