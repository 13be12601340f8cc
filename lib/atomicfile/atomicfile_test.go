// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package atomicfile

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
)

func TestWriteFuncCreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "transcript.json")
	err := WriteFunc(path, 0o600, func(w io.Writer) error {
		_, err := io.WriteString(w, `{"serial":"KCM-ABCD1234"}`)
		return err
	})
	if err != nil {
		t.Fatalf("WriteFunc: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(data) != `{"serial":"KCM-ABCD1234"}` {
		t.Errorf("content = %q", data)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	if mode := info.Mode().Perm(); mode != 0o600 {
		t.Errorf("mode = %o, want 600", mode)
	}
}

func TestWriteFuncFailureKeepsOldContent(t *testing.T) {
	directory := t.TempDir()
	path := filepath.Join(directory, "transcript.json")
	if err := os.WriteFile(path, []byte("previous"), 0o600); err != nil {
		t.Fatalf("seeding: %v", err)
	}

	failure := errors.New("encoder broke")
	err := WriteFunc(path, 0o600, func(w io.Writer) error {
		io.WriteString(w, "partial")
		return failure
	})
	if !errors.Is(err, failure) {
		t.Fatalf("err = %v, want the write failure", err)
	}

	data, _ := os.ReadFile(path)
	if string(data) != "previous" {
		t.Errorf("content = %q, want the previous content", data)
	}
	entries, err := os.ReadDir(directory)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("directory has %d entries, want the temporary file removed", len(entries))
	}
}

func TestWriteFuncMissingDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "transcript.json")
	if err := WriteFunc(path, 0o600, func(io.Writer) error { return nil }); err == nil {
		t.Error("expected an error for a missing directory")
	}
}
