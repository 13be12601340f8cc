// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package atomicfile writes files so that readers see either the old
// content or the complete new content, never a partial write: data
// goes to a temporary file in the same directory, which is synced,
// renamed into place, and followed by a sync of the parent directory.
package atomicfile

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// WriteFunc calls write with a temporary file next to path and, when
// write succeeds, renames the file over path with permission perm. On
// any failure the temporary file is removed and path is untouched.
func WriteFunc(path string, perm os.FileMode, write func(io.Writer) error) error {
	file, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("atomicfile: creating temporary file: %w", err)
	}
	temporaryPath := file.Name()

	// Write, chmod, sync, close, in that order. If any step fails,
	// remove the temporary file and report the first error.
	fail := func(step string, err error) error {
		file.Close()
		os.Remove(temporaryPath)
		return fmt.Errorf("atomicfile: %s %s: %w", step, path, err)
	}
	if err := write(file); err != nil {
		return fail("writing", err)
	}
	if err := file.Chmod(perm); err != nil {
		return fail("setting mode of", err)
	}
	if err := file.Sync(); err != nil {
		return fail("syncing", err)
	}
	if err := file.Close(); err != nil {
		os.Remove(temporaryPath)
		return fmt.Errorf("atomicfile: closing %s: %w", path, err)
	}

	if err := os.Rename(temporaryPath, path); err != nil {
		os.Remove(temporaryPath)
		return fmt.Errorf("atomicfile: renaming into %s: %w", path, err)
	}

	// The rename is only durable once the directory entry is flushed.
	if directory, err := os.Open(filepath.Dir(path)); err == nil {
		directory.Sync()
		directory.Close()
	}
	return nil
}
