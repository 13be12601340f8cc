// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package secret

import (
	"bytes"
	"fmt"
	"os"
	"strings"
)

// ReadFromPath reads a secret from a file. Surrounding whitespace
// (typically a trailing newline) is trimmed. An empty secret is an
// error.
func ReadFromPath(path string) (*Buffer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("secret: %w", err)
	}
	defer Zero(data)

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("secret: %s is empty", path)
	}
	return NewFromBytes(trimmed)
}

// ReadFromEnvironment reads a secret from the named environment
// variable and removes the variable from the process environment so
// child processes and /proc/self/environ readers do not see it.
func ReadFromEnvironment(name string) (*Buffer, error) {
	value, ok := os.LookupEnv(name)
	if !ok {
		return nil, fmt.Errorf("secret: environment variable %s is not set", name)
	}
	if err := os.Unsetenv(name); err != nil {
		return nil, fmt.Errorf("secret: unsetting %s: %w", name, err)
	}
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, fmt.Errorf("secret: environment variable %s is empty", name)
	}
	return NewFromString(value)
}
