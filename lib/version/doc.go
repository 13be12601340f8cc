// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package version provides build version information for the relay
// binaries.
//
// Version information is injected at build time via -ldflags, for example:
//
//	go build -ldflags "-X github.com/ahmed5528/masa-bot/lib/version.GitCommit=$(git rev-parse --short HEAD)"
//
// Without ldflags the VCS revision stamped by the go command is used.
package version
