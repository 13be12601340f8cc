// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package process provides entrypoint helpers for the relay binaries.
// It holds the one raw stderr write a binary makes: reporting the
// error that ended run(), when the structured logger may not exist
// yet.
package process
