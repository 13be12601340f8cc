// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil provides shared test helpers for relay packages.
//
// [RequireReceive] encapsulates the timeout safety valve (a select
// with a timer fallback) so individual tests need no direct time.After
// calls. It is the only place in the test suite where real wall-clock
// timeouts are used.
//
// [UniqueID] and [UniqueUserID] generate monotonically increasing
// identifiers for test disambiguation, so tests that share a database
// or a fake transport never collide on platform user ids.
//
// [DatabasePath] returns a fresh SQLite file path under t.TempDir.
//
// All helpers call t.Fatalf on failure rather than returning errors,
// since test setup failures are not recoverable.
package testutil
