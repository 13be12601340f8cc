// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package testutil

import (
	"fmt"
	"sync/atomic"
)

var uniqueCounter atomic.Int64

// UniqueID returns a string of the form "prefix-N" where N is a
// monotonically increasing integer.
func UniqueID(prefix string) string {
	return fmt.Sprintf("%s-%d", prefix, uniqueCounter.Add(1))
}

// UniqueUserID returns a positive platform user id that no other call
// in this test binary returns. The values start well above the range
// tests use for hand-picked staff ids.
func UniqueUserID() int64 {
	return 7_000_000_000 + uniqueCounter.Add(1)
}
