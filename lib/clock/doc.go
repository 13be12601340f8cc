// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock provides an injectable time abstraction.
//
// Stores stamp records with Clock.Now, the membership gate expires its
// cached invite link against Clock.Now, and the update poller waits out
// its error backoff on Clock.After. Tests use Fake to pin timestamps and
// to release a pending backoff deterministically:
//
//	fake := clock.Fake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
//	go poller.Run(ctx)
//	fake.WaitForTimers(1)        // poller is sleeping on its backoff
//	fake.Advance(5 * time.Second) // release it
package clock
