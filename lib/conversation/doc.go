// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package conversation records relayed messages.
//
// Every successful relay appends one immutable [Record] to the [Log],
// tagged with its [Direction]. Records are partitioned by the user's
// platform id and ordered by id, which is the append order even when
// the wall clock steps backwards between two appends. [Log.Recent]
// returns the newest records first; [Chronological] and [FormatLine]
// turn that into the history staff read.
//
// A staff-to-user record also carries the platform message id of the
// delivered message, which lets the relay recognize a user's reply to
// that exact message without inspecting its text.
package conversation
