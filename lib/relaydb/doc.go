// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package relaydb is the durable store behind the relay: one SQLite
// database holding the users table (identity bindings) and the
// messages table (conversation log).
//
// [Open] applies the embedded schema and returns a [DB]. DB.Identities
// implements identity.Store and DB.Conversations implements
// conversation.Log; both share one sqlitepool.Pool, so a deployment
// has exactly one database file and one set of connections.
//
// Binding creation runs the existence checks and the insert inside a
// single IMMEDIATE transaction, which takes the write lock up front.
// Two concurrent registrations therefore serialize in SQLite and the
// loser observes the winner's row. The UNIQUE and PRIMARY KEY
// constraints back this up: a constraint failure on insert is mapped to
// the same *identity.DuplicateError.
//
// Timestamps are stored as Unix nanoseconds.
package relaydb
