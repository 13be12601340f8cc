// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Masa-relayctl is the operator CLI for a relay database. It lists
// registered users, resolves serials, prints conversation history in
// the same format as the staff /history command, and exports
// transcripts through lib/archive.
//
// The database is opened directly; the daemon may keep running, since
// SQLite's WAL mode lets readers proceed alongside its writes.
//
// Global flags come before the command:
//
//	masa-relayctl --config /etc/masa/relay.yaml users --limit 20
//	masa-relayctl history KCM-7QX2M4PA
//	masa-relayctl export KCM-7QX2M4PA --format cbor --zstd --output t.cbor.zst
package main
