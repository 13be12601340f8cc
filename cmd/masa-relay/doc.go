// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// masa-relay is the anonymizing support relay daemon. Members of a
// private Telegram group register through the bot and receive a
// serial; support staff address users by serial only, and users answer
// by replying to the staff messages the bot delivers.
//
// The daemon long-polls the Bot API, translates private-chat messages
// and button presses into relay events, and hands them to worker
// goroutines sharded by sender: events from one user are processed in
// order while different users proceed concurrently. Bindings and the
// conversation log live in a SQLite database.
//
// Configuration comes from the file named by --config or MASA_CONFIG.
// A storage failure while handling an event is logged and answered
// with a generic retry-later message; the daemon keeps running. The
// daemon exits on SIGINT or SIGTERM after draining queued events, or
// when the Bot API rejects the token.
package main
