// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package secret holds the bot token outside the Go heap.
//
// The Telegram bot token is the single credential the relay carries:
// anyone holding it can read every conversation the bot relays. It is
// loaded once at startup from a file or an environment variable into a
// [Buffer] backed by an anonymous mmap region that is locked against
// swap and excluded from core dumps, and it is zeroed on Close.
//
// The telegram client converts the token to a string only while
// building a request URL.
package secret
