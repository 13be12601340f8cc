// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package identity binds platform users to pseudonymous serials.
//
// A [Binding] ties a platform user id to a serial such as
// "KCM-7Q2ZK0AB". The serial is the only identifier support staff ever
// see; the user id never leaves the relay. Bindings are created once
// and never modified or deleted.
//
// [Store] is the persistence contract. Its Create method is the sole
// concurrency-safety mechanism for registration: it must atomically
// check and insert, failing with a [*DuplicateError] naming the column
// that collided. [Registrar] builds registration on top of that
// contract: it generates candidate serials with a [Generator], retries
// a bounded number of times on serial collisions, and resolves a
// user-id collision (two near-simultaneous registrations by the same
// user) to the binding that won.
//
// [MemoryStore] implements Store in memory for tests. The durable
// implementation lives in lib/relaydb.
package identity
