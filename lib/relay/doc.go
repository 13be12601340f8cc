// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package relay routes messages between anonymous users and the support
// staff roster, using the user's serial as the only linkage.
//
// Handling an event happens in three steps. The [Router] gathers
// [Facts] about the sender from the stores and the membership gate.
// [Decide] maps the event kind and those facts to an [Action]; it is a
// pure function and holds the whole transition table. The Router then
// performs the action: it registers users, relays text, records the
// conversation, and replies through a [Sender].
//
// The Router keeps no state between events. Everything it needs is
// re-read from the identity store and the conversation log, so events
// from different users may be handled concurrently. Events from one
// user must be handled in order, which the caller's dispatch ensures.
//
// Only storage failures are returned from [Router.Handle]. Membership
// and invite-link faults are absorbed by the gate, and delivery
// failures to individual recipients are logged and reported in-band.
package relay
