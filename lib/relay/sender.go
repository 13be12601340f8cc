// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package relay

import "context"

// Sender delivers outgoing messages on the platform.
type Sender interface {
	// Send delivers message and returns the platform message id of the
	// delivered (or edited) message.
	Send(ctx context.Context, message Outgoing) (int64, error)
}

// Outgoing is a message to send, or an edit of a message sent earlier.
type Outgoing struct {
	ChatID int64
	Text   string

	// Markdown marks Text as CommonMark to be rendered by the
	// transport. Plain text is delivered verbatim.
	Markdown bool

	// Buttons are rows of inline buttons.
	Buttons [][]Button

	// EditMessageID, when set, replaces that message's content instead
	// of sending a new message.
	EditMessageID int64
}

// Button is an inline button that either opens URL or sends Action
// back to the relay.
type Button struct {
	Label  string
	URL    string
	Action string
}

// MembershipGate is the subset of membership.Gate the Router uses.
type MembershipGate interface {
	IsMember(ctx context.Context, userID int64) bool
	InviteLink(ctx context.Context) (string, bool)
}
