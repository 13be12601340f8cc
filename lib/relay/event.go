// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package relay

import (
	"strings"
	"unicode"
)

// Kind classifies an inbound event.
type Kind int

const (
	// KindUnknown is a command the relay does not implement.
	KindUnknown Kind = iota
	// KindStart is the /start command.
	KindStart
	// KindCheck is the "check membership" button.
	KindCheck
	// KindGetForm is the "get form" button.
	KindGetForm
	// KindHelp is the /help command.
	KindHelp
	// KindReply is the staff /reply command.
	KindReply
	// KindHistory is the staff /history command.
	KindHistory
	// KindText is a non-command text message.
	KindText
)

var kindNames = [...]string{
	KindUnknown: "unknown",
	KindStart:   "start",
	KindCheck:   "check",
	KindGetForm: "get_form",
	KindHelp:    "help",
	KindReply:   "reply",
	KindHistory: "history",
	KindText:    "text",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "invalid"
	}
	return kindNames[k]
}

// Button actions carried by callback buttons.
const (
	ActionCheckMembership = "check_membership"
	ActionGetForm         = "get_form"
)

// Event is one inbound interaction, already translated from the
// platform's representation.
type Event struct {
	Kind Kind

	// SenderID and SenderName identify who acted.
	SenderID   int64
	SenderName string

	// ChatID is where replies go. For private conversations it equals
	// SenderID.
	ChatID int64

	// Text is the message body for KindText.
	Text string

	// Command is the command name without slash or bot suffix, and
	// ArgText is everything after it with original spacing.
	Command string
	ArgText string

	// ReplyTo describes the message this text replies to, if any.
	ReplyTo *ReplyTarget

	// MessageID is the message a button was attached to. Responses to
	// button presses edit it in place.
	MessageID int64
}

// Args splits ArgText on whitespace.
func (e Event) Args() []string {
	return strings.Fields(e.ArgText)
}

// ReplyTarget is the message a text message replied to.
type ReplyTarget struct {
	MessageID int64
	// FromRelay is true when the relay itself sent the target.
	FromRelay bool
	Text      string
}

// commandKinds maps command names to event kinds.
var commandKinds = map[string]Kind{
	"start":   KindStart,
	"help":    KindHelp,
	"reply":   KindReply,
	"history": KindHistory,
}

// actionKinds maps callback button actions to event kinds.
var actionKinds = map[string]Kind{
	ActionCheckMembership: KindCheck,
	ActionGetForm:         KindGetForm,
}

// ParseCommand splits "/name[@bot] args" into the lowercased name and
// the raw argument text. ok is false when text is not a command, or is
// addressed to a bot other than botUsername. An empty botUsername
// accepts any suffix.
func ParseCommand(text, botUsername string) (name, argText string, ok bool) {
	if !strings.HasPrefix(text, "/") {
		return "", "", false
	}
	head, rest := text[1:], ""
	if split := strings.IndexFunc(head, unicode.IsSpace); split >= 0 {
		head, rest = head[:split], head[split:]
	}
	name, target, addressed := strings.Cut(head, "@")
	if name == "" {
		return "", "", false
	}
	if addressed && botUsername != "" && !strings.EqualFold(target, botUsername) {
		return "", "", false
	}
	return strings.ToLower(name), strings.TrimSpace(rest), true
}

// CommandEvent builds the event for a parsed command.
func CommandEvent(name, argText string) Event {
	kind, known := commandKinds[name]
	if !known {
		kind = KindUnknown
	}
	return Event{Kind: kind, Command: name, ArgText: argText}
}

// ActionKind returns the event kind for a callback button action.
func ActionKind(action string) (Kind, bool) {
	kind, ok := actionKinds[action]
	return kind, ok
}
