// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package relay

// Action is what the Router does in response to an event.
type Action int

const (
	// ActionIgnore sends nothing.
	ActionIgnore Action = iota
	// ActionJoinPrompt asks a non-member to join the group.
	ActionJoinPrompt
	// ActionRegister creates the sender's binding.
	ActionRegister
	// ActionShowSerial repeats an existing binding's serial.
	ActionShowSerial
	// ActionShowForm reveals the form link with the serial.
	ActionShowForm
	// ActionFormUnbound tells an unbound user to /start.
	ActionFormUnbound
	// ActionHelp lists the commands available to the sender.
	ActionHelp
	// ActionPromptRegister tells an unbound user to /start first.
	ActionPromptRegister
	// ActionRelayToStaff records user text and forwards it to staff.
	ActionRelayToStaff
	// ActionHint explains how to reach staff.
	ActionHint
	// ActionStaffReply delivers staff text to a user by serial.
	ActionStaffReply
	// ActionReplyUsage reports a malformed /reply.
	ActionReplyUsage
	// ActionHistory shows a user's conversation by serial.
	ActionHistory
	// ActionHistoryUsage reports a malformed /history.
	ActionHistoryUsage
	// ActionPermissionDenied refuses a staff command.
	ActionPermissionDenied
	// ActionUnknownCommand points at /help.
	ActionUnknownCommand
)

var actionNames = [...]string{
	ActionIgnore:           "ignore",
	ActionJoinPrompt:       "join_prompt",
	ActionRegister:         "register",
	ActionShowSerial:       "show_serial",
	ActionShowForm:         "show_form",
	ActionFormUnbound:      "form_unbound",
	ActionHelp:             "help",
	ActionPromptRegister:   "prompt_register",
	ActionRelayToStaff:     "relay_to_staff",
	ActionHint:             "hint",
	ActionStaffReply:       "staff_reply",
	ActionReplyUsage:       "reply_usage",
	ActionHistory:          "history",
	ActionHistoryUsage:     "history_usage",
	ActionPermissionDenied: "permission_denied",
	ActionUnknownCommand:   "unknown_command",
}

func (a Action) String() string {
	if a < 0 || int(a) >= len(actionNames) {
		return "invalid"
	}
	return actionNames[a]
}

// Facts is what the Router knows about the sender when deciding. Each
// field is only consulted for the event kinds that need it.
type Facts struct {
	// Staff reports roster membership.
	Staff bool
	// Bound reports that the sender has a binding.
	Bound bool
	// Member reports group membership. Consulted only for unbound
	// senders of start and check.
	Member bool
	// QualifyingReply reports that a text replies to a relayed staff
	// message.
	QualifyingReply bool
	// HintUnrelated selects ActionHint over ActionIgnore for bound
	// users' unrelated text.
	HintUnrelated bool
	// ArgCount is the number of whitespace-separated command arguments.
	ArgCount int
}

// Decide maps an event kind and the sender's facts to an action. It is
// the relay's complete transition table.
func Decide(kind Kind, facts Facts) Action {
	switch kind {
	case KindStart, KindCheck:
		switch {
		case facts.Bound:
			return ActionShowSerial
		case facts.Member:
			return ActionRegister
		default:
			return ActionJoinPrompt
		}

	case KindGetForm:
		if facts.Bound {
			return ActionShowForm
		}
		return ActionFormUnbound

	case KindHelp:
		return ActionHelp

	case KindText:
		switch {
		case !facts.Bound:
			return ActionPromptRegister
		case facts.QualifyingReply:
			return ActionRelayToStaff
		case facts.HintUnrelated:
			return ActionHint
		default:
			return ActionIgnore
		}

	case KindReply:
		switch {
		case !facts.Staff:
			return ActionPermissionDenied
		case facts.ArgCount < 2:
			return ActionReplyUsage
		default:
			return ActionStaffReply
		}

	case KindHistory:
		switch {
		case !facts.Staff:
			return ActionPermissionDenied
		case facts.ArgCount < 1 || facts.ArgCount > 2:
			return ActionHistoryUsage
		default:
			return ActionHistory
		}

	default:
		return ActionUnknownCommand
	}
}
