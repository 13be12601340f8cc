// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package relay

import (
	"fmt"
	"strings"
)

// DefaultStaffMarker opens every staff message delivered to a user.
// A reply to a relay message containing it qualifies as a reply to
// staff even when the message id is not on record.
const DefaultStaffMarker = "You have a message from the support team"

// Button labels.
const (
	labelJoinGroup       = "Join the group"
	labelCheckMembership = "Check membership"
	labelGetForm         = "Get the form"
)

// User-facing texts without parameters.
const (
	textPermissionDenied = "Sorry, you do not have permission to do this."
	textReplyUsage       = "Wrong usage! Please use:\n/reply <serial> <message>"
	textHistoryUsage     = "Wrong usage! Please use:\n/history <serial> [limit]"
	textSerialNotFound   = "Serial not found!"
	textPromptRegister   = "Please start first with /start"
	textFormUnbound      = "Sorry, we could not find your registration. Please start again with /start"
	textUserConfirmation = "Your message was sent to the support team. We will reply soon."
	textHint             = "To write to the support team, reply directly to one of their messages. To request support, use /start and fill in the form."
	textUnknownCommand   = "Unknown command. Send /help for the list of commands."
	textExhausted        = "We could not issue your serial right now. Please try again later."
	textTemporaryFailure = "Something went wrong on our side. Please try again in a moment."
	textNotMemberYet     = "Your membership is not confirmed yet.\nPlease join the group first, then press \"" + labelCheckMembership + "\" again."
)

const textHelpUser = "Hello! I am the support bot of the community.\n\n" +
	"Available commands:\n" +
	"/start - start using the bot and verify your membership\n" +
	"/help - show this message"

const textHelpStaff = "\n\nStaff only:\n" +
	"/reply <serial> <message> - send a message to a user\n" +
	"/history <serial> [limit] - show a user's conversation"

// messageLimit is the platform's maximum message length, with room for
// a continuation header.
const messageLimit = 4000

func joinPromptText(name string) string {
	return fmt.Sprintf("Hello %s!\n\n"+
		"To reach the support service you must be a member of the group.\n"+
		"Join the group first, then press \"%s\".", name, labelCheckMembership)
}

// The following return markdown; names are escaped.

func registeredText(name, serial string) string {
	greeting := "Your membership is verified!"
	if name != "" {
		greeting = fmt.Sprintf("Hello %s!\n\nYour membership is verified.", escapeMarkdown(name))
	}
	return greeting + "\n\n" +
		fmt.Sprintf("Your serial is: `%s`\n\n", serial) +
		"This serial keeps you anonymous during support.\n" +
		"Keep it safe; you will need it when you fill in the form."
}

func welcomeBackText(name, serial string) string {
	return fmt.Sprintf("Welcome back %s!\n"+
		"Your serial: `%s`\n\n"+
		"Use this serial in the form when you ask for help.", escapeMarkdown(name), serial)
}

func formText(formURL, serial string) string {
	return fmt.Sprintf("To request support, please fill in the following form:\n\n"+
		"Form link: %s\n\n"+
		"**Use the following serial in place of your name:**\n"+
		"`%s`\n\n"+
		"After you submit the form, the support team will contact you within 24-48 hours.", formURL, serial)
}

// The following are plain text.

func staffMessageText(marker, text string) string {
	return fmt.Sprintf("📩 %s:\n\n%s\n\nYou can reply directly to this message to reach the team.", marker, text)
}

func userRelayHeader(serial, name string) string {
	return fmt.Sprintf("📩 Reply from a user:\nSerial: %s\nName: %s\n\nMessage:", serial, name)
}

func userRelayText(serial, name, text string) string {
	return userRelayHeader(serial, name) + " " + text
}

// userRelayMessages is the copy of a user's message sent to each staff
// member. Text that does not fit one message follows the header in
// chunks of at most messageLimit bytes.
func userRelayMessages(serial, name, text string) []string {
	if relayed := userRelayText(serial, name, text); len(relayed) <= messageLimit {
		return []string{relayed}
	}
	return chunkLines(userRelayHeader(serial, name), strings.Split(text, "\n"), messageLimit)
}

// staffMessages is a staff reply as delivered to the user. Every chunk
// of a long reply carries the marker, so a reply to any of them
// reaches staff.
func staffMessages(marker, text string) []string {
	if single := staffMessageText(marker, text); len(single) <= messageLimit {
		return []string{single}
	}
	room := messageLimit - len(staffMessageText(marker, ""))
	var messages []string
	for _, body := range chunkLines("", strings.Split(text, "\n"), room) {
		messages = append(messages, staffMessageText(marker, body))
	}
	return messages
}

func replySentText(serial string) string {
	return fmt.Sprintf("Message sent to %s.", serial)
}

func deliveryFailedText(serial string, err error) string {
	return fmt.Sprintf("Failed to send the message to %s: %v", serial, err)
}

func noHistoryText(serial string) string {
	return fmt.Sprintf("No messages for %s.", serial)
}

func historyHeader(serial string, count int) string {
	return fmt.Sprintf("History for %s (%d messages):", serial, count)
}

// escapeMarkdown backslash-escapes every ASCII punctuation character so
// text renders literally.
func escapeMarkdown(text string) string {
	var builder strings.Builder
	for _, r := range text {
		if r < 0x80 && strings.ContainsRune("\\`*_{}[]()<>#+-.!|~&\"'", r) {
			builder.WriteByte('\\')
		}
		builder.WriteRune(r)
	}
	return builder.String()
}

// chunkLines packs lines into messages no longer than limit bytes. The
// first message starts with header. A single line longer than limit is
// split at rune boundaries.
func chunkLines(header string, lines []string, limit int) []string {
	var chunks []string
	var current strings.Builder
	current.WriteString(header)

	flush := func() {
		if current.Len() > 0 {
			chunks = append(chunks, current.String())
			current.Reset()
		}
	}

	for _, line := range lines {
		for len(line) > limit {
			cut := limit
			for cut > 0 && !isRuneStart(line[cut]) {
				cut--
			}
			flush()
			chunks = append(chunks, line[:cut])
			line = line[cut:]
		}
		separator := 0
		if current.Len() > 0 {
			separator = 1
		}
		if current.Len()+separator+len(line) > limit {
			flush()
			separator = 0
		}
		if separator == 1 {
			current.WriteByte('\n')
		}
		current.WriteString(line)
	}
	flush()
	return chunks
}

func isRuneStart(b byte) bool {
	return b&0xC0 != 0x80
}
