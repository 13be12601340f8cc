// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"strings"

	"github.com/ahmed5528/masa-bot/lib/relay"
	"github.com/ahmed5528/masa-bot/telegram"
)

// inbound is one translated update. callbackID is set for button
// presses, which must be acknowledged whether or not they map to an
// event.
type inbound struct {
	event      relay.Event
	callbackID string
	// routed is false when the update carries nothing for the router.
	routed bool
}

// translator turns Bot API updates into relay events. Only private
// chats are served; group and channel traffic is dropped.
type translator struct {
	botID       int64
	botUsername string
}

func (t translator) translate(update telegram.Update) inbound {
	switch {
	case update.Message != nil:
		return t.message(update.Message)
	case update.CallbackQuery != nil:
		return t.callback(update.CallbackQuery)
	default:
		return inbound{}
	}
}

func (t translator) message(message *telegram.Message) inbound {
	if message.From == nil || message.From.IsBot || message.Chat.Type != telegram.ChatTypePrivate {
		return inbound{}
	}
	if message.Text == "" {
		return inbound{}
	}

	var event relay.Event
	if strings.HasPrefix(message.Text, "/") {
		name, argText, ok := relay.ParseCommand(message.Text, t.botUsername)
		if !ok {
			return inbound{}
		}
		event = relay.CommandEvent(name, argText)
	} else {
		event = relay.Event{Kind: relay.KindText, Text: message.Text}
		if target := message.ReplyToMessage; target != nil {
			event.ReplyTo = &relay.ReplyTarget{
				MessageID: target.MessageID,
				FromRelay: target.From != nil && target.From.ID == t.botID,
				Text:      target.Text,
			}
		}
	}

	event.SenderID = message.From.ID
	event.SenderName = senderName(*message.From)
	event.ChatID = message.Chat.ID
	return inbound{event: event, routed: true}
}

func (t translator) callback(query *telegram.CallbackQuery) inbound {
	result := inbound{callbackID: query.ID, event: relay.Event{SenderID: query.From.ID}}
	if query.Message == nil || query.Message.Chat.Type != telegram.ChatTypePrivate {
		return result
	}
	kind, ok := relay.ActionKind(query.Data)
	if !ok {
		return result
	}
	result.event = relay.Event{
		Kind:       kind,
		SenderID:   query.From.ID,
		SenderName: senderName(query.From),
		ChatID:     query.Message.Chat.ID,
		MessageID:  query.Message.MessageID,
	}
	result.routed = true
	return result
}

// senderName is the name greetings use: the first name, as users
// introduce themselves to the bot.
func senderName(user telegram.User) string {
	if user.FirstName != "" {
		return user.FirstName
	}
	return user.DisplayName()
}
