// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"testing"

	"github.com/ahmed5528/masa-bot/lib/relay"
	"github.com/ahmed5528/masa-bot/telegram"
)

const testBotID = 777

func privateMessage(fromID int64, text string) *telegram.Message {
	return &telegram.Message{
		MessageID: 10,
		From:      &telegram.User{ID: fromID, FirstName: "Alice", LastName: "Smith"},
		Chat:      telegram.Chat{ID: fromID, Type: telegram.ChatTypePrivate},
		Text:      text,
	}
}

func TestTranslateCommand(t *testing.T) {
	tr := translator{botID: testBotID, botUsername: "masa_bot"}

	item := tr.translate(telegram.Update{Message: privateMessage(42, "/reply@masa_bot KCM-ABCDEF hi there")})
	if !item.routed {
		t.Fatal("command not routed")
	}
	event := item.event
	if event.Kind != relay.KindReply {
		t.Errorf("Kind = %v, want reply", event.Kind)
	}
	if event.ArgText != "KCM-ABCDEF hi there" {
		t.Errorf("ArgText = %q", event.ArgText)
	}
	if event.SenderID != 42 || event.ChatID != 42 {
		t.Errorf("sender/chat = %d/%d", event.SenderID, event.ChatID)
	}
	if event.SenderName != "Alice" {
		t.Errorf("SenderName = %q, want first name", event.SenderName)
	}
}

func TestTranslateCommandForAnotherBot(t *testing.T) {
	tr := translator{botID: testBotID, botUsername: "masa_bot"}
	item := tr.translate(telegram.Update{Message: privateMessage(42, "/start@other_bot")})
	if item.routed {
		t.Errorf("command addressed to another bot was routed: %+v", item.event)
	}
}

func TestTranslateUnknownCommand(t *testing.T) {
	tr := translator{botID: testBotID, botUsername: "masa_bot"}
	item := tr.translate(telegram.Update{Message: privateMessage(42, "/frobnicate")})
	if !item.routed || item.event.Kind != relay.KindUnknown {
		t.Errorf("got routed=%v kind=%v, want routed unknown", item.routed, item.event.Kind)
	}
}

func TestTranslateReply(t *testing.T) {
	tr := translator{botID: testBotID}

	message := privateMessage(42, "thanks")
	message.ReplyToMessage = &telegram.Message{
		MessageID: 5,
		From:      &telegram.User{ID: testBotID, IsBot: true},
		Text:      "📩 You have a message from the support team:\n\nhello",
	}
	item := tr.translate(telegram.Update{Message: message})
	if item.event.Kind != relay.KindText {
		t.Fatalf("Kind = %v, want text", item.event.Kind)
	}
	target := item.event.ReplyTo
	if target == nil {
		t.Fatal("ReplyTo not set")
	}
	if target.MessageID != 5 || !target.FromRelay || target.Text != message.ReplyToMessage.Text {
		t.Errorf("ReplyTo = %+v", target)
	}

	message.ReplyToMessage.From = &telegram.User{ID: 99}
	item = tr.translate(telegram.Update{Message: message})
	if item.event.ReplyTo.FromRelay {
		t.Error("reply to another user's message marked as from the relay")
	}
}

func TestTranslateDropsUnservedMessages(t *testing.T) {
	tr := translator{botID: testBotID}

	group := privateMessage(42, "hello")
	group.Chat = telegram.Chat{ID: -100, Type: "supergroup"}

	bot := privateMessage(42, "hello")
	bot.From.IsBot = true

	anonymous := privateMessage(42, "hello")
	anonymous.From = nil

	tests := map[string]telegram.Update{
		"group chat": {Message: group},
		"bot sender": {Message: bot},
		"no sender":  {Message: anonymous},
		"no text":    {Message: privateMessage(42, "")},
		"empty":      {},
		"bare slash": {Message: privateMessage(42, "/")},
	}
	for name, update := range tests {
		t.Run(name, func(t *testing.T) {
			item := tr.translate(update)
			if item.routed || item.callbackID != "" {
				t.Errorf("got %+v, want nothing", item)
			}
		})
	}
}

func TestTranslateCallback(t *testing.T) {
	tr := translator{botID: testBotID}

	query := &telegram.CallbackQuery{
		ID:      "cb-1",
		From:    telegram.User{ID: 42, FirstName: "Alice"},
		Message: &telegram.Message{MessageID: 31, Chat: telegram.Chat{ID: 42, Type: telegram.ChatTypePrivate}},
		Data:    relay.ActionCheckMembership,
	}
	item := tr.translate(telegram.Update{CallbackQuery: query})
	if !item.routed || item.callbackID != "cb-1" {
		t.Fatalf("got routed=%v callbackID=%q", item.routed, item.callbackID)
	}
	if item.event.Kind != relay.KindCheck || item.event.MessageID != 31 || item.event.ChatID != 42 {
		t.Errorf("event = %+v", item.event)
	}

	query.Data = relay.ActionGetForm
	if kind := tr.translate(telegram.Update{CallbackQuery: query}).event.Kind; kind != relay.KindGetForm {
		t.Errorf("get_form kind = %v", kind)
	}
}

func TestTranslateUnknownCallbackIsStillAnswered(t *testing.T) {
	tr := translator{botID: testBotID}
	query := &telegram.CallbackQuery{
		ID:      "cb-2",
		From:    telegram.User{ID: 42},
		Message: &telegram.Message{Chat: telegram.Chat{ID: 42, Type: telegram.ChatTypePrivate}},
		Data:    "stale_button",
	}
	item := tr.translate(telegram.Update{CallbackQuery: query})
	if item.routed {
		t.Error("unknown action routed")
	}
	if item.callbackID != "cb-2" {
		t.Errorf("callbackID = %q, want cb-2", item.callbackID)
	}
	if item.event.SenderID != 42 {
		t.Errorf("SenderID = %d, want 42 for sharding", item.event.SenderID)
	}
}

func TestSenderNameFallsBackToDisplayName(t *testing.T) {
	user := telegram.User{ID: 1, Username: "alice"}
	if got, want := senderName(user), user.DisplayName(); got != want {
		t.Errorf("senderName = %q, want %q", got, want)
	}
}
