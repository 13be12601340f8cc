// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"log/slog"

	"github.com/ahmed5528/masa-bot/lib/relay"
	"github.com/ahmed5528/masa-bot/telegram"
)

// messageAPI is the part of the Bot API the sender uses.
type messageAPI interface {
	SendMessage(ctx context.Context, request telegram.SendMessageRequest) (*telegram.Message, error)
	EditMessageText(ctx context.Context, request telegram.EditMessageTextRequest) (*telegram.Message, error)
}

// telegramSender implements relay.Sender. Markdown text is rendered to
// Telegram HTML; plain text is sent without a parse mode so it arrives
// exactly as written.
type telegramSender struct {
	api    messageAPI
	logger *slog.Logger
}

func (s *telegramSender) Send(ctx context.Context, message relay.Outgoing) (int64, error) {
	text, parseMode := message.Text, ""
	if message.Markdown {
		text, parseMode = telegram.RenderHTML(message.Text), telegram.ParseModeHTML
	}
	markup := keyboard(message.Buttons)

	if message.EditMessageID != 0 {
		edited, err := s.api.EditMessageText(ctx, telegram.EditMessageTextRequest{
			ChatID:      message.ChatID,
			MessageID:   message.EditMessageID,
			Text:        text,
			ParseMode:   parseMode,
			ReplyMarkup: markup,
		})
		switch {
		case err == nil:
			return edited.MessageID, nil
		case telegram.IsMessageNotModified(err):
			return message.EditMessageID, nil
		case ctx.Err() != nil:
			return 0, err
		}
		// The message may be too old to edit or already deleted; the
		// response still has to reach the user.
		s.logger.Warn("editing message failed, sending a new one",
			"message_id", message.EditMessageID,
			"error", err,
		)
	}

	sent, err := s.api.SendMessage(ctx, telegram.SendMessageRequest{
		ChatID:      message.ChatID,
		Text:        text,
		ParseMode:   parseMode,
		ReplyMarkup: markup,
	})
	if err != nil {
		return 0, err
	}
	return sent.MessageID, nil
}

// keyboard converts relay buttons to an inline keyboard; nil when there
// are none.
func keyboard(rows [][]relay.Button) *telegram.InlineKeyboardMarkup {
	if len(rows) == 0 {
		return nil
	}
	markup := &telegram.InlineKeyboardMarkup{InlineKeyboard: make([][]telegram.InlineKeyboardButton, len(rows))}
	for rowIndex, row := range rows {
		buttons := make([]telegram.InlineKeyboardButton, len(row))
		for index, button := range row {
			buttons[index] = telegram.InlineKeyboardButton{
				Text:         button.Label,
				URL:          button.URL,
				CallbackData: button.Action,
			}
		}
		markup.InlineKeyboard[rowIndex] = buttons
	}
	return markup
}
