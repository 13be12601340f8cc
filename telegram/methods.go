// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package telegram

import (
	"context"
	"fmt"
	"time"
)

// GetMe returns the bot's own user.
func (c *Client) GetMe(ctx context.Context) (*User, error) {
	var user User
	if err := c.call(ctx, "getMe", struct{}{}, &user, 0); err != nil {
		return nil, err
	}
	return &user, nil
}

// GetChatMember returns userID's standing in chatID.
func (c *Client) GetChatMember(ctx context.Context, chatID, userID int64) (*ChatMember, error) {
	params := struct {
		ChatID int64 `json:"chat_id"`
		UserID int64 `json:"user_id"`
	}{chatID, userID}

	var member ChatMember
	if err := c.call(ctx, "getChatMember", params, &member, 0); err != nil {
		return nil, err
	}
	return &member, nil
}

// GetChat returns up-to-date information about chatID, including its
// primary invite link when the bot is an administrator.
func (c *Client) GetChat(ctx context.Context, chatID int64) (*Chat, error) {
	params := struct {
		ChatID int64 `json:"chat_id"`
	}{chatID}

	var chat Chat
	if err := c.call(ctx, "getChat", params, &chat, 0); err != nil {
		return nil, err
	}
	return &chat, nil
}

// CreateChatInviteLink creates an additional invite link for a chat.
// The bot must be an administrator with the invite-users right.
func (c *Client) CreateChatInviteLink(ctx context.Context, request CreateChatInviteLinkRequest) (*ChatInviteLink, error) {
	var link ChatInviteLink
	if err := c.call(ctx, "createChatInviteLink", request, &link, 0); err != nil {
		return nil, err
	}
	if link.InviteLink == "" {
		return nil, fmt.Errorf("telegram: createChatInviteLink returned an empty link")
	}
	return &link, nil
}

// SendMessage sends a text message and returns it as delivered.
func (c *Client) SendMessage(ctx context.Context, request SendMessageRequest) (*Message, error) {
	if request.Text == "" {
		return nil, fmt.Errorf("telegram: sendMessage text is required")
	}
	var message Message
	if err := c.call(ctx, "sendMessage", request, &message, 0); err != nil {
		return nil, err
	}
	return &message, nil
}

// EditMessageText replaces the text (and keyboard) of a message the bot
// sent earlier.
func (c *Client) EditMessageText(ctx context.Context, request EditMessageTextRequest) (*Message, error) {
	if request.Text == "" {
		return nil, fmt.Errorf("telegram: editMessageText text is required")
	}
	var message Message
	if err := c.call(ctx, "editMessageText", request, &message, 0); err != nil {
		return nil, err
	}
	return &message, nil
}

// AnswerCallbackQuery acknowledges a callback button press so the
// client stops showing a progress indicator.
func (c *Client) AnswerCallbackQuery(ctx context.Context, request AnswerCallbackQueryRequest) error {
	return c.call(ctx, "answerCallbackQuery", request, nil, 0)
}

// GetUpdates long-polls for updates. The request deadline is extended
// by request.Timeout seconds.
func (c *Client) GetUpdates(ctx context.Context, request GetUpdatesRequest) ([]Update, error) {
	var updates []Update
	extra := time.Duration(request.Timeout) * time.Second
	if err := c.call(ctx, "getUpdates", request, &updates, extra); err != nil {
		return nil, err
	}
	return updates, nil
}
