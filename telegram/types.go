// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package telegram

import "strings"

// ParseModeHTML selects Telegram's HTML formatting for message text.
const ParseModeHTML = "HTML"

// Chat types.
const (
	ChatTypePrivate    = "private"
	ChatTypeGroup      = "group"
	ChatTypeSupergroup = "supergroup"
	ChatTypeChannel    = "channel"
)

// Chat member statuses returned by getChatMember.
const (
	MemberStatusCreator       = "creator"
	MemberStatusAdministrator = "administrator"
	MemberStatusMember        = "member"
	MemberStatusRestricted    = "restricted"
	MemberStatusLeft          = "left"
	MemberStatusKicked        = "kicked"
)

// Update types for GetUpdatesRequest.AllowedUpdates.
const (
	UpdateTypeMessage       = "message"
	UpdateTypeCallbackQuery = "callback_query"
)

// User is a Telegram user or bot.
type User struct {
	ID        int64  `json:"id"`
	IsBot     bool   `json:"is_bot"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name,omitempty"`
	Username  string `json:"username,omitempty"`
}

// DisplayName returns "First Last", falling back to the username.
func (u User) DisplayName() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return u.Username
	}
	return name
}

// Chat is a private conversation, group, supergroup, or channel. The
// InviteLink field is only populated by getChat.
type Chat struct {
	ID         int64  `json:"id"`
	Type       string `json:"type"`
	Title      string `json:"title,omitempty"`
	Username   string `json:"username,omitempty"`
	InviteLink string `json:"invite_link,omitempty"`
}

// ChatMember is one user's standing in a chat.
type ChatMember struct {
	Status string `json:"status"`
	User   User   `json:"user"`
	// IsMember is only meaningful for restricted members.
	IsMember bool `json:"is_member,omitempty"`
}

// ChatInviteLink is an invite link created by the bot.
type ChatInviteLink struct {
	InviteLink         string `json:"invite_link"`
	Name               string `json:"name,omitempty"`
	CreatesJoinRequest bool   `json:"creates_join_request"`
	ExpireDate         int64  `json:"expire_date,omitempty"`
}

// Message is a chat message. ReplyToMessage is set when the message
// replies to another; Telegram does not nest replies further.
type Message struct {
	MessageID      int64    `json:"message_id"`
	From           *User    `json:"from,omitempty"`
	Chat           Chat     `json:"chat"`
	Date           int64    `json:"date"`
	Text           string   `json:"text,omitempty"`
	ReplyToMessage *Message `json:"reply_to_message,omitempty"`
}

// CallbackQuery is a press on an inline keyboard callback button.
type CallbackQuery struct {
	ID      string   `json:"id"`
	From    User     `json:"from"`
	Message *Message `json:"message,omitempty"`
	Data    string   `json:"data,omitempty"`
}

// Update is one entry from getUpdates. At most one payload is set.
type Update struct {
	UpdateID      int64          `json:"update_id"`
	Message       *Message       `json:"message,omitempty"`
	CallbackQuery *CallbackQuery `json:"callback_query,omitempty"`
}

// InlineKeyboardMarkup attaches buttons to a message, row by row.
type InlineKeyboardMarkup struct {
	InlineKeyboard [][]InlineKeyboardButton `json:"inline_keyboard"`
}

// InlineKeyboardButton opens URL or, when CallbackData is set, sends a
// callback query back to the bot.
type InlineKeyboardButton struct {
	Text         string `json:"text"`
	URL          string `json:"url,omitempty"`
	CallbackData string `json:"callback_data,omitempty"`
}

// LinkPreviewOptions controls the preview shown for links in a message.
type LinkPreviewOptions struct {
	IsDisabled bool `json:"is_disabled,omitempty"`
}

// SendMessageRequest is the body of sendMessage.
type SendMessageRequest struct {
	ChatID             int64                 `json:"chat_id"`
	Text               string                `json:"text"`
	ParseMode          string                `json:"parse_mode,omitempty"`
	ReplyMarkup        *InlineKeyboardMarkup `json:"reply_markup,omitempty"`
	LinkPreviewOptions *LinkPreviewOptions   `json:"link_preview_options,omitempty"`
}

// EditMessageTextRequest is the body of editMessageText.
type EditMessageTextRequest struct {
	ChatID             int64                 `json:"chat_id"`
	MessageID          int64                 `json:"message_id"`
	Text               string                `json:"text"`
	ParseMode          string                `json:"parse_mode,omitempty"`
	ReplyMarkup        *InlineKeyboardMarkup `json:"reply_markup,omitempty"`
	LinkPreviewOptions *LinkPreviewOptions   `json:"link_preview_options,omitempty"`
}

// CreateChatInviteLinkRequest is the body of createChatInviteLink.
type CreateChatInviteLinkRequest struct {
	ChatID             int64  `json:"chat_id"`
	Name               string `json:"name,omitempty"`
	ExpireDate         int64  `json:"expire_date,omitempty"`
	CreatesJoinRequest bool   `json:"creates_join_request,omitempty"`
}

// AnswerCallbackQueryRequest is the body of answerCallbackQuery.
type AnswerCallbackQueryRequest struct {
	CallbackQueryID string `json:"callback_query_id"`
	Text            string `json:"text,omitempty"`
	ShowAlert       bool   `json:"show_alert,omitempty"`
}

// GetUpdatesRequest is the body of getUpdates. Timeout is the long-poll
// duration in seconds.
type GetUpdatesRequest struct {
	Offset         int64    `json:"offset,omitempty"`
	Limit          int      `json:"limit,omitempty"`
	Timeout        int      `json:"timeout,omitempty"`
	AllowedUpdates []string `json:"allowed_updates,omitempty"`
}

// responseParameters carries the optional hints of a failed call.
type responseParameters struct {
	RetryAfter      int   `json:"retry_after,omitempty"`
	MigrateToChatID int64 `json:"migrate_to_chat_id,omitempty"`
}
