// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package telegram wraps the subset of the Telegram Bot API the relay
// needs: identity (GetMe), group membership (GetChatMember, GetChat,
// CreateChatInviteLink), messaging (SendMessage, EditMessageText,
// AnswerCallbackQuery), and update delivery (GetUpdates).
//
// [Client] holds the API base URL, the bot token in mmap-backed
// secret.Buffer memory, and the HTTP transport. Every method is a JSON
// POST to <base>/bot<token>/<method>; the response envelope
// {ok, result, error_code, description, parameters} is decoded once in
// the client and failures surface as [*APIError]. Because the token is
// part of the request path, transport errors have their URL stripped
// before they are returned.
//
// [Poller] long-polls GetUpdates, advances the offset past every update
// it has handed to the handler, and backs off on failures (honouring the
// server's retry_after) using an injected clock.
//
// [RenderHTML] converts CommonMark into the HTML subset Telegram accepts
// with parse_mode=HTML.
package telegram
