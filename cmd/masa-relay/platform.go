// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"

	"github.com/ahmed5528/masa-bot/telegram"
)

// groupAPI is the part of the Bot API the membership gate uses.
type groupAPI interface {
	GetChatMember(ctx context.Context, chatID, userID int64) (*telegram.ChatMember, error)
	GetChat(ctx context.Context, chatID int64) (*telegram.Chat, error)
	CreateChatInviteLink(ctx context.Context, request telegram.CreateChatInviteLinkRequest) (*telegram.ChatInviteLink, error)
}

// inviteLinkName labels links the relay mints so group administrators
// can tell them apart.
const inviteLinkName = "support relay"

// telegramPlatform implements membership.Platform over the Bot API.
type telegramPlatform struct {
	api groupAPI
}

func (p telegramPlatform) MembershipStatus(ctx context.Context, groupID, userID int64) (string, error) {
	member, err := p.api.GetChatMember(ctx, groupID, userID)
	if err != nil {
		return "", err
	}
	return member.Status, nil
}

func (p telegramPlatform) ExistingInviteLink(ctx context.Context, groupID int64) (string, error) {
	chat, err := p.api.GetChat(ctx, groupID)
	if err != nil {
		return "", err
	}
	return chat.InviteLink, nil
}

func (p telegramPlatform) CreateJoinRequestInviteLink(ctx context.Context, groupID int64) (string, error) {
	link, err := p.api.CreateChatInviteLink(ctx, telegram.CreateChatInviteLinkRequest{
		ChatID:             groupID,
		Name:               inviteLinkName,
		CreatesJoinRequest: true,
	})
	if err != nil {
		return "", err
	}
	return link.InviteLink, nil
}
