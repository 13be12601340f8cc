// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"errors"
	"testing"

	"github.com/ahmed5528/masa-bot/telegram"
)

type fakeGroupAPI struct {
	status     string
	inviteLink string
	created    []telegram.CreateChatInviteLinkRequest
	err        error
}

func (f *fakeGroupAPI) GetChatMember(_ context.Context, chatID, userID int64) (*telegram.ChatMember, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &telegram.ChatMember{Status: f.status, User: telegram.User{ID: userID}}, nil
}

func (f *fakeGroupAPI) GetChat(_ context.Context, chatID int64) (*telegram.Chat, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &telegram.Chat{ID: chatID, InviteLink: f.inviteLink}, nil
}

func (f *fakeGroupAPI) CreateChatInviteLink(_ context.Context, request telegram.CreateChatInviteLinkRequest) (*telegram.ChatInviteLink, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.created = append(f.created, request)
	return &telegram.ChatInviteLink{InviteLink: "https://t.me/+minted", CreatesJoinRequest: request.CreatesJoinRequest}, nil
}

func TestPlatformMembershipStatus(t *testing.T) {
	api := &fakeGroupAPI{status: "administrator"}
	status, err := telegramPlatform{api: api}.MembershipStatus(context.Background(), -100, 42)
	if err != nil {
		t.Fatalf("MembershipStatus: %v", err)
	}
	if status != "administrator" {
		t.Errorf("status = %q", status)
	}
}

func TestPlatformExistingInviteLink(t *testing.T) {
	api := &fakeGroupAPI{inviteLink: "https://t.me/+primary"}
	link, err := telegramPlatform{api: api}.ExistingInviteLink(context.Background(), -100)
	if err != nil {
		t.Fatalf("ExistingInviteLink: %v", err)
	}
	if link != "https://t.me/+primary" {
		t.Errorf("link = %q", link)
	}
}

func TestPlatformCreateJoinRequestInviteLink(t *testing.T) {
	api := &fakeGroupAPI{}
	link, err := telegramPlatform{api: api}.CreateJoinRequestInviteLink(context.Background(), -100)
	if err != nil {
		t.Fatalf("CreateJoinRequestInviteLink: %v", err)
	}
	if link != "https://t.me/+minted" {
		t.Errorf("link = %q", link)
	}
	request := api.created[0]
	if request.ChatID != -100 || !request.CreatesJoinRequest || request.Name != inviteLinkName {
		t.Errorf("request = %+v", request)
	}
}

func TestPlatformErrorsPropagate(t *testing.T) {
	failure := errors.New("network down")
	platform := telegramPlatform{api: &fakeGroupAPI{err: failure}}
	ctx := context.Background()

	if _, err := platform.MembershipStatus(ctx, -100, 42); !errors.Is(err, failure) {
		t.Errorf("MembershipStatus err = %v", err)
	}
	if _, err := platform.ExistingInviteLink(ctx, -100); !errors.Is(err, failure) {
		t.Errorf("ExistingInviteLink err = %v", err)
	}
	if _, err := platform.CreateJoinRequestInviteLink(ctx, -100); !errors.Is(err, failure) {
		t.Errorf("CreateJoinRequestInviteLink err = %v", err)
	}
}
