// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package membership answers whether a user belongs to the private
// group that grants access to support, and supplies the invite link
// shown to users who do not.
//
// Platform faults never escape the Gate: a failed status check counts
// as "not a member" and a failed invite-link lookup yields no link, so
// the caller renders a prompt without a join button. Both are logged.
package membership

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/ahmed5528/masa-bot/lib/clock"
	"github.com/ahmed5528/masa-bot/lib/redact"
)

// Member statuses reported by the platform.
const (
	StatusCreator       = "creator"
	StatusAdministrator = "administrator"
	StatusMember        = "member"
)

// Platform is the group-membership surface of the messaging platform.
type Platform interface {
	// MembershipStatus returns userID's status string in groupID.
	MembershipStatus(ctx context.Context, groupID, userID int64) (string, error)
	// ExistingInviteLink returns the group's primary invite link, or ""
	// when the group has none.
	ExistingInviteLink(ctx context.Context, groupID int64) (string, error)
	// CreateJoinRequestInviteLink mints a link whose joins require
	// administrator approval.
	CreateJoinRequestInviteLink(ctx context.Context, groupID int64) (string, error)
}

// Config configures a Gate.
type Config struct {
	// Platform performs the lookups. Required.
	Platform Platform
	// GroupID is the gating group. Required.
	GroupID int64
	// InviteLinkTTL is how long a resolved invite link is reused before
	// it is looked up again. Zero disables caching.
	InviteLinkTTL time.Duration
	// Clock drives link expiry. Default: real clock.
	Clock clock.Clock
	// Redactor renders user ids in log lines. Default: ephemeral key.
	Redactor *redact.Redactor
	// Logger receives fault reports. Default: discard.
	Logger *slog.Logger
}

// Gate checks group membership and resolves invite links.
type Gate struct {
	platform Platform
	groupID  int64
	ttl      time.Duration
	clock    clock.Clock
	redactor *redact.Redactor
	logger   *slog.Logger

	mu            sync.Mutex
	cachedLink    string
	cachedExpires time.Time
}

// NewGate validates cfg and returns a Gate.
func NewGate(cfg Config) (*Gate, error) {
	if cfg.Platform == nil {
		return nil, fmt.Errorf("membership: Platform is required")
	}
	if cfg.GroupID == 0 {
		return nil, fmt.Errorf("membership: GroupID is required")
	}
	if cfg.InviteLinkTTL < 0 {
		return nil, fmt.Errorf("membership: InviteLinkTTL must not be negative")
	}
	clk := cfg.Clock
	if clk == nil {
		clk = clock.Real()
	}
	redactor := cfg.Redactor
	if redactor == nil {
		redactor = redact.Ephemeral()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Gate{
		platform: cfg.Platform,
		groupID:  cfg.GroupID,
		ttl:      cfg.InviteLinkTTL,
		clock:    clk,
		redactor: redactor,
		logger:   logger,
	}, nil
}

// IsMember reports whether userID is a member, administrator, or
// creator of the group. Any other status, and any platform fault, is
// false.
func (g *Gate) IsMember(ctx context.Context, userID int64) bool {
	status, err := g.platform.MembershipStatus(ctx, g.groupID, userID)
	if err != nil {
		g.logger.Error("membership check failed",
			g.redactor.User(userID),
			"group_id", g.groupID,
			"error", err,
		)
		return false
	}
	switch status {
	case StatusMember, StatusAdministrator, StatusCreator:
		return true
	default:
		return false
	}
}

// InviteLink returns a link for joining the group: the group's existing
// link when there is one, otherwise a freshly minted join-request link.
// ok is false when neither could be obtained.
func (g *Gate) InviteLink(ctx context.Context) (link string, ok bool) {
	if cached, found := g.cached(); found {
		return cached, true
	}

	link, err := g.platform.ExistingInviteLink(ctx, g.groupID)
	if err != nil {
		g.logger.Error("invite link lookup failed", "group_id", g.groupID, "error", err)
		return "", false
	}
	if link == "" {
		link, err = g.platform.CreateJoinRequestInviteLink(ctx, g.groupID)
		if err != nil {
			g.logger.Error("invite link creation failed", "group_id", g.groupID, "error", err)
			return "", false
		}
		if link == "" {
			g.logger.Error("platform returned an empty invite link", "group_id", g.groupID)
			return "", false
		}
		g.logger.Info("created join-request invite link", "group_id", g.groupID)
	}

	g.store(link)
	return link, true
}

func (g *Gate) cached() (string, bool) {
	if g.ttl == 0 {
		return "", false
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.cachedLink == "" || !g.clock.Now().Before(g.cachedExpires) {
		return "", false
	}
	return g.cachedLink, true
}

func (g *Gate) store(link string) {
	if g.ttl == 0 {
		return
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.cachedLink = link
	g.cachedExpires = g.clock.Now().Add(g.ttl)
}
