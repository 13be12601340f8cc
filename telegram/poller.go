// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ahmed5528/masa-bot/lib/clock"
)

// UpdateSource is the subset of Client the Poller needs.
type UpdateSource interface {
	GetUpdates(ctx context.Context, request GetUpdatesRequest) ([]Update, error)
}

// UpdateHandler receives each update in order. The next poll starts
// after the handler returns for every update of the current batch. It
// returns false when it did not take the update (during shutdown); the
// poller then stops the batch without confirming that update, so the
// server delivers it again on the next run.
type UpdateHandler func(ctx context.Context, update Update) bool

// confirmTimeout bounds the request that confirms handled updates on
// shutdown.
const confirmTimeout = 5 * time.Second

// PollerConfig configures a Poller.
type PollerConfig struct {
	// Source supplies updates. Required.
	Source UpdateSource
	// Timeout is the long-poll duration. Default: 30 seconds.
	Timeout time.Duration
	// Limit caps updates per poll (1-100). Default: 100.
	Limit int
	// AllowedUpdates restricts update types. Default: messages and
	// callback queries.
	AllowedUpdates []string
	// MaxBackoff is the maximum delay between retries after a failed
	// poll. Backoff starts at one second and doubles. Default: 30 seconds.
	MaxBackoff time.Duration
	// Clock drives backoff delays. Default: real clock.
	Clock clock.Clock
	// Logger receives poll failures. Default: discard.
	Logger *slog.Logger
}

// Poller drives the getUpdates loop.
type Poller struct {
	source         UpdateSource
	timeout        time.Duration
	limit          int
	allowedUpdates []string
	maxBackoff     time.Duration
	clock          clock.Clock
	logger         *slog.Logger
	offset         int64
	// requested is the offset of the last getUpdates request sent.
	// Updates below it are confirmed on the server.
	requested int64
}

// NewPoller validates config and returns a Poller starting at offset 0
// (all unconfirmed updates).
func NewPoller(config PollerConfig) (*Poller, error) {
	if config.Source == nil {
		return nil, fmt.Errorf("telegram: poller Source is required")
	}
	timeout := config.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	limit := config.Limit
	if limit <= 0 || limit > 100 {
		limit = 100
	}
	allowed := config.AllowedUpdates
	if len(allowed) == 0 {
		allowed = []string{UpdateTypeMessage, UpdateTypeCallbackQuery}
	}
	maxBackoff := config.MaxBackoff
	if maxBackoff <= 0 {
		maxBackoff = 30 * time.Second
	}
	clk := config.Clock
	if clk == nil {
		clk = clock.Real()
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Poller{
		source:         config.Source,
		timeout:        timeout,
		limit:          limit,
		allowedUpdates: allowed,
		maxBackoff:     maxBackoff,
		clock:          clk,
		logger:         logger,
	}, nil
}

// Offset returns the offset the next poll will send.
func (p *Poller) Offset() int64 {
	return p.offset
}

// Run polls until ctx is cancelled, calling handler for each update.
// Failed polls are retried with exponential backoff; a server-provided
// retry_after replaces the computed delay. Run returns nil on
// cancellation and an error only when the bot token is rejected or
// another poller holds the update stream, neither of which a retry can
// fix.
func (p *Poller) Run(ctx context.Context, handler UpdateHandler) error {
	backoff := time.Second

	for {
		select {
		case <-ctx.Done():
			p.confirm(ctx)
			return nil
		default:
		}

		p.requested = p.offset
		updates, err := p.source.GetUpdates(ctx, GetUpdatesRequest{
			Offset:         p.offset,
			Limit:          p.limit,
			Timeout:        int(p.timeout / time.Second),
			AllowedUpdates: p.allowedUpdates,
		})
		if err != nil {
			if ctx.Err() != nil {
				p.confirm(ctx)
				return nil
			}
			if IsAPIError(err, CodeUnauthorized) {
				return fmt.Errorf("telegram: bot token rejected: %w", err)
			}
			if IsAPIError(err, CodeConflict) {
				return fmt.Errorf("telegram: update stream held by another consumer: %w", err)
			}

			delay := backoff
			if retryAfter, ok := RetryAfter(err); ok {
				delay = retryAfter
			}
			p.logger.Error("polling updates failed, retrying", "error", err, "backoff", delay)
			select {
			case <-ctx.Done():
				p.confirm(ctx)
				return nil
			case <-p.clock.After(delay):
			}
			backoff *= 2
			if backoff > p.maxBackoff {
				backoff = p.maxBackoff
			}
			continue
		}

		backoff = time.Second
		for _, update := range updates {
			if !handler(ctx, update) {
				break
			}
			if update.UpdateID >= p.offset {
				p.offset = update.UpdateID + 1
			}
		}
	}
}

// confirm tells the server about updates handled since the last
// request, so a restart does not deliver them again. It sends a
// non-blocking getUpdates on a context detached from ctx's cancellation.
func (p *Poller) confirm(ctx context.Context) {
	if p.offset <= p.requested {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), confirmTimeout)
	defer cancel()
	_, err := p.source.GetUpdates(ctx, GetUpdatesRequest{
		Offset:         p.offset,
		Limit:          1,
		AllowedUpdates: p.allowedUpdates,
	})
	if err != nil {
		p.logger.Warn("confirming handled updates failed; they may be delivered again",
			"offset", p.offset, "error", err)
		return
	}
	p.requested = p.offset
}
