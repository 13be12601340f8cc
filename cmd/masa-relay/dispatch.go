// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/ahmed5528/masa-bot/lib/redact"
	"github.com/ahmed5528/masa-bot/lib/relay"
	"github.com/ahmed5528/masa-bot/telegram"
)

// eventHandler is the router surface the dispatcher drives.
type eventHandler interface {
	Handle(ctx context.Context, event relay.Event) error
	ReportFailure(ctx context.Context, event relay.Event)
}

// callbackAnswerer acknowledges button presses.
type callbackAnswerer interface {
	AnswerCallbackQuery(ctx context.Context, request telegram.AnswerCallbackQueryRequest) error
}

// queueDepth is the per-worker backlog before submit blocks the poller.
const queueDepth = 64

type dispatcherConfig struct {
	Handler      eventHandler
	Answerer     callbackAnswerer
	Workers      int
	EventTimeout time.Duration
	Redactor     *redact.Redactor
	Logger       *slog.Logger
}

// dispatcher runs events on worker goroutines sharded by sender id.
// All events of one sender land on the same worker and run in
// submission order.
type dispatcher struct {
	handler  eventHandler
	answerer callbackAnswerer
	timeout  time.Duration
	redactor *redact.Redactor
	logger   *slog.Logger

	queues  []chan inbound
	workers sync.WaitGroup
}

func newDispatcher(cfg dispatcherConfig) *dispatcher {
	queues := make([]chan inbound, max(cfg.Workers, 1))
	for index := range queues {
		queues[index] = make(chan inbound, queueDepth)
	}
	return &dispatcher{
		handler:  cfg.Handler,
		answerer: cfg.Answerer,
		timeout:  cfg.EventTimeout,
		redactor: cfg.Redactor,
		logger:   cfg.Logger,
		queues:   queues,
	}
}

// start launches the workers. Each event runs under its own timeout
// derived from ctx without its cancellation, so events queued before
// shutdown still complete.
func (d *dispatcher) start(ctx context.Context) {
	base := context.WithoutCancel(ctx)
	for _, queue := range d.queues {
		d.workers.Add(1)
		go func() {
			defer d.workers.Done()
			for item := range queue {
				d.process(base, item)
			}
		}()
	}
}

// submit queues item on its sender's worker. It blocks while that
// worker's queue is full and gives up when ctx is cancelled; a queue
// with room always takes the item, so nothing the poller confirms is
// lost during shutdown.
func (d *dispatcher) submit(ctx context.Context, item inbound) bool {
	queue := d.queues[d.shard(item)]
	select {
	case queue <- item:
		return true
	default:
	}
	select {
	case queue <- item:
		return true
	case <-ctx.Done():
		return false
	}
}

// stop closes the queues and waits for the workers to drain them.
func (d *dispatcher) stop() {
	for _, queue := range d.queues {
		close(queue)
	}
	d.workers.Wait()
}

func (d *dispatcher) shard(item inbound) int {
	return int(uint64(item.event.SenderID) % uint64(len(d.queues)))
}

func (d *dispatcher) process(base context.Context, item inbound) {
	ctx, cancel := context.WithTimeout(base, d.timeout)
	defer cancel()

	if item.callbackID != "" {
		err := d.answerer.AnswerCallbackQuery(ctx, telegram.AnswerCallbackQueryRequest{CallbackQueryID: item.callbackID})
		if err != nil {
			d.logger.Warn("answering callback query failed", "error", err)
		}
	}
	if !item.routed {
		return
	}

	if err := d.handler.Handle(ctx, item.event); err != nil {
		d.logger.Error("handling event failed",
			d.redactor.User(item.event.SenderID),
			"kind", item.event.Kind.String(),
			"error", err,
		)
		// The event's own deadline may be what failed it.
		reportCtx, cancelReport := context.WithTimeout(base, d.timeout)
		defer cancelReport()
		d.handler.ReportFailure(reportCtx, item.event)
	}
}
