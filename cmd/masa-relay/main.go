// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/ahmed5528/masa-bot/lib/cli"
	"github.com/ahmed5528/masa-bot/lib/clock"
	"github.com/ahmed5528/masa-bot/lib/config"
	"github.com/ahmed5528/masa-bot/lib/identity"
	"github.com/ahmed5528/masa-bot/lib/membership"
	"github.com/ahmed5528/masa-bot/lib/process"
	"github.com/ahmed5528/masa-bot/lib/redact"
	"github.com/ahmed5528/masa-bot/lib/relay"
	"github.com/ahmed5528/masa-bot/lib/relaydb"
	"github.com/ahmed5528/masa-bot/lib/secret"
	"github.com/ahmed5528/masa-bot/lib/version"
	"github.com/ahmed5528/masa-bot/telegram"
)

func main() {
	if err := run(); err != nil {
		process.Fatal(err)
	}
}

func run() error {
	flagSet := pflag.NewFlagSet("masa-relay", pflag.ContinueOnError)
	configPath := flagSet.String("config", "", "path to the relay config file (default: $"+config.EnvironmentVariable+")")
	showVersion := flagSet.Bool("version", false, "print version information and exit")
	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}

	if *showVersion {
		fmt.Printf("masa-relay %s\n", version.Info())
		return nil
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}

	logger, err := cli.NewLogger(os.Stderr, cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return err
	}

	token, err := cfg.Token()
	if err != nil {
		return err
	}
	defer token.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	relayDaemon, err := newDaemon(ctx, daemonConfig{
		Config: cfg,
		Token:  token,
		Clock:  clock.Real(),
		Logger: logger,
	})
	if err != nil {
		return err
	}
	defer relayDaemon.close()

	return relayDaemon.run(ctx)
}

func loadConfig(path string) (*config.Config, error) {
	var cfg *config.Config
	var err error
	if path != "" {
		cfg, err = config.LoadFile(path)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config:\n%w", err)
	}
	return cfg, nil
}

type daemonConfig struct {
	Config *config.Config
	Token  *secret.Buffer
	Clock  clock.Clock
	Logger *slog.Logger
	// HTTPClient overrides the Bot API transport; nil uses the default.
	HTTPClient *http.Client
}

// daemon is the assembled relay: database, Bot API client, router and
// the dispatch machinery around them.
type daemon struct {
	db         *relaydb.DB
	client     *telegram.Client
	poller     *telegram.Poller
	dispatcher *dispatcher
	translator translator
	logger     *slog.Logger
}

// newDaemon opens the database, authenticates the bot, and wires the
// relay. The returned daemon must be closed.
func newDaemon(ctx context.Context, dc daemonConfig) (*daemon, error) {
	cfg, logger := dc.Config, dc.Logger

	redactor := redact.Ephemeral()
	if cfg.Log.RedactionKeyFile != "" {
		var err error
		redactor, err = redact.FromFile(cfg.Log.RedactionKeyFile)
		if err != nil {
			return nil, fmt.Errorf("loading redaction key: %w", err)
		}
	} else {
		logger.Warn("log.redaction_key_file not set; user references in logs change on restart")
	}

	if err := cfg.EnsureStorageDir(); err != nil {
		return nil, err
	}
	db, err := relaydb.Open(ctx, relaydb.Config{
		Path:     cfg.Storage.Path,
		PoolSize: cfg.Storage.PoolSize,
		Clock:    dc.Clock,
		Logger:   logger,
	})
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	relayDaemon, err := assemble(ctx, dc, db, redactor)
	if err != nil {
		db.Close()
		return nil, err
	}
	return relayDaemon, nil
}

func assemble(ctx context.Context, dc daemonConfig, db *relaydb.DB, redactor *redact.Redactor) (*daemon, error) {
	cfg, logger := dc.Config, dc.Logger

	client, err := telegram.NewClient(telegram.ClientConfig{
		APIURL:         cfg.Telegram.APIURL,
		Token:          dc.Token,
		HTTPClient:     dc.HTTPClient,
		RequestTimeout: cfg.Telegram.RequestTimeout.Std(),
		Logger:         logger,
	})
	if err != nil {
		return nil, err
	}

	me, err := client.GetMe(ctx)
	if err != nil {
		return nil, fmt.Errorf("authenticating bot: %w", err)
	}

	generator := identity.NewGenerator(cfg.Serial.Prefix)
	registrar, err := identity.NewRegistrar(identity.RegistrarConfig{
		Store:            db.Identities(),
		Generator:        generator,
		Clock:            dc.Clock,
		MaxSerialRetries: cfg.SerialRetries(),
		Logger:           logger,
	})
	if err != nil {
		return nil, err
	}

	gate, err := membership.NewGate(membership.Config{
		Platform:      telegramPlatform{api: client},
		GroupID:       cfg.Group.ChatID,
		InviteLinkTTL: cfg.Group.InviteLinkTTL.Std(),
		Clock:         dc.Clock,
		Redactor:      redactor,
		Logger:        logger,
	})
	if err != nil {
		return nil, err
	}

	roster, err := relay.NewRoster(cfg.Staff...)
	if err != nil {
		return nil, err
	}

	router, err := relay.NewRouter(relay.RouterConfig{
		Identities:        db.Identities(),
		Registrar:         registrar,
		Generator:         generator,
		Conversations:     db.Conversations(),
		Gate:              gate,
		Sender:            &telegramSender{api: client, logger: logger},
		Roster:            roster,
		FormURL:           cfg.Form.URL,
		StaffMarker:       cfg.Relay.StaffMarker,
		HistoryLimit:      cfg.Relay.HistoryLimit,
		HintUnrelatedText: cfg.HintUnrelated(),
		Redactor:          redactor,
		Logger:            logger,
	})
	if err != nil {
		return nil, err
	}

	poller, err := telegram.NewPoller(telegram.PollerConfig{
		Source:  client,
		Timeout: cfg.Telegram.PollTimeout.Std(),
		Clock:   dc.Clock,
		Logger:  logger,
	})
	if err != nil {
		return nil, err
	}

	logger.Info("relay ready",
		"bot", me.Username,
		"staff", roster.Len(),
		"workers", cfg.Relay.Workers,
		"database", cfg.Storage.Path,
	)

	return &daemon{
		db:     db,
		client: client,
		poller: poller,
		dispatcher: newDispatcher(dispatcherConfig{
			Handler:      router,
			Answerer:     client,
			Workers:      cfg.Relay.Workers,
			EventTimeout: cfg.Relay.EventTimeout.Std(),
			Redactor:     redactor,
			Logger:       logger,
		}),
		translator: translator{botID: me.ID, botUsername: me.Username},
		logger:     logger,
	}, nil
}

// run polls until ctx is cancelled or the Bot API refuses the bot,
// then drains queued events.
func (d *daemon) run(ctx context.Context) error {
	d.dispatcher.start(ctx)

	err := d.poller.Run(ctx, func(ctx context.Context, update telegram.Update) bool {
		item := d.translator.translate(update)
		if !item.routed && item.callbackID == "" {
			return true
		}
		return d.dispatcher.submit(ctx, item)
	})

	d.logger.Info("shutting down")
	d.dispatcher.stop()
	return err
}

func (d *daemon) close() {
	d.client.CloseIdleConnections()
	if err := d.db.Close(); err != nil {
		d.logger.Error("closing database", "error", err)
	}
}
