// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/ahmed5528/masa-bot/lib/cli"
	"github.com/ahmed5528/masa-bot/lib/clock"
	"github.com/ahmed5528/masa-bot/lib/config"
	"github.com/ahmed5528/masa-bot/lib/identity"
	"github.com/ahmed5528/masa-bot/lib/relaydb"
)

// environment carries what every command needs: where the config
// lives, where output goes, and how to style it.
type environment struct {
	ctx        context.Context
	configPath string
	stdout     io.Writer
	stderr     io.Writer
	clock      clock.Clock
	styles     styles
	// logger defaults to cli.NewCommandLogger.
	logger *slog.Logger
}

// store is an open relay database plus the serial rules of the
// deployment that wrote it.
type store struct {
	cfg       *config.Config
	db        *relaydb.DB
	generator *identity.Generator
}

func (s *store) Close() error {
	return s.db.Close()
}

// open loads the config and opens its database. Only the storage and
// serial sections matter here, so the config is not validated: an
// operator can inspect a database without the bot token at hand.
func (env *environment) open() (*store, error) {
	var cfg *config.Config
	var err error
	if env.configPath != "" {
		cfg, err = config.LoadFile(env.configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}
	if cfg.Storage.Path == "" {
		return nil, fmt.Errorf("storage.path is not set in the config")
	}

	logger := env.logger
	if logger == nil {
		logger = cli.NewCommandLogger()
	}
	db, err := relaydb.Open(env.ctx, relaydb.Config{
		Path:     cfg.Storage.Path,
		PoolSize: 1,
		Clock:    env.clock,
		Logger:   logger,
	})
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", cfg.Storage.Path, err)
	}
	return &store{
		cfg:       cfg,
		db:        db,
		generator: identity.NewGenerator(cfg.Serial.Prefix),
	}, nil
}

// errSerialNotFound is returned by resolve; commands report it and
// exit non-zero.
var errSerialNotFound = errors.New("serial not found")

// resolve normalizes a typed serial the way the staff commands do and
// looks it up.
func (s *store) resolve(ctx context.Context, typed string) (identity.Binding, error) {
	serial, ok := s.generator.Normalize(typed)
	if !ok {
		return identity.Binding{}, fmt.Errorf("%q is not a well-formed serial (expected %s followed by %d characters)",
			typed, s.generator.Prefix(), identity.SerialLength)
	}
	binding, err := s.db.Identities().LookupBySerial(ctx, serial)
	if errors.Is(err, identity.ErrNotFound) {
		return identity.Binding{}, fmt.Errorf("%s: %w", serial, errSerialNotFound)
	}
	return binding, err
}

// notFound prints a resolve failure for an unknown serial and turns it
// into exit code 2; other errors pass through.
func (env *environment) notFound(err error) error {
	if errors.Is(err, errSerialNotFound) {
		fmt.Fprintln(env.stderr, env.styles.warning.Render(err.Error()))
		return &cli.ExitError{Code: 2}
	}
	return err
}
