// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package relaydb

import (
	"context"
	"embed"
	"fmt"
	"log/slog"
	"time"

	"zombiezen.com/go/sqlite/sqlitex"

	"github.com/ahmed5528/masa-bot/lib/clock"
	"github.com/ahmed5528/masa-bot/lib/sqlitepool"
)

//go:embed schema/sqlite.sql
var schemaFS embed.FS

const schemaName = "schema/sqlite.sql"

// Config holds the parameters for opening the relay database.
type Config struct {
	// Path is the database file. The parent directory must exist.
	Path string

	// PoolSize is the number of connections. Defaults to 4.
	PoolSize int

	// BusyTimeout bounds lock waits. Defaults to
	// sqlitepool.DefaultBusyTimeout.
	BusyTimeout time.Duration

	// Clock stamps message records. Required.
	Clock clock.Clock

	// Logger receives operational messages. Required.
	Logger *slog.Logger
}

// DB is an open relay database.
type DB struct {
	pool   *sqlitepool.Pool
	clock  clock.Clock
	logger *slog.Logger
}

// Open opens (creating if needed) the database at cfg.Path and applies
// the schema.
func Open(ctx context.Context, cfg Config) (*DB, error) {
	if cfg.Clock == nil {
		return nil, fmt.Errorf("relaydb: Clock is required")
	}
	if cfg.Logger == nil {
		return nil, fmt.Errorf("relaydb: Logger is required")
	}

	schema, err := schemaFS.ReadFile(schemaName)
	if err != nil {
		return nil, fmt.Errorf("relaydb: reading embedded schema: %w", err)
	}

	pool, err := sqlitepool.Open(sqlitepool.Config{
		Path:        cfg.Path,
		PoolSize:    cfg.PoolSize,
		BusyTimeout: cfg.BusyTimeout,
		ForeignKeys: true,
		Logger:      cfg.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("relaydb: %w", err)
	}

	db := &DB{pool: pool, clock: cfg.Clock, logger: cfg.Logger}
	if err := db.applySchema(ctx, string(schema)); err != nil {
		pool.Close()
		return nil, err
	}
	return db, nil
}

func (db *DB) applySchema(ctx context.Context, schema string) error {
	conn, err := db.pool.Take(ctx)
	if err != nil {
		return fmt.Errorf("relaydb: applying schema: %w", err)
	}
	defer db.pool.Put(conn)

	if err := sqlitex.ExecuteScript(conn, schema, nil); err != nil {
		return fmt.Errorf("relaydb: applying schema: %w", err)
	}
	return nil
}

// Close closes the connection pool.
func (db *DB) Close() error {
	return db.pool.Close()
}

// Identities returns the identity.Store view of the database.
func (db *DB) Identities() *Identities {
	return &Identities{pool: db.pool}
}

// Conversations returns the conversation.Log view of the database.
func (db *DB) Conversations() *Conversations {
	return &Conversations{pool: db.pool, clock: db.clock}
}
