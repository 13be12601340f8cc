// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package relaydb

import (
	"context"
	"fmt"
	"time"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"github.com/ahmed5528/masa-bot/lib/identity"
	"github.com/ahmed5528/masa-bot/lib/sqlitepool"
)

// Identities implements identity.Store over the users table.
type Identities struct {
	pool *sqlitepool.Pool
}

var _ identity.Store = (*Identities)(nil)

const selectBinding = `SELECT user_id, name, serial, joined_date FROM users`

func scanBinding(stmt *sqlite.Stmt) identity.Binding {
	return identity.Binding{
		UserID:      stmt.ColumnInt64(0),
		DisplayName: stmt.ColumnText(1),
		Serial:      stmt.ColumnText(2),
		JoinedAt:    time.Unix(0, stmt.ColumnInt64(3)).UTC(),
	}
}

// LookupByUser returns the binding for userID or identity.ErrNotFound.
func (s *Identities) LookupByUser(ctx context.Context, userID int64) (identity.Binding, error) {
	return s.lookup(ctx, selectBinding+` WHERE user_id = ?`, userID)
}

// LookupBySerial returns the binding owning serial or
// identity.ErrNotFound.
func (s *Identities) LookupBySerial(ctx context.Context, serial string) (identity.Binding, error) {
	return s.lookup(ctx, selectBinding+` WHERE serial = ?`, serial)
}

func (s *Identities) lookup(ctx context.Context, query string, key any) (identity.Binding, error) {
	conn, err := s.pool.Take(ctx)
	if err != nil {
		return identity.Binding{}, fmt.Errorf("relaydb: lookup binding: %w", err)
	}
	defer s.pool.Put(conn)

	var binding identity.Binding
	found := false
	err = sqlitex.Execute(conn, query, &sqlitex.ExecOptions{
		Args: []any{key},
		ResultFunc: func(stmt *sqlite.Stmt) error {
			binding = scanBinding(stmt)
			found = true
			return nil
		},
	})
	if err != nil {
		return identity.Binding{}, fmt.Errorf("relaydb: lookup binding: %w", err)
	}
	if !found {
		return identity.Binding{}, identity.ErrNotFound
	}
	return binding, nil
}

// Create inserts binding inside an IMMEDIATE transaction, failing with
// *identity.DuplicateError when the user id or the serial is taken.
func (s *Identities) Create(ctx context.Context, binding identity.Binding) (err error) {
	conn, err := s.pool.Take(ctx)
	if err != nil {
		return fmt.Errorf("relaydb: create binding: %w", err)
	}
	defer s.pool.Put(conn)

	endTransaction, err := sqlitex.ImmediateTransaction(conn)
	if err != nil {
		return fmt.Errorf("relaydb: begin transaction: %w", err)
	}
	defer endTransaction(&err)

	userTaken, err := exists(conn, `SELECT 1 FROM users WHERE user_id = ?`, binding.UserID)
	if err != nil {
		return err
	}
	if userTaken {
		return &identity.DuplicateError{Field: identity.FieldUserID}
	}

	serialTaken, err := exists(conn, `SELECT 1 FROM users WHERE serial = ?`, binding.Serial)
	if err != nil {
		return err
	}
	if serialTaken {
		return &identity.DuplicateError{Field: identity.FieldSerial, Serial: binding.Serial}
	}

	err = sqlitex.Execute(conn,
		`INSERT INTO users (user_id, name, serial, joined_date) VALUES (?, ?, ?, ?)`,
		&sqlitex.ExecOptions{
			Args: []any{
				binding.UserID,
				binding.DisplayName,
				binding.Serial,
				binding.JoinedAt.UnixNano(),
			},
		})
	if err != nil {
		return mapConstraint(err, binding)
	}
	return nil
}

func exists(conn *sqlite.Conn, query string, args ...any) (bool, error) {
	found := false
	err := sqlitex.Execute(conn, query, &sqlitex.ExecOptions{
		Args: args,
		ResultFunc: func(*sqlite.Stmt) error {
			found = true
			return nil
		},
	})
	if err != nil {
		return false, fmt.Errorf("relaydb: existence check: %w", err)
	}
	return found, nil
}

// mapConstraint translates a uniqueness failure that slipped past the
// in-transaction checks into the identity package's error.
func mapConstraint(err error, binding identity.Binding) error {
	switch sqlite.ErrCode(err) {
	case sqlite.ResultConstraintPrimaryKey:
		return &identity.DuplicateError{Field: identity.FieldUserID}
	case sqlite.ResultConstraintUnique:
		return &identity.DuplicateError{Field: identity.FieldSerial, Serial: binding.Serial}
	default:
		return fmt.Errorf("relaydb: insert binding: %w", err)
	}
}

// UserSummary is one row of the operator user listing.
type UserSummary struct {
	Binding      identity.Binding
	MessageCount int64
	LastActivity time.Time
}

// ListUsers returns up to limit bindings, most recently joined first,
// with their message counts.
func (s *Identities) ListUsers(ctx context.Context, limit int) ([]UserSummary, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("relaydb: limit must be positive, got %d", limit)
	}
	conn, err := s.pool.Take(ctx)
	if err != nil {
		return nil, fmt.Errorf("relaydb: list users: %w", err)
	}
	defer s.pool.Put(conn)

	var summaries []UserSummary
	err = sqlitex.Execute(conn, `
		SELECT u.user_id, u.name, u.serial, u.joined_date,
		       COUNT(m.message_id), COALESCE(MAX(m.timestamp), 0)
		FROM users u
		LEFT JOIN messages m ON m.user_id = u.user_id
		GROUP BY u.user_id
		ORDER BY u.joined_date DESC, u.user_id DESC
		LIMIT ?`,
		&sqlitex.ExecOptions{
			Args: []any{limit},
			ResultFunc: func(stmt *sqlite.Stmt) error {
				summary := UserSummary{
					Binding:      scanBinding(stmt),
					MessageCount: stmt.ColumnInt64(4),
				}
				if last := stmt.ColumnInt64(5); last != 0 {
					summary.LastActivity = time.Unix(0, last).UTC()
				}
				summaries = append(summaries, summary)
				return nil
			},
		})
	if err != nil {
		return nil, fmt.Errorf("relaydb: list users: %w", err)
	}
	return summaries, nil
}
