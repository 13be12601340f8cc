// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package relaydb

import (
	"context"
	"fmt"
	"time"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"github.com/ahmed5528/masa-bot/lib/clock"
	"github.com/ahmed5528/masa-bot/lib/conversation"
	"github.com/ahmed5528/masa-bot/lib/sqlitepool"
)

// Conversations implements conversation.Log over the messages table.
type Conversations struct {
	pool  *sqlitepool.Pool
	clock clock.Clock
}

var _ conversation.Log = (*Conversations)(nil)

// nullable maps the zero value to SQL NULL.
func nullable(value int64) any {
	if value == 0 {
		return nil
	}
	return value
}

// Append inserts entry stamped with the current clock time.
func (c *Conversations) Append(ctx context.Context, entry conversation.Entry) (conversation.Record, error) {
	if err := entry.Validate(); err != nil {
		return conversation.Record{}, err
	}

	conn, err := c.pool.Take(ctx)
	if err != nil {
		return conversation.Record{}, fmt.Errorf("relaydb: append message: %w", err)
	}
	defer c.pool.Put(conn)

	timestamp := c.clock.Now().UTC()
	err = sqlitex.Execute(conn, `
		INSERT INTO messages
			(user_id, staff_id, text, direction, timestamp, delivered_message_id)
		VALUES (?, ?, ?, ?, ?, ?)`,
		&sqlitex.ExecOptions{
			Args: []any{
				entry.UserID,
				nullable(entry.StaffID),
				entry.Text,
				string(entry.Direction),
				timestamp.UnixNano(),
				nullable(entry.DeliveredMessageID),
			},
		})
	if err != nil {
		return conversation.Record{}, fmt.Errorf("relaydb: append message: %w", err)
	}

	return conversation.Record{
		ID:                 conn.LastInsertRowID(),
		UserID:             entry.UserID,
		StaffID:            entry.StaffID,
		Text:               entry.Text,
		Direction:          entry.Direction,
		Timestamp:          timestamp,
		DeliveredMessageID: entry.DeliveredMessageID,
	}, nil
}

// Recent returns up to limit records for userID, newest first.
func (c *Conversations) Recent(ctx context.Context, userID int64, limit int) ([]conversation.Record, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("relaydb: limit must be positive, got %d", limit)
	}

	conn, err := c.pool.Take(ctx)
	if err != nil {
		return nil, fmt.Errorf("relaydb: recent messages: %w", err)
	}
	defer c.pool.Put(conn)

	var records []conversation.Record
	err = sqlitex.Execute(conn, `
		SELECT message_id, user_id, staff_id, text, direction, timestamp,
		       delivered_message_id
		FROM messages
		WHERE user_id = ?
		ORDER BY message_id DESC
		LIMIT ?`,
		&sqlitex.ExecOptions{
			Args: []any{userID, limit},
			ResultFunc: func(stmt *sqlite.Stmt) error {
				records = append(records, conversation.Record{
					ID:                 stmt.ColumnInt64(0),
					UserID:             stmt.ColumnInt64(1),
					StaffID:            stmt.ColumnInt64(2),
					Text:               stmt.ColumnText(3),
					Direction:          conversation.Direction(stmt.ColumnText(4)),
					Timestamp:          time.Unix(0, stmt.ColumnInt64(5)).UTC(),
					DeliveredMessageID: stmt.ColumnInt64(6),
				})
				return nil
			},
		})
	if err != nil {
		return nil, fmt.Errorf("relaydb: recent messages: %w", err)
	}
	return records, nil
}

// Delivered reports whether messageID is the delivered copy of a
// staff_to_user record for userID.
func (c *Conversations) Delivered(ctx context.Context, userID, messageID int64) (bool, error) {
	if messageID == 0 {
		return false, nil
	}

	conn, err := c.pool.Take(ctx)
	if err != nil {
		return false, fmt.Errorf("relaydb: delivered lookup: %w", err)
	}
	defer c.pool.Put(conn)

	return exists(conn, `
		SELECT 1 FROM messages
		WHERE user_id = ? AND direction = 'staff_to_user'
		  AND delivered_message_id = ?
		LIMIT 1`, userID, messageID)
}
