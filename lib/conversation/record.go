// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package conversation

import (
	"context"
	"fmt"
	"time"
)

// Direction records which side of the relay a message came from.
type Direction string

const (
	UserToStaff Direction = "user_to_staff"
	StaffToUser Direction = "staff_to_user"
)

// Valid reports whether d is one of the two known directions.
func (d Direction) Valid() bool {
	return d == UserToStaff || d == StaffToUser
}

// Arrow is the marker history lines use for d.
func (d Direction) Arrow() string {
	switch d {
	case UserToStaff:
		return "→"
	case StaffToUser:
		return "←"
	default:
		return "?"
	}
}

// Record is one relayed message.
type Record struct {
	// ID is assigned by the Log on Append and increases monotonically.
	ID     int64
	UserID int64

	// StaffID is the staff member who wrote a StaffToUser message;
	// zero for UserToStaff.
	StaffID int64

	Text      string
	Direction Direction
	Timestamp time.Time

	// DeliveredMessageID is the platform message id of the copy the
	// user received, for StaffToUser records; zero otherwise.
	DeliveredMessageID int64
}

// Entry is the caller-supplied part of a Record.
type Entry struct {
	UserID             int64
	StaffID            int64
	Text               string
	Direction          Direction
	DeliveredMessageID int64
}

// Validate checks the shape of an entry before it reaches storage.
func (e Entry) Validate() error {
	if !e.Direction.Valid() {
		return fmt.Errorf("conversation: invalid direction %q", e.Direction)
	}
	if e.Direction == UserToStaff && e.StaffID != 0 {
		return fmt.Errorf("conversation: user_to_staff records carry no staff id")
	}
	if e.Direction == StaffToUser && e.StaffID == 0 {
		return fmt.Errorf("conversation: staff_to_user records require a staff id")
	}
	return nil
}

// Log is the append-only message log. Implementations must be safe for
// concurrent use. Storage failures are returned, never swallowed.
type Log interface {
	// Append stores entry and returns the complete record.
	Append(ctx context.Context, entry Entry) (Record, error)

	// Recent returns up to limit records for userID, newest first.
	Recent(ctx context.Context, userID int64, limit int) ([]Record, error)

	// Delivered reports whether messageID is the delivered copy of a
	// StaffToUser record for userID.
	Delivered(ctx context.Context, userID, messageID int64) (bool, error)
}
