// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package identity

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Binding is the persistent association between a platform user and
// their serial.
type Binding struct {
	UserID      int64
	DisplayName string
	Serial      string
	JoinedAt    time.Time
}

// Store persists bindings. Implementations must be safe for concurrent
// use.
type Store interface {
	// LookupByUser returns the binding for userID, or ErrNotFound.
	LookupByUser(ctx context.Context, userID int64) (Binding, error)

	// LookupBySerial returns the binding owning serial, or ErrNotFound.
	// The serial must already be normalized.
	LookupBySerial(ctx context.Context, serial string) (Binding, error)

	// Create inserts binding. It fails with a *DuplicateError when
	// either the user id or the serial is already bound. The check and
	// the insert are atomic with respect to other Create calls.
	Create(ctx context.Context, binding Binding) error
}

var (
	// ErrNotFound reports that no binding matches the lookup key.
	ErrNotFound = errors.New("identity: binding not found")

	// ErrDuplicate matches every *DuplicateError via errors.Is.
	ErrDuplicate = errors.New("identity: duplicate binding")

	// ErrRegistrationExhausted reports that every registration attempt
	// collided on a serial. At 36^8 candidates this indicates a fault
	// in the store or the random source, not bad luck.
	ErrRegistrationExhausted = errors.New("identity: registration attempts exhausted")
)

// Field names the uniqueness constraint a Create call violated.
type Field string

const (
	FieldUserID Field = "user_id"
	FieldSerial Field = "serial"
)

// DuplicateError is returned by Store.Create when a uniqueness
// constraint rejects the insert.
type DuplicateError struct {
	Field Field
	// Serial is the colliding serial when Field is FieldSerial. User
	// ids are never carried in errors because errors end up in logs.
	Serial string
}

func (e *DuplicateError) Error() string {
	if e.Field == FieldSerial {
		return fmt.Sprintf("identity: serial %s is already bound", e.Serial)
	}
	return fmt.Sprintf("identity: %s is already bound", e.Field)
}

func (e *DuplicateError) Is(target error) bool {
	return target == ErrDuplicate
}

// DuplicateField returns the violated field when err is (or wraps) a
// *DuplicateError.
func DuplicateField(err error) (Field, bool) {
	var duplicate *DuplicateError
	if errors.As(err, &duplicate) {
		return duplicate.Field, true
	}
	return "", false
}
