// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package identity

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ahmed5528/masa-bot/lib/clock"
)

// DefaultMaxSerialRetries matches the reference deployment: one fresh
// serial after a collision.
const DefaultMaxSerialRetries = 1

// RegistrarConfig holds the collaborators of a Registrar.
type RegistrarConfig struct {
	Store     Store
	Generator *Generator
	Clock     clock.Clock

	// MaxSerialRetries is how many fresh serials are tried after the
	// first one collides. Negative values are treated as zero.
	MaxSerialRetries int

	// Logger receives collision diagnostics. Nil discards them.
	Logger *slog.Logger
}

// Registrar creates bindings with bounded collision retry.
type Registrar struct {
	store      Store
	generator  *Generator
	clock      clock.Clock
	maxRetries int
	logger     *slog.Logger
}

// NewRegistrar validates cfg and returns a Registrar.
func NewRegistrar(cfg RegistrarConfig) (*Registrar, error) {
	if cfg.Store == nil {
		return nil, fmt.Errorf("identity: Store is required")
	}
	if cfg.Generator == nil {
		return nil, fmt.Errorf("identity: Generator is required")
	}
	if cfg.Clock == nil {
		return nil, fmt.Errorf("identity: Clock is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Registrar{
		store:      cfg.Store,
		generator:  cfg.Generator,
		clock:      cfg.Clock,
		maxRetries: max(cfg.MaxSerialRetries, 0),
		logger:     logger,
	}, nil
}

// Register returns the binding for userID, creating it when none
// exists. created reports whether this call inserted the binding.
//
// A user-id collision means another event from the same user won the
// race; its binding is returned with created=false. A serial collision
// consumes one attempt and a fresh serial is generated. When every
// attempt collides, Register returns ErrRegistrationExhausted. Any
// other store error is returned unchanged.
func (r *Registrar) Register(ctx context.Context, userID int64, displayName string) (binding Binding, created bool, err error) {
	existing, err := r.store.LookupByUser(ctx, userID)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return Binding{}, false, err
	}

	attempts := r.maxRetries + 1
	for attempt := 1; attempt <= attempts; attempt++ {
		serial, err := r.generator.Generate()
		if err != nil {
			return Binding{}, false, err
		}

		candidate := Binding{
			UserID:      userID,
			DisplayName: displayName,
			Serial:      serial,
			JoinedAt:    r.clock.Now(),
		}
		err = r.store.Create(ctx, candidate)
		if err == nil {
			return candidate, true, nil
		}

		field, duplicate := DuplicateField(err)
		switch {
		case !duplicate:
			return Binding{}, false, err
		case field == FieldUserID:
			winner, err := r.store.LookupByUser(ctx, userID)
			if err != nil {
				return Binding{}, false, fmt.Errorf("identity: reading binding after concurrent registration: %w", err)
			}
			return winner, false, nil
		default:
			r.logger.Warn("serial collision",
				"attempt", attempt,
				"max_attempts", attempts,
			)
		}
	}

	return Binding{}, false, fmt.Errorf("%w after %d attempts", ErrRegistrationExhausted, attempts)
}
