// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package redact derives pseudonymous references for platform user ids
// so log lines can be correlated with each other without being joinable
// to real identities.
//
// A reference is a truncated BLAKE3 keyed hash of the id. The key is
// derived from deployment-specific material (a file named by
// log.redaction_key_file); without it, references cannot be reversed by
// hashing candidate ids. When no material is configured the process
// uses a random key, so references are stable within one run only.
package redact

import (
	"crypto/rand"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"log/slog"

	"github.com/zeebo/blake3"

	"github.com/ahmed5528/masa-bot/lib/secret"
)

// keyContext is the BLAKE3 key-derivation context. Changing it changes
// every reference.
const keyContext = "masa-relay 2026 user_ref v1"

// RefLength is the length of a reference in hex characters.
const RefLength = 16

// Redactor computes user references under one key.
type Redactor struct {
	key [32]byte
}

// New derives a Redactor from key material of any length. The material
// must not be empty.
func New(material []byte) (*Redactor, error) {
	if len(material) == 0 {
		return nil, fmt.Errorf("redact: key material is empty")
	}
	redactor := &Redactor{}
	blake3.DeriveKey(keyContext, material, redactor.key[:])
	return redactor, nil
}

// FromFile derives a Redactor from the contents of path. The file is
// read into protected memory and released after derivation.
func FromFile(path string) (*Redactor, error) {
	buffer, err := secret.ReadFromPath(path)
	if err != nil {
		return nil, fmt.Errorf("redact: %w", err)
	}
	defer buffer.Close()
	return New([]byte(buffer.String()))
}

// Ephemeral returns a Redactor with a random key.
func Ephemeral() *Redactor {
	redactor := &Redactor{}
	rand.Read(redactor.key[:])
	return redactor
}

// Ref returns the reference for userID.
func (r *Redactor) Ref(userID int64) string {
	// NewKeyed only fails for a key that is not 32 bytes.
	hasher, err := blake3.NewKeyed(r.key[:])
	if err != nil {
		panic("redact: BLAKE3 keyed hash initialization failed: " + err.Error())
	}
	var encoded [8]byte
	binary.BigEndian.PutUint64(encoded[:], uint64(userID))
	hasher.Write(encoded[:])
	sum := hasher.Sum(nil)
	return hex.EncodeToString(sum[:RefLength/2])
}

// User returns the slog attribute carrying userID's reference.
func (r *Redactor) User(userID int64) slog.Attr {
	return slog.String("user_ref", r.Ref(userID))
}

// Staff returns the slog attribute carrying a staff member's reference.
func (r *Redactor) Staff(staffID int64) slog.Attr {
	return slog.String("staff_ref", r.Ref(staffID))
}
