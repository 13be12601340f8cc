// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package identity

import (
	"context"
	"sync"
)

// MemoryStore is an in-memory Store for tests.
type MemoryStore struct {
	mu       sync.RWMutex
	byUser   map[int64]Binding
	bySerial map[string]int64
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byUser:   make(map[int64]Binding),
		bySerial: make(map[string]int64),
	}
}

func (s *MemoryStore) LookupByUser(_ context.Context, userID int64) (Binding, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	binding, ok := s.byUser[userID]
	if !ok {
		return Binding{}, ErrNotFound
	}
	return binding, nil
}

func (s *MemoryStore) LookupBySerial(_ context.Context, serial string) (Binding, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	userID, ok := s.bySerial[serial]
	if !ok {
		return Binding{}, ErrNotFound
	}
	return s.byUser[userID], nil
}

func (s *MemoryStore) Create(_ context.Context, binding Binding) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, taken := s.byUser[binding.UserID]; taken {
		return &DuplicateError{Field: FieldUserID}
	}
	if _, taken := s.bySerial[binding.Serial]; taken {
		return &DuplicateError{Field: FieldSerial, Serial: binding.Serial}
	}
	s.byUser[binding.UserID] = binding
	s.bySerial[binding.Serial] = binding.UserID
	return nil
}

// Len returns the number of bindings.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byUser)
}
