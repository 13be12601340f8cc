// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package conversation

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/ahmed5528/masa-bot/lib/clock"
)

// MemoryLog is an in-memory Log for tests.
type MemoryLog struct {
	clock clock.Clock

	mu      sync.RWMutex
	nextID  int64
	records map[int64][]Record
}

// NewMemoryLog returns an empty MemoryLog stamping records with clk.
func NewMemoryLog(clk clock.Clock) *MemoryLog {
	return &MemoryLog{clock: clk, records: make(map[int64][]Record)}
}

func (l *MemoryLog) Append(_ context.Context, entry Entry) (Record, error) {
	if err := entry.Validate(); err != nil {
		return Record{}, err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.nextID++
	record := Record{
		ID:                 l.nextID,
		UserID:             entry.UserID,
		StaffID:            entry.StaffID,
		Text:               entry.Text,
		Direction:          entry.Direction,
		Timestamp:          l.clock.Now(),
		DeliveredMessageID: entry.DeliveredMessageID,
	}
	l.records[entry.UserID] = append(l.records[entry.UserID], record)
	return record, nil
}

func (l *MemoryLog) Recent(_ context.Context, userID int64, limit int) ([]Record, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("conversation: limit must be positive, got %d", limit)
	}
	l.mu.RLock()
	partition := append([]Record(nil), l.records[userID]...)
	l.mu.RUnlock()

	slices.Reverse(partition)
	if len(partition) > limit {
		partition = partition[:limit]
	}
	return partition, nil
}

func (l *MemoryLog) Delivered(_ context.Context, userID, messageID int64) (bool, error) {
	if messageID == 0 {
		return false, nil
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	for _, record := range l.records[userID] {
		if record.Direction == StaffToUser && record.DeliveredMessageID == messageID {
			return true, nil
		}
	}
	return false, nil
}

// Len returns the total number of records.
func (l *MemoryLog) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	total := 0
	for _, partition := range l.records {
		total += len(partition)
	}
	return total
}
