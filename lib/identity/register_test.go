// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package identity

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/ahmed5528/masa-bot/lib/clock"
)

var joinTime = time.Date(2026, 5, 4, 9, 30, 0, 0, time.UTC)

func newTestRegistrar(t *testing.T, store Store, random io.Reader, retries int) *Registrar {
	t.Helper()
	registrar, err := NewRegistrar(RegistrarConfig{
		Store:            store,
		Generator:        NewGeneratorFrom("KCM-", random),
		Clock:            clock.Fake(joinTime),
		MaxSerialRetries: retries,
	})
	if err != nil {
		t.Fatalf("NewRegistrar: %v", err)
	}
	return registrar
}

func TestRegisterCreatesOnce(t *testing.T) {
	store := NewMemoryStore()
	registrar := newTestRegistrar(t, store, constantReader(0), DefaultMaxSerialRetries)
	ctx := context.Background()

	first, created, err := registrar.Register(ctx, 101, "Mona")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if !created {
		t.Error("first Register should create")
	}
	if first.Serial != "KCM-AAAAAAAA" || !first.JoinedAt.Equal(joinTime) || first.DisplayName != "Mona" {
		t.Errorf("unexpected binding: %+v", first)
	}

	second, created, err := registrar.Register(ctx, 101, "Renamed")
	if err != nil {
		t.Fatalf("second Register: %v", err)
	}
	if created {
		t.Error("second Register must not create")
	}
	if second != first {
		t.Errorf("second Register = %+v, want %+v", second, first)
	}

	bySerial, err := store.LookupBySerial(ctx, first.Serial)
	if err != nil {
		t.Fatalf("LookupBySerial: %v", err)
	}
	if bySerial != first {
		t.Errorf("LookupBySerial = %+v, want %+v", bySerial, first)
	}
}

func TestRegisterRetriesSerialCollision(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	if err := store.Create(ctx, Binding{UserID: 1, Serial: "KCM-AAAAAAAA"}); err != nil {
		t.Fatal(err)
	}

	// First draw collides with user 1; second draw yields all 'B'.
	random := io.MultiReader(
		bytes.NewReader(make([]byte, 2*SerialLength)),
		constantReader(1),
	)
	registrar := newTestRegistrar(t, store, random, 1)

	binding, created, err := registrar.Register(ctx, 2, "Omar")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if !created || binding.Serial != "KCM-BBBBBBBB" {
		t.Errorf("Register = (%+v, %v), want fresh KCM-BBBBBBBB", binding, created)
	}
}

func TestRegisterExhausted(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	if err := store.Create(ctx, Binding{UserID: 1, Serial: "KCM-AAAAAAAA"}); err != nil {
		t.Fatal(err)
	}

	for _, retries := range []int{0, 1, 3} {
		registrar := newTestRegistrar(t, store, constantReader(0), retries)
		_, _, err := registrar.Register(ctx, 2, "Omar")
		if !errors.Is(err, ErrRegistrationExhausted) {
			t.Errorf("retries=%d: err = %v, want ErrRegistrationExhausted", retries, err)
		}
	}
	if store.Len() != 1 {
		t.Errorf("store has %d bindings, want 1", store.Len())
	}
}

// raceStore reports a user-id collision on Create as if another event
// from the same user had inserted first.
type raceStore struct {
	*MemoryStore
	winner Binding
}

func (s *raceStore) Create(ctx context.Context, binding Binding) error {
	if err := s.MemoryStore.Create(ctx, s.winner); err != nil {
		return err
	}
	return s.MemoryStore.Create(ctx, binding)
}

func TestRegisterResolvesUserRace(t *testing.T) {
	winner := Binding{UserID: 5, DisplayName: "first", Serial: "KCM-WINNER00", JoinedAt: joinTime}
	store := &raceStore{MemoryStore: NewMemoryStore(), winner: winner}
	registrar := newTestRegistrar(t, store, constantReader(0), 1)

	binding, created, err := registrar.Register(context.Background(), 5, "second")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if created {
		t.Error("losing the race must not report created")
	}
	if binding != winner {
		t.Errorf("Register = %+v, want winner %+v", binding, winner)
	}
}

type failingStore struct{ *MemoryStore }

var errDiskGone = errors.New("disk gone")

func (failingStore) Create(context.Context, Binding) error { return errDiskGone }

func TestRegisterPropagatesStorageFailure(t *testing.T) {
	registrar := newTestRegistrar(t, failingStore{NewMemoryStore()}, constantReader(0), 3)
	_, _, err := registrar.Register(context.Background(), 9, "x")
	if !errors.Is(err, errDiskGone) {
		t.Fatalf("err = %v, want errDiskGone", err)
	}
}

func TestRegisterConcurrentUsersGetDistinctSerials(t *testing.T) {
	store := NewMemoryStore()
	registrar, err := NewRegistrar(RegistrarConfig{
		Store:     store,
		Generator: NewGenerator(""),
		Clock:     clock.Fake(joinTime),
	})
	if err != nil {
		t.Fatal(err)
	}

	const users = 32
	var waitGroup sync.WaitGroup
	serials := make([]string, users*2)
	for index := range users * 2 {
		waitGroup.Add(1)
		go func() {
			defer waitGroup.Done()
			// Each user registers twice concurrently.
			binding, _, err := registrar.Register(context.Background(), int64(index%users), "u")
			if err != nil {
				t.Errorf("Register: %v", err)
				return
			}
			serials[index] = binding.Serial
		}()
	}
	waitGroup.Wait()

	if store.Len() != users {
		t.Fatalf("store has %d bindings, want %d", store.Len(), users)
	}
	for index := range users {
		if serials[index] != serials[index+users] {
			t.Errorf("user %d got two serials: %s and %s", index, serials[index], serials[index+users])
		}
	}
}

func TestDuplicateErrorIs(t *testing.T) {
	err := error(&DuplicateError{Field: FieldSerial, Serial: "KCM-X"})
	if !errors.Is(err, ErrDuplicate) {
		t.Error("DuplicateError should match ErrDuplicate")
	}
	if field, ok := DuplicateField(err); !ok || field != FieldSerial {
		t.Errorf("DuplicateField = (%q, %v)", field, ok)
	}
}
