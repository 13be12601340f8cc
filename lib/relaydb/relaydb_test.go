// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package relaydb

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/ahmed5528/masa-bot/lib/clock"
	"github.com/ahmed5528/masa-bot/lib/conversation"
	"github.com/ahmed5528/masa-bot/lib/identity"
	"github.com/ahmed5528/masa-bot/lib/testutil"
)

var epoch = time.Date(2026, 4, 1, 8, 0, 0, 0, time.UTC)

func openTestDB(t *testing.T, path string, clk clock.Clock) *DB {
	t.Helper()
	db, err := Open(context.Background(), Config{
		Path:   path,
		Clock:  clk,
		Logger: slog.New(slog.DiscardHandler),
	})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestOpenRequiresCollaborators(t *testing.T) {
	path := testutil.DatabasePath(t)
	if _, err := Open(context.Background(), Config{Path: path, Logger: slog.Default()}); err == nil {
		t.Error("expected error without Clock")
	}
	if _, err := Open(context.Background(), Config{Path: path, Clock: clock.Real()}); err == nil {
		t.Error("expected error without Logger")
	}
}

func TestCreateAndLookup(t *testing.T) {
	db := openTestDB(t, testutil.DatabasePath(t), clock.Fake(epoch))
	store := db.Identities()
	ctx := context.Background()

	binding := identity.Binding{UserID: 42, DisplayName: "Layla", Serial: "KCM-ABCD1234", JoinedAt: epoch}
	if err := store.Create(ctx, binding); err != nil {
		t.Fatalf("Create: %v", err)
	}

	byUser, err := store.LookupByUser(ctx, 42)
	if err != nil {
		t.Fatalf("LookupByUser: %v", err)
	}
	if byUser != binding {
		t.Errorf("LookupByUser = %+v, want %+v", byUser, binding)
	}
	bySerial, err := store.LookupBySerial(ctx, "KCM-ABCD1234")
	if err != nil {
		t.Fatalf("LookupBySerial: %v", err)
	}
	if bySerial != binding {
		t.Errorf("LookupBySerial = %+v, want %+v", bySerial, binding)
	}

	if _, err := store.LookupByUser(ctx, 43); !errors.Is(err, identity.ErrNotFound) {
		t.Errorf("LookupByUser(absent) err = %v, want ErrNotFound", err)
	}
	if _, err := store.LookupBySerial(ctx, "KCM-ZZZZZZZZ"); !errors.Is(err, identity.ErrNotFound) {
		t.Errorf("LookupBySerial(absent) err = %v, want ErrNotFound", err)
	}
}

func TestCreateDuplicates(t *testing.T) {
	db := openTestDB(t, testutil.DatabasePath(t), clock.Fake(epoch))
	store := db.Identities()
	ctx := context.Background()

	if err := store.Create(ctx, identity.Binding{UserID: 1, Serial: "KCM-11111111", JoinedAt: epoch}); err != nil {
		t.Fatal(err)
	}

	err := store.Create(ctx, identity.Binding{UserID: 1, Serial: "KCM-22222222", JoinedAt: epoch})
	if field, ok := identity.DuplicateField(err); !ok || field != identity.FieldUserID {
		t.Errorf("duplicate user: err = %v", err)
	}

	err = store.Create(ctx, identity.Binding{UserID: 2, Serial: "KCM-11111111", JoinedAt: epoch})
	if field, ok := identity.DuplicateField(err); !ok || field != identity.FieldSerial {
		t.Errorf("duplicate serial: err = %v", err)
	}

	if _, err := store.LookupByUser(ctx, 2); !errors.Is(err, identity.ErrNotFound) {
		t.Errorf("failed Create left a row behind: %v", err)
	}
}

func TestConcurrentRegistrationSingleBinding(t *testing.T) {
	db := openTestDB(t, testutil.DatabasePath(t), clock.Fake(epoch))
	registrar, err := identity.NewRegistrar(identity.RegistrarConfig{
		Store:     db.Identities(),
		Generator: identity.NewGenerator(""),
		Clock:     clock.Fake(epoch),
	})
	if err != nil {
		t.Fatal(err)
	}

	const racers = 8
	var waitGroup sync.WaitGroup
	serials := make(chan string, racers)
	created := make(chan bool, racers)
	for range racers {
		waitGroup.Add(1)
		go func() {
			defer waitGroup.Done()
			binding, wasCreated, err := registrar.Register(context.Background(), 77, "racer")
			if err != nil {
				t.Errorf("Register: %v", err)
				return
			}
			serials <- binding.Serial
			created <- wasCreated
		}()
	}
	waitGroup.Wait()
	close(serials)
	close(created)

	distinct := make(map[string]bool)
	for serial := range serials {
		distinct[serial] = true
	}
	if len(distinct) != 1 {
		t.Errorf("racing registrations produced %d serials: %v", len(distinct), distinct)
	}
	creations := 0
	for wasCreated := range created {
		if wasCreated {
			creations++
		}
	}
	if creations != 1 {
		t.Errorf("%d registrations reported creating the binding, want 1", creations)
	}
}

func TestBindingsSurviveReopen(t *testing.T) {
	path := testutil.DatabasePath(t)
	ctx := context.Background()

	first, err := Open(ctx, Config{Path: path, Clock: clock.Fake(epoch), Logger: slog.New(slog.DiscardHandler)})
	if err != nil {
		t.Fatal(err)
	}
	binding := identity.Binding{UserID: 5, DisplayName: "Sara", Serial: "KCM-PERSIST1", JoinedAt: epoch}
	if err := first.Identities().Create(ctx, binding); err != nil {
		t.Fatal(err)
	}
	if err := first.Close(); err != nil {
		t.Fatal(err)
	}

	second := openTestDB(t, path, clock.Fake(epoch))
	got, err := second.Identities().LookupBySerial(ctx, "KCM-PERSIST1")
	if err != nil {
		t.Fatalf("LookupBySerial after reopen: %v", err)
	}
	if got != binding {
		t.Errorf("after reopen = %+v, want %+v", got, binding)
	}
}

func TestConversationOrdering(t *testing.T) {
	fake := clock.Fake(epoch)
	db := openTestDB(t, testutil.DatabasePath(t), fake)
	ctx := context.Background()
	if err := db.Identities().Create(ctx, identity.Binding{UserID: 10, Serial: "KCM-ORDER001", JoinedAt: epoch}); err != nil {
		t.Fatal(err)
	}
	log := db.Conversations()

	var appended []conversation.Record
	texts := []string{"hello", "hi there", "thanks", "same instant"}
	for index, text := range texts {
		entry := conversation.Entry{UserID: 10, Text: text, Direction: conversation.UserToStaff}
		if index%2 == 1 {
			entry.Direction = conversation.StaffToUser
			entry.StaffID = 900
			entry.DeliveredMessageID = int64(1000 + index)
		}
		record, err := log.Append(ctx, entry)
		if err != nil {
			t.Fatalf("Append %q: %v", text, err)
		}
		appended = append(appended, record)
		// The last two records share a timestamp; id breaks the tie.
		if index < 2 {
			fake.Advance(time.Minute)
		}
	}

	recent, err := log.Recent(ctx, 10, 50)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	ordered := conversation.Chronological(recent)
	if len(ordered) != len(appended) {
		t.Fatalf("Recent returned %d records, want %d", len(ordered), len(appended))
	}
	for index := range appended {
		if ordered[index] != appended[index] {
			t.Errorf("record %d = %+v, want %+v", index, ordered[index], appended[index])
		}
		if index > 0 && ordered[index].ID <= ordered[index-1].ID {
			t.Errorf("ids not monotonic: %d then %d", ordered[index-1].ID, ordered[index].ID)
		}
	}

	limited, err := log.Recent(ctx, 10, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(limited) != 1 || limited[0].Text != "same instant" {
		t.Errorf("Recent(limit=1) = %+v", limited)
	}

	delivered, err := log.Delivered(ctx, 10, 1001)
	if err != nil || !delivered {
		t.Errorf("Delivered(10, 1001) = %v, %v; want true", delivered, err)
	}
	delivered, err = log.Delivered(ctx, 11, 1001)
	if err != nil || delivered {
		t.Errorf("Delivered(11, 1001) = %v, %v; want false", delivered, err)
	}
}

func TestConversationOrderingSurvivesClockStepBack(t *testing.T) {
	fake := clock.Fake(epoch)
	db := openTestDB(t, testutil.DatabasePath(t), fake)
	ctx := context.Background()
	if err := db.Identities().Create(ctx, identity.Binding{UserID: 12, Serial: "KCM-STEPBACK", JoinedAt: epoch}); err != nil {
		t.Fatal(err)
	}
	log := db.Conversations()

	first, err := log.Append(ctx, conversation.Entry{UserID: 12, Text: "before", Direction: conversation.UserToStaff})
	if err != nil {
		t.Fatal(err)
	}
	// NTP correction between the two appends.
	fake.Set(epoch.Add(-10 * time.Minute))
	second, err := log.Append(ctx, conversation.Entry{UserID: 12, Text: "after", Direction: conversation.UserToStaff})
	if err != nil {
		t.Fatal(err)
	}

	recent, err := log.Recent(ctx, 12, 10)
	if err != nil {
		t.Fatal(err)
	}
	ordered := conversation.Chronological(recent)
	if len(ordered) != 2 || ordered[0].ID != first.ID || ordered[1].ID != second.ID {
		t.Errorf("chronological = %+v, want append order [%d %d]", ordered, first.ID, second.ID)
	}
}

func TestAppendUnknownUserRejected(t *testing.T) {
	db := openTestDB(t, testutil.DatabasePath(t), clock.Fake(epoch))
	_, err := db.Conversations().Append(context.Background(), conversation.Entry{
		UserID: 404, Text: "orphan", Direction: conversation.UserToStaff,
	})
	if err == nil {
		t.Fatal("Append for a user without a binding should fail the foreign key")
	}
}

func TestListUsers(t *testing.T) {
	fake := clock.Fake(epoch)
	db := openTestDB(t, testutil.DatabasePath(t), fake)
	ctx := context.Background()
	store := db.Identities()

	for index, serial := range []string{"KCM-LIST0001", "KCM-LIST0002"} {
		binding := identity.Binding{UserID: int64(index + 1), Serial: serial, JoinedAt: epoch.Add(time.Duration(index) * time.Hour)}
		if err := store.Create(ctx, binding); err != nil {
			t.Fatal(err)
		}
	}
	fake.Advance(3 * time.Hour)
	if _, err := db.Conversations().Append(ctx, conversation.Entry{UserID: 1, Text: "x", Direction: conversation.UserToStaff}); err != nil {
		t.Fatal(err)
	}

	summaries, err := store.ListUsers(ctx, 10)
	if err != nil {
		t.Fatalf("ListUsers: %v", err)
	}
	if len(summaries) != 2 {
		t.Fatalf("ListUsers returned %d rows, want 2", len(summaries))
	}
	if summaries[0].Binding.Serial != "KCM-LIST0002" || summaries[0].MessageCount != 0 || !summaries[0].LastActivity.IsZero() {
		t.Errorf("first row = %+v", summaries[0])
	}
	if summaries[1].MessageCount != 1 || !summaries[1].LastActivity.Equal(epoch.Add(3*time.Hour)) {
		t.Errorf("second row = %+v", summaries[1])
	}
}
