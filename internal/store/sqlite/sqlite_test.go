package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/parlorchat/parlor-server/internal/store"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	st, err := New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test store: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}

func mustUser(t *testing.T, st *SQLiteStore, id, name string) *store.User {
	t.Helper()

	user, err := st.CreateUser(context.Background(), id, name)
	if err != nil {
		t.Fatalf("create user %q: %v", name, err)
	}
	return user
}

func mustRoom(t *testing.T, st *SQLiteStore, name, group string) *store.Room {
	t.Helper()

	room, err := st.CreateRoom(context.Background(), name, group)
	if err != nil {
		t.Fatalf("create room %q: %v", name, err)
	}
	return room
}

func saveMessage(t *testing.T, st *SQLiteStore, msg *store.Message) {
	t.Helper()

	if err := st.SaveMessage(context.Background(), msg); err != nil {
		t.Fatalf("save message: %v", err)
	}
}

func TestUserLookupAndRename(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	created := mustUser(t, st, "u1", "Alice")
	if created.ID != "u1" || created.Name != "Alice" {
		t.Fatalf("unexpected created user: %+v", created)
	}

	byID, err := st.GetUserByID(ctx, "u1")
	if err != nil {
		t.Fatalf("get by id: %v", err)
	}
	byName, err := st.GetUserByName(ctx, "Alice")
	if err != nil {
		t.Fatalf("get by name: %v", err)
	}
	if byID.ID != byName.ID {
		t.Fatalf("lookups disagree: %q vs %q", byID.ID, byName.ID)
	}

	if _, err := st.GetUserByID(ctx, "missing"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := st.RenameUser(ctx, "u1", "Alicia"); err != nil {
		t.Fatalf("rename: %v", err)
	}
	renamed, err := st.GetUserByID(ctx, "u1")
	if err != nil {
		t.Fatalf("get after rename: %v", err)
	}
	if renamed.Name != "Alicia" {
		t.Fatalf("expected renamed user, got %q", renamed.Name)
	}
	if _, err := st.GetUserByName(ctx, "Alice"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("old name should be free, got %v", err)
	}

	if err := st.RenameUser(ctx, "missing", "Ghost"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for rename of missing user, got %v", err)
	}
}

func TestDuplicateUserNameRejected(t *testing.T) {
	st := newTestStore(t)
	mustUser(t, st, "u1", "Alice")

	if _, err := st.CreateUser(context.Background(), "u2", "Alice"); err == nil {
		t.Fatal("expected unique constraint violation")
	}
}

func TestRoomsByGroup(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	mustRoom(t, st, "boy-1", "boy")
	mustRoom(t, st, "general-1", "general")
	mustRoom(t, st, "boy-2", "boy")

	rooms, err := st.ListRoomsByGroup(ctx, "boy")
	if err != nil {
		t.Fatalf("list rooms: %v", err)
	}
	if len(rooms) != 2 || rooms[0].Name != "boy-1" || rooms[1].Name != "boy-2" {
		t.Fatalf("unexpected group listing: %+v", rooms)
	}

	rooms, err = st.ListRoomsByGroup(ctx, "empty")
	if err != nil {
		t.Fatalf("list rooms: %v", err)
	}
	if len(rooms) != 0 {
		t.Fatalf("expected empty listing, got %+v", rooms)
	}

	if _, err := st.GetRoomByName(ctx, "boy-3"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := st.CreateRoom(ctx, "boy-1", "boy"); err == nil {
		t.Fatal("expected unique constraint violation on duplicate room name")
	}
}

func TestVisibleHistoryFiltersWhispers(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	room := mustRoom(t, st, "boy-1", "boy")
	alice := mustUser(t, st, "u-alice", "Alice")
	bob := mustUser(t, st, "u-bob", "Bob")
	carol := mustUser(t, st, "u-carol", "Carol")

	now := time.Now().UTC()
	saveMessage(t, st, &store.Message{RoomID: room.ID, Kind: store.MessageSystem, Body: "Alice has joined this room", CreatedAt: now})
	saveMessage(t, st, &store.Message{RoomID: room.ID, AuthorID: &alice.ID, Kind: store.MessageText, Body: "hello", CreatedAt: now})
	saveMessage(t, st, &store.Message{RoomID: room.ID, AuthorID: &alice.ID, RecipientID: &bob.ID, Kind: store.MessageWhisper, Body: "secret", CreatedAt: now})
	saveMessage(t, st, &store.Message{RoomID: room.ID, AuthorID: &bob.ID, Kind: store.MessageAction, Body: "waves", CreatedAt: now})

	for _, requester := range []string{alice.ID, bob.ID} {
		rows, err := st.ListVisibleHistory(ctx, room.ID, requester, 100)
		if err != nil {
			t.Fatalf("list history for %q: %v", requester, err)
		}
		if len(rows) != 4 {
			t.Fatalf("party %q should see 4 rows, got %d", requester, len(rows))
		}
		if rows[2].Kind != store.MessageWhisper || rows[2].Body != "secret" {
			t.Fatalf("party %q: expected whisper at position 2, got %+v", requester, rows[2])
		}
	}

	rows, err := st.ListVisibleHistory(ctx, room.ID, carol.ID, 100)
	if err != nil {
		t.Fatalf("list history for bystander: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("bystander should see 3 rows, got %d", len(rows))
	}
	for _, row := range rows {
		if row.Kind == store.MessageWhisper {
			t.Fatalf("bystander must not see whispers, got %+v", row)
		}
	}
}

func TestVisibleHistoryOrderAndLimit(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	room := mustRoom(t, st, "boy-1", "boy")
	alice := mustUser(t, st, "u-alice", "Alice")

	now := time.Now().UTC()
	bodies := []string{"one", "two", "three", "four", "five"}
	for _, body := range bodies {
		saveMessage(t, st, &store.Message{RoomID: room.ID, AuthorID: &alice.ID, Kind: store.MessageText, Body: body, CreatedAt: now})
	}

	rows, err := st.ListVisibleHistory(ctx, room.ID, alice.ID, 3)
	if err != nil {
		t.Fatalf("list history: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	// Newest three, oldest first.
	for i, want := range []string{"three", "four", "five"} {
		if rows[i].Body != want {
			t.Fatalf("rows[%d].Body = %q, want %q", i, rows[i].Body, want)
		}
	}

	if rows[0].AuthorName == nil || *rows[0].AuthorName != "Alice" {
		t.Fatalf("expected author name joined in, got %+v", rows[0].AuthorName)
	}
}

func TestVisibleHistoryScopedToRoom(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	boy := mustRoom(t, st, "boy-1", "boy")
	general := mustRoom(t, st, "general-1", "general")
	alice := mustUser(t, st, "u-alice", "Alice")

	now := time.Now().UTC()
	saveMessage(t, st, &store.Message{RoomID: boy.ID, AuthorID: &alice.ID, Kind: store.MessageText, Body: "in boy", CreatedAt: now})
	saveMessage(t, st, &store.Message{RoomID: general.ID, AuthorID: &alice.ID, Kind: store.MessageText, Body: "in general", CreatedAt: now})

	rows, err := st.ListVisibleHistory(ctx, general.ID, alice.ID, 100)
	if err != nil {
		t.Fatalf("list history: %v", err)
	}
	if len(rows) != 1 || rows[0].Body != "in general" {
		t.Fatalf("unexpected cross-room history: %+v", rows)
	}
}

func TestMembershipSpanLifecycle(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	room := mustRoom(t, st, "boy-1", "boy")
	alice := mustUser(t, st, "u-alice", "Alice")

	joined := time.Now().UTC().Truncate(time.Second)
	if err := st.OpenMembership(ctx, room.ID, alice.ID, joined); err != nil {
		t.Fatalf("open membership: %v", err)
	}

	span, err := st.GetOpenMembership(ctx, room.ID, alice.ID)
	if err != nil {
		t.Fatalf("get open membership: %v", err)
	}
	if span.LeftAt != nil {
		t.Fatalf("fresh span must be open, got %+v", span)
	}
	if !span.JoinedAt.Equal(joined) {
		t.Fatalf("JoinedAt = %v, want %v", span.JoinedAt, joined)
	}

	left := joined.Add(time.Minute)
	if err := st.CloseMembership(ctx, room.ID, alice.ID, left); err != nil {
		t.Fatalf("close membership: %v", err)
	}
	if _, err := st.GetOpenMembership(ctx, room.ID, alice.ID); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected no open span after close, got %v", err)
	}

	// Closing again is a no-op.
	if err := st.CloseMembership(ctx, room.ID, alice.ID, left.Add(time.Minute)); err != nil {
		t.Fatalf("second close: %v", err)
	}
}

func TestCloseMembershipTouchesMostRecentSpanOnly(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	room := mustRoom(t, st, "boy-1", "boy")
	alice := mustUser(t, st, "u-alice", "Alice")

	first := time.Now().UTC().Truncate(time.Second)
	second := first.Add(time.Hour)
	if err := st.OpenMembership(ctx, room.ID, alice.ID, first); err != nil {
		t.Fatalf("open first span: %v", err)
	}
	if err := st.OpenMembership(ctx, room.ID, alice.ID, second); err != nil {
		t.Fatalf("open second span: %v", err)
	}

	if err := st.CloseMembership(ctx, room.ID, alice.ID, second.Add(time.Minute)); err != nil {
		t.Fatalf("close: %v", err)
	}

	// The first span is still open and is now the most recent open one.
	span, err := st.GetOpenMembership(ctx, room.ID, alice.ID)
	if err != nil {
		t.Fatalf("get open membership: %v", err)
	}
	if !span.JoinedAt.Equal(first) {
		t.Fatalf("expected the earlier span to remain open, got JoinedAt %v", span.JoinedAt)
	}
}

func TestSaveMessageAssignsID(t *testing.T) {
	st := newTestStore(t)

	room := mustRoom(t, st, "boy-1", "boy")
	msg := &store.Message{RoomID: room.ID, Kind: store.MessageSystem, Body: "first", CreatedAt: time.Now().UTC()}
	saveMessage(t, st, msg)
	if msg.ID == 0 {
		t.Fatal("expected SaveMessage to set the row ID")
	}

	next := &store.Message{RoomID: room.ID, Kind: store.MessageSystem, Body: "second", CreatedAt: time.Now().UTC()}
	saveMessage(t, st, next)
	if next.ID <= msg.ID {
		t.Fatalf("IDs must increase, got %d then %d", msg.ID, next.ID)
	}
}
