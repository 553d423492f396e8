package core

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/parlorchat/parlor-server/internal/store"
	"github.com/parlorchat/parlor-server/internal/store/sqlite"
)

// newTestHub starts a hub over an in-memory store seeded with two rooms,
// "boy-1" (group boy) and "general-1" (group general).
func newTestHub(t *testing.T) (*Hub, store.Store) {
	t.Helper()
	return newTestHubLimit(t, 0)
}

func newTestHubLimit(t *testing.T, historyLimit int) (*Hub, store.Store) {
	t.Helper()

	st, err := sqlite.NewWithSetup(":memory:", func(db *sql.DB) error {
		_, err := db.Exec(`
			INSERT INTO rooms (name, room_group, created_at) VALUES
				('boy-1', 'boy', CURRENT_TIMESTAMP),
				('general-1', 'general', CURRENT_TIMESTAMP)
		`)
		return err
	})
	if err != nil {
		t.Fatalf("failed to create test store: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	logger := zerolog.Nop()
	hub := NewHub(st, &logger, historyLimit)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)

	return hub, st
}

// join sends a join command; callers register the client first.
func join(c *Client, room, name, userID string) {
	c.Commands <- &Command{Kind: CommandJoinRoom, Room: room, Name: name, UserID: userID}
}

// nextEvent takes the next event off the channel, failing the test if none
// arrives or its kind differs. Used where delivery order is the assertion.
func nextEvent(t *testing.T, ch <-chan *Event, kind EventKind) *Event {
	t.Helper()

	select {
	case ev := <-ch:
		if ev == nil {
			t.Fatalf("received nil event while expecting kind %v", kind)
		}
		if ev.Kind != kind {
			t.Fatalf("expected event kind %v next, got %v: %+v", kind, ev.Kind, ev)
		}
		return ev
	case <-time.After(2 * time.Second):
		t.Fatalf("expected event kind %v not received", kind)
	}
	return nil
}

// mustEvent waits for an event of the given kind, discarding others.
func mustEvent(t *testing.T, ch <-chan *Event, kind EventKind) *Event {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		select {
		case ev := <-ch:
			if ev == nil {
				continue
			}
			if ev.Kind == kind {
				return ev
			}
		default:
			time.Sleep(10 * time.Millisecond)
		}
	}
	t.Fatalf("expected event kind %v not received", kind)
	return nil
}

// mustNoEvent asserts that nothing arrives on the channel for a short
// window.
func mustNoEvent(t *testing.T, ch <-chan *Event) {
	t.Helper()

	select {
	case ev := <-ch:
		t.Fatalf("expected no event, got %+v", ev)
	case <-time.After(150 * time.Millisecond):
	}
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
