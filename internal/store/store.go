package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by lookups when no row matches.
var ErrNotFound = errors.New("not found")

// User is a chat identity. The ID is stable; the name is unique but mutable
// via rename.
type User struct {
	ID        string
	Name      string
	CreatedAt time.Time
}

// Room is a named channel, organized under a group label.
type Room struct {
	ID        int64
	Name      string
	Group     string
	CreatedAt time.Time
}

// MessageKind classifies a persisted message.
type MessageKind string

const (
	MessageSystem  MessageKind = "system"
	MessageText    MessageKind = "text"
	MessageAction  MessageKind = "action"
	MessageWhisper MessageKind = "whisper"
)

// Message is a persisted chat message. AuthorID is nil for system messages;
// RecipientID is set only for whispers. Messages are append-only.
type Message struct {
	ID          int64
	RoomID      int64
	AuthorID    *string
	RecipientID *string
	Kind        MessageKind
	Body        string
	CreatedAt   time.Time
}

// MembershipSpan records one continuous occupancy interval of a user in a
// room. LeftAt is nil while the span is open. At most one open span exists
// per (room, user).
type MembershipSpan struct {
	ID       int64
	RoomID   int64
	UserID   string
	JoinedAt time.Time
	LeftAt   *time.Time
}

// HistoryRow is a message joined with author/recipient display names, as
// returned by visible-history queries. Names are nil where the message has
// no author (system) or no recipient.
type HistoryRow struct {
	Kind          MessageKind
	AuthorName    *string
	RecipientName *string
	Body          string
	CreatedAt     time.Time
}

// UserStore handles user persistence.
type UserStore interface {
	// CreateUser inserts a user with the given stable ID and display name.
	CreateUser(ctx context.Context, id, name string) (*User, error)

	// GetUserByID retrieves a user by stable ID.
	GetUserByID(ctx context.Context, id string) (*User, error)

	// GetUserByName retrieves a user by display name.
	GetUserByName(ctx context.Context, name string) (*User, error)

	// RenameUser updates a user's display name.
	RenameUser(ctx context.Context, id, name string) error
}

// RoomStore handles room persistence. Rooms are immutable once created.
type RoomStore interface {
	// CreateRoom inserts a room under the given group.
	CreateRoom(ctx context.Context, name, group string) (*Room, error)

	// GetRoomByName retrieves a room by name.
	GetRoomByName(ctx context.Context, name string) (*Room, error)

	// ListRoomsByGroup lists rooms under a group, oldest first.
	ListRoomsByGroup(ctx context.Context, group string) ([]*Room, error)
}

// MessageStore handles message persistence and history reads.
type MessageStore interface {
	// SaveMessage appends a message and sets its ID.
	SaveMessage(ctx context.Context, msg *Message) error

	// ListVisibleHistory returns up to limit most recent messages of a room
	// in chronological order. Whisper messages are included only when the
	// requester is their author or recipient.
	ListVisibleHistory(ctx context.Context, roomID int64, requesterID string, limit int) ([]*HistoryRow, error)
}

// MembershipStore handles membership span persistence.
type MembershipStore interface {
	// OpenMembership starts a new occupancy span.
	OpenMembership(ctx context.Context, roomID int64, userID string, joinedAt time.Time) error

	// CloseMembership sets left-at on the most recent open span of
	// (room, user). Closing when no span is open is a no-op.
	CloseMembership(ctx context.Context, roomID int64, userID string, leftAt time.Time) error

	// GetOpenMembership retrieves the open span for (room, user), if any.
	GetOpenMembership(ctx context.Context, roomID int64, userID string) (*MembershipSpan, error)
}

// Store aggregates all storage interfaces.
type Store interface {
	UserStore
	RoomStore
	MessageStore
	MembershipStore

	// Close closes the underlying database connection.
	Close() error
}
