package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/parlorchat/parlor-server/internal/store"
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL UNIQUE,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS rooms (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	name       TEXT NOT NULL UNIQUE,
	room_group TEXT NOT NULL,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS messages (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	room_id      INTEGER NOT NULL,
	author_id    TEXT,
	recipient_id TEXT,
	kind         TEXT NOT NULL,
	body         TEXT NOT NULL,
	created_at   DATETIME NOT NULL,
	FOREIGN KEY (room_id) REFERENCES rooms(id),
	FOREIGN KEY (author_id) REFERENCES users(id),
	FOREIGN KEY (recipient_id) REFERENCES users(id)
);

CREATE TABLE IF NOT EXISTS memberships (
	id        INTEGER PRIMARY KEY AUTOINCREMENT,
	room_id   INTEGER NOT NULL,
	user_id   TEXT NOT NULL,
	joined_at DATETIME NOT NULL,
	left_at   DATETIME,
	FOREIGN KEY (room_id) REFERENCES rooms(id),
	FOREIGN KEY (user_id) REFERENCES users(id)
);

CREATE INDEX IF NOT EXISTS idx_messages_room ON messages(room_id, id);
CREATE INDEX IF NOT EXISTS idx_rooms_group ON rooms(room_group);
CREATE INDEX IF NOT EXISTS idx_memberships_open ON memberships(room_id, user_id, left_at);
`

// SQLiteStore implements store.Store for SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// New opens (or creates) the SQLite database at dbPath and applies the schema.
func New(dbPath string) (*SQLiteStore, error) {
	return NewWithSetup(dbPath, nil)
}

// NewWithSetup opens the database, applies the schema, and runs an optional
// setup function. Useful for tests that need seed rows.
func NewWithSetup(dbPath string, setup func(*sql.DB) error) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// SQLite works best with a single connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	if setup != nil {
		if err := setup(db); err != nil {
			db.Close()
			return nil, fmt.Errorf("setup: %w", err)
		}
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// ==== UserStore implementation ====

// CreateUser inserts a user with the given stable ID and display name.
func (s *SQLiteStore) CreateUser(ctx context.Context, id, name string) (*store.User, error) {
	query := `
		INSERT INTO users (id, name, created_at)
		VALUES (?, ?, ?)
	`
	if _, err := s.db.ExecContext(ctx, query, id, name, time.Now().UTC()); err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}

	return s.GetUserByID(ctx, id)
}

// GetUserByID retrieves a user by stable ID.
func (s *SQLiteStore) GetUserByID(ctx context.Context, id string) (*store.User, error) {
	query := `
		SELECT id, name, created_at
		FROM users
		WHERE id = ?
	`
	var user store.User
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&user.ID,
		&user.Name,
		&user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user %q: %w", id, store.ErrNotFound)
		}
		return nil, fmt.Errorf("query user: %w", err)
	}

	return &user, nil
}

// GetUserByName retrieves a user by display name.
func (s *SQLiteStore) GetUserByName(ctx context.Context, name string) (*store.User, error) {
	query := `
		SELECT id, name, created_at
		FROM users
		WHERE name = ?
	`
	var user store.User
	err := s.db.QueryRowContext(ctx, query, name).Scan(
		&user.ID,
		&user.Name,
		&user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user %q: %w", name, store.ErrNotFound)
		}
		return nil, fmt.Errorf("query user: %w", err)
	}

	return &user, nil
}

// RenameUser updates a user's display name.
func (s *SQLiteStore) RenameUser(ctx context.Context, id, name string) error {
	query := `UPDATE users SET name = ? WHERE id = ?`
	result, err := s.db.ExecContext(ctx, query, name, id)
	if err != nil {
		return fmt.Errorf("update user name: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("user %q: %w", id, store.ErrNotFound)
	}

	return nil
}

// ==== RoomStore implementation ====

// CreateRoom inserts a room under the given group.
func (s *SQLiteStore) CreateRoom(ctx context.Context, name, group string) (*store.Room, error) {
	query := `
		INSERT INTO rooms (name, room_group, created_at)
		VALUES (?, ?, ?)
	`
	if _, err := s.db.ExecContext(ctx, query, name, group, time.Now().UTC()); err != nil {
		return nil, fmt.Errorf("insert room: %w", err)
	}

	return s.GetRoomByName(ctx, name)
}

// GetRoomByName retrieves a room by name.
func (s *SQLiteStore) GetRoomByName(ctx context.Context, name string) (*store.Room, error) {
	query := `
		SELECT id, name, room_group, created_at
		FROM rooms
		WHERE name = ?
	`
	var room store.Room
	err := s.db.QueryRowContext(ctx, query, name).Scan(
		&room.ID,
		&room.Name,
		&room.Group,
		&room.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("room %q: %w", name, store.ErrNotFound)
		}
		return nil, fmt.Errorf("query room: %w", err)
	}

	return &room, nil
}

// ListRoomsByGroup lists rooms under a group, oldest first.
func (s *SQLiteStore) ListRoomsByGroup(ctx context.Context, group string) ([]*store.Room, error) {
	query := `
		SELECT id, name, room_group, created_at
		FROM rooms
		WHERE room_group = ?
		ORDER BY id ASC
	`
	rows, err := s.db.QueryContext(ctx, query, group)
	if err != nil {
		return nil, fmt.Errorf("query rooms: %w", err)
	}
	defer rows.Close()

	var rooms []*store.Room
	for rows.Next() {
		var room store.Room
		if err := rows.Scan(&room.ID, &room.Name, &room.Group, &room.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan room: %w", err)
		}
		rooms = append(rooms, &room)
	}

	return rooms, rows.Err()
}

// ==== MessageStore implementation ====

// SaveMessage appends a message and sets its ID.
func (s *SQLiteStore) SaveMessage(ctx context.Context, msg *store.Message) error {
	query := `
		INSERT INTO messages (room_id, author_id, recipient_id, kind, body, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	result, err := s.db.ExecContext(ctx, query,
		msg.RoomID,
		msg.AuthorID,
		msg.RecipientID,
		string(msg.Kind),
		msg.Body,
		msg.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert message: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("get last insert id: %w", err)
	}

	msg.ID = id
	return nil
}

// ListVisibleHistory returns up to limit most recent messages of a room in
// chronological order. Whispers are included only when the requester is
// their author or recipient.
func (s *SQLiteStore) ListVisibleHistory(ctx context.Context, roomID int64, requesterID string, limit int) ([]*store.HistoryRow, error) {
	query := `
		SELECT m.kind, au.name, ru.name, m.body, m.created_at
		FROM messages m
		LEFT JOIN users au ON au.id = m.author_id
		LEFT JOIN users ru ON ru.id = m.recipient_id
		WHERE m.room_id = ?
		  AND (m.kind != 'whisper' OR m.author_id = ? OR m.recipient_id = ?)
		ORDER BY m.id DESC
		LIMIT ?
	`
	rows, err := s.db.QueryContext(ctx, query, roomID, requesterID, requesterID, limit)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var history []*store.HistoryRow
	for rows.Next() {
		var row store.HistoryRow
		var kind string
		var author, recipient sql.NullString
		if err := rows.Scan(&kind, &author, &recipient, &row.Body, &row.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan history row: %w", err)
		}
		row.Kind = store.MessageKind(kind)
		if author.Valid {
			row.AuthorName = &author.String
		}
		if recipient.Valid {
			row.RecipientName = &recipient.String
		}
		history = append(history, &row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Reverse to get chronological order.
	for i := 0; i < len(history)/2; i++ {
		history[i], history[len(history)-1-i] = history[len(history)-1-i], history[i]
	}

	return history, nil
}

// ==== MembershipStore implementation ====

// OpenMembership starts a new occupancy span.
func (s *SQLiteStore) OpenMembership(ctx context.Context, roomID int64, userID string, joinedAt time.Time) error {
	query := `
		INSERT INTO memberships (room_id, user_id, joined_at)
		VALUES (?, ?, ?)
	`
	if _, err := s.db.ExecContext(ctx, query, roomID, userID, joinedAt); err != nil {
		return fmt.Errorf("insert membership: %w", err)
	}

	return nil
}

// CloseMembership sets left-at on the most recent open span of (room, user).
func (s *SQLiteStore) CloseMembership(ctx context.Context, roomID int64, userID string, leftAt time.Time) error {
	query := `
		UPDATE memberships SET left_at = ?
		WHERE id = (
			SELECT id FROM memberships
			WHERE room_id = ? AND user_id = ? AND left_at IS NULL
			ORDER BY id DESC
			LIMIT 1
		)
	`
	if _, err := s.db.ExecContext(ctx, query, leftAt, roomID, userID); err != nil {
		return fmt.Errorf("close membership: %w", err)
	}

	return nil
}

// GetOpenMembership retrieves the open span for (room, user), if any.
func (s *SQLiteStore) GetOpenMembership(ctx context.Context, roomID int64, userID string) (*store.MembershipSpan, error) {
	query := `
		SELECT id, room_id, user_id, joined_at, left_at
		FROM memberships
		WHERE room_id = ? AND user_id = ? AND left_at IS NULL
		ORDER BY id DESC
		LIMIT 1
	`
	var span store.MembershipSpan
	var leftAt sql.NullTime
	err := s.db.QueryRowContext(ctx, query, roomID, userID).Scan(
		&span.ID,
		&span.RoomID,
		&span.UserID,
		&span.JoinedAt,
		&leftAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("open membership: %w", store.ErrNotFound)
		}
		return nil, fmt.Errorf("query membership: %w", err)
	}

	if leftAt.Valid {
		span.LeftAt = &leftAt.Time
	}

	return &span, nil
}

// Ensure SQLiteStore implements store.Store
var _ store.Store = (*SQLiteStore)(nil)
