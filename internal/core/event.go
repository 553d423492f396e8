package core

import "time"

// EventKind is a notification the core emits to clients.
type EventKind int

const (
	// EventHistory delivers room history to a joining connection.
	EventHistory EventKind = iota
	// EventSystem is a server-generated notice (join/leave/rename, errors
	// surfaced as system-style text).
	EventSystem
	// EventRoomUsers carries the refreshed member name list of a room.
	EventRoomUsers
	// EventMessage is a plain chat message.
	EventMessage
	// EventEmote is an action line combining actor and text.
	EventEmote
	// EventWhisper is a private message to sender and recipient connections.
	EventWhisper
	// EventNickOk acknowledges a successful rename to the invoker.
	EventNickOk
	// EventNickError reports a rejected rename to the invoker.
	EventNickError
	// EventLeftRoom confirms an explicit leave to the invoker.
	EventLeftRoom
)

// Event is sent to clients to describe what happened in the system.
type Event struct {
	Kind      EventKind
	Room      string
	Text      string
	From      string
	To        string
	ToSelf    bool
	NewName   string
	Users     []string
	History   []HistoryEntry
	Timestamp time.Time
}
