package core

// CommandKind describes what the connection wants to do.
type CommandKind int

const (
	// CommandJoinRoom puts the connection into a room.
	CommandJoinRoom CommandKind = iota
	// CommandSendMessage delivers a plain text message to room members.
	CommandSendMessage
	// CommandClientInput carries raw slash-command input for dispatch.
	CommandClientInput
	// CommandLeaveRoom removes the connection from its current room.
	CommandLeaveRoom
)

// Command represents an action requested by a connection.
type Command struct {
	Kind CommandKind
	// Room is the room name for join; other commands act on the session's
	// current room.
	Room string
	// UserID optionally carries a stable identity for join; empty means a
	// fresh identity is created.
	UserID string
	// Name is the requested display name for join.
	Name string
	// Text is the message body or the raw slash-command input.
	Text string
}
