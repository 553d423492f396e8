package proto

import (
	"encoding/json"

	"github.com/parlorchat/parlor-server/internal/core"
)

// Inbound is the envelope for messages coming from the client.
type Inbound struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

const (
	InboundTypeJoin    = "joinRoom"
	InboundTypeMessage = "sendMessage"
	InboundTypeCommand = "clientCommand"
	InboundTypeLeave   = "leaveRoom"

	OutboundTypeEvent = "event"
	OutboundTypeError = "error"

	EventHistory   = "history"
	EventSystem    = "systemMessage"
	EventRoomUsers = "roomUsers"
	EventReceive   = "receiveMessage"
	EventEmote     = "emoteMessage"
	EventWhisper   = "whisper"
	EventNickOk    = "nickOk"
	EventNickError = "nickError"
	EventLeftRoom  = "leftRoom"
)

// JoinData requests to join a room, optionally carrying a stable identity.
type JoinData struct {
	UserID   string `json:"userId,omitempty"`
	UserName string `json:"userName"`
	RoomID   string `json:"roomId"`
}

// MessageData is a plain chat message from the client.
type MessageData struct {
	UserName string `json:"userName,omitempty"`
	RoomID   string `json:"roomId"`
	Message  string `json:"message"`
}

// CommandData carries raw slash-command input.
type CommandData struct {
	RoomID string `json:"roomId"`
	Input  string `json:"input"`
}

// Outbound is the envelope for messages sent to the client.
type Outbound struct {
	Type  string `json:"type"`
	Event string `json:"event,omitempty"`
	Data  any    `json:"data,omitempty"`
	Error *Error `json:"error,omitempty"`
}

// HistoryData delivers room history to a joining connection.
type HistoryData struct {
	History []core.HistoryEntry `json:"history"`
}

// SystemData is a server-generated notice.
type SystemData struct {
	Text      string `json:"text"`
	Timestamp string `json:"timestamp"`
}

// RoomUsersData carries the refreshed member list of a room.
type RoomUsersData struct {
	Users []string `json:"users"`
}

// ReceiveData is a plain chat message broadcast to a room.
type ReceiveData struct {
	UserName  string `json:"userName"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

// EmoteData is an action line broadcast to a room.
type EmoteData struct {
	Text      string `json:"text"`
	Timestamp string `json:"timestamp"`
}

// WhisperData is a private message delivered to sender and recipient.
type WhisperData struct {
	FromName  string `json:"fromName"`
	ToName    string `json:"toName"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
	ToSelf    bool   `json:"toSelf"`
}

// NickOkData acknowledges a rename to the invoker.
type NickOkData struct {
	NewName string `json:"newName"`
}

// NickErrorData reports a rejected rename to the invoker.
type NickErrorData struct {
	Message string `json:"message"`
}

// LeftRoomData confirms an explicit leave to the invoker.
type LeftRoomData struct {
	RoomID string `json:"roomId"`
}

// Error codes carried by protocol-level error responses.
const (
	ErrCodeBadRequest     = "bad_request"
	ErrCodeInvalidMessage = "invalid_message"
	ErrCodeRateLimited    = "rate_limited"
)

// Error describes a protocol-level error response.
type Error struct {
	Code string `json:"code"`
	Msg  string `json:"msg"`
}
