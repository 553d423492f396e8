package core

// Session is the per-connection state: the room the connection is in, the
// resolved identity, and the cached display name. The left flag makes leave
// idempotent across an explicit leave command and the disconnect event.
//
// A Session is mutated only by the hub goroutine.
type Session struct {
	Room   string
	UserID string
	Name   string
	left   bool
}

// InRoom reports whether the session has joined a room and resolved an
// identity.
func (s *Session) InRoom() bool {
	return s.Room != "" && s.UserID != ""
}

// Client is a live connection as seen by the core layer.
type Client struct {
	ID       string
	Commands chan *Command
	Events   chan *Event
	Session  Session
}

// NewClient constructs a client with initialized channels.
func NewClient(id string) *Client {
	return &Client{
		ID:       id,
		Commands: make(chan *Command, 8),
		Events:   make(chan *Event, 16),
	}
}

// send delivers an event to this client only, dropping if the consumer is
// slow.
func (c *Client) send(event *Event) {
	select {
	case c.Events <- event:
	default:
	}
}
