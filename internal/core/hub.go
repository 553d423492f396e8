package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/parlorchat/parlor-server/internal/store"
)

// DefaultHistoryLimit bounds the history delivered on join.
const DefaultHistoryLimit = 100

// Hub coordinates all chat sessions. A single goroutine (Run) owns the room
// registry, the transport rooms, and every session, so all mutations and
// store writes for a room apply in the order their triggering events
// arrived. Persisted rows and broadcasts therefore reflect exactly the
// sequence clients saw live.
type Hub struct {
	store        store.Store
	log          *zerolog.Logger
	historyLimit int

	register   chan *Client
	unregister chan *Client
	inbox      chan inboxEntry

	clients  map[*Client]struct{}
	rooms    map[string]*Room
	registry *Registry
}

type inboxEntry struct {
	client *Client
	cmd    *Command
}

// NewHub creates a hub backed by the given store. historyLimit <= 0 selects
// DefaultHistoryLimit.
func NewHub(st store.Store, logger *zerolog.Logger, historyLimit int) *Hub {
	if historyLimit <= 0 {
		historyLimit = DefaultHistoryLimit
	}
	return &Hub{
		store:        st,
		log:          logger,
		historyLimit: historyLimit,
		register:     make(chan *Client),
		unregister:   make(chan *Client),
		inbox:        make(chan inboxEntry, 64),
		clients:      make(map[*Client]struct{}),
		rooms:        make(map[string]*Room),
		registry:     NewRegistry(),
	}
}

// RegisterClient hands a new connection to the hub.
func (h *Hub) RegisterClient(c *Client) {
	h.register <- c
}

// UnregisterClient reports a disconnected connection. The hub runs the leave
// procedure before discarding the session.
func (h *Hub) UnregisterClient(c *Client) {
	h.unregister <- c
}

// Run processes events until the context is cancelled.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case c := <-h.register:
			h.clients[c] = struct{}{}
			go h.forward(c)
		case c := <-h.unregister:
			if _, ok := h.clients[c]; !ok {
				continue
			}
			h.leave(c)
			delete(h.clients, c)
		case entry := <-h.inbox:
			if _, ok := h.clients[entry.client]; !ok {
				continue
			}
			h.dispatch(entry.client, entry.cmd)
		}
	}
}

// forward pumps one client's commands into the shared inbox. It exits when
// the transport closes the client's command channel.
func (h *Hub) forward(c *Client) {
	for cmd := range c.Commands {
		h.inbox <- inboxEntry{client: c, cmd: cmd}
	}
}

func (h *Hub) dispatch(c *Client, cmd *Command) {
	switch cmd.Kind {
	case CommandJoinRoom:
		h.join(c, cmd)
	case CommandSendMessage:
		h.sendMessage(c, cmd.Text)
	case CommandClientInput:
		h.clientInput(c, cmd.Text)
	case CommandLeaveRoom:
		if room := c.Session.Room; h.leave(c) {
			c.send(&Event{Kind: EventLeftRoom, Room: room})
		}
	}
}

// join moves the session into a room. The step order is load-bearing: the
// joiner must receive history before the join announcement is persisted, or
// it would see its own join line twice.
func (h *Hub) join(c *Client, cmd *Command) {
	ctx := context.Background()

	// Duplicate join for the current room is a no-op. The guard compares
	// room identity only; re-identifying a live connection is not supported.
	if c.Session.Room == cmd.Room {
		return
	}
	if c.Session.Room != "" {
		// Joining another room implies leaving the current one.
		h.leave(c)
	}

	user, err := h.resolveUser(ctx, cmd)
	if err != nil {
		h.log.Error().Err(err).Str("client_id", c.ID).Msg("resolve user")
		return
	}

	roomRec, err := h.store.GetRoomByName(ctx, cmd.Room)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			h.log.Warn().Str("room", cmd.Room).Str("client_id", c.ID).Msg("join to unknown room")
		} else {
			h.log.Error().Err(err).Str("room", cmd.Room).Msg("lookup room")
		}
		return
	}

	// Step 1: register the session and update the registry.
	c.Session = Session{Room: roomRec.Name, UserID: user.ID, Name: user.Name}
	room := h.room(roomRec.Name, roomRec.ID)
	room.AddClient(c)
	h.registry.AddMember(roomRec.Name, user.ID, user.Name)

	// Step 2: history to the joiner only, before the join notice exists.
	rows, err := h.store.ListVisibleHistory(ctx, roomRec.ID, user.ID, h.historyLimit)
	if err != nil {
		h.log.Error().Err(err).Str("room", roomRec.Name).Msg("load history")
		rows = nil
	}
	c.send(&Event{Kind: EventHistory, Room: roomRec.Name, History: HistoryEntries(rows)})

	// Step 3: persist the open span and the join notice.
	now := time.Now().UTC()
	if err := h.store.OpenMembership(ctx, roomRec.ID, user.ID, now); err != nil {
		h.log.Error().Err(err).Str("room", roomRec.Name).Str("user_id", user.ID).Msg("open membership")
		return
	}
	notice := fmt.Sprintf("%s has joined this room", user.Name)
	if !h.persistSystem(ctx, roomRec.ID, notice, now) {
		return
	}

	// Steps 4 and 5: join notice, then refreshed member list, room-wide.
	room.Broadcast(&Event{Kind: EventSystem, Room: roomRec.Name, Text: notice, Timestamp: now})
	room.Broadcast(&Event{Kind: EventRoomUsers, Room: roomRec.Name, Users: h.registry.Members(roomRec.Name)})

	h.log.Debug().Str("room", roomRec.Name).Str("user_id", user.ID).Str("user", user.Name).Msg("joined room")
}

// resolveUser looks up or creates the joining identity. A supplied stable ID
// wins; otherwise a fresh identity is minted.
func (h *Hub) resolveUser(ctx context.Context, cmd *Command) (*store.User, error) {
	if cmd.UserID != "" {
		user, err := h.store.GetUserByID(ctx, cmd.UserID)
		if err == nil {
			return user, nil
		}
		if !errors.Is(err, store.ErrNotFound) {
			return nil, err
		}
		return h.store.CreateUser(ctx, cmd.UserID, cmd.Name)
	}
	return h.store.CreateUser(ctx, uuid.NewString(), cmd.Name)
}

// leave runs the single leave procedure shared by the leave command and the
// disconnect event. It reports whether the session actually left a room; a
// repeat invocation is a silent no-op.
func (h *Hub) leave(c *Client) bool {
	s := &c.Session
	if s.Room == "" || s.left {
		return false
	}
	s.left = true

	ctx := context.Background()
	roomName := s.Room
	room := h.rooms[roomName]

	now := time.Now().UTC()
	notice := fmt.Sprintf("%s left the room", s.Name)
	persisted := true
	if room != nil {
		if err := h.store.CloseMembership(ctx, room.StoreID, s.UserID, now); err != nil {
			h.log.Error().Err(err).Str("room", roomName).Str("user_id", s.UserID).Msg("close membership")
			persisted = false
		}
		if persisted {
			persisted = h.persistSystem(ctx, room.StoreID, notice, now)
		}
	}

	// Presence always unwinds, even when the write failed: the registry must
	// keep matching the set of live in-room sessions.
	if room != nil {
		room.RemoveClient(c)
	}
	h.registry.RemoveMember(roomName, s.UserID)

	if room != nil && persisted {
		room.Broadcast(&Event{Kind: EventSystem, Room: roomName, Text: notice, Timestamp: now})
		room.Broadcast(&Event{Kind: EventRoomUsers, Room: roomName, Users: h.registry.Members(roomName)})
	}
	if room != nil && room.Empty() {
		delete(h.rooms, roomName)
	}

	s.Room = ""
	h.log.Debug().Str("room", roomName).Str("user_id", s.UserID).Msg("left room")
	return true
}

// sendMessage persists and broadcasts a plain text message.
func (h *Hub) sendMessage(c *Client, text string) {
	s := &c.Session
	if !s.InRoom() {
		return
	}
	room := h.rooms[s.Room]
	if room == nil {
		return
	}

	now := time.Now().UTC()
	msg := &store.Message{
		RoomID:    room.StoreID,
		AuthorID:  &s.UserID,
		Kind:      store.MessageText,
		Body:      text,
		CreatedAt: now,
	}
	if err := h.store.SaveMessage(context.Background(), msg); err != nil {
		h.log.Error().Err(err).Str("room", s.Room).Msg("save message")
		return
	}

	room.Broadcast(&Event{Kind: EventMessage, Room: s.Room, From: s.Name, Text: text, Timestamp: now})
}

// clientInput parses slash-command input and routes it. Commands from
// connections without an in-room session are dropped.
func (h *Hub) clientInput(c *Client, input string) {
	if !c.Session.InRoom() {
		return
	}

	sc := ParseSlash(input)
	switch sc.Kind {
	case SlashLeave:
		if room := c.Session.Room; h.leave(c) {
			c.send(&Event{Kind: EventLeftRoom, Room: room})
		}
	case SlashNick:
		h.nick(c, sc.Text)
	case SlashWhisper:
		h.whisper(c, sc.Target, sc.Text)
	case SlashEmote:
		h.emote(c, sc.Text)
	default:
		c.send(&Event{
			Kind:      EventSystem,
			Room:      c.Session.Room,
			Text:      fmt.Sprintf("Unknown command: %s", sc.Raw),
			Timestamp: time.Now().UTC(),
		})
	}
}

// nick renames the user behind this session.
func (h *Hub) nick(c *Client, newName string) {
	s := &c.Session
	if newName == "" {
		c.send(&Event{Kind: EventNickError, Room: s.Room, Text: "Usage: /nick <name>"})
		return
	}

	ctx := context.Background()
	existing, err := h.store.GetUserByName(ctx, newName)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		h.log.Error().Err(err).Str("name", newName).Msg("lookup name for rename")
		return
	}
	if existing != nil && existing.ID != s.UserID {
		c.send(&Event{Kind: EventNickError, Room: s.Room, Text: "Name already taken"})
		return
	}

	if err := h.store.RenameUser(ctx, s.UserID, newName); err != nil {
		h.log.Error().Err(err).Str("user_id", s.UserID).Msg("rename user")
		return
	}

	oldName := s.Name
	h.registry.RenameMember(s.Room, s.UserID, newName)

	room := h.rooms[s.Room]
	now := time.Now().UTC()
	notice := fmt.Sprintf("%s is now known as %s", oldName, newName)
	if room != nil && h.persistSystem(ctx, room.StoreID, notice, now) {
		room.Broadcast(&Event{Kind: EventSystem, Room: s.Room, Text: notice, Timestamp: now})
		room.Broadcast(&Event{Kind: EventRoomUsers, Room: s.Room, Users: h.registry.Members(s.Room)})
	}

	s.Name = newName
	c.send(&Event{Kind: EventNickOk, Room: s.Room, NewName: newName})
}

// whisper delivers a private message to a member of the current room. The
// target is resolved against the room's live members only; a user online in
// another room is unreachable.
func (h *Hub) whisper(c *Client, target, text string) {
	s := &c.Session
	if target == "" || text == "" {
		c.send(&Event{
			Kind:      EventSystem,
			Room:      s.Room,
			Text:      "Usage: /w <user> <message>",
			Timestamp: time.Now().UTC(),
		})
		return
	}

	targetID, ok := h.registry.MemberByName(s.Room, target)
	if !ok {
		c.send(&Event{
			Kind:      EventSystem,
			Room:      s.Room,
			Text:      fmt.Sprintf("User %q not found", target),
			Timestamp: time.Now().UTC(),
		})
		return
	}

	room := h.rooms[s.Room]
	if room == nil {
		return
	}

	now := time.Now().UTC()
	msg := &store.Message{
		RoomID:      room.StoreID,
		AuthorID:    &s.UserID,
		RecipientID: &targetID,
		Kind:        store.MessageWhisper,
		Body:        text,
		CreatedAt:   now,
	}
	if err := h.store.SaveMessage(context.Background(), msg); err != nil {
		h.log.Error().Err(err).Str("room", s.Room).Msg("save whisper")
		return
	}

	event := Event{
		Kind:      EventWhisper,
		Room:      s.Room,
		From:      s.Name,
		To:        target,
		Text:      text,
		Timestamp: now,
	}

	self := event
	self.ToSelf = true
	c.send(&self)

	// One identity may hold several live connections; each gets a copy.
	for client := range h.clients {
		if client != c && client.Session.UserID == targetID {
			ev := event
			client.send(&ev)
		}
	}
}

// emote persists an action message and broadcasts the merged line.
func (h *Hub) emote(c *Client, text string) {
	s := &c.Session
	room := h.rooms[s.Room]
	if room == nil {
		return
	}

	now := time.Now().UTC()
	msg := &store.Message{
		RoomID:    room.StoreID,
		AuthorID:  &s.UserID,
		Kind:      store.MessageAction,
		Body:      text,
		CreatedAt: now,
	}
	if err := h.store.SaveMessage(context.Background(), msg); err != nil {
		h.log.Error().Err(err).Str("room", s.Room).Msg("save emote")
		return
	}

	room.Broadcast(&Event{
		Kind:      EventEmote,
		Room:      s.Room,
		Text:      s.Name + " " + text,
		Timestamp: now,
	})
}

// persistSystem appends a system message, reporting success. A failed write
// abandons the dependent broadcast but never the connection.
func (h *Hub) persistSystem(ctx context.Context, roomID int64, body string, ts time.Time) bool {
	msg := &store.Message{
		RoomID:    roomID,
		Kind:      store.MessageSystem,
		Body:      body,
		CreatedAt: ts,
	}
	if err := h.store.SaveMessage(ctx, msg); err != nil {
		h.log.Error().Err(err).Int64("room_id", roomID).Msg("save system message")
		return false
	}
	return true
}

// room returns the transport room for a name, creating it on first use.
func (h *Hub) room(name string, storeID int64) *Room {
	if room, ok := h.rooms[name]; ok {
		return room
	}
	room := NewRoom(name, storeID)
	h.rooms[name] = room
	return room
}
