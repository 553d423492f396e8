package core

// Room groups clients subscribed to the same channel. It is the transport's
// room-membership primitive the broadcast router fans out through; the
// durable room record lives in the store, keyed here by StoreID.
type Room struct {
	Name    string
	StoreID int64
	clients map[*Client]struct{}
}

// NewRoom constructs a room with no clients.
func NewRoom(name string, storeID int64) *Room {
	return &Room{
		Name:    name,
		StoreID: storeID,
		clients: make(map[*Client]struct{}),
	}
}

// AddClient inserts a client into the room. Returns true if newly added.
func (r *Room) AddClient(c *Client) bool {
	if _, exists := r.clients[c]; exists {
		return false
	}
	r.clients[c] = struct{}{}
	return true
}

// RemoveClient deletes a client from the room. Returns true if removed.
func (r *Room) RemoveClient(c *Client) bool {
	if _, exists := r.clients[c]; !exists {
		return false
	}
	delete(r.clients, c)
	return true
}

// Broadcast sends an event to all clients in the room.
func (r *Room) Broadcast(event *Event) {
	for client := range r.clients {
		select {
		case client.Events <- event:
		default:
			// Drop if slow consumer.
		}
	}
}

// Empty returns true if no clients are in the room.
func (r *Room) Empty() bool {
	return len(r.clients) == 0
}
