package core

import "sort"

// Registry is the process-wide map from room name to currently connected
// members (user ID to display name). It is the source of truth for "who is
// here now"; the store records who was ever here.
//
// All mutations go through the hub goroutine, which gives the required
// single-writer-per-room discipline without locking.
type Registry struct {
	rooms map[string]map[string]string
}

// NewRegistry constructs an empty registry.
func NewRegistry() *Registry {
	return &Registry{rooms: make(map[string]map[string]string)}
}

// AddMember records a member's presence in a room.
func (r *Registry) AddMember(room, userID, name string) {
	members, ok := r.rooms[room]
	if !ok {
		members = make(map[string]string)
		r.rooms[room] = members
	}
	members[userID] = name
}

// RemoveMember removes a member from a room, pruning the room entry once its
// member set becomes empty.
func (r *Registry) RemoveMember(room, userID string) {
	members, ok := r.rooms[room]
	if !ok {
		return
	}
	delete(members, userID)
	if len(members) == 0 {
		delete(r.rooms, room)
	}
}

// RenameMember updates a member's display name in a room.
func (r *Registry) RenameMember(room, userID, newName string) {
	if members, ok := r.rooms[room]; ok {
		if _, present := members[userID]; present {
			members[userID] = newName
		}
	}
}

// Members returns the sorted display names of a room's current members.
func (r *Registry) Members(room string) []string {
	members := r.rooms[room]
	names := make([]string, 0, len(members))
	for _, name := range members {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// MemberByName resolves a display name to a user ID within one room's
// current members.
func (r *Registry) MemberByName(room, name string) (string, bool) {
	for userID, memberName := range r.rooms[room] {
		if memberName == name {
			return userID, true
		}
	}
	return "", false
}
