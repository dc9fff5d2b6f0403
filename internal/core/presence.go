package core

import (
	"slices"

	"github.com/samber/lo"
)

// OnlineUserIDs returns the sorted, deduplicated users with at least one connection in roomID.
func (r *Registry) OnlineUserIDs(roomID string) []string {
	r.mu.RLock()
	conns := r.rooms[roomID]
	users := make([]string, 0, len(conns))
	for connID := range conns {
		if sess, ok := r.sessions[connID]; ok && sess.UserID != "" {
			users = append(users, sess.UserID)
		}
	}
	r.mu.RUnlock()

	users = lo.Uniq(users)
	slices.Sort(users)
	return users
}

// ConnectionIDsInRoom returns a snapshot of the connections currently in roomID.
func (r *Registry) ConnectionIDsInRoom(roomID string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	conns := r.rooms[roomID]
	out := make([]string, 0, len(conns))
	for connID := range conns {
		out = append(out, connID)
	}
	return out
}

// RoomCount returns the number of rooms with at least one connection.
func (r *Registry) RoomCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms)
}
