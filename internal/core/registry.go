package core

import "sync"

// Registry maps live connections to their session attributes and keeps the
// room -> connections index in the same critical section.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*ConnectionSession
	rooms    map[string]map[string]struct{} // roomID -> connectionIDs
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[string]*ConnectionSession),
		rooms:    make(map[string]map[string]struct{}),
	}
}

// Register creates an empty session for connID.
func (r *Registry) Register(connID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.sessions[connID]; exists {
		return ErrDuplicateConnection
	}
	r.sessions[connID] = &ConnectionSession{ConnectionID: connID}
	return nil
}

// AttachIdentity stores the user identity and room for connID and returns the room the
// connection occupied before.
func (r *Registry) AttachIdentity(connID string, id Identity, roomID string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	sess, ok := r.sessions[connID]
	if !ok {
		return "", ErrUnknownConnection
	}
	sess.UserID = id.UserID
	sess.DisplayName = id.DisplayName
	sess.PreferredLanguage = id.PreferredLanguage
	return r.moveLocked(sess, roomID), nil
}

// SetRoom overwrites the room pointer of connID and returns the previous room.
func (r *Registry) SetRoom(connID, roomID string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	sess, ok := r.sessions[connID]
	if !ok {
		return "", ErrUnknownConnection
	}
	return r.moveLocked(sess, roomID), nil
}

// Unregister removes connID and returns the session as it was, room included.
func (r *Registry) Unregister(connID string) (ConnectionSession, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	sess, ok := r.sessions[connID]
	if !ok {
		return ConnectionSession{}, false
	}
	out := *sess
	r.moveLocked(sess, "")
	delete(r.sessions, connID)
	return out, true
}

// Get returns a copy of the session for connID.
func (r *Registry) Get(connID string) (ConnectionSession, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sess, ok := r.sessions[connID]
	if !ok {
		return ConnectionSession{}, false
	}
	return *sess, true
}

// ConnectionCount returns the number of registered connections.
func (r *Registry) ConnectionCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// moveLocked updates the session room and the room index. Caller holds r.mu.
func (r *Registry) moveLocked(sess *ConnectionSession, roomID string) string {
	prev := sess.RoomID
	if prev == roomID {
		return prev
	}
	if prev != "" {
		if conns, ok := r.rooms[prev]; ok {
			delete(conns, sess.ConnectionID)
			if len(conns) == 0 {
				delete(r.rooms, prev)
			}
		}
	}
	if roomID != "" {
		conns, ok := r.rooms[roomID]
		if !ok {
			conns = make(map[string]struct{})
			r.rooms[roomID] = conns
		}
		conns[sess.ConnectionID] = struct{}{}
	}
	sess.RoomID = roomID
	return prev
}
