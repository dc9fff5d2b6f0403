package utils

import "github.com/google/uuid"

// NewID returns a random UUIDv4 string used for users, rooms and messages.
func NewID() string {
	return uuid.NewString()
}

// NewConnID returns an identifier for a transport connection.
// Connection ids never collide with persisted ids because of the prefix.
func NewConnID() string {
	return "conn-" + uuid.NewString()
}
