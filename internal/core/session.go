package core

// Identity is the user occupying a connection after Join.
type Identity struct {
	UserID            string
	DisplayName       string
	PreferredLanguage string
}

// ConnectionSession holds the attributes of one live transport connection.
// Only the Registry stores sessions; everyone else works with copies.
type ConnectionSession struct {
	ConnectionID      string
	UserID            string
	DisplayName       string
	PreferredLanguage string
	RoomID            string
}

// Joined reports whether the session has an identity and a room.
func (s ConnectionSession) Joined() bool {
	return s.UserID != "" && s.RoomID != ""
}

// Member is a durable room member as reported by the history store.
type Member struct {
	UserID      string
	DisplayName string
}
