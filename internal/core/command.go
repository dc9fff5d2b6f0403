package core

// CommandKind describes what the client wants to do.
type CommandKind int

const (
	// CommandJoinRoom puts the connection into a room.
	CommandJoinRoom CommandKind = iota
	// CommandSendRoomMessage delivers a chat message to room participants.
	CommandSendRoomMessage
	// CommandTypingStart announces that the user is typing.
	CommandTypingStart
	// CommandTypingStop announces that the user stopped typing.
	CommandTypingStop
)

// Command represents an action requested by a client.
type Command struct {
	Kind              CommandKind
	Room              string
	UserID            string
	DisplayName       string
	PreferredLanguage string
	Text              string
}
