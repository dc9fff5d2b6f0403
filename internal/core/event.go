package core

// EventKind is a notification the core emits to clients.
type EventKind int

const (
	// EventRoomJoined confirms a join to the joining connection.
	EventRoomJoined EventKind = iota
	// EventMemberList carries the online users of a room.
	EventMemberList
	// EventNotification is a human-readable room notice.
	EventNotification
	// EventNewMessage delivers a chat message.
	EventNewMessage
	// EventUserTyping reports that a user started typing.
	EventUserTyping
	// EventUserStoppedTyping reports that a user stopped typing.
	EventUserStoppedTyping
	// EventError notifies a single connection about a failure.
	EventError
)

var eventNames = [...]string{
	EventRoomJoined:        "roomJoined",
	EventMemberList:        "updateMemberList",
	EventNotification:      "notification",
	EventNewMessage:        "newMessage",
	EventUserTyping:        "userTyping",
	EventUserStoppedTyping: "userStoppedTyping",
	EventError:             "error",
}

// String returns the wire name of the event.
func (k EventKind) String() string {
	if int(k) < 0 || int(k) >= len(eventNames) {
		return "unknown"
	}
	return eventNames[k]
}

// Event is sent to clients to describe what happened in the system.
// A single Event value is shared by every recipient of a fanout and must not be modified.
type Event struct {
	Kind        EventKind
	Room        string
	User        string
	DisplayName string
	Online      []string  // EventMemberList
	Members     []Member  // EventRoomJoined
	Notice      string    // EventNotification
	Message     *Envelope // EventNewMessage
	Error       *CoreError
}
