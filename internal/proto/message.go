package proto

import (
	"encoding/json"
	"time"
)

// Inbound is the envelope for messages coming from the client.
type Inbound struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

const (
	InboundTypeJoinRoom    = "joinRoom"
	InboundTypeSendMessage = "sendMessage"
	InboundTypeTyping      = "typing"
	InboundTypeStopTyping  = "stopTyping"

	OutboundTypeEvent = "event"
	OutboundTypeError = "error"
)

// JoinRoomData puts the connection into a room.
type JoinRoomData struct {
	RoomID            string `json:"roomId" validate:"required,max=128"`
	UserID            string `json:"userId" validate:"max=128"`
	DisplayName       string `json:"displayName" validate:"max=100"`
	Name              string `json:"name" validate:"max=100"` // older clients send name
	PreferredLanguage string `json:"preferredLanguage" validate:"max=16"`
}

// SendMessageData is a chat message from the client.
type SendMessageData struct {
	RoomID       string `json:"roomId" validate:"required,max=128"`
	OriginalText string `json:"originalText" validate:"required"`
}

// TypingData starts or stops a typing indicator. The user fields are accepted for
// compatibility but the server always uses the connection's own identity.
type TypingData struct {
	RoomID      string `json:"roomId" validate:"required,max=128"`
	UserID      string `json:"userId,omitempty"`
	DisplayName string `json:"displayName,omitempty"`
}

// Outbound is the envelope for messages sent to the client.
type Outbound struct {
	Type  string `json:"type"`
	Event string `json:"event,omitempty"`
	Data  any    `json:"data,omitempty"`
	Error *Error `json:"error,omitempty"`
}

// Member is a durable room member.
type Member struct {
	UserID      string `json:"userId"`
	DisplayName string `json:"displayName"`
}

// EventRoomJoined confirms a join to the joining connection.
type EventRoomJoined struct {
	Success bool     `json:"success"`
	RoomID  string   `json:"roomId"`
	Members []Member `json:"members"`
}

// EventMemberList carries the users currently online in a room.
type EventMemberList struct {
	RoomID        string   `json:"roomId"`
	OnlineUserIDs []string `json:"onlineUserIds"`
}

// EventNotification is a human-readable room notice.
type EventNotification struct {
	RoomID  string `json:"roomId"`
	Message string `json:"message"`
}

// EventNewMessage is a broadcast chat message.
type EventNewMessage struct {
	ID               string    `json:"id"`
	RoomID           string    `json:"roomId"`
	SenderID         string    `json:"senderId"`
	SenderName       string    `json:"senderName"`
	SenderLanguage   string    `json:"senderLanguage"`
	OriginalText     string    `json:"originalText"`
	TranslatedText   string    `json:"translatedText"`
	DetectedLanguage string    `json:"detectedLanguage,omitempty"`
	Timestamp        time.Time `json:"timestamp"`
}

// EventUserTyping reports that a user started typing.
type EventUserTyping struct {
	RoomID      string `json:"roomId"`
	UserID      string `json:"userId"`
	DisplayName string `json:"displayName"`
}

// EventUserStoppedTyping reports that a user stopped typing.
type EventUserStoppedTyping struct {
	RoomID string `json:"roomId"`
	UserID string `json:"userId"`
}

// EventError is the payload of an error event.
type EventError struct {
	Message string `json:"message"`
}

// Error describes a protocol-level error response.
type Error struct {
	Code string `json:"code"`
	Msg  string `json:"msg"`
}
