package store

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound is returned when the requested record does not exist.
	ErrNotFound = errors.New("store: not found")
	// ErrConflict is returned when a unique constraint would be violated.
	ErrConflict = errors.New("store: conflict")
)

// User represents a registered account.
type User struct {
	ID                string
	Name              string
	Email             string
	PasswordHash      string
	PreferredLanguage string
	Disabled          bool
	CreatedAt         time.Time
}

// Room represents a chat room.
type Room struct {
	ID          string
	Name        string
	CreatorID   string
	MemberCount int
	CreatedAt   time.Time
}

// Member is a durable room member.
type Member struct {
	UserID   string
	Name     string
	JoinedAt time.Time
}

// Message represents a persisted chat message.
type Message struct {
	ID               string
	RoomID           string
	SenderID         string
	SenderName       string
	SenderLanguage   string
	OriginalText     string
	TranslatedText   string
	DetectedLanguage string
	CreatedAt        time.Time
}

// RoomFilter narrows ListRooms.
type RoomFilter string

const (
	RoomFilterAll     RoomFilter = ""
	RoomFilterJoined  RoomFilter = "joined"
	RoomFilterCreated RoomFilter = "created"
)

// UserStore handles user persistence.
type UserStore interface {
	// CreateUser stores a new account. A taken email yields ErrConflict.
	CreateUser(ctx context.Context, u *User) (*User, error)

	// GetUserByID retrieves a user by ID.
	GetUserByID(ctx context.Context, id string) (*User, error)

	// GetUserByEmail retrieves a user by lower-cased email.
	GetUserByEmail(ctx context.Context, email string) (*User, error)

	// UpdatePreferredLanguage changes the language of a user.
	UpdatePreferredLanguage(ctx context.Context, id, lang string) error
}

// RoomStore handles room persistence.
type RoomStore interface {
	// CreateRoom creates a room and makes the creator its first member.
	// A taken name yields ErrConflict.
	CreateRoom(ctx context.Context, name, creatorID string) (*Room, error)

	// FindRoom retrieves a room by ID.
	FindRoom(ctx context.Context, id string) (*Room, error)

	// ListRooms lists rooms, optionally only those userID joined or created.
	ListRooms(ctx context.Context, userID string, filter RoomFilter) ([]*Room, error)

	// AddMember adds a user to a room. Adding an existing member is a no-op.
	AddMember(ctx context.Context, roomID, userID string) error

	// RemoveMember removes a user from a room.
	RemoveMember(ctx context.Context, roomID, userID string) error

	// IsMember checks if the user is a member of the room.
	IsMember(ctx context.Context, roomID, userID string) (bool, error)

	// ListMembers lists the members of a room in join order.
	ListMembers(ctx context.Context, roomID string) ([]Member, error)
}

// MessageStore handles message persistence.
type MessageStore interface {
	// AppendMessage adds a message to the room history.
	AppendMessage(ctx context.Context, msg *Message) error

	// ListMessages returns up to limit of the most recent messages, oldest first.
	ListMessages(ctx context.Context, roomID string, limit int) ([]*Message, error)
}

// Store aggregates all storage interfaces.
type Store interface {
	UserStore
	RoomStore
	MessageStore

	// Close closes the underlying database connection.
	Close() error
}
