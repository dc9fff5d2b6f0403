//go:generate go run go.uber.org/mock/mockgen -source=ports.go -destination=../mocks/mock_ports.go -package=mocks
package core

import "context"

// HistoryStore persists messages and durable room membership for the router.
type HistoryStore interface {
	// AppendMessage stores env in the history of roomID.
	AppendMessage(ctx context.Context, roomID string, env Envelope) error

	// ListMembers returns the durable members of roomID.
	ListMembers(ctx context.Context, roomID string) ([]Member, error)

	// AddMember records userID as a durable member of roomID.
	AddMember(ctx context.Context, roomID, userID string) error
}

// Translator produces the translated text carried by an Envelope.
type Translator interface {
	Translate(ctx context.Context, text, sourceLang string) (Translation, error)
}

// Censor masks forbidden words in message text.
type Censor interface {
	Censor(text string) string
}

// Deliverer hands an event to the transport of one connection.
// It returns false when the connection is gone or cannot accept the event.
type Deliverer interface {
	Deliver(connID string, ev *Event) bool
}
