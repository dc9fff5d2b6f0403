package core

import "errors"

// Error codes sent to clients in error frames.
const (
	ErrCodePersistence    = "persistence_failure"
	ErrCodeInvalidMessage = "invalid_message"
	ErrCodeRateLimited    = "rate_limited"
)

var (
	// ErrUnknownConnection means a registry operation referenced a connection that was never
	// registered or was already removed. It points at a transport bug.
	ErrUnknownConnection = errors.New("unknown connection")
	// ErrDuplicateConnection is returned when a connection id is registered twice.
	ErrDuplicateConnection = errors.New("duplicate connection")
	// ErrMalformedEvent marks an inbound event missing required fields. Such events are dropped.
	ErrMalformedEvent = errors.New("malformed event")
	// ErrNotJoined marks an event that needs a joined connection.
	ErrNotJoined = errors.New("connection has not joined a room")
	// ErrPersistence wraps failures of the history store.
	ErrPersistence = errors.New("persistence failure")
)

// sendFailedMessage is what the sender sees when its message could not be stored.
const sendFailedMessage = "Failed to send message."

// CoreError wraps a code and human-readable message.
type CoreError struct {
	Code    string
	Message string
}

func (e *CoreError) Error() string {
	return e.Message
}

func coreError(code, msg string) *CoreError {
	return &CoreError{Code: code, Message: msg}
}
