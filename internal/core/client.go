package core

const defaultClientBuffer = 64

// Client is one transport connection as seen by the core layer.
type Client struct {
	ID string
	// Identity is set when the transport authenticated the connection at upgrade time.
	Identity *Identity
	Events   chan *Event
}

// NewClient constructs a client with an outbound buffer of the given size.
func NewClient(id string, identity *Identity, buffer int) *Client {
	if buffer <= 0 {
		buffer = defaultClientBuffer
	}
	return &Client{
		ID:       id,
		Identity: identity,
		Events:   make(chan *Event, buffer),
	}
}
