package core

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Hub wires the registry, fanout and router together and owns the outbound queue of
// every connected client.
type Hub struct {
	registry *Registry
	fanout   *Fanout
	router   *Router
	log      *zerolog.Logger

	mu      sync.RWMutex
	clients map[string]*Client
}

// Option customises a Hub.
type Option func(*RouterOptions)

// WithTranslator sets the translation collaborator.
func WithTranslator(t Translator) Option {
	return func(o *RouterOptions) { o.Translator = t }
}

// WithCensor sets the word filter applied to message text.
func WithCensor(c Censor) Option {
	return func(o *RouterOptions) { o.Censor = c }
}

// WithLogger sets the logger.
func WithLogger(l *zerolog.Logger) Option {
	return func(o *RouterOptions) { o.Logger = l }
}

// WithFallbackLanguage sets the language used when a join carries none.
func WithFallbackLanguage(lang string) Option {
	return func(o *RouterOptions) { o.FallbackLanguage = lang }
}

// WithMaxMessageRunes limits the length of a message.
func WithMaxMessageRunes(n int) Option {
	return func(o *RouterOptions) { o.MaxMessageRunes = n }
}

// WithClock overrides the clock used for message timestamps.
func WithClock(now func() time.Time) Option {
	return func(o *RouterOptions) { o.Now = now }
}

// NewHub creates a chat hub. history may be nil, in which case messages are only broadcast.
func NewHub(history HistoryStore, opts ...Option) *Hub {
	ro := RouterOptions{History: history}
	for _, opt := range opts {
		opt(&ro)
	}
	if ro.Logger == nil {
		nop := zerolog.Nop()
		ro.Logger = &nop
	}

	h := &Hub{
		registry: NewRegistry(),
		log:      ro.Logger,
		clients:  make(map[string]*Client),
	}
	h.fanout = NewFanout(h.registry, h, ro.Logger)
	h.router = NewRouter(h.registry, h.fanout, ro)
	return h
}

// Registry exposes the presence data for read-only consumers.
func (h *Hub) Registry() *Registry {
	return h.registry
}

// RegisterClient makes c reachable for fanout and puts it in the Connected state.
func (h *Hub) RegisterClient(c *Client) error {
	h.mu.Lock()
	if _, exists := h.clients[c.ID]; exists {
		h.mu.Unlock()
		return ErrDuplicateConnection
	}
	h.clients[c.ID] = c
	h.mu.Unlock()

	if err := h.router.Connect(c.ID); err != nil {
		h.mu.Lock()
		delete(h.clients, c.ID)
		h.mu.Unlock()
		return err
	}
	h.log.Debug().Str("conn_id", c.ID).Msg("client registered")
	return nil
}

// UnregisterClient runs disconnect handling and closes the client's event channel.
func (h *Hub) UnregisterClient(c *Client) {
	if err := h.router.Disconnect(c.ID); err != nil {
		h.log.Error().Err(err).Str("conn_id", c.ID).Msg("disconnect failed")
	}

	h.mu.Lock()
	if cur, ok := h.clients[c.ID]; ok && cur == c {
		delete(h.clients, c.ID)
		close(c.Events)
	}
	h.mu.Unlock()
	h.log.Debug().Str("conn_id", c.ID).Msg("client unregistered")
}

// Handle processes one command of c. Errors are scoped to the command and never fatal.
func (h *Hub) Handle(ctx context.Context, c *Client, cmd *Command) {
	var err error
	switch cmd.Kind {
	case CommandJoinRoom:
		ev := JoinEvent{
			RoomID:            cmd.Room,
			UserID:            cmd.UserID,
			DisplayName:       cmd.DisplayName,
			PreferredLanguage: cmd.PreferredLanguage,
		}
		if c.Identity != nil {
			ev.UserID = c.Identity.UserID
			ev.DisplayName = c.Identity.DisplayName
			ev.Verified = true
			if ev.PreferredLanguage == "" {
				ev.PreferredLanguage = c.Identity.PreferredLanguage
			}
		}
		err = h.router.Join(ctx, c.ID, ev)
	case CommandSendRoomMessage:
		err = h.router.Send(ctx, c.ID, SendEvent{RoomID: cmd.Room, OriginalText: cmd.Text})
	case CommandTypingStart:
		err = h.router.TypingStart(c.ID, TypingEvent{RoomID: cmd.Room})
	case CommandTypingStop:
		err = h.router.TypingStop(c.ID, TypingEvent{RoomID: cmd.Room})
	default:
		err = ErrMalformedEvent
	}
	h.logResult(c.ID, err)
}

// Deliver implements Deliverer. Slow consumers drop events instead of blocking the fanout.
func (h *Hub) Deliver(connID string, ev *Event) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()

	c, ok := h.clients[connID]
	if !ok {
		return false
	}
	select {
	case c.Events <- ev:
		return true
	default:
		h.log.Warn().Str("conn_id", connID).Str("event", ev.Kind.String()).Msg("client queue full, dropping event")
		return false
	}
}

func (h *Hub) logResult(connID string, err error) {
	switch {
	case err == nil:
	case errors.Is(err, ErrMalformedEvent), errors.Is(err, ErrNotJoined):
		h.log.Debug().Err(err).Str("conn_id", connID).Msg("event dropped")
	case errors.Is(err, ErrPersistence):
		h.log.Warn().Err(err).Str("conn_id", connID).Msg("message not stored")
	default:
		h.log.Error().Err(err).Str("conn_id", connID).Msg("event failed")
	}
}
