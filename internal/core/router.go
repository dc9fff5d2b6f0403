package core

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	defaultFallbackLanguage = "en"
	defaultMaxMessageRunes  = 1000
	anonymousName           = "A user"
)

// JoinEvent asks to put a connection into a room.
type JoinEvent struct {
	RoomID            string
	UserID            string
	DisplayName       string
	PreferredLanguage string
	// Verified is set when the identity comes from a credential checked by the transport.
	// Only verified joins are recorded as durable membership.
	Verified bool
}

// SendEvent carries a chat message. RoomID is optional; when set it must match the joined room.
type SendEvent struct {
	RoomID       string
	OriginalText string
}

// TypingEvent carries a typing indicator. The user is always taken from the registry.
type TypingEvent struct {
	RoomID string
}

// RouterOptions configures a Router. Zero values fall back to defaults.
type RouterOptions struct {
	History          HistoryStore
	Translator       Translator
	Censor           Censor
	FallbackLanguage string
	MaxMessageRunes  int
	Now              func() time.Time
	Logger           *zerolog.Logger
}

// Router drives the lifecycle of every connection: join, send, typing and disconnect.
// Calls for one connection must not run concurrently; calls for different connections may.
type Router struct {
	registry   *Registry
	fanout     *Fanout
	history    HistoryStore
	translator Translator
	censor     Censor

	fallbackLanguage string
	maxMessageRunes  int
	now              func() time.Time
	log              *zerolog.Logger

	sendLocks     *roomLocks
	presenceLocks *roomLocks
}

// NewRouter builds a router over registry that emits through fanout.
func NewRouter(registry *Registry, fanout *Fanout, opts RouterOptions) *Router {
	r := &Router{
		registry:         registry,
		fanout:           fanout,
		history:          opts.History,
		translator:       opts.Translator,
		censor:           opts.Censor,
		fallbackLanguage: opts.FallbackLanguage,
		maxMessageRunes:  opts.MaxMessageRunes,
		now:              opts.Now,
		log:              opts.Logger,
		sendLocks:        newRoomLocks(),
		presenceLocks:    newRoomLocks(),
	}
	if r.fallbackLanguage == "" {
		r.fallbackLanguage = defaultFallbackLanguage
	}
	if r.maxMessageRunes <= 0 {
		r.maxMessageRunes = defaultMaxMessageRunes
	}
	if r.now == nil {
		r.now = time.Now
	}
	if r.log == nil {
		nop := zerolog.Nop()
		r.log = &nop
	}
	return r
}

// Connect registers a fresh connection in the Connected state.
func (r *Router) Connect(connID string) error {
	if err := r.registry.Register(connID); err != nil {
		return fmt.Errorf("connect %s: %w", connID, err)
	}
	return nil
}

// Join attaches identity and room to connID and announces the join.
func (r *Router) Join(ctx context.Context, connID string, ev JoinEvent) error {
	roomID := strings.TrimSpace(ev.RoomID)
	userID := strings.TrimSpace(ev.UserID)
	if roomID == "" || userID == "" {
		return fmt.Errorf("join: %w: room and user are required", ErrMalformedEvent)
	}

	current, ok := r.registry.Get(connID)
	if !ok {
		return fmt.Errorf("join %s: %w", connID, ErrUnknownConnection)
	}

	id := Identity{
		UserID:            userID,
		DisplayName:       strings.TrimSpace(ev.DisplayName),
		PreferredLanguage: strings.TrimSpace(ev.PreferredLanguage),
	}
	if id.PreferredLanguage == "" {
		id.PreferredLanguage = r.fallbackLanguage
	}

	// Durable membership and roster are best effort and stay outside every lock.
	members := r.roster(ctx, roomID, userID, ev.Verified)

	unlock := r.presenceLocks.lock(roomID, current.RoomID)
	defer unlock()

	prev, err := r.registry.AttachIdentity(connID, id, roomID)
	if err != nil {
		return fmt.Errorf("join %s: %w", connID, err)
	}

	r.fanout.Deliver(Connection(connID), &Event{Kind: EventRoomJoined, Room: roomID, Members: members})
	r.announcePresence(roomID)

	name := id.DisplayName
	if name == "" {
		name = anonymousName
	}
	r.fanout.Deliver(RoomExcept(roomID, connID), &Event{
		Kind:   EventNotification,
		Room:   roomID,
		Notice: name + " joined the room.",
	})

	if prev != "" && prev != roomID {
		r.announcePresence(prev)
		r.fanout.Deliver(Room(prev), &Event{Kind: EventUserStoppedTyping, Room: prev, User: current.UserID})
	}

	r.log.Info().
		Str("conn_id", connID).
		Str("user_id", userID).
		Str("room_id", roomID).
		Str("prev_room", prev).
		Msg("joined room")
	return nil
}

// Send persists a message and broadcasts it to the whole room, sender included.
// When persistence fails only the sender receives an error event.
func (r *Router) Send(ctx context.Context, connID string, ev SendEvent) error {
	sess, ok := r.registry.Get(connID)
	if !ok {
		return fmt.Errorf("send %s: %w", connID, ErrUnknownConnection)
	}
	if !sess.Joined() {
		return fmt.Errorf("send %s: %w", connID, ErrNotJoined)
	}
	if ev.RoomID != "" && ev.RoomID != sess.RoomID {
		return fmt.Errorf("send %s: %w: room %q is not the joined room", connID, ErrMalformedEvent, ev.RoomID)
	}

	text := strings.TrimSpace(ev.OriginalText)
	if text == "" {
		return fmt.Errorf("send %s: %w: empty text", connID, ErrMalformedEvent)
	}
	if utf8.RuneCountInString(text) > r.maxMessageRunes {
		return fmt.Errorf("send %s: %w: text longer than %d characters", connID, ErrMalformedEvent, r.maxMessageRunes)
	}

	if r.censor != nil {
		text = r.censor.Censor(text)
	}
	translation := r.translate(ctx, text, sess.PreferredLanguage)

	env := Envelope{
		ID:               uuid.NewString(),
		RoomID:           sess.RoomID,
		SenderID:         sess.UserID,
		SenderName:       sess.DisplayName,
		SenderLanguage:   sess.PreferredLanguage,
		OriginalText:     text,
		TranslatedText:   translation.Text,
		DetectedLanguage: translation.DetectedLanguage,
		Timestamp:        r.now().UTC(),
	}

	unlock := r.sendLocks.lock(sess.RoomID)
	defer unlock()

	if r.history != nil {
		if err := r.history.AppendMessage(ctx, sess.RoomID, env); err != nil {
			r.fanout.Deliver(Connection(connID), &Event{
				Kind:  EventError,
				Room:  sess.RoomID,
				Error: coreError(ErrCodePersistence, sendFailedMessage),
			})
			return fmt.Errorf("send %s: %w: %v", connID, ErrPersistence, err)
		}
	}

	r.fanout.Deliver(Room(sess.RoomID), &Event{Kind: EventNewMessage, Room: sess.RoomID, Message: &env})
	return nil
}

// TypingStart relays a typing indicator to the rest of the room.
func (r *Router) TypingStart(connID string, ev TypingEvent) error {
	sess, ok := r.registry.Get(connID)
	if !ok {
		return fmt.Errorf("typing %s: %w", connID, ErrUnknownConnection)
	}
	if !sess.Joined() {
		return fmt.Errorf("typing %s: %w", connID, ErrNotJoined)
	}
	if ev.RoomID != "" && ev.RoomID != sess.RoomID {
		return fmt.Errorf("typing %s: %w: room %q is not the joined room", connID, ErrMalformedEvent, ev.RoomID)
	}

	r.fanout.Deliver(RoomExcept(sess.RoomID, connID), &Event{
		Kind:        EventUserTyping,
		Room:        sess.RoomID,
		User:        sess.UserID,
		DisplayName: sess.DisplayName,
	})
	return nil
}

// TypingStop relays the end of typing. It is valid in any state and a no-op outside a room.
func (r *Router) TypingStop(connID string, ev TypingEvent) error {
	sess, ok := r.registry.Get(connID)
	if !ok {
		return fmt.Errorf("stop typing %s: %w", connID, ErrUnknownConnection)
	}
	if sess.RoomID == "" {
		return nil
	}
	if ev.RoomID != "" && ev.RoomID != sess.RoomID {
		return fmt.Errorf("stop typing %s: %w: room %q is not the joined room", connID, ErrMalformedEvent, ev.RoomID)
	}

	r.fanout.Deliver(RoomExcept(sess.RoomID, connID), &Event{
		Kind: EventUserStoppedTyping,
		Room: sess.RoomID,
		User: sess.UserID,
	})
	return nil
}

// Disconnect removes connID and, if it was in a room, refreshes presence there and clears
// any typing indicator the client never stopped.
func (r *Router) Disconnect(connID string) error {
	current, ok := r.registry.Get(connID)
	if !ok {
		return fmt.Errorf("disconnect %s: %w", connID, ErrUnknownConnection)
	}

	unlock := r.presenceLocks.lock(current.RoomID)
	defer unlock()

	sess, ok := r.registry.Unregister(connID)
	if !ok {
		return fmt.Errorf("disconnect %s: %w", connID, ErrUnknownConnection)
	}
	if sess.RoomID == "" {
		return nil
	}

	r.announcePresence(sess.RoomID)
	r.fanout.Deliver(RoomExcept(sess.RoomID, connID), &Event{
		Kind: EventUserStoppedTyping,
		Room: sess.RoomID,
		User: sess.UserID,
	})

	r.log.Info().
		Str("conn_id", connID).
		Str("user_id", sess.UserID).
		Str("room_id", sess.RoomID).
		Msg("left room on disconnect")
	return nil
}

// announcePresence sends the current online list of roomID to the whole room.
func (r *Router) announcePresence(roomID string) {
	r.fanout.Deliver(Room(roomID), &Event{
		Kind:   EventMemberList,
		Room:   roomID,
		Online: r.registry.OnlineUserIDs(roomID),
	})
}

// roster records a verified joiner as a durable member and returns the member list of roomID.
func (r *Router) roster(ctx context.Context, roomID, userID string, verified bool) []Member {
	if r.history == nil {
		return nil
	}
	if verified {
		if err := r.history.AddMember(ctx, roomID, userID); err != nil {
			r.log.Warn().Err(err).Str("room_id", roomID).Str("user_id", userID).Msg("failed to store membership")
		}
	}
	members, err := r.history.ListMembers(ctx, roomID)
	if err != nil {
		r.log.Warn().Err(err).Str("room_id", roomID).Msg("failed to list members")
		return nil
	}
	return members
}

func (r *Router) translate(ctx context.Context, text, sourceLang string) Translation {
	if r.translator == nil {
		return Translation{Text: text}
	}
	tr, err := r.translator.Translate(ctx, text, sourceLang)
	if err != nil {
		r.log.Warn().Err(err).Msg("translation failed, passing text through")
		return Translation{Text: text}
	}
	if tr.Text == "" {
		tr.Text = text
	}
	return tr
}
