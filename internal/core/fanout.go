package core

import (
	"github.com/rs/zerolog"
	"github.com/samber/lo"
)

// AudienceKind selects how an audience is resolved.
type AudienceKind int

const (
	// AudienceRoom is every connection in a room.
	AudienceRoom AudienceKind = iota
	// AudienceRoomExcept is every connection in a room but one.
	AudienceRoomExcept
	// AudienceConnection is a single connection.
	AudienceConnection
)

// Audience describes who receives an event.
type Audience struct {
	Kind   AudienceKind
	RoomID string
	ConnID string
}

// Room targets all connections in roomID.
func Room(roomID string) Audience {
	return Audience{Kind: AudienceRoom, RoomID: roomID}
}

// RoomExcept targets all connections in roomID except connID.
func RoomExcept(roomID, connID string) Audience {
	return Audience{Kind: AudienceRoomExcept, RoomID: roomID, ConnID: connID}
}

// Connection targets connID only.
func Connection(connID string) Audience {
	return Audience{Kind: AudienceConnection, ConnID: connID}
}

// Fanout resolves audiences through the presence index and delivers events.
type Fanout struct {
	registry *Registry
	sink     Deliverer
	log      *zerolog.Logger
}

// NewFanout builds a fanout delivering through sink.
func NewFanout(registry *Registry, sink Deliverer, logger *zerolog.Logger) *Fanout {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Fanout{registry: registry, sink: sink, log: logger}
}

// Resolve returns the connection snapshot for a.
func (f *Fanout) Resolve(a Audience) []string {
	switch a.Kind {
	case AudienceConnection:
		return []string{a.ConnID}
	case AudienceRoomExcept:
		return lo.Without(f.registry.ConnectionIDsInRoom(a.RoomID), a.ConnID)
	default:
		return f.registry.ConnectionIDsInRoom(a.RoomID)
	}
}

// Deliver sends ev to every connection of the audience snapshot and returns how many
// connections accepted it. Connections that vanish mid-fanout are skipped.
func (f *Fanout) Deliver(a Audience, ev *Event) int {
	targets := f.Resolve(a)
	delivered := 0
	for _, connID := range targets {
		if f.sink.Deliver(connID, ev) {
			delivered++
		}
	}
	if delivered < len(targets) {
		f.log.Debug().
			Str("event", ev.Kind.String()).
			Int("targets", len(targets)).
			Int("delivered", delivered).
			Msg("fanout skipped connections")
	}
	return delivered
}
