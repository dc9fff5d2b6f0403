package core

import (
	"context"
	"errors"
	"testing"
	"time"
)

type failingHistory struct{}

func (failingHistory) AppendMessage(context.Context, string, Envelope) error {
	return errors.New("database is locked")
}
func (failingHistory) ListMembers(context.Context, string) ([]Member, error) { return nil, nil }
func (failingHistory) AddMember(context.Context, string, string) error       { return nil }

// memberHistory records AddMember calls. Handle runs sequentially in these tests.
type memberHistory struct {
	added []string
}

func (*memberHistory) AppendMessage(context.Context, string, Envelope) error { return nil }
func (*memberHistory) ListMembers(context.Context, string) ([]Member, error) { return nil, nil }
func (h *memberHistory) AddMember(_ context.Context, roomID, userID string) error {
	h.added = append(h.added, roomID+"/"+userID)
	return nil
}

func joinCmd(room, user, name string) *Command {
	return &Command{Kind: CommandJoinRoom, Room: room, UserID: user, DisplayName: name, PreferredLanguage: "en"}
}

func TestHubJoinBroadcastAndDisconnect(t *testing.T) {
	ctx := context.Background()
	hub := NewHub(nil)

	alice := NewClient("a", nil, 0)
	bob := NewClient("b", nil, 0)
	if err := hub.RegisterClient(alice); err != nil {
		t.Fatalf("register alice: %v", err)
	}
	if err := hub.RegisterClient(bob); err != nil {
		t.Fatalf("register bob: %v", err)
	}

	hub.Handle(ctx, alice, joinCmd("general", "u-alice", "Alice"))
	hub.Handle(ctx, bob, joinCmd("general", "u-bob", "Bob"))

	joined := mustEvent(t, bob.Events, EventRoomJoined)
	if joined.Room != "general" {
		t.Fatalf("unexpected roomJoined: %+v", joined)
	}
	list := mustEvent(t, bob.Events, EventMemberList)
	if len(list.Online) != 2 {
		t.Fatalf("expected two online users, got %v", list.Online)
	}
	note := mustEvent(t, alice.Events, EventNotification)
	if note.Notice != "Bob joined the room." {
		t.Fatalf("unexpected notice: %q", note.Notice)
	}

	hub.Handle(ctx, alice, &Command{Kind: CommandSendRoomMessage, Room: "general", Text: "hi"})
	msg := mustEvent(t, bob.Events, EventNewMessage)
	if msg.Message.OriginalText != "hi" || msg.Message.SenderID != "u-alice" || msg.Message.RoomID != "general" {
		t.Fatalf("unexpected message: %+v", msg.Message)
	}

	hub.UnregisterClient(alice)
	for range alice.Events {
	}
	left := mustEvent(t, bob.Events, EventMemberList)
	if len(left.Online) != 1 || left.Online[0] != "u-bob" {
		t.Fatalf("expected only bob online, got %v", left.Online)
	}
}

func TestHubDuplicateClient(t *testing.T) {
	hub := NewHub(nil)
	if err := hub.RegisterClient(NewClient("a", nil, 0)); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := hub.RegisterClient(NewClient("a", nil, 0)); !errors.Is(err, ErrDuplicateConnection) {
		t.Fatalf("expected duplicate error, got %v", err)
	}
}

func TestHubAuthenticatedIdentityWins(t *testing.T) {
	hub := NewHub(nil)
	alice := NewClient("a", &Identity{UserID: "u-alice", DisplayName: "Alice", PreferredLanguage: "fr"}, 0)
	if err := hub.RegisterClient(alice); err != nil {
		t.Fatalf("register: %v", err)
	}

	hub.Handle(context.Background(), alice, joinCmd("general", "mallory", "Mallory"))

	sess, ok := hub.Registry().Get("a")
	if !ok {
		t.Fatal("session missing")
	}
	if sess.UserID != "u-alice" || sess.DisplayName != "Alice" {
		t.Fatalf("payload identity leaked into session: %+v", sess)
	}
	// An explicit language in the join still applies.
	if sess.PreferredLanguage != "en" {
		t.Fatalf("expected join language, got %q", sess.PreferredLanguage)
	}
}

func TestHubSendWithoutJoinIsDropped(t *testing.T) {
	hub := NewHub(nil)
	alice := NewClient("a", nil, 0)
	if err := hub.RegisterClient(alice); err != nil {
		t.Fatalf("register: %v", err)
	}

	hub.Handle(context.Background(), alice, &Command{Kind: CommandSendRoomMessage, Text: "hi"})

	select {
	case ev := <-alice.Events:
		t.Fatalf("expected no events, got %+v", ev)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHubPersistenceFailureReachesSenderOnly(t *testing.T) {
	ctx := context.Background()
	hub := NewHub(failingHistory{})
	alice := NewClient("a", nil, 0)
	bob := NewClient("b", nil, 0)
	_ = hub.RegisterClient(alice)
	_ = hub.RegisterClient(bob)
	hub.Handle(ctx, alice, joinCmd("general", "u-alice", "Alice"))
	hub.Handle(ctx, bob, joinCmd("general", "u-bob", "Bob"))

	hub.Handle(ctx, alice, &Command{Kind: CommandSendRoomMessage, Room: "general", Text: "hi"})

	ev := mustEvent(t, alice.Events, EventError)
	if ev.Error == nil || ev.Error.Code != ErrCodePersistence {
		t.Fatalf("expected persistence error, got %+v", ev)
	}
	for {
		select {
		case ev := <-bob.Events:
			if ev.Kind == EventNewMessage || ev.Kind == EventError {
				t.Fatalf("bob must not see %s", ev.Kind)
			}
		default:
			return
		}
	}
}

func TestHubFullQueueDropsEvents(t *testing.T) {
	ctx := context.Background()
	hub := NewHub(nil)
	slow := NewClient("slow", nil, 1)
	fast := NewClient("fast", nil, 0)
	_ = hub.RegisterClient(slow)
	_ = hub.RegisterClient(fast)
	hub.Handle(ctx, slow, joinCmd("general", "u-slow", "Slow"))
	hub.Handle(ctx, fast, joinCmd("general", "u-fast", "Fast"))

	for range 5 {
		hub.Handle(ctx, fast, &Command{Kind: CommandSendRoomMessage, Text: "spam"})
	}

	if got := len(slow.Events); got != 1 {
		t.Fatalf("slow queue should stay at capacity, got %d", got)
	}
	n := 0
	for len(fast.Events) > 0 {
		if ev := <-fast.Events; ev.Kind == EventNewMessage {
			n++
		}
	}
	if n != 5 {
		t.Fatalf("fast client should get every message, got %d", n)
	}
}

func TestHubStoresMembershipOnlyForVerifiedClients(t *testing.T) {
	ctx := context.Background()
	history := &memberHistory{}
	hub := NewHub(history)

	anon := NewClient("anon", nil, 0)
	carol := NewClient("carol", &Identity{UserID: "u-carol", DisplayName: "Carol"}, 0)
	for _, c := range []*Client{anon, carol} {
		if err := hub.RegisterClient(c); err != nil {
			t.Fatalf("register %s: %v", c.ID, err)
		}
	}

	hub.Handle(ctx, anon, joinCmd("general", "u-victim", "Victim"))
	mustEvent(t, anon.Events, EventRoomJoined)
	hub.Handle(ctx, carol, joinCmd("general", "u-spoofed", "Mallory"))
	mustEvent(t, carol.Events, EventRoomJoined)

	if len(history.added) != 1 || history.added[0] != "general/u-carol" {
		t.Fatalf("unexpected stored memberships: %v", history.added)
	}
}
