package core

import (
	"errors"
	"fmt"
	"slices"
	"sync"
	"testing"
)

func TestRegistryRegisterTwice(t *testing.T) {
	r := NewRegistry()
	if err := r.Register("c1"); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := r.Register("c1"); !errors.Is(err, ErrDuplicateConnection) {
		t.Fatalf("expected duplicate error, got %v", err)
	}
}

func TestRegistryUnknownConnection(t *testing.T) {
	r := NewRegistry()
	if _, err := r.AttachIdentity("ghost", Identity{UserID: "u"}, "room"); !errors.Is(err, ErrUnknownConnection) {
		t.Fatalf("attach: expected unknown connection, got %v", err)
	}
	if _, err := r.SetRoom("ghost", "room"); !errors.Is(err, ErrUnknownConnection) {
		t.Fatalf("set room: expected unknown connection, got %v", err)
	}
	if _, ok := r.Unregister("ghost"); ok {
		t.Fatal("unregister of unknown connection reported success")
	}
}

func TestRegistryRoomIndexFollowsSessions(t *testing.T) {
	r := NewRegistry()
	_ = r.Register("c1")
	_ = r.Register("c2")

	if prev, _ := r.AttachIdentity("c1", Identity{UserID: "u1"}, "a"); prev != "" {
		t.Fatalf("fresh connection had room %q", prev)
	}
	_, _ = r.AttachIdentity("c2", Identity{UserID: "u2"}, "a")
	if got := r.ConnectionIDsInRoom("a"); len(got) != 2 {
		t.Fatalf("expected two connections in a, got %v", got)
	}

	prev, err := r.SetRoom("c1", "b")
	if err != nil || prev != "a" {
		t.Fatalf("set room: prev=%q err=%v", prev, err)
	}
	if got := r.ConnectionIDsInRoom("a"); !slices.Equal(got, []string{"c2"}) {
		t.Fatalf("expected only c2 in a, got %v", got)
	}

	sess, ok := r.Unregister("c2")
	if !ok || sess.RoomID != "a" || sess.UserID != "u2" {
		t.Fatalf("unexpected removed session: %+v ok=%v", sess, ok)
	}
	if r.RoomCount() != 1 {
		t.Fatalf("empty room should be dropped, have %d rooms", r.RoomCount())
	}
	if r.ConnectionCount() != 1 {
		t.Fatalf("expected one connection, got %d", r.ConnectionCount())
	}
}

func TestRegistryUnregisterReturnsRoom(t *testing.T) {
	r := NewRegistry()
	_ = r.Register("c1")
	_, _ = r.AttachIdentity("c1", Identity{UserID: "U1", DisplayName: "Alice"}, "R")

	sess, ok := r.Unregister("c1")
	if !ok {
		t.Fatal("unregister failed")
	}
	if sess.RoomID != "R" || sess.UserID != "U1" {
		t.Fatalf("removed session lost its attributes: %+v", sess)
	}
	if got := r.ConnectionIDsInRoom("R"); len(got) != 0 {
		t.Fatalf("room index still holds %v", got)
	}
	if _, ok := r.Get("c1"); ok {
		t.Fatal("session still registered")
	}
}

func TestRegistryGetReturnsCopy(t *testing.T) {
	r := NewRegistry()
	_ = r.Register("c1")
	_, _ = r.AttachIdentity("c1", Identity{UserID: "u1", DisplayName: "Alice"}, "a")

	sess, _ := r.Get("c1")
	sess.RoomID = "elsewhere"

	again, _ := r.Get("c1")
	if again.RoomID != "a" {
		t.Fatalf("mutating a copy changed the registry: %+v", again)
	}
}

func TestOnlineUserIDsDeduplicatesConnections(t *testing.T) {
	r := NewRegistry()
	for i, user := range []string{"u2", "u1", "u2", "u1"} {
		id := fmt.Sprintf("c%d", i)
		_ = r.Register(id)
		_, _ = r.AttachIdentity(id, Identity{UserID: user}, "room")
	}
	// Registered but not joined connections are never online.
	_ = r.Register("idle")

	if got := r.OnlineUserIDs("room"); !slices.Equal(got, []string{"u1", "u2"}) {
		t.Fatalf("unexpected online users: %v", got)
	}
	if got := r.OnlineUserIDs("nobody-here"); len(got) != 0 {
		t.Fatalf("expected empty presence, got %v", got)
	}
}

func TestRegistryConcurrentAccess(t *testing.T) {
	r := NewRegistry()
	const n = 64

	var wg sync.WaitGroup
	for i := range n {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := fmt.Sprintf("c%d", i)
			_ = r.Register(id)
			_, _ = r.AttachIdentity(id, Identity{UserID: fmt.Sprintf("u%d", i%8)}, "room")
			_ = r.OnlineUserIDs("room")
			if i%2 == 0 {
				r.Unregister(id)
			}
		}(i)
	}
	wg.Wait()

	if got := len(r.ConnectionIDsInRoom("room")); got != n/2 {
		t.Fatalf("expected %d connections in room, got %d", n/2, got)
	}
	// Odd connections only map to odd users.
	if got := r.OnlineUserIDs("room"); !slices.Equal(got, []string{"u1", "u3", "u5", "u7"}) {
		t.Fatalf("unexpected online users: %v", got)
	}
}
