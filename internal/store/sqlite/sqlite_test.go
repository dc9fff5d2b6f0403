package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/vovakirdan/translachat-server/internal/store"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := New(":memory:")
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	if err := s.Migrate(context.Background()); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	// Second run must be a no-op.
	if err := s.Migrate(context.Background()); err != nil {
		t.Fatalf("migrate twice: %v", err)
	}

	// Deterministic, strictly increasing clock.
	base := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	tick := 0
	s.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	}
	return s
}

func mustUser(t *testing.T, s *SQLiteStore, name, email string) *store.User {
	t.Helper()
	u, err := s.CreateUser(context.Background(), &store.User{
		Name:              name,
		Email:             email,
		PasswordHash:      "hash",
		PreferredLanguage: "en",
	})
	if err != nil {
		t.Fatalf("create user %s: %v", name, err)
	}
	return u
}

func TestUsers(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	alice := mustUser(t, s, "Alice", "alice@example.com")
	if alice.ID == "" || alice.CreatedAt.IsZero() {
		t.Fatalf("user not fully populated: %+v", alice)
	}

	_, err := s.CreateUser(ctx, &store.User{Name: "Other", Email: "alice@example.com", PasswordHash: "x", PreferredLanguage: "en"})
	if !errors.Is(err, store.ErrConflict) {
		t.Fatalf("expected conflict for duplicate email, got %v", err)
	}

	got, err := s.GetUserByEmail(ctx, "alice@example.com")
	if err != nil || got.ID != alice.ID {
		t.Fatalf("get by email: %+v %v", got, err)
	}

	if err := s.UpdatePreferredLanguage(ctx, alice.ID, "fr"); err != nil {
		t.Fatalf("update language: %v", err)
	}
	got, _ = s.GetUserByID(ctx, alice.ID)
	if got.PreferredLanguage != "fr" {
		t.Fatalf("language not updated: %q", got.PreferredLanguage)
	}

	if _, err := s.GetUserByID(ctx, "missing"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if err := s.UpdatePreferredLanguage(ctx, "missing", "fr"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected not found on update, got %v", err)
	}
}

func TestRoomsAndMembership(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	alice := mustUser(t, s, "Alice", "alice@example.com")
	bob := mustUser(t, s, "Bob", "bob@example.com")

	general, err := s.CreateRoom(ctx, "general", alice.ID)
	if err != nil {
		t.Fatalf("create room: %v", err)
	}
	if general.MemberCount != 1 || general.CreatorID != alice.ID {
		t.Fatalf("creator should be the first member: %+v", general)
	}
	if _, err := s.CreateRoom(ctx, "general", bob.ID); !errors.Is(err, store.ErrConflict) {
		t.Fatalf("expected conflict for duplicate name, got %v", err)
	}
	random, err := s.CreateRoom(ctx, "random", bob.ID)
	if err != nil {
		t.Fatalf("create second room: %v", err)
	}

	if err := s.AddMember(ctx, general.ID, bob.ID); err != nil {
		t.Fatalf("add member: %v", err)
	}
	// Adding twice is a no-op.
	if err := s.AddMember(ctx, general.ID, bob.ID); err != nil {
		t.Fatalf("add member twice: %v", err)
	}

	members, err := s.ListMembers(ctx, general.ID)
	if err != nil {
		t.Fatalf("list members: %v", err)
	}
	if len(members) != 2 || members[0].Name != "Alice" || members[1].Name != "Bob" {
		t.Fatalf("unexpected members: %+v", members)
	}

	tests := []struct {
		name   string
		user   string
		filter store.RoomFilter
		want   []string
	}{
		{"all newest first", alice.ID, store.RoomFilterAll, []string{"random", "general"}},
		{"joined by bob", bob.ID, store.RoomFilterJoined, []string{"random", "general"}},
		{"joined by alice", alice.ID, store.RoomFilterJoined, []string{"general"}},
		{"created by bob", bob.ID, store.RoomFilterCreated, []string{"random"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rooms, err := s.ListRooms(ctx, tt.user, tt.filter)
			if err != nil {
				t.Fatalf("list rooms: %v", err)
			}
			var names []string
			for _, r := range rooms {
				names = append(names, r.Name)
			}
			if len(names) != len(tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, names)
			}
			for i := range names {
				if names[i] != tt.want[i] {
					t.Fatalf("expected %v, got %v", tt.want, names)
				}
			}
		})
	}

	if err := s.RemoveMember(ctx, general.ID, bob.ID); err != nil {
		t.Fatalf("remove member: %v", err)
	}
	if ok, _ := s.IsMember(ctx, general.ID, bob.ID); ok {
		t.Fatal("bob should no longer be a member")
	}
	if ok, _ := s.IsMember(ctx, random.ID, bob.ID); !ok {
		t.Fatal("bob should still be a member of random")
	}

	if _, err := s.FindRoom(ctx, "missing"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, err := s.ListRooms(ctx, alice.ID, "bogus"); err == nil {
		t.Fatal("expected error for unknown filter")
	}
}

func TestMembersWithoutAccount(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	if err := s.AddMember(ctx, "live-room", "anonymous"); err != nil {
		t.Fatalf("add member: %v", err)
	}
	members, err := s.ListMembers(ctx, "live-room")
	if err != nil || len(members) != 1 || members[0].UserID != "anonymous" || members[0].Name != "" {
		t.Fatalf("unexpected members: %+v %v", members, err)
	}
}

func TestMessages(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	for _, text := range []string{"one", "two", "three"} {
		err := s.AppendMessage(ctx, &store.Message{
			RoomID:         "room",
			SenderID:       "u1",
			SenderName:     "Alice",
			SenderLanguage: "en",
			OriginalText:   text,
			TranslatedText: text,
		})
		if err != nil {
			t.Fatalf("append %s: %v", text, err)
		}
	}

	msgs, err := s.ListMessages(ctx, "room", 2)
	if err != nil {
		t.Fatalf("list messages: %v", err)
	}
	if len(msgs) != 2 || msgs[0].OriginalText != "two" || msgs[1].OriginalText != "three" {
		t.Fatalf("expected the two latest messages oldest first, got %+v", msgs)
	}
	if !msgs[0].CreatedAt.Before(msgs[1].CreatedAt) {
		t.Fatalf("timestamps out of order: %v %v", msgs[0].CreatedAt, msgs[1].CreatedAt)
	}

	dup := &store.Message{ID: msgs[0].ID, RoomID: "room", SenderID: "u1", OriginalText: "x", TranslatedText: "x"}
	if err := s.AppendMessage(ctx, dup); !errors.Is(err, store.ErrConflict) {
		t.Fatalf("expected conflict for duplicate id, got %v", err)
	}

	empty, err := s.ListMessages(ctx, "other", 10)
	if err != nil || len(empty) != 0 {
		t.Fatalf("expected no messages, got %+v %v", empty, err)
	}
}
