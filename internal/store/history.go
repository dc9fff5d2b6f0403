package store

import (
	"context"

	"github.com/samber/lo"

	"github.com/vovakirdan/translachat-server/internal/core"
)

// History adapts a Store to the persistence port of the chat core.
type History struct {
	store Store
}

var _ core.HistoryStore = (*History)(nil)

// NewHistory wraps st.
func NewHistory(st Store) *History {
	return &History{store: st}
}

// AppendMessage stores env as a message of roomID.
func (h *History) AppendMessage(ctx context.Context, roomID string, env core.Envelope) error {
	return h.store.AppendMessage(ctx, &Message{
		ID:               env.ID,
		RoomID:           roomID,
		SenderID:         env.SenderID,
		SenderName:       env.SenderName,
		SenderLanguage:   env.SenderLanguage,
		OriginalText:     env.OriginalText,
		TranslatedText:   env.TranslatedText,
		DetectedLanguage: env.DetectedLanguage,
		CreatedAt:        env.Timestamp,
	})
}

// ListMembers returns the durable members of roomID.
func (h *History) ListMembers(ctx context.Context, roomID string) ([]core.Member, error) {
	members, err := h.store.ListMembers(ctx, roomID)
	if err != nil {
		return nil, err
	}
	return lo.Map(members, func(m Member, _ int) core.Member {
		return core.Member{UserID: m.UserID, DisplayName: m.Name}
	}), nil
}

// AddMember records userID as a member of roomID.
func (h *History) AddMember(ctx context.Context, roomID, userID string) error {
	return h.store.AddMember(ctx, roomID, userID)
}
