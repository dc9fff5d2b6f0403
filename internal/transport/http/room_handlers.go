package http

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/samber/lo"

	"github.com/vovakirdan/translachat-server/internal/store"
)

const historyLimit = 100

// Presence reports who is online in a room right now.
type Presence interface {
	OnlineUserIDs(roomID string) []string
}

// RoomHandlers provides HTTP handlers for room management endpoints.
type RoomHandlers struct {
	store    store.Store
	presence Presence
	log      *zerolog.Logger
}

// NewRoomHandlers creates a new room handlers instance.
func NewRoomHandlers(st store.Store, presence Presence, logger *zerolog.Logger) *RoomHandlers {
	return &RoomHandlers{
		store:    st,
		presence: presence,
		log:      logger,
	}
}

// CreateRoomRequest represents the create room request body.
type CreateRoomRequest struct {
	Name string `json:"name" binding:"required,max=50"`
}

// RoomResponse represents a room in API responses.
type RoomResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	CreatorID   string    `json:"creatorId"`
	MemberCount int       `json:"memberCount"`
	CreatedAt   time.Time `json:"createdAt"`
}

// MemberResponse is a durable room member.
type MemberResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// HistoryMessage is a stored message in room details.
type HistoryMessage struct {
	ID               string    `json:"id"`
	SenderID         string    `json:"senderId"`
	SenderName       string    `json:"senderName"`
	SenderLanguage   string    `json:"senderLanguage"`
	OriginalText     string    `json:"originalText"`
	TranslatedText   string    `json:"translatedText"`
	DetectedLanguage string    `json:"detectedLanguage,omitempty"`
	Timestamp        time.Time `json:"timestamp"`
}

// RoomDetails is a room with its members and recent history.
type RoomDetails struct {
	RoomResponse
	Members []MemberResponse `json:"members"`
	History []HistoryMessage `json:"history"`
}

// RoomListResponse wraps a list of rooms.
type RoomListResponse struct {
	Success bool           `json:"success"`
	Rooms   []RoomResponse `json:"rooms"`
}

// RoomActionResponse wraps a single room after a change.
type RoomActionResponse struct {
	Success bool         `json:"success"`
	Message string       `json:"message"`
	Room    RoomResponse `json:"room"`
}

// RoomDetailsResponse wraps room details.
type RoomDetailsResponse struct {
	Success bool        `json:"success"`
	Room    RoomDetails `json:"room"`
}

// OnlineResponse lists users connected to a room.
type OnlineResponse struct {
	Success       bool     `json:"success"`
	RoomID        string   `json:"roomId"`
	OnlineUserIDs []string `json:"onlineUserIds"`
}

func toRoomResponse(r *store.Room) RoomResponse {
	return RoomResponse{
		ID:          r.ID,
		Name:        r.Name,
		CreatorID:   r.CreatorID,
		MemberCount: r.MemberCount,
		CreatedAt:   r.CreatedAt,
	}
}

// ListRooms handles listing rooms.
// GET /api/rooms?filter=joined|created
func (h *RoomHandlers) ListRooms(c *gin.Context) {
	uid, ok := currentUserID(c, h.log)
	if !ok {
		return
	}

	filter := store.RoomFilter(c.Query("filter"))
	if !lo.Contains([]store.RoomFilter{store.RoomFilterAll, store.RoomFilterJoined, store.RoomFilterCreated}, filter) {
		c.JSON(http.StatusBadRequest, errorBody("filter must be joined or created"))
		return
	}

	rooms, err := h.store.ListRooms(c.Request.Context(), uid, filter)
	if err != nil {
		h.log.Error().Err(err).Str("user_id", uid).Msg("failed to list rooms")
		c.JSON(http.StatusInternalServerError, errorBody("internal server error"))
		return
	}

	h.log.Debug().Str("user_id", uid).Int("room_count", len(rooms)).Msg("rooms listed successfully")
	c.JSON(http.StatusOK, RoomListResponse{
		Success: true,
		Rooms:   lo.Map(rooms, func(r *store.Room, _ int) RoomResponse { return toRoomResponse(r) }),
	})
}

// CreateRoom handles room creation. The creator becomes the first member.
// POST /api/rooms/create
func (h *RoomHandlers) CreateRoom(c *gin.Context) {
	uid, ok := currentUserID(c, h.log)
	if !ok {
		return
	}

	var req CreateRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Debug().Err(err).Msg("invalid create room request")
		c.JSON(http.StatusBadRequest, errorBody("Room name is required (max 50 characters)."))
		return
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		c.JSON(http.StatusBadRequest, errorBody("Room name is required (max 50 characters)."))
		return
	}

	room, err := h.store.CreateRoom(c.Request.Context(), name, uid)
	if err != nil {
		if errors.Is(err, store.ErrConflict) {
			c.JSON(http.StatusConflict, errorBody("Room name already taken."))
			return
		}
		h.log.Error().Err(err).Str("room_name", name).Msg("failed to create room")
		c.JSON(http.StatusInternalServerError, errorBody("internal server error"))
		return
	}

	h.log.Info().Str("room_name", room.Name).Str("room_id", room.ID).Str("creator_id", uid).Msg("room created successfully")
	c.JSON(http.StatusCreated, RoomActionResponse{
		Success: true,
		Message: "Room created successfully.",
		Room:    toRoomResponse(room),
	})
}

// JoinRoom adds the caller to the durable member list.
// POST /api/rooms/:id/join
func (h *RoomHandlers) JoinRoom(c *gin.Context) {
	h.changeMembership(c, true)
}

// LeaveRoom removes the caller from the durable member list.
// POST /api/rooms/:id/leave
func (h *RoomHandlers) LeaveRoom(c *gin.Context) {
	h.changeMembership(c, false)
}

func (h *RoomHandlers) changeMembership(c *gin.Context, join bool) {
	uid, ok := currentUserID(c, h.log)
	if !ok {
		return
	}
	roomID := c.Param("id")
	ctx := c.Request.Context()

	if _, ok := h.findRoom(c, roomID); !ok {
		return
	}

	var (
		err     error
		message string
	)
	if join {
		err = h.store.AddMember(ctx, roomID, uid)
		message = "Joined room successfully."
	} else {
		err = h.store.RemoveMember(ctx, roomID, uid)
		message = "Left room successfully."
	}
	if err != nil {
		h.log.Error().Err(err).Str("room_id", roomID).Str("user_id", uid).Bool("join", join).Msg("failed to change membership")
		c.JSON(http.StatusInternalServerError, errorBody("internal server error"))
		return
	}

	room, ok := h.findRoom(c, roomID)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, RoomActionResponse{Success: true, Message: message, Room: toRoomResponse(room)})
}

// GetRoom returns members and recent history. Only members may read it.
// GET /api/rooms/:id
func (h *RoomHandlers) GetRoom(c *gin.Context) {
	uid, ok := currentUserID(c, h.log)
	if !ok {
		return
	}
	roomID := c.Param("id")
	ctx := c.Request.Context()

	room, ok := h.findRoom(c, roomID)
	if !ok {
		return
	}

	member, err := h.store.IsMember(ctx, roomID, uid)
	if err != nil {
		h.log.Error().Err(err).Str("room_id", roomID).Msg("failed to check membership")
		c.JSON(http.StatusInternalServerError, errorBody("internal server error"))
		return
	}
	if !member {
		c.JSON(http.StatusForbidden, errorBody("Access denied. Not a member of this room."))
		return
	}

	members, err := h.store.ListMembers(ctx, roomID)
	if err != nil {
		h.log.Error().Err(err).Str("room_id", roomID).Msg("failed to list members")
		c.JSON(http.StatusInternalServerError, errorBody("internal server error"))
		return
	}
	history, err := h.store.ListMessages(ctx, roomID, historyLimit)
	if err != nil {
		h.log.Error().Err(err).Str("room_id", roomID).Msg("failed to list messages")
		c.JSON(http.StatusInternalServerError, errorBody("internal server error"))
		return
	}

	c.JSON(http.StatusOK, RoomDetailsResponse{
		Success: true,
		Room: RoomDetails{
			RoomResponse: toRoomResponse(room),
			Members: lo.Map(members, func(m store.Member, _ int) MemberResponse {
				return MemberResponse{ID: m.UserID, Name: m.Name}
			}),
			History: lo.Map(history, func(m *store.Message, _ int) HistoryMessage {
				return HistoryMessage{
					ID:               m.ID,
					SenderID:         m.SenderID,
					SenderName:       m.SenderName,
					SenderLanguage:   m.SenderLanguage,
					OriginalText:     m.OriginalText,
					TranslatedText:   m.TranslatedText,
					DetectedLanguage: m.DetectedLanguage,
					Timestamp:        m.CreatedAt,
				}
			}),
		},
	})
}

// Online lists the users connected to a room right now.
// GET /api/rooms/:id/online
func (h *RoomHandlers) Online(c *gin.Context) {
	roomID := c.Param("id")
	online := h.presence.OnlineUserIDs(roomID)
	if online == nil {
		online = []string{}
	}
	c.JSON(http.StatusOK, OnlineResponse{Success: true, RoomID: roomID, OnlineUserIDs: online})
}

func (h *RoomHandlers) findRoom(c *gin.Context, roomID string) (*store.Room, bool) {
	room, err := h.store.FindRoom(c.Request.Context(), roomID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, errorBody("Room not found."))
			return nil, false
		}
		h.log.Error().Err(err).Str("room_id", roomID).Msg("failed to load room")
		c.JSON(http.StatusInternalServerError, errorBody("internal server error"))
		return nil, false
	}
	return room, true
}
