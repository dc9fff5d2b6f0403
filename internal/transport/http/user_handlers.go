package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/translachat-server/internal/auth"
	"github.com/vovakirdan/translachat-server/internal/store"
)

// UserHandlers provides HTTP handlers for the current user's profile.
type UserHandlers struct {
	authService *auth.Service
	log         *zerolog.Logger
}

// NewUserHandlers creates a new user handlers instance.
func NewUserHandlers(authService *auth.Service, logger *zerolog.Logger) *UserHandlers {
	return &UserHandlers{
		authService: authService,
		log:         logger,
	}
}

// UpdateMeRequest changes profile settings.
type UpdateMeRequest struct {
	PreferredLanguage string `json:"preferredLanguage" binding:"required"`
}

// ProfileResponse wraps the current user.
type ProfileResponse struct {
	Success bool         `json:"success"`
	User    UserResponse `json:"user"`
}

// Me returns the authenticated user.
// GET /api/me
func (h *UserHandlers) Me(c *gin.Context) {
	uid, ok := currentUserID(c, h.log)
	if !ok {
		return
	}

	user, err := h.authService.Profile(c.Request.Context(), uid)
	if err != nil {
		h.writeLookupError(c, uid, err)
		return
	}
	c.JSON(http.StatusOK, ProfileResponse{Success: true, User: toUserResponse(user)})
}

// UpdateMe changes the preferred language of the authenticated user.
// PATCH /api/me
func (h *UserHandlers) UpdateMe(c *gin.Context) {
	uid, ok := currentUserID(c, h.log)
	if !ok {
		return
	}

	var req UpdateMeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorBody("preferredLanguage is required"))
		return
	}

	user, err := h.authService.SetLanguage(c.Request.Context(), uid, req.PreferredLanguage)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidLanguage) {
			c.JSON(http.StatusBadRequest, errorBody(err.Error()))
			return
		}
		h.writeLookupError(c, uid, err)
		return
	}

	h.log.Info().Str("user_id", uid).Str("lang", user.PreferredLanguage).Msg("preferred language updated")
	c.JSON(http.StatusOK, ProfileResponse{Success: true, User: toUserResponse(user)})
}

func (h *UserHandlers) writeLookupError(c *gin.Context, uid string, err error) {
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, errorBody("User not found."))
		return
	}
	h.log.Error().Err(err).Str("user_id", uid).Msg("failed to load user")
	c.JSON(http.StatusInternalServerError, errorBody("internal server error"))
}
