package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/valleteclab/portaldcp-sub004/internal/services"
)

// AuthHandler mints room tokens. In production the platform's auth module
// issues these after its own login flow; this endpoint stands in for it so
// the room can be exercised directly.
type AuthHandler struct {
	tokens *services.TokenService
}

func NewAuthHandler(tokens *services.TokenService) *AuthHandler {
	return &AuthHandler{tokens: tokens}
}

type RoomTokenRequest struct {
	ParticipantID string `json:"participant_id" binding:"required"`
	DisplayName   string `json:"display_name" binding:"required,min=1,max=200"`
	Role          string `json:"role" binding:"required,oneof=AUCTIONEER SUPPLIER"`
}

// IssueRoomToken godoc
// @Summary      Issue a room token for a participant
// @Tags         auth
// @Accept       json
// @Param        request body RoomTokenRequest true "Participant identity"
// @Router       /api/v1/auth/room-token [post]
func (h *AuthHandler) IssueRoomToken(c *gin.Context) {
	var req RoomTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	token, err := h.tokens.IssueRoomToken(req.ParticipantID, req.DisplayName, req.Role)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token})
}
