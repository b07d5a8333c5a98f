package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/valleteclab/portaldcp-sub004/internal/engine"
	"github.com/valleteclab/portaldcp-sub004/internal/services"
)

type SessionHandler struct {
	store *engine.Store
	audit *services.AuditService
}

func NewSessionHandler(store *engine.Store, audit *services.AuditService) *SessionHandler {
	return &SessionHandler{store: store, audit: audit}
}

// GetSession godoc
// @Summary      Current state of a live dispute session
// @Description  Returns the same snapshot a joining participant receives, without subscribing.
// @Tags         dispute
// @Param        tenderId path string true "Tender ID"
// @Router       /api/v1/sessions/{tenderId} [get]
func (h *SessionHandler) GetSession(c *gin.Context) {
	sess, err := h.store.Get(c.Param("tenderId"))
	if err != nil {
		c.JSON(statusForKind(engine.KindOf(err)), ErrorResponse{Error: err.Error()})
		return
	}

	snap, err := sess.Snapshot()
	if err != nil {
		c.JSON(statusForKind(engine.KindOf(err)), ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, snap)
}

// GetBidHistory godoc
// @Summary      Durable bid record for a tender
// @Description  Full audit history including cancelled bids, newest first.
// @Tags         dispute
// @Param        tenderId path string true "Tender ID"
// @Router       /api/v1/sessions/{tenderId}/bids [get]
func (h *SessionHandler) GetBidHistory(c *gin.Context) {
	bids, err := h.audit.BidHistory(c.Param("tenderId"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, bids)
}

// GetEvents godoc
// @Summary      Phase-transition journal for a tender
// @Tags         dispute
// @Param        tenderId path string true "Tender ID"
// @Router       /api/v1/sessions/{tenderId}/events [get]
func (h *SessionHandler) GetEvents(c *gin.Context) {
	events, err := h.audit.EventsForTender(c.Param("tenderId"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, events)
}

// RemoveSession godoc
// @Summary      Administratively tear down a live session
// @Description  Auctioneer only. The room is rebuilt from the durable log on the next join.
// @Tags         dispute
// @Param        tenderId path string true "Tender ID"
// @Router       /api/v1/sessions/{tenderId} [delete]
func (h *SessionHandler) RemoveSession(c *gin.Context) {
	p := participantFrom(c)
	if p == nil || p.Role != engine.RoleAuctioneer {
		c.JSON(http.StatusForbidden, ErrorResponse{Error: "only the auctioneer may remove a session"})
		return
	}

	if _, err := h.store.Get(c.Param("tenderId")); err != nil {
		c.JSON(statusForKind(engine.KindOf(err)), ErrorResponse{Error: err.Error()})
		return
	}
	h.store.Remove(c.Param("tenderId"))
	c.JSON(http.StatusOK, MessageResponse{Message: "session removed"})
}
