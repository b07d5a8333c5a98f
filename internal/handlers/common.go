package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/valleteclab/portaldcp-sub004/internal/engine"
)

type ErrorResponse struct {
	Error string `json:"error" example:"something went wrong"`
}

type MessageResponse struct {
	Message string `json:"message" example:"operation successful"`
}

func participantFrom(c *gin.Context) *engine.ParticipantInfo {
	v, ok := c.Get("participant")
	if !ok {
		return nil
	}
	p, ok := v.(*engine.ParticipantInfo)
	if !ok {
		return nil
	}
	return p
}
