package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/valleteclab/portaldcp-sub004/internal/services"
)

type TenderHandler struct {
	tenders *services.TenderService
}

func NewTenderHandler(tenders *services.TenderService) *TenderHandler {
	return &TenderHandler{tenders: tenders}
}

// ListTenders godoc
// @Summary      List tenders known to the dispute engine
// @Tags         tenders
// @Router       /api/v1/tenders [get]
func (h *TenderHandler) ListTenders(c *gin.Context) {
	tenders, err := h.tenders.ListTenders()
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, tenders)
}

// GetTender godoc
// @Summary      Tender master data with items
// @Tags         tenders
// @Param        id path string true "Tender ID"
// @Router       /api/v1/tenders/{id} [get]
func (h *TenderHandler) GetTender(c *gin.Context) {
	tender, err := h.tenders.TenderForDispute(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, tender)
}
