package handlers

import (
	"deckshare-backend/internal/services"
	"deckshare-backend/internal/utils"

	"github.com/gin-gonic/gin"
)

// ShareHandler serves the owner's view of shares and their analytics.
type ShareHandler struct {
	shareService *services.ShareService
}

func NewShareHandler(shareService *services.ShareService) *ShareHandler {
	return &ShareHandler{shareService: shareService}
}

func (h *ShareHandler) GetShares(c *gin.Context) {
	shares, err := h.shareService.List(c.Request.Context(), currentUserID(c), optionalQuery(c, "deckId"))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, shares)
}

func (h *ShareHandler) GetShare(c *gin.Context) {
	detail, err := h.shareService.Detail(c.Request.Context(), currentUserID(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, detail)
}

func (h *ShareHandler) DeleteShare(c *gin.Context) {
	if err := h.shareService.Deactivate(c.Request.Context(), currentUserID(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessWithMessage(c, "share deactivated", nil)
}

func (h *ShareHandler) GetVisitorTimeline(c *gin.Context) {
	timeline, err := h.shareService.VisitorTimeline(c.Request.Context(), currentUserID(c), c.Param("id"), c.Param("visitorId"))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, timeline)
}
