package handlers

import (
	"errors"
	"strings"

	"deckshare-backend/internal/metrics"
	"deckshare-backend/internal/models"
	"deckshare-backend/internal/services"
	"deckshare-backend/internal/utils"

	"github.com/gin-gonic/gin"
)

type TrackHandler struct {
	trackingService *services.TrackingService
	metrics         *metrics.Metrics
}

func NewTrackHandler(trackingService *services.TrackingService, m *metrics.Metrics) *TrackHandler {
	return &TrackHandler{trackingService: trackingService, metrics: m}
}

func (h *TrackHandler) Track(c *gin.Context) {
	var req models.TrackRequest
	if !bindJSON(c, &req) {
		return
	}

	action, err := h.trackingService.Track(c.Request.Context(), &req, clientInfo(c))
	if err != nil {
		if errors.Is(err, services.ErrSingleUseExhausted) {
			h.metrics.ShareAccess(accessOutcome(err))
		}
		respondError(c, err)
		return
	}

	h.metrics.Tracked(req.Action)
	utils.Success(c, gin.H{"id": action.ID, "visitorId": action.VisitorID})
}

// clientInfo reads what proxies in front of the service tell us about the
// visitor. Country and region come from Cloudflare headers when present.
func clientInfo(c *gin.Context) models.ClientInfo {
	ip := ""
	if forwarded := c.GetHeader("X-Forwarded-For"); forwarded != "" {
		first, _, _ := strings.Cut(forwarded, ",")
		ip = strings.TrimSpace(first)
	}
	if ip == "" {
		ip = strings.TrimSpace(c.GetHeader("X-Real-IP"))
	}
	if ip == "" {
		ip = c.ClientIP()
	}

	return models.ClientInfo{
		IP:        ip,
		UserAgent: c.GetHeader("User-Agent"),
		Referrer:  c.GetHeader("Referer"),
		Country:   c.GetHeader("CF-IPCountry"),
		Region:    c.GetHeader("CF-Region"),
	}
}
