package handlers

import (
	"net/http"

	"deckshare-backend/internal/models"
	"deckshare-backend/internal/services"
	"deckshare-backend/internal/utils"

	"github.com/gin-gonic/gin"
)

const maxLogoSize = 5 << 20

type SettingsHandler struct {
	settingsService *services.SettingsService
}

func NewSettingsHandler(settingsService *services.SettingsService) *SettingsHandler {
	return &SettingsHandler{settingsService: settingsService}
}

func (h *SettingsHandler) GetSite(c *gin.Context) {
	site, err := h.settingsService.PublicSite(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, site)
}

func (h *SettingsHandler) UpdateSite(c *gin.Context) {
	var req models.SiteSettingsRequest
	if !bindJSON(c, &req) {
		return
	}

	site, err := h.settingsService.UpdateSite(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessWithMessage(c, "settings saved", site)
}

func (h *SettingsHandler) GetCTA(c *gin.Context) {
	cta, err := h.settingsService.CTA(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, cta)
}

func (h *SettingsHandler) UpdateCTA(c *gin.Context) {
	var req models.CTARequest
	if !bindJSON(c, &req) {
		return
	}

	cta, err := h.settingsService.UpdateCTA(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessWithMessage(c, "call to action saved", cta)
}

func (h *SettingsHandler) GetLogo(c *gin.Context) {
	mimeType, rc, err := h.settingsService.Logo(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	defer rc.Close()

	c.Header("Cache-Control", "public, max-age=86400")
	c.DataFromReader(http.StatusOK, -1, mimeType, rc, nil)
}

func (h *SettingsHandler) UploadLogo(c *gin.Context) {
	part, header, err := c.Request.FormFile("logo")
	if err != nil {
		utils.Error(c, http.StatusBadRequest, "logo file is required")
		return
	}
	defer part.Close()

	if header.Size > maxLogoSize {
		utils.Error(c, http.StatusRequestEntityTooLarge, "logo is too large")
		return
	}

	site, err := h.settingsService.SetLogo(c.Request.Context(), header.Header.Get("Content-Type"), part, header.Size)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessWithMessage(c, "logo uploaded", site)
}

func (h *SettingsHandler) DeleteLogo(c *gin.Context) {
	if err := h.settingsService.DeleteLogo(c.Request.Context()); err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessWithMessage(c, "logo removed", nil)
}
