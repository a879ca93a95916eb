package handlers

import (
	"errors"
	"net/http"
	"time"

	"deckshare-backend/internal/config"
	"deckshare-backend/internal/metrics"
	"deckshare-backend/internal/models"
	"deckshare-backend/internal/services"
	"deckshare-backend/internal/utils"

	"github.com/gin-gonic/gin"
)

// PublicShareHandler serves share links to anonymous visitors. Progress
// through admission is carried in signed per-slug cookies.
type PublicShareHandler struct {
	accessService   *services.AccessService
	fileService     *services.FileService
	settingsService *services.SettingsService
	proofs          *utils.ProofSigner
	metrics         *metrics.Metrics
	config          *config.Config
}

func NewPublicShareHandler(
	accessService *services.AccessService,
	fileService *services.FileService,
	settingsService *services.SettingsService,
	proofs *utils.ProofSigner,
	m *metrics.Metrics,
	cfg *config.Config,
) *PublicShareHandler {
	return &PublicShareHandler{
		accessService:   accessService,
		fileService:     fileService,
		settingsService: settingsService,
		proofs:          proofs,
		metrics:         m,
		config:          cfg,
	}
}

// GetAccess returns the landing payload, or a password prompt when the share
// is protected and the visitor has not proven the password yet.
func (h *PublicShareHandler) GetAccess(c *gin.Context) {
	ctx := c.Request.Context()
	slug := c.Param("slug")

	share, err := h.accessService.Landing(ctx, slug, h.hasProof(c, utils.ProofPassword, slug))
	h.metrics.ShareAccess(accessOutcome(err))
	if errors.Is(err, services.ErrPasswordRequired) {
		utils.Success(c, models.PasswordPrompt{NeedsPassword: true, Title: share.Title})
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}

	cta, err := h.settingsService.PublicCTA(ctx)
	if err != nil {
		respondError(c, err)
		return
	}
	site, err := h.settingsService.PublicSite(ctx)
	if err != nil {
		respondError(c, err)
		return
	}

	if err := h.setProof(c, utils.ProofVisited, slug, h.config.VisitedProofTTL()); err != nil {
		utils.InternalError(c)
		return
	}

	landing := models.ShareLanding{
		Share: models.ShareLandingInfo{
			ID:                  share.ID,
			Title:               share.Title,
			DescriptionRichText: share.DescriptionRichText,
			AudienceName:        share.AudienceName,
			TargetLink:          share.TargetLink,
			ContactEmail:        share.ContactEmail,
			ExpiresAt:           share.ExpiresAt,
		},
		CTA:          cta,
		SiteSettings: *site,
	}
	if share.Deck != nil {
		landing.Deck = models.ShareLandingDeck{
			ID:    share.Deck.ID,
			Name:  share.Deck.Name,
			Items: share.Deck.Items,
		}
	}
	utils.Success(c, landing)
}

// VerifyPassword grants both proofs on success, so the visitor can move
// straight on to content.
func (h *PublicShareHandler) VerifyPassword(c *gin.Context) {
	var req models.SharePasswordRequest
	if !bindJSON(c, &req) {
		return
	}
	slug := c.Param("slug")

	_, err := h.accessService.VerifyPassword(c.Request.Context(), slug, req.Password)
	h.metrics.ShareAccess(accessOutcome(err))
	if err != nil {
		respondError(c, err)
		return
	}

	if err := h.setProof(c, utils.ProofPassword, slug, h.config.AuthProofTTL()); err != nil {
		utils.InternalError(c)
		return
	}
	if err := h.setProof(c, utils.ProofVisited, slug, h.config.VisitedProofTTL()); err != nil {
		utils.InternalError(c)
		return
	}
	utils.SuccessWithMessage(c, "access granted", gin.H{"verified": true})
}

func (h *PublicShareHandler) GetDirectory(c *gin.Context) {
	access, ok := h.authorize(c)
	if !ok {
		return
	}

	listing, err := h.accessService.ListDirectory(c.Request.Context(), access, c.Param("directoryId"))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, listing)
}

func (h *PublicShareHandler) GetFile(c *gin.Context) {
	access, ok := h.authorize(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	file, err := h.accessService.SharedFile(ctx, access, c.Param("fileId"))
	if err != nil {
		respondError(c, err)
		return
	}
	rc, err := h.fileService.Content(ctx, file)
	if err != nil {
		respondError(c, err)
		return
	}
	streamBlob(c, rc, file.Name, file.MimeType, file.Size, isTruthy(c.Query("download")))
}

func (h *PublicShareHandler) authorize(c *gin.Context) (*services.ShareAccess, bool) {
	slug := c.Param("slug")
	proofs := services.Proofs{
		PasswordVerified: h.hasProof(c, utils.ProofPassword, slug),
		LandingViewed:    h.hasProof(c, utils.ProofVisited, slug),
	}

	access, err := h.accessService.Authorize(c.Request.Context(), slug, proofs)
	h.metrics.ShareAccess(accessOutcome(err))
	if err != nil {
		respondError(c, err)
		return nil, false
	}
	return access, true
}

func (h *PublicShareHandler) hasProof(c *gin.Context, kind utils.ProofKind, slug string) bool {
	token, err := c.Cookie(utils.ProofCookieName(kind, slug))
	if err != nil {
		return false
	}
	return h.proofs.Verify(kind, slug, token)
}

func (h *PublicShareHandler) setProof(c *gin.Context, kind utils.ProofKind, slug string, ttl time.Duration) error {
	token, err := h.proofs.Issue(kind, slug, ttl)
	if err != nil {
		return err
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(utils.ProofCookieName(kind, slug), token, int(ttl.Seconds()), "/", "", h.config.Share.SecureCookies, true)
	return nil
}
