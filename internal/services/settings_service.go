package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"deckshare-backend/internal/config"
	"deckshare-backend/internal/models"
	"deckshare-backend/internal/storage"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const logoPath = "/api/settings/logo"

type SettingsService struct {
	db    *gorm.DB
	store storage.Store
	cfg   *config.Config
}

func NewSettingsService(db *gorm.DB, store storage.Store, cfg *config.Config) *SettingsService {
	return &SettingsService{db: db, store: store, cfg: cfg}
}

// site loads the singleton settings row, creating it on first use.
func (s *SettingsService) site(ctx context.Context) (*models.SiteSettings, error) {
	var settings models.SiteSettings
	err := s.db.WithContext(ctx).First(&settings).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		settings = models.SiteSettings{FooterLinks: "[]"}
		if err := s.db.WithContext(ctx).Create(&settings).Error; err != nil {
			return nil, err
		}
		return &settings, nil
	}
	if err != nil {
		return nil, err
	}
	return &settings, nil
}

func (s *SettingsService) cta(ctx context.Context) (*models.GlobalCTA, error) {
	var cta models.GlobalCTA
	err := s.db.WithContext(ctx).First(&cta).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		if err := s.db.WithContext(ctx).Create(&cta).Error; err != nil {
			return nil, err
		}
		return &cta, nil
	}
	if err != nil {
		return nil, err
	}
	return &cta, nil
}

// PublicSite is the branding payload served to anonymous visitors.
func (s *SettingsService) PublicSite(ctx context.Context) (*models.PublicSite, error) {
	settings, err := s.site(ctx)
	if err != nil {
		return nil, err
	}
	return toPublicSite(settings), nil
}

func toPublicSite(settings *models.SiteSettings) *models.PublicSite {
	links := []models.FooterLink{}
	if settings.FooterLinks != "" {
		if err := json.Unmarshal([]byte(settings.FooterLinks), &links); err != nil {
			logrus.WithError(err).Warn("stored footer links are not valid JSON")
			links = []models.FooterLink{}
		}
	}

	public := &models.PublicSite{
		WebsiteTitle:    settings.WebsiteTitle,
		FooterCopyright: settings.FooterCopyright,
		FooterLinks:     links,
		AnalyticsKey:    settings.AnalyticsKey,
		AnalyticsHost:   settings.AnalyticsHost,
	}
	if settings.HasLogo() {
		url := fmt.Sprintf("%s?v=%d", logoPath, settings.UpdatedAt.Unix())
		public.LogoURL = &url
	}
	return public
}

func (s *SettingsService) UpdateSite(ctx context.Context, req *models.SiteSettingsRequest) (*models.PublicSite, error) {
	settings, err := s.site(ctx)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	setOptional(updates, "website_title", req.WebsiteTitle)
	setOptional(updates, "footer_copyright", req.FooterCopyright)
	setOptional(updates, "analytics_key", req.AnalyticsKey)
	setOptional(updates, "analytics_host", req.AnalyticsHost)
	if req.FooterLinks != nil {
		raw, err := json.Marshal(req.FooterLinks)
		if err != nil {
			return nil, err
		}
		updates["footer_links"] = string(raw)
	}

	if len(updates) > 0 {
		if err := s.db.WithContext(ctx).Model(settings).Updates(updates).Error; err != nil {
			return nil, err
		}
	}
	return s.PublicSite(ctx)
}

func (s *SettingsService) CTA(ctx context.Context) (*models.CTAResponse, error) {
	cta, err := s.cta(ctx)
	if err != nil {
		return nil, err
	}
	return toCTAResponse(cta), nil
}

// PublicCTA returns the call to action shown on share landings, or nil when
// neither a title nor a link is configured.
func (s *SettingsService) PublicCTA(ctx context.Context) (*models.CTAResponse, error) {
	cta, err := s.cta(ctx)
	if err != nil {
		return nil, err
	}
	if isBlank(cta.Title) && isBlank(cta.Link) {
		return nil, nil
	}
	return toCTAResponse(cta), nil
}

func (s *SettingsService) UpdateCTA(ctx context.Context, req *models.CTARequest) (*models.CTAResponse, error) {
	cta, err := s.cta(ctx)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	setOptional(updates, "title", req.Title)
	setOptional(updates, "description", req.Description)
	setOptional(updates, "link", req.Link)
	setOptional(updates, "link_label", req.LinkLabel)
	if len(updates) > 0 {
		if err := s.db.WithContext(ctx).Model(cta).Updates(updates).Error; err != nil {
			return nil, err
		}
	}
	return s.CTA(ctx)
}

// Logo opens the uploaded logo. ErrNotFound when none is set.
func (s *SettingsService) Logo(ctx context.Context) (string, io.ReadCloser, error) {
	settings, err := s.site(ctx)
	if err != nil {
		return "", nil, err
	}
	if !settings.HasLogo() {
		return "", nil, ErrNotFound
	}

	rc, err := s.store.Open(ctx, *settings.LogoStorageKey)
	if errors.Is(err, storage.ErrNotFound) {
		return "", nil, ErrNotFound
	}
	if err != nil {
		return "", nil, err
	}
	return *settings.LogoMimeType, rc, nil
}

func (s *SettingsService) SetLogo(ctx context.Context, declaredType string, r io.ReadSeeker, size int64) (*models.PublicSite, error) {
	mimeType, err := DetectMimeType(declaredType, r)
	if err != nil {
		return nil, err
	}
	if !s.cfg.IsAllowedLogoType(mimeType) {
		return nil, fmt.Errorf("%w: %s", ErrMimeNotAllowed, mimeType)
	}

	settings, err := s.site(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.store.Put(ctx, storage.LogoKey, r, size, mimeType); err != nil {
		return nil, fmt.Errorf("failed to store logo: %w", err)
	}

	err = s.db.WithContext(ctx).Model(settings).Updates(map[string]interface{}{
		"logo_storage_key": storage.LogoKey,
		"logo_mime_type":   mimeType,
	}).Error
	if err != nil {
		return nil, err
	}
	return s.PublicSite(ctx)
}

func (s *SettingsService) DeleteLogo(ctx context.Context) error {
	settings, err := s.site(ctx)
	if err != nil {
		return err
	}
	if settings.LogoStorageKey != nil {
		if err := s.store.Delete(ctx, *settings.LogoStorageKey); err != nil {
			logrus.WithError(err).Warn("failed to delete logo blob")
		}
	}
	return s.db.WithContext(ctx).Model(settings).Updates(map[string]interface{}{
		"logo_storage_key": nil,
		"logo_mime_type":   nil,
	}).Error
}

func toCTAResponse(cta *models.GlobalCTA) *models.CTAResponse {
	return &models.CTAResponse{
		Title:       cta.Title,
		Description: cta.Description,
		Link:        cta.Link,
		LinkLabel:   cta.LinkLabel,
	}
}

// setOptional records a column update when v was sent. Blank strings clear
// the column.
func setOptional(updates map[string]interface{}, column string, v *string) {
	if v == nil {
		return
	}
	if strings.TrimSpace(*v) == "" {
		updates[column] = nil
		return
	}
	updates[column] = strings.TrimSpace(*v)
}

func isBlank(v *string) bool {
	return v == nil || strings.TrimSpace(*v) == ""
}
