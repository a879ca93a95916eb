package models

import "time"

type SiteSettings struct {
	Base
	WebsiteTitle    *string   `json:"websiteTitle" gorm:"size:255"`
	FooterCopyright *string   `json:"footerCopyright" gorm:"size:512"`
	FooterLinks     string    `json:"-" gorm:"type:text"`
	AnalyticsKey    *string   `json:"analyticsKey" gorm:"size:255"`
	AnalyticsHost   *string   `json:"analyticsHost" gorm:"size:255"`
	LogoStorageKey  *string   `json:"-" gorm:"size:255"`
	LogoMimeType    *string   `json:"-" gorm:"size:100"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

func (SiteSettings) TableName() string {
	return "site_settings"
}

func (s *SiteSettings) HasLogo() bool {
	return s.LogoStorageKey != nil && *s.LogoStorageKey != "" && s.LogoMimeType != nil && *s.LogoMimeType != ""
}

type GlobalCTA struct {
	Base
	Title       *string   `json:"title" gorm:"size:255"`
	Description *string   `json:"description" gorm:"type:text"`
	Link        *string   `json:"link" gorm:"size:2048"`
	LinkLabel   *string   `json:"linkLabel" gorm:"size:255"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (GlobalCTA) TableName() string {
	return "global_cta"
}

type FooterLink struct {
	Label string `json:"label" validate:"required"`
	URL   string `json:"url" validate:"required"`
}

type SiteSettingsRequest struct {
	WebsiteTitle    *string      `json:"websiteTitle"`
	FooterCopyright *string      `json:"footerCopyright"`
	FooterLinks     []FooterLink `json:"footerLinks" validate:"omitempty,dive"`
	AnalyticsKey    *string      `json:"analyticsKey"`
	AnalyticsHost   *string      `json:"analyticsHost"`
}

// PublicSite is the site settings view served without authentication.
type PublicSite struct {
	WebsiteTitle    *string      `json:"websiteTitle"`
	FooterCopyright *string      `json:"footerCopyright"`
	FooterLinks     []FooterLink `json:"footerLinks"`
	AnalyticsKey    *string      `json:"analyticsKey"`
	AnalyticsHost   *string      `json:"analyticsHost"`
	LogoURL         *string      `json:"logoUrl"`
}

type CTARequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Link        *string `json:"link"`
	LinkLabel   *string `json:"linkLabel"`
}

type CTAResponse struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Link        *string `json:"link"`
	LinkLabel   *string `json:"linkLabel"`
}
