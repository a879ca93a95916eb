package models

import "time"

type Share struct {
	Base
	DeckID              string    `json:"deckId" gorm:"size:36;not null;index"`
	Slug                string    `json:"slug" gorm:"size:64;uniqueIndex;not null"`
	Title               string    `json:"title" gorm:"size:255;not null"`
	DescriptionRichText *string   `json:"descriptionRichText" gorm:"type:text"`
	AudienceName        string    `json:"audienceName" gorm:"size:255;not null"`
	ExpiresAt           time.Time `json:"expiresAt" gorm:"not null"`
	TargetLink          *string   `json:"targetLink" gorm:"size:2048"`
	ContactEmail        *string   `json:"contactEmail" gorm:"size:255"`
	PasswordHash        *string   `json:"-" gorm:"size:255"`
	SingleUse           bool      `json:"singleUse" gorm:"default:false"`
	IsActive            bool      `json:"isActive" gorm:"default:true;index"`
	CreatedByID         string    `json:"createdById" gorm:"size:36;not null;index"`
	CreatedAt           time.Time `json:"createdAt" gorm:"index"`
	UpdatedAt           time.Time `json:"updatedAt"`

	Deck *Deck `json:"deck,omitempty" gorm:"foreignKey:DeckID"`
}

func (s *Share) HasPassword() bool {
	return s.PasswordHash != nil && *s.PasswordHash != ""
}

func (s *Share) ExpiredAt(now time.Time) bool {
	return now.After(s.ExpiresAt)
}

type ShareCreateRequest struct {
	Title               string    `json:"title" validate:"required,notblank,max=255"`
	DescriptionRichText *string   `json:"descriptionRichText"`
	AudienceName        string    `json:"audienceName" validate:"required,notblank,max=255"`
	ExpiresAt           time.Time `json:"expiresAt" validate:"required"`
	TargetLink          *string   `json:"targetLink" validate:"omitempty,max=2048"`
	ContactEmail        *string   `json:"contactEmail" validate:"omitempty,email"`
	Password            *string   `json:"password"`
	SingleUse           bool      `json:"singleUse"`
}

type SharePasswordRequest struct {
	Password string `json:"password" validate:"required"`
}

// ShareSummary is a share row with visitor aggregates.
type ShareSummary struct {
	Share
	VisitorCount  int64      `json:"visitorCount"`
	FirstOpenedAt *time.Time `json:"firstOpenedAt"`
	LastOpenedAt  *time.Time `json:"lastOpenedAt"`
}

type ShareDetail struct {
	Share    ShareSummary    `json:"share"`
	Visitors []Visitor       `json:"visitors"`
	Actions  []VisitorAction `json:"actions"`
}

// ShareLanding is the payload for a visitor who has cleared admission.
type ShareLanding struct {
	Share        ShareLandingInfo `json:"share"`
	Deck         ShareLandingDeck `json:"deck"`
	CTA          *CTAResponse     `json:"cta"`
	SiteSettings PublicSite       `json:"siteSettings"`
}

type ShareLandingInfo struct {
	ID                  string    `json:"id"`
	Title               string    `json:"title"`
	DescriptionRichText *string   `json:"descriptionRichText"`
	AudienceName        string    `json:"audienceName"`
	TargetLink          *string   `json:"targetLink"`
	ContactEmail        *string   `json:"contactEmail"`
	ExpiresAt           time.Time `json:"expiresAt"`
}

type ShareLandingDeck struct {
	ID    string     `json:"id"`
	Name  string     `json:"name"`
	Items []DeckItem `json:"items"`
}

type PasswordPrompt struct {
	NeedsPassword bool   `json:"needsPassword"`
	Title         string `json:"title"`
}
