package models

import "time"

const (
	ActionPageView      = "page_view"
	ActionDirectoryOpen = "directory_open"
	ActionFileOpen      = "file_open"
	ActionFileDownload  = "file_download"

	ResourceFile      = "file"
	ResourceDirectory = "directory"
)

type Visitor struct {
	Base
	ShareID         string    `json:"shareId" gorm:"size:36;not null;uniqueIndex:idx_visitor_share_fingerprint"`
	FingerprintHash string    `json:"fingerprintHash" gorm:"size:64;not null;uniqueIndex:idx_visitor_share_fingerprint"`
	IP              *string   `json:"ip" gorm:"size:64"`
	UserAgent       *string   `json:"userAgent" gorm:"type:text"`
	Referrer        *string   `json:"referrer" gorm:"type:text"`
	Country         *string   `json:"country" gorm:"size:8"`
	Region          *string   `json:"region" gorm:"size:64"`
	FirstSeenAt     time.Time `json:"firstSeenAt" gorm:"index"`
	LastSeenAt      time.Time `json:"lastSeenAt" gorm:"index"`
}

type VisitorAction struct {
	Base
	VisitorID    string    `json:"visitorId" gorm:"size:36;not null;index"`
	ShareID      string    `json:"shareId" gorm:"size:36;not null;index"`
	Action       string    `json:"action" gorm:"size:32;not null"`
	ResourceType *string   `json:"resourceType" gorm:"size:16"`
	ResourceID   *string   `json:"resourceId" gorm:"size:36"`
	Metadata     *string   `json:"metadata" gorm:"type:text"`
	CreatedAt    time.Time `json:"createdAt" gorm:"index"`

	Visitor *Visitor `json:"visitor,omitempty" gorm:"foreignKey:VisitorID"`

	// computed
	ResourceName *string `json:"resourceName,omitempty" gorm:"-"`
}

type TrackRequest struct {
	Slug         string  `json:"slug" validate:"required"`
	Fingerprint  string  `json:"fingerprint" validate:"required,max=4096"`
	Action       string  `json:"action" validate:"required,oneof=page_view directory_open file_open file_download"`
	ResourceType *string `json:"resourceType" validate:"omitempty,oneof=file directory"`
	ResourceID   *string `json:"resourceId" validate:"omitempty,max=36"`
	Metadata     any     `json:"metadata"`
}

// ClientInfo is what the HTTP layer knows about a tracked visitor.
type ClientInfo struct {
	IP        string
	UserAgent string
	Referrer  string
	Country   string
	Region    string
}

type VisitorTimeline struct {
	Share   ShareRef        `json:"share"`
	Visitor Visitor         `json:"visitor"`
	Actions []VisitorAction `json:"actions"`
}

type ShareRef struct {
	ID       string `json:"id"`
	Slug     string `json:"slug"`
	Title    string `json:"title"`
	DeckName string `json:"deckName"`
}
