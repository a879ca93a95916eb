package models

import "time"

type Deck struct {
	Base
	Name        string    `json:"name" gorm:"size:255;not null"`
	Description *string   `json:"description" gorm:"type:text"`
	IsActive    bool      `json:"isActive" gorm:"default:true;index"`
	CreatedByID string    `json:"createdById" gorm:"size:36;not null;index"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt" gorm:"index"`

	Items []DeckItem `json:"items,omitempty" gorm:"foreignKey:DeckID"`

	// computed
	ItemCount  int64 `json:"itemCount" gorm:"-"`
	ShareCount int64 `json:"shareCount" gorm:"-"`
}

// DeckItem references exactly one of File or Directory.
type DeckItem struct {
	Base
	DeckID      string    `json:"deckId" gorm:"size:36;not null;index"`
	FileID      *string   `json:"fileId" gorm:"size:36;index"`
	DirectoryID *string   `json:"directoryId" gorm:"size:36;index"`
	Order       int       `json:"order" gorm:"column:sort_order;not null;default:0"`
	AddedByID   string    `json:"addedById" gorm:"size:36;not null"`
	CreatedAt   time.Time `json:"createdAt"`

	File      *File      `json:"file,omitempty" gorm:"foreignKey:FileID"`
	Directory *Directory `json:"directory,omitempty" gorm:"foreignKey:DirectoryID"`
}

const (
	HistoryAdded   = "added"
	HistoryRemoved = "removed"
)

// DeckItemHistory is append-only and outlives the item it describes, so it
// keeps plain ids instead of foreign keys.
type DeckItemHistory struct {
	Base
	DeckID     string    `json:"deckId" gorm:"size:36;not null;index"`
	DeckItemID string    `json:"deckItemId" gorm:"size:36;not null;index"`
	Action     string    `json:"action" gorm:"size:20;not null"`
	Payload    string    `json:"payload" gorm:"type:text"`
	ByUserID   string    `json:"byUserId" gorm:"size:36;not null"`
	CreatedAt  time.Time `json:"createdAt" gorm:"index"`
}

func (DeckItemHistory) TableName() string {
	return "deck_item_history"
}

type DeckHistoryEntry struct {
	DeckItemHistory
	ByUser *UserSummary `json:"byUser,omitempty"`
}

type UserSummary struct {
	Email string  `json:"email"`
	Name  *string `json:"name"`
}

type DeckCreateRequest struct {
	Name        string  `json:"name" validate:"required,notblank,max=255"`
	Description *string `json:"description"`
}

type DeckUpdateRequest struct {
	Name        *string `json:"name" validate:"omitempty,notblank,max=255"`
	Description *string `json:"description"`
}

type DeckItemCreateRequest struct {
	FileID      *string `json:"fileId"`
	DirectoryID *string `json:"directoryId"`
}
