package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Errors  interface{} `json:"errors,omitempty"`
}

// Base carries the UUID primary key shared by every table.
type Base struct {
	ID string `json:"id" gorm:"primaryKey;size:36"`
}

func (b *Base) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	return nil
}

// All returns every model in migration order.
func All() []interface{} {
	return []interface{}{
		&User{},
		&Directory{},
		&File{},
		&Deck{},
		&DeckItem{},
		&DeckItemHistory{},
		&Share{},
		&Visitor{},
		&VisitorAction{},
		&SiteSettings{},
		&GlobalCTA{},
	}
}
