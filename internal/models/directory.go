package models

import "time"

type Directory struct {
	Base
	Name      string    `json:"name" gorm:"size:255;not null"`
	ParentID  *string   `json:"parentId" gorm:"size:36;index"`
	OwnerID   string    `json:"ownerId" gorm:"size:36;not null;index"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	Parent *Directory `json:"-" gorm:"foreignKey:ParentID"`
}

type DirectoryCreateRequest struct {
	Name     string  `json:"name" validate:"required,notblank,max=255"`
	ParentID *string `json:"parentId"`
}

type RenameRequest struct {
	Name string `json:"name" validate:"required,notblank,max=255"`
}

// DirectoryListing is what a share visitor sees when opening a directory.
type DirectoryListing struct {
	Directory   DirectoryEntry   `json:"directory"`
	Directories []DirectoryEntry `json:"directories"`
	Files       []FileEntry      `json:"files"`
}

type DirectoryEntry struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
