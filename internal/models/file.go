package models

import "time"

type File struct {
	Base
	Name         string    `json:"name" gorm:"size:255;not null"`
	MimeType     string    `json:"mimeType" gorm:"size:255;not null"`
	Size         int64     `json:"size" gorm:"not null"`
	StorageKey   string    `json:"-" gorm:"size:1024;not null"`
	DirectoryID  *string   `json:"directoryId" gorm:"size:36;index"`
	UploadedByID string    `json:"uploadedById" gorm:"size:36;not null;index"`
	CreatedAt    time.Time `json:"createdAt" gorm:"index"`
	UpdatedAt    time.Time `json:"updatedAt"`

	Directory *Directory `json:"-" gorm:"foreignKey:DirectoryID"`
}

type FileEntry struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	MimeType string `json:"mimeType"`
	Size     int64  `json:"size,omitempty"`
}

func (f *File) Entry() FileEntry {
	return FileEntry{ID: f.ID, Name: f.Name, MimeType: f.MimeType, Size: f.Size}
}

type UploadCompleteRequest struct {
	UploadID    string  `json:"uploadId" validate:"required,hexadecimal,max=64"`
	DirectoryID *string `json:"directoryId"`
	Name        string  `json:"name" validate:"required,notblank,max=255"`
	MimeType    string  `json:"mimeType" validate:"required"`
}
