package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"deckshare-backend/internal/config"
	"deckshare-backend/internal/models"
	"deckshare-backend/internal/storage"

	"github.com/gabriel-vasile/mimetype"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type FileService struct {
	db    *gorm.DB
	store storage.Store
	cfg   *config.Config
}

func NewFileService(db *gorm.DB, store storage.Store, cfg *config.Config) *FileService {
	return &FileService{db: db, store: store, cfg: cfg}
}

func ownedFile(ctx context.Context, db *gorm.DB, userID, fileID string) (*models.File, error) {
	var file models.File
	err := db.WithContext(ctx).Where("id = ? AND uploaded_by_id = ?", fileID, userID).First(&file).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &file, nil
}

// DetectMimeType trusts the declared type unless it is missing or generic,
// in which case the leading bytes of r are sniffed. r is rewound afterwards.
func DetectMimeType(declared string, r io.ReadSeeker) (string, error) {
	declared = strings.TrimSpace(declared)
	if declared != "" && declared != "application/octet-stream" {
		return declared, nil
	}

	detected, err := mimetype.DetectReader(r)
	if err != nil {
		return "", err
	}
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return "", err
	}

	mt, _, _ := strings.Cut(detected.String(), ";")
	return strings.TrimSpace(mt), nil
}

// List returns the files of a directory, or root files when directoryID is nil.
func (s *FileService) List(ctx context.Context, userID string, directoryID *string) ([]models.File, error) {
	query := s.db.WithContext(ctx).Where("uploaded_by_id = ?", userID)
	if directoryID == nil || *directoryID == "" {
		query = query.Where("directory_id IS NULL")
	} else {
		query = query.Where("directory_id = ?", *directoryID)
	}

	var files []models.File
	if err := query.Order("created_at DESC").Find(&files).Error; err != nil {
		return nil, err
	}
	return files, nil
}

// Upload stores one multipart part. The content type is checked against the
// upload allow-list after sniffing.
func (s *FileService) Upload(ctx context.Context, userID string, directoryID *string, name, declaredType string, r io.ReadSeeker, size int64) (*models.File, error) {
	mimeType, err := DetectMimeType(declaredType, r)
	if err != nil {
		return nil, fmt.Errorf("failed to detect file type: %w", err)
	}
	return s.Store(ctx, userID, directoryID, name, mimeType, r, size)
}

// Store writes r to the blob store under a fresh key and records the file.
func (s *FileService) Store(ctx context.Context, userID string, directoryID *string, name, mimeType string, r io.Reader, size int64) (*models.File, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: file name is required", ErrInvalidInput)
	}
	if !s.cfg.IsAllowedMimeType(mimeType) {
		return nil, fmt.Errorf("%w: %s", ErrMimeNotAllowed, mimeType)
	}
	if limit := s.cfg.Upload.MaxFileSize; limit > 0 && size > limit {
		return nil, ErrFileTooLarge
	}
	if directoryID != nil && *directoryID == "" {
		directoryID = nil
	}
	if directoryID != nil {
		if _, err := ownedDirectory(ctx, s.db, userID, *directoryID); err != nil {
			return nil, err
		}
	}

	key, err := storage.UniqueKey(directoryID, name)
	if err != nil {
		return nil, err
	}
	if err := s.store.Put(ctx, key, r, size, mimeType); err != nil {
		return nil, fmt.Errorf("failed to store file: %w", err)
	}

	file := &models.File{
		Name:         name,
		MimeType:     mimeType,
		Size:         size,
		StorageKey:   key,
		DirectoryID:  directoryID,
		UploadedByID: userID,
	}
	if err := s.db.WithContext(ctx).Create(file).Error; err != nil {
		if derr := s.store.Delete(ctx, key); derr != nil {
			logrus.WithError(derr).WithField("key", key).Warn("failed to clean up orphaned blob")
		}
		return nil, fmt.Errorf("failed to save file record: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"file_id":   file.ID,
		"size":      size,
		"mime_type": mimeType,
	}).Info("file uploaded")
	return file, nil
}

func (s *FileService) Get(ctx context.Context, userID, fileID string) (*models.File, error) {
	return ownedFile(ctx, s.db, userID, fileID)
}

func (s *FileService) Rename(ctx context.Context, userID, fileID, name string) (*models.File, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}

	file, err := ownedFile(ctx, s.db, userID, fileID)
	if err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Model(file).Update("name", name).Error; err != nil {
		return nil, err
	}
	file.Name = name
	return file, nil
}

// Open returns an owned file together with its content.
func (s *FileService) Open(ctx context.Context, userID, fileID string) (*models.File, io.ReadCloser, error) {
	file, err := ownedFile(ctx, s.db, userID, fileID)
	if err != nil {
		return nil, nil, err
	}
	rc, err := s.Content(ctx, file)
	if err != nil {
		return nil, nil, err
	}
	return file, rc, nil
}

// Content opens the blob behind a file record.
func (s *FileService) Content(ctx context.Context, file *models.File) (io.ReadCloser, error) {
	rc, err := s.store.Open(ctx, file.StorageKey)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrNotFound
	}
	return rc, err
}

// Delete removes the deck items pointing at the file, the row, then the
// blob. A failed blob delete is logged and otherwise ignored.
func (s *FileService) Delete(ctx context.Context, userID, fileID string) error {
	file, err := ownedFile(ctx, s.db, userID, fileID)
	if err != nil {
		return err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := removeDeckItems(tx, "file_id", file.ID, userID); err != nil {
			return err
		}
		return tx.Delete(file).Error
	})
	if err != nil {
		return err
	}

	if err := s.store.Delete(ctx, file.StorageKey); err != nil {
		logrus.WithError(err).WithField("file_id", file.ID).Warn("failed to delete blob")
	}
	return nil
}
