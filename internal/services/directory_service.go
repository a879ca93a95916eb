package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"deckshare-backend/internal/models"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type DirectoryService struct {
	db *gorm.DB
}

func NewDirectoryService(db *gorm.DB) *DirectoryService {
	return &DirectoryService{db: db}
}

func ownedDirectory(ctx context.Context, db *gorm.DB, userID, directoryID string) (*models.Directory, error) {
	var dir models.Directory
	err := db.WithContext(ctx).Where("id = ? AND owner_id = ?", directoryID, userID).First(&dir).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &dir, nil
}

// List returns the children of parentID, or root directories when it is nil.
func (s *DirectoryService) List(ctx context.Context, userID string, parentID *string) ([]models.Directory, error) {
	query := s.db.WithContext(ctx).Where("owner_id = ?", userID)
	if parentID == nil || *parentID == "" {
		query = query.Where("parent_id IS NULL")
	} else {
		query = query.Where("parent_id = ?", *parentID)
	}

	var dirs []models.Directory
	if err := query.Order("name ASC").Find(&dirs).Error; err != nil {
		return nil, err
	}
	return dirs, nil
}

// Tree returns every directory the user owns as a flat list.
func (s *DirectoryService) Tree(ctx context.Context, userID string) ([]models.Directory, error) {
	var dirs []models.Directory
	if err := s.db.WithContext(ctx).Where("owner_id = ?", userID).Order("name ASC").Find(&dirs).Error; err != nil {
		return nil, err
	}
	return dirs, nil
}

func (s *DirectoryService) Create(ctx context.Context, userID string, req *models.DirectoryCreateRequest) (*models.Directory, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}

	dir := &models.Directory{Name: name, OwnerID: userID}
	if req.ParentID != nil && *req.ParentID != "" {
		if _, err := ownedDirectory(ctx, s.db, userID, *req.ParentID); err != nil {
			return nil, err
		}
		dir.ParentID = req.ParentID
	}

	if err := s.db.WithContext(ctx).Create(dir).Error; err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}
	return dir, nil
}

func (s *DirectoryService) Rename(ctx context.Context, userID, directoryID, name string) (*models.Directory, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}

	dir, err := ownedDirectory(ctx, s.db, userID, directoryID)
	if err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Model(dir).Update("name", name).Error; err != nil {
		return nil, err
	}
	dir.Name = name
	return dir, nil
}

// Delete removes an empty directory together with the deck items that
// reference it.
func (s *DirectoryService) Delete(ctx context.Context, userID, directoryID string) error {
	dir, err := ownedDirectory(ctx, s.db, userID, directoryID)
	if err != nil {
		return err
	}

	var children, files int64
	if err := s.db.WithContext(ctx).Model(&models.Directory{}).Where("parent_id = ?", dir.ID).Count(&children).Error; err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Model(&models.File{}).Where("directory_id = ?", dir.ID).Count(&files).Error; err != nil {
		return err
	}
	if children > 0 || files > 0 {
		return ErrDirectoryNotEmpty
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := removeDeckItems(tx, "directory_id", dir.ID, userID); err != nil {
			return err
		}
		return tx.Delete(dir).Error
	})
	if err != nil {
		return err
	}

	logrus.WithField("directory_id", dir.ID).Info("directory deleted")
	return nil
}

// removeDeckItems deletes every deck item whose column matches id, writing a
// removed history entry for each.
func removeDeckItems(tx *gorm.DB, column, id, userID string) error {
	var items []models.DeckItem
	if err := tx.Where(column+" = ?", id).Find(&items).Error; err != nil {
		return err
	}
	for i := range items {
		if err := recordHistory(tx, &items[i], models.HistoryRemoved, userID); err != nil {
			return err
		}
		if err := tx.Delete(&items[i]).Error; err != nil {
			return err
		}
	}
	return nil
}
