package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"deckshare-backend/internal/models"
	"deckshare-backend/internal/utils"

	"gorm.io/gorm"
)

// Keeps IN (...) lists under the SQLite bound-parameter limit.
const descendantBatchSize = 500

// Proofs are what the visitor's cookies claim about earlier admission steps.
type Proofs struct {
	PasswordVerified bool
	LandingViewed    bool
}

// ShareAccess is the visible set of a share, computed fresh for every request.
type ShareAccess struct {
	Share               *models.Share
	Items               []models.DeckItem
	AllowedFileIDs      map[string]struct{}
	AllowedDirectoryIDs map[string]struct{}
}

// FileAllowed reports whether f is referenced directly by the deck or lives
// inside a shared directory subtree.
func (a *ShareAccess) FileAllowed(f *models.File) bool {
	if _, ok := a.AllowedFileIDs[f.ID]; ok {
		return true
	}
	return f.DirectoryID != nil && a.DirectoryAllowed(*f.DirectoryID)
}

func (a *ShareAccess) DirectoryAllowed(id string) bool {
	_, ok := a.AllowedDirectoryIDs[id]
	return ok
}

type AccessService struct {
	db  *gorm.DB
	now func() time.Time
}

func NewAccessService(db *gorm.DB) *AccessService {
	return &AccessService{db: db, now: time.Now}
}

// findActiveShare runs the lookup and expiry steps of admission.
func findActiveShare(ctx context.Context, db *gorm.DB, slug string, now time.Time) (*models.Share, error) {
	var share models.Share
	err := db.WithContext(ctx).Where("slug = ? AND is_active = ?", slug, true).First(&share).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrShareNotFound
	}
	if err != nil {
		return nil, err
	}
	if share.ExpiredAt(now) {
		return &share, ErrShareExpired
	}
	return &share, nil
}

// Landing admits a visitor to the share's landing payload. When the share is
// password protected and the visitor has no proof yet, the share is returned
// together with ErrPasswordRequired so the caller can render the prompt.
func (s *AccessService) Landing(ctx context.Context, slug string, passwordVerified bool) (*models.Share, error) {
	share, err := findActiveShare(ctx, s.db, slug, s.now())
	if err != nil {
		return share, err
	}
	if share.HasPassword() && !passwordVerified {
		return share, ErrPasswordRequired
	}

	var deck models.Deck
	err = s.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order ASC").Order("created_at ASC")
		}).
		Preload("Items.File").
		Preload("Items.Directory").
		First(&deck, "id = ?", share.DeckID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrShareNotFound
		}
		return nil, err
	}
	share.Deck = &deck
	return share, nil
}

// VerifyPassword checks a submitted share password.
func (s *AccessService) VerifyPassword(ctx context.Context, slug, password string) (*models.Share, error) {
	share, err := findActiveShare(ctx, s.db, slug, s.now())
	if err != nil {
		return nil, err
	}
	if !share.HasPassword() {
		return nil, ErrNoSharePassword
	}

	ok, err := utils.VerifyPassword(password, *share.PasswordHash)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrInvalidPassword
	}
	return share, nil
}

// Authorize runs the full admission sequence for a content request and
// returns the share's visible set.
func (s *AccessService) Authorize(ctx context.Context, slug string, proofs Proofs) (*ShareAccess, error) {
	share, err := findActiveShare(ctx, s.db, slug, s.now())
	if err != nil {
		return nil, err
	}
	if share.HasPassword() && !proofs.PasswordVerified {
		return nil, ErrPasswordRequired
	}
	if !proofs.LandingViewed {
		return nil, ErrForbidden
	}

	var items []models.DeckItem
	if err := s.db.WithContext(ctx).Where("deck_id = ?", share.DeckID).Find(&items).Error; err != nil {
		return nil, err
	}

	access := &ShareAccess{
		Share:          share,
		Items:          items,
		AllowedFileIDs: make(map[string]struct{}),
	}

	var roots []string
	for _, item := range items {
		if item.FileID != nil {
			access.AllowedFileIDs[*item.FileID] = struct{}{}
		}
		if item.DirectoryID != nil {
			roots = append(roots, *item.DirectoryID)
		}
	}

	access.AllowedDirectoryIDs, err = s.DescendantDirectoryIDs(ctx, roots)
	if err != nil {
		return nil, err
	}
	return access, nil
}

// DescendantDirectoryIDs returns roots plus every directory below them. The
// walk is breadth first over one query per level and terminates on cycles.
func (s *AccessService) DescendantDirectoryIDs(ctx context.Context, roots []string) (map[string]struct{}, error) {
	seen := make(map[string]struct{}, len(roots))
	var frontier []string
	for _, id := range roots {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		frontier = append(frontier, id)
	}

	for len(frontier) > 0 {
		var next []string
		for start := 0; start < len(frontier); start += descendantBatchSize {
			end := start + descendantBatchSize
			if end > len(frontier) {
				end = len(frontier)
			}

			var children []string
			err := s.db.WithContext(ctx).Model(&models.Directory{}).
				Where("parent_id IN ?", frontier[start:end]).
				Pluck("id", &children).Error
			if err != nil {
				return nil, fmt.Errorf("failed to load child directories: %w", err)
			}

			for _, id := range children {
				if _, ok := seen[id]; ok {
					continue
				}
				seen[id] = struct{}{}
				next = append(next, id)
			}
		}
		frontier = next
	}

	return seen, nil
}

// ListDirectory lists one shared directory's immediate children.
func (s *AccessService) ListDirectory(ctx context.Context, access *ShareAccess, directoryID string) (*models.DirectoryListing, error) {
	if !access.DirectoryAllowed(directoryID) {
		return nil, ErrForbidden
	}

	var dir models.Directory
	if err := s.db.WithContext(ctx).First(&dir, "id = ?", directoryID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	var children []models.Directory
	if err := s.db.WithContext(ctx).Where("parent_id = ?", directoryID).Order("name ASC").Find(&children).Error; err != nil {
		return nil, err
	}

	var files []models.File
	if err := s.db.WithContext(ctx).Where("directory_id = ?", directoryID).Order("name ASC").Find(&files).Error; err != nil {
		return nil, err
	}

	listing := &models.DirectoryListing{
		Directory:   models.DirectoryEntry{ID: dir.ID, Name: dir.Name},
		Directories: make([]models.DirectoryEntry, 0, len(children)),
		Files:       make([]models.FileEntry, 0, len(files)),
	}
	for _, child := range children {
		listing.Directories = append(listing.Directories, models.DirectoryEntry{ID: child.ID, Name: child.Name})
	}
	for i := range files {
		listing.Files = append(listing.Files, files[i].Entry())
	}
	return listing, nil
}

// SharedFile loads a file record if it is inside the visible set.
func (s *AccessService) SharedFile(ctx context.Context, access *ShareAccess, fileID string) (*models.File, error) {
	var file models.File
	if err := s.db.WithContext(ctx).First(&file, "id = ?", fileID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if !access.FileAllowed(&file) {
		return nil, ErrForbidden
	}
	return &file, nil
}
