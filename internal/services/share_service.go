package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"deckshare-backend/internal/models"
	"deckshare-backend/internal/utils"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const (
	slugMaxAttempts  = 100
	detailActionRows = 200
)

type ShareService struct {
	db         *gorm.DB
	slugLength int
}

func NewShareService(db *gorm.DB, slugLength int) *ShareService {
	if slugLength <= 0 {
		slugLength = 6
	}
	return &ShareService{db: db, slugLength: slugLength}
}

func (s *ShareService) Create(ctx context.Context, userID, deckID string, req *models.ShareCreateRequest) (*models.Share, error) {
	if _, err := ownedDeck(ctx, s.db, userID, deckID); err != nil {
		return nil, err
	}

	slug, err := utils.GenerateUniqueSlug(s.slugLength, slugMaxAttempts, func(candidate string) (bool, error) {
		var count int64
		err := s.db.WithContext(ctx).Model(&models.Share{}).Where("slug = ?", candidate).Count(&count).Error
		return count > 0, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to allocate slug: %w", err)
	}

	share := &models.Share{
		DeckID:              deckID,
		Slug:                slug,
		Title:               strings.TrimSpace(req.Title),
		DescriptionRichText: req.DescriptionRichText,
		AudienceName:        strings.TrimSpace(req.AudienceName),
		ExpiresAt:           req.ExpiresAt,
		TargetLink:          req.TargetLink,
		ContactEmail:        req.ContactEmail,
		SingleUse:           req.SingleUse,
		IsActive:            true,
		CreatedByID:         userID,
	}

	if req.Password != nil && *req.Password != "" {
		hash, err := utils.HashPassword(*req.Password)
		if err != nil {
			return nil, err
		}
		share.PasswordHash = &hash
	}

	if err := s.db.WithContext(ctx).Create(share).Error; err != nil {
		return nil, fmt.Errorf("failed to create share: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"share_id": share.ID,
		"deck_id":  deckID,
		"slug":     slug,
	}).Info("share created")
	return share, nil
}

// List returns the user's active shares with visitor aggregates, newest first.
func (s *ShareService) List(ctx context.Context, userID string, deckID *string) ([]models.ShareSummary, error) {
	query := s.db.WithContext(ctx).
		Preload("Deck").
		Where("created_by_id = ? AND is_active = ?", userID, true).
		Order("created_at DESC")
	if deckID != nil && *deckID != "" {
		query = query.Where("deck_id = ?", *deckID)
	}

	var shares []models.Share
	if err := query.Find(&shares).Error; err != nil {
		return nil, err
	}

	summaries := make([]models.ShareSummary, 0, len(shares))
	for _, share := range shares {
		summary, err := s.summarize(ctx, share)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, *summary)
	}
	return summaries, nil
}

func (s *ShareService) Detail(ctx context.Context, userID, shareID string) (*models.ShareDetail, error) {
	share, err := s.owned(ctx, userID, shareID)
	if err != nil {
		return nil, err
	}

	summary, err := s.summarize(ctx, *share)
	if err != nil {
		return nil, err
	}

	var visitors []models.Visitor
	if err := s.db.WithContext(ctx).Where("share_id = ?", shareID).Order("last_seen_at DESC").Find(&visitors).Error; err != nil {
		return nil, err
	}

	var actions []models.VisitorAction
	err = s.db.WithContext(ctx).
		Preload("Visitor").
		Where("share_id = ?", shareID).
		Order("created_at DESC").
		Limit(detailActionRows).
		Find(&actions).Error
	if err != nil {
		return nil, err
	}
	if err := s.resolveResourceNames(ctx, actions); err != nil {
		return nil, err
	}

	return &models.ShareDetail{Share: *summary, Visitors: visitors, Actions: actions}, nil
}

// Deactivate turns a share off. The row and its analytics are kept.
func (s *ShareService) Deactivate(ctx context.Context, userID, shareID string) error {
	share, err := s.owned(ctx, userID, shareID)
	if err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Model(share).Update("is_active", false).Error; err != nil {
		return err
	}
	logrus.WithField("share_id", shareID).Info("share deactivated")
	return nil
}

// VisitorTimeline lists every action of one visitor in chronological order.
func (s *ShareService) VisitorTimeline(ctx context.Context, userID, shareID, visitorID string) (*models.VisitorTimeline, error) {
	share, err := s.owned(ctx, userID, shareID)
	if err != nil {
		return nil, err
	}

	var visitor models.Visitor
	err = s.db.WithContext(ctx).Where("id = ? AND share_id = ?", visitorID, shareID).First(&visitor).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	var actions []models.VisitorAction
	if err := s.db.WithContext(ctx).Where("visitor_id = ?", visitorID).Order("created_at ASC").Find(&actions).Error; err != nil {
		return nil, err
	}
	if err := s.resolveResourceNames(ctx, actions); err != nil {
		return nil, err
	}

	ref := models.ShareRef{ID: share.ID, Slug: share.Slug, Title: share.Title}
	if share.Deck != nil {
		ref.DeckName = share.Deck.Name
	}
	return &models.VisitorTimeline{Share: ref, Visitor: visitor, Actions: actions}, nil
}

func (s *ShareService) owned(ctx context.Context, userID, shareID string) (*models.Share, error) {
	var share models.Share
	err := s.db.WithContext(ctx).Preload("Deck").
		Where("id = ? AND created_by_id = ?", shareID, userID).
		First(&share).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &share, nil
}

func (s *ShareService) summarize(ctx context.Context, share models.Share) (*models.ShareSummary, error) {
	summary := &models.ShareSummary{Share: share}
	db := s.db.WithContext(ctx)

	if err := db.Model(&models.Visitor{}).Where("share_id = ?", share.ID).Count(&summary.VisitorCount).Error; err != nil {
		return nil, err
	}
	if summary.VisitorCount == 0 {
		return summary, nil
	}

	var first, last models.Visitor
	if err := db.Where("share_id = ?", share.ID).Order("first_seen_at ASC").First(&first).Error; err != nil {
		return nil, err
	}
	if err := db.Where("share_id = ?", share.ID).Order("last_seen_at DESC").First(&last).Error; err != nil {
		return nil, err
	}
	summary.FirstOpenedAt = timePtr(first.FirstSeenAt)
	summary.LastOpenedAt = timePtr(last.LastSeenAt)
	return summary, nil
}

// resolveResourceNames fills ResourceName for file and directory actions.
// Resources deleted since the action was recorded are left unnamed.
func (s *ShareService) resolveResourceNames(ctx context.Context, actions []models.VisitorAction) error {
	var fileIDs, dirIDs []string
	for _, a := range actions {
		if a.ResourceType == nil || a.ResourceID == nil {
			continue
		}
		switch *a.ResourceType {
		case models.ResourceFile:
			fileIDs = append(fileIDs, *a.ResourceID)
		case models.ResourceDirectory:
			dirIDs = append(dirIDs, *a.ResourceID)
		}
	}

	names := make(map[string]string)
	if len(fileIDs) > 0 {
		var files []models.File
		if err := s.db.WithContext(ctx).Select("id", "name").Where("id IN ?", fileIDs).Find(&files).Error; err != nil {
			return err
		}
		for _, f := range files {
			names[models.ResourceFile+":"+f.ID] = f.Name
		}
	}
	if len(dirIDs) > 0 {
		var dirs []models.Directory
		if err := s.db.WithContext(ctx).Select("id", "name").Where("id IN ?", dirIDs).Find(&dirs).Error; err != nil {
			return err
		}
		for _, d := range dirs {
			names[models.ResourceDirectory+":"+d.ID] = d.Name
		}
	}

	for i := range actions {
		a := &actions[i]
		if a.ResourceType == nil || a.ResourceID == nil {
			continue
		}
		if name, ok := names[*a.ResourceType+":"+*a.ResourceID]; ok {
			a.ResourceName = &name
		}
	}
	return nil
}

func timePtr(t time.Time) *time.Time {
	return &t
}
