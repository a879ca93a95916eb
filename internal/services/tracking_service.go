package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"deckshare-backend/internal/models"
	"deckshare-backend/internal/utils"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type TrackingService struct {
	db   *gorm.DB
	salt string
	now  func() time.Time
}

func NewTrackingService(db *gorm.DB, fingerprintSalt string) *TrackingService {
	return &TrackingService{db: db, salt: fingerprintSalt, now: time.Now}
}

// Track records one visitor action. The visitor row is created on first
// contact and refreshed afterwards. On a single-use share any second
// fingerprint is rejected with ErrSingleUseExhausted.
func (s *TrackingService) Track(ctx context.Context, req *models.TrackRequest, client models.ClientInfo) (*models.VisitorAction, error) {
	now := s.now()
	share, err := findActiveShare(ctx, s.db, req.Slug, now)
	if err != nil {
		return nil, err
	}

	var metadata *string
	if req.Metadata != nil {
		raw, err := json.Marshal(req.Metadata)
		if err != nil {
			return nil, fmt.Errorf("%w: metadata is not serialisable", ErrInvalidInput)
		}
		encoded := string(raw)
		metadata = &encoded
	}

	hash := utils.HashFingerprint(s.salt, req.Fingerprint)
	action := &models.VisitorAction{
		ShareID:      share.ID,
		Action:       req.Action,
		ResourceType: req.ResourceType,
		ResourceID:   req.ResourceID,
		Metadata:     metadata,
	}

	// A concurrent first contact from the same fingerprint loses the unique
	// index race; the retry then finds the winner's row.
	for attempt := 0; attempt < 2; attempt++ {
		err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			visitor, err := s.upsertVisitor(tx, share, hash, client, now)
			if err != nil {
				return err
			}
			action.ID = ""
			action.VisitorID = visitor.ID
			return tx.Create(action).Error
		})
		if err == nil || errors.Is(err, ErrSingleUseExhausted) {
			break
		}
		logrus.WithError(err).WithField("share_id", share.ID).Warn("track attempt failed")
	}
	if err != nil {
		return nil, err
	}
	return action, nil
}

func (s *TrackingService) upsertVisitor(tx *gorm.DB, share *models.Share, hash string, client models.ClientInfo, now time.Time) (*models.Visitor, error) {
	var visitor models.Visitor
	err := tx.Where("share_id = ? AND fingerprint_hash = ?", share.ID, hash).First(&visitor).Error
	if err == nil {
		visitor.LastSeenAt = now
		if err := tx.Model(&visitor).Update("last_seen_at", now).Error; err != nil {
			return nil, err
		}
		return &visitor, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	if share.SingleUse {
		var count int64
		if err := tx.Model(&models.Visitor{}).Where("share_id = ?", share.ID).Count(&count).Error; err != nil {
			return nil, err
		}
		if count > 0 {
			return nil, ErrSingleUseExhausted
		}
	}

	visitor = models.Visitor{
		ShareID:         share.ID,
		FingerprintHash: hash,
		IP:              optional(client.IP),
		UserAgent:       optional(client.UserAgent),
		Referrer:        optional(client.Referrer),
		Country:         optional(client.Country),
		Region:          optional(client.Region),
		FirstSeenAt:     now,
		LastSeenAt:      now,
	}
	if err := tx.Create(&visitor).Error; err != nil {
		return nil, err
	}
	return &visitor, nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
