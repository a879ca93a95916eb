package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"deckshare-backend/internal/models"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type DeckService struct {
	db *gorm.DB
}

func NewDeckService(db *gorm.DB) *DeckService {
	return &DeckService{db: db}
}

func ownedDeck(ctx context.Context, db *gorm.DB, userID, deckID string) (*models.Deck, error) {
	var deck models.Deck
	err := db.WithContext(ctx).
		Where("id = ? AND created_by_id = ? AND is_active = ?", deckID, userID, true).
		First(&deck).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &deck, nil
}

// List returns active decks with item and share counts, recently updated first.
func (s *DeckService) List(ctx context.Context, userID string) ([]models.Deck, error) {
	var decks []models.Deck
	err := s.db.WithContext(ctx).
		Where("created_by_id = ? AND is_active = ?", userID, true).
		Order("updated_at DESC").
		Find(&decks).Error
	if err != nil {
		return nil, err
	}

	for i := range decks {
		if err := s.fillCounts(ctx, &decks[i]); err != nil {
			return nil, err
		}
	}
	return decks, nil
}

func (s *DeckService) Create(ctx context.Context, userID string, req *models.DeckCreateRequest) (*models.Deck, error) {
	deck := &models.Deck{
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		IsActive:    true,
		CreatedByID: userID,
	}
	if err := s.db.WithContext(ctx).Create(deck).Error; err != nil {
		return nil, fmt.Errorf("failed to create deck: %w", err)
	}
	return deck, nil
}

// Get returns the deck with its ordered items.
func (s *DeckService) Get(ctx context.Context, userID, deckID string) (*models.Deck, error) {
	deck, err := ownedDeck(ctx, s.db, userID, deckID)
	if err != nil {
		return nil, err
	}
	items, err := s.Items(ctx, userID, deckID)
	if err != nil {
		return nil, err
	}
	deck.Items = items
	if err := s.fillCounts(ctx, deck); err != nil {
		return nil, err
	}
	return deck, nil
}

func (s *DeckService) Update(ctx context.Context, userID, deckID string, req *models.DeckUpdateRequest) (*models.Deck, error) {
	deck, err := ownedDeck(ctx, s.db, userID, deckID)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if len(updates) == 0 {
		return deck, nil
	}

	if err := s.db.WithContext(ctx).Model(deck).Updates(updates).Error; err != nil {
		return nil, err
	}
	return ownedDeck(ctx, s.db, userID, deckID)
}

// Delete soft-deletes the deck. Its shares stay in place.
func (s *DeckService) Delete(ctx context.Context, userID, deckID string) error {
	deck, err := ownedDeck(ctx, s.db, userID, deckID)
	if err != nil {
		return err
	}
	return s.db.WithContext(ctx).Model(deck).Update("is_active", false).Error
}

func (s *DeckService) Items(ctx context.Context, userID, deckID string) ([]models.DeckItem, error) {
	if _, err := ownedDeck(ctx, s.db, userID, deckID); err != nil {
		return nil, err
	}

	var items []models.DeckItem
	err := s.db.WithContext(ctx).
		Preload("File").
		Preload("Directory").
		Where("deck_id = ?", deckID).
		Order("sort_order ASC").
		Order("created_at ASC").
		Find(&items).Error
	return items, err
}

// AddItem appends a file or a directory to the deck. Exactly one of the two
// must be given and it must belong to the user.
func (s *DeckService) AddItem(ctx context.Context, userID, deckID string, req *models.DeckItemCreateRequest) (*models.DeckItem, error) {
	hasFile := req.FileID != nil && *req.FileID != ""
	hasDir := req.DirectoryID != nil && *req.DirectoryID != ""
	if hasFile == hasDir {
		return nil, fmt.Errorf("%w: exactly one of fileId or directoryId is required", ErrInvalidInput)
	}

	if _, err := ownedDeck(ctx, s.db, userID, deckID); err != nil {
		return nil, err
	}

	item := &models.DeckItem{DeckID: deckID, AddedByID: userID}
	if hasFile {
		if _, err := ownedFile(ctx, s.db, userID, *req.FileID); err != nil {
			return nil, err
		}
		item.FileID = req.FileID
	} else {
		if _, err := ownedDirectory(ctx, s.db, userID, *req.DirectoryID); err != nil {
			return nil, err
		}
		item.DirectoryID = req.DirectoryID
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var maxOrder sql.NullInt64
		if err := tx.Model(&models.DeckItem{}).Where("deck_id = ?", deckID).
			Select("MAX(sort_order)").Row().Scan(&maxOrder); err != nil {
			return err
		}
		if maxOrder.Valid {
			item.Order = int(maxOrder.Int64) + 1
		}

		if err := tx.Create(item).Error; err != nil {
			return err
		}
		if err := recordHistory(tx, item, models.HistoryAdded, userID); err != nil {
			return err
		}
		return tx.Model(&models.Deck{}).Where("id = ?", deckID).Update("updated_at", time.Now()).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to add deck item: %w", err)
	}

	if err := s.db.WithContext(ctx).Preload("File").Preload("Directory").First(item, "id = ?", item.ID).Error; err != nil {
		return nil, err
	}
	return item, nil
}

func (s *DeckService) RemoveItem(ctx context.Context, userID, deckID, itemID string) error {
	if _, err := ownedDeck(ctx, s.db, userID, deckID); err != nil {
		return err
	}

	var item models.DeckItem
	err := s.db.WithContext(ctx).Where("id = ? AND deck_id = ?", itemID, deckID).First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := recordHistory(tx, &item, models.HistoryRemoved, userID); err != nil {
			return err
		}
		return tx.Delete(&item).Error
	})
}

// History returns the deck's item log, newest first.
func (s *DeckService) History(ctx context.Context, userID, deckID string) ([]models.DeckHistoryEntry, error) {
	if _, err := ownedDeck(ctx, s.db, userID, deckID); err != nil {
		return nil, err
	}

	var rows []models.DeckItemHistory
	if err := s.db.WithContext(ctx).Where("deck_id = ?", deckID).Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, err
	}

	userIDs := make([]string, 0, len(rows))
	for _, row := range rows {
		userIDs = append(userIDs, row.ByUserID)
	}
	users := make(map[string]models.UserSummary)
	if len(userIDs) > 0 {
		var found []models.User
		if err := s.db.WithContext(ctx).Where("id IN ?", userIDs).Find(&found).Error; err != nil {
			return nil, err
		}
		for _, u := range found {
			users[u.ID] = models.UserSummary{Email: u.Email, Name: u.Name}
		}
	}

	entries := make([]models.DeckHistoryEntry, 0, len(rows))
	for _, row := range rows {
		entry := models.DeckHistoryEntry{DeckItemHistory: row}
		if u, ok := users[row.ByUserID]; ok {
			entry.ByUser = &u
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func (s *DeckService) fillCounts(ctx context.Context, deck *models.Deck) error {
	db := s.db.WithContext(ctx)
	if err := db.Model(&models.DeckItem{}).Where("deck_id = ?", deck.ID).Count(&deck.ItemCount).Error; err != nil {
		return err
	}
	return db.Model(&models.Share{}).Where("deck_id = ?", deck.ID).Count(&deck.ShareCount).Error
}

// historyPayload is a snapshot of the item as it was when the entry was written.
type historyPayload struct {
	FileID      *string `json:"fileId"`
	DirectoryID *string `json:"directoryId"`
	Order       int     `json:"order"`
}

func recordHistory(tx *gorm.DB, item *models.DeckItem, action, userID string) error {
	payload, err := json.Marshal(historyPayload{
		FileID:      item.FileID,
		DirectoryID: item.DirectoryID,
		Order:       item.Order,
	})
	if err != nil {
		return err
	}

	entry := &models.DeckItemHistory{
		DeckID:     item.DeckID,
		DeckItemID: item.ID,
		Action:     action,
		Payload:    string(payload),
		ByUserID:   userID,
	}
	if err := tx.Create(entry).Error; err != nil {
		return err
	}

	logrus.WithFields(logrus.Fields{
		"deck_id": item.DeckID,
		"item_id": item.ID,
		"action":  action,
	}).Debug("deck item history recorded")
	return nil
}
