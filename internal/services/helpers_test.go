package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"deckshare-backend/internal/config"
	"deckshare-backend/internal/models"
	"deckshare-backend/internal/storage"
	"deckshare-backend/internal/utils"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(models.All()...))
	return db
}

func testConfig() *config.Config {
	return &config.Config{
		Upload: config.UploadConfig{
			MaxFileSize:      1 << 20,
			AllowedMimeTypes: []string{"application/pdf", "image/png", "text/plain"},
			AllowedLogoTypes: []string{"image/png", "image/svg+xml"},
		},
	}
}

func createUser(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()
	hash, err := utils.HashPassword("secret123")
	require.NoError(t, err)
	user := &models.User{Email: email, PasswordHash: hash}
	require.NoError(t, db.Create(user).Error)
	return user
}

func createDir(t *testing.T, db *gorm.DB, owner *models.User, name string, parent *models.Directory) *models.Directory {
	t.Helper()
	dir := &models.Directory{Name: name, OwnerID: owner.ID}
	if parent != nil {
		dir.ParentID = &parent.ID
	}
	require.NoError(t, db.Create(dir).Error)
	return dir
}

func createFile(t *testing.T, db *gorm.DB, owner *models.User, name string, dir *models.Directory) *models.File {
	t.Helper()
	file := &models.File{
		Name:         name,
		MimeType:     "application/pdf",
		Size:         3,
		StorageKey:   "root/" + uuid.NewString() + "-" + name,
		UploadedByID: owner.ID,
	}
	if dir != nil {
		file.DirectoryID = &dir.ID
	}
	require.NoError(t, db.Create(file).Error)
	return file
}

type shareFixture struct {
	db     *gorm.DB
	owner  *models.User
	deck   *models.Deck
	decks  *DeckService
	shares *ShareService
}

func newShareFixture(t *testing.T) *shareFixture {
	t.Helper()
	db := newTestDB(t)
	owner := createUser(t, db, "owner@example.com")
	decks := NewDeckService(db)

	deck, err := decks.Create(context.Background(), owner.ID, &models.DeckCreateRequest{Name: "Investor deck"})
	require.NoError(t, err)

	return &shareFixture{
		db:     db,
		owner:  owner,
		deck:   deck,
		decks:  decks,
		shares: NewShareService(db, 6),
	}
}

func (f *shareFixture) addFile(t *testing.T, file *models.File) {
	t.Helper()
	_, err := f.decks.AddItem(context.Background(), f.owner.ID, f.deck.ID, &models.DeckItemCreateRequest{FileID: &file.ID})
	require.NoError(t, err)
}

func (f *shareFixture) addDir(t *testing.T, dir *models.Directory) {
	t.Helper()
	_, err := f.decks.AddItem(context.Background(), f.owner.ID, f.deck.ID, &models.DeckItemCreateRequest{DirectoryID: &dir.ID})
	require.NoError(t, err)
}

func (f *shareFixture) share(t *testing.T, mutate func(*models.ShareCreateRequest)) *models.Share {
	t.Helper()
	req := &models.ShareCreateRequest{
		Title:        "Q1 update",
		AudienceName: "Acme Ventures",
		ExpiresAt:    time.Now().Add(24 * time.Hour),
	}
	if mutate != nil {
		mutate(req)
	}
	share, err := f.shares.Create(context.Background(), f.owner.ID, f.deck.ID, req)
	require.NoError(t, err)
	return share
}

func newMemoryFileService(db *gorm.DB) (*FileService, *storage.MemoryStore) {
	store := storage.NewMemoryStore()
	return NewFileService(db, store, testConfig()), store
}

func strPtr(s string) *string {
	return &s
}
