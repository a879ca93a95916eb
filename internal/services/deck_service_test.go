package services

import (
	"context"
	"encoding/json"
	"testing"

	"deckshare-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeck_ItemNeedsExactlyOneReference(t *testing.T) {
	ctx := context.Background()
	f := newShareFixture(t)
	file := createFile(t, f.db, f.owner, "a.pdf", nil)
	dir := createDir(t, f.db, f.owner, "Docs", nil)

	tests := []struct {
		name string
		req  models.DeckItemCreateRequest
	}{
		{"neither", models.DeckItemCreateRequest{}},
		{"both", models.DeckItemCreateRequest{FileID: &file.ID, DirectoryID: &dir.ID}},
		{"blank strings", models.DeckItemCreateRequest{FileID: strPtr(""), DirectoryID: strPtr("")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.decks.AddItem(ctx, f.owner.ID, f.deck.ID, &tt.req)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}

	var count int64
	require.NoError(t, f.db.Model(&models.DeckItem{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestDeck_ItemMustBelongToUser(t *testing.T) {
	ctx := context.Background()
	f := newShareFixture(t)
	stranger := createUser(t, f.db, "stranger@example.com")
	foreign := createFile(t, f.db, stranger, "theirs.pdf", nil)

	_, err := f.decks.AddItem(ctx, f.owner.ID, f.deck.ID, &models.DeckItemCreateRequest{FileID: &foreign.ID})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = f.decks.Items(ctx, stranger.ID, f.deck.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeck_AddRemoveWritesHistory(t *testing.T) {
	ctx := context.Background()
	f := newShareFixture(t)
	file := createFile(t, f.db, f.owner, "a.pdf", nil)
	dir := createDir(t, f.db, f.owner, "Docs", nil)

	first, err := f.decks.AddItem(ctx, f.owner.ID, f.deck.ID, &models.DeckItemCreateRequest{FileID: &file.ID})
	require.NoError(t, err)
	require.NotNil(t, first.File)
	assert.Equal(t, 0, first.Order)

	second, err := f.decks.AddItem(ctx, f.owner.ID, f.deck.ID, &models.DeckItemCreateRequest{DirectoryID: &dir.ID})
	require.NoError(t, err)
	assert.Equal(t, 1, second.Order)

	require.NoError(t, f.decks.RemoveItem(ctx, f.owner.ID, f.deck.ID, first.ID))
	assert.ErrorIs(t, f.decks.RemoveItem(ctx, f.owner.ID, f.deck.ID, first.ID), ErrNotFound)

	items, err := f.decks.Items(ctx, f.owner.ID, f.deck.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, second.ID, items[0].ID)

	history, err := f.decks.History(ctx, f.owner.ID, f.deck.ID)
	require.NoError(t, err)
	require.Len(t, history, 3)

	actions := map[string]int{}
	for _, h := range history {
		actions[h.Action]++
		require.NotNil(t, h.ByUser)
		assert.Equal(t, "owner@example.com", h.ByUser.Email)
	}
	assert.Equal(t, 2, actions[models.HistoryAdded])
	assert.Equal(t, 1, actions[models.HistoryRemoved])

	for _, h := range history {
		if h.Action == models.HistoryRemoved {
			assert.Equal(t, first.ID, h.DeckItemID)
			var payload map[string]any
			require.NoError(t, json.Unmarshal([]byte(h.Payload), &payload))
			assert.Equal(t, file.ID, payload["fileId"])
		}
	}
}

func TestDeck_CRUD(t *testing.T) {
	ctx := context.Background()
	f := newShareFixture(t)
	file := createFile(t, f.db, f.owner, "a.pdf", nil)
	f.addFile(t, file)
	f.share(t, nil)

	decks, err := f.decks.List(ctx, f.owner.ID)
	require.NoError(t, err)
	require.Len(t, decks, 1)
	assert.EqualValues(t, 1, decks[0].ItemCount)
	assert.EqualValues(t, 1, decks[0].ShareCount)

	updated, err := f.decks.Update(ctx, f.owner.ID, f.deck.ID, &models.DeckUpdateRequest{
		Name:        strPtr("  Board deck "),
		Description: strPtr("quarterly"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Board deck", updated.Name)
	require.NotNil(t, updated.Description)
	assert.Equal(t, "quarterly", *updated.Description)

	got, err := f.decks.Get(ctx, f.owner.ID, f.deck.ID)
	require.NoError(t, err)
	assert.Len(t, got.Items, 1)

	require.NoError(t, f.decks.Delete(ctx, f.owner.ID, f.deck.ID))
	_, err = f.decks.Get(ctx, f.owner.ID, f.deck.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	decks, err = f.decks.List(ctx, f.owner.ID)
	require.NoError(t, err)
	assert.Empty(t, decks)

	var shares int64
	require.NoError(t, f.db.Model(&models.Share{}).Where("deck_id = ?", f.deck.ID).Count(&shares).Error)
	assert.EqualValues(t, 1, shares)
}
