package services

import (
	"context"
	"testing"
	"time"

	"deckshare-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var landed = Proofs{LandingViewed: true}

func TestAccess_NestedDirectoryExposesFile(t *testing.T) {
	ctx := context.Background()
	f := newShareFixture(t)

	reports := createDir(t, f.db, f.owner, "Reports", nil)
	year := createDir(t, f.db, f.owner, "2024", reports)
	q1 := createFile(t, f.db, f.owner, "q1.pdf", year)
	other := createDir(t, f.db, f.owner, "Other", nil)
	hidden := createFile(t, f.db, f.owner, "hidden.pdf", other)
	loose := createFile(t, f.db, f.owner, "loose.pdf", nil)

	f.addDir(t, reports)
	share := f.share(t, nil)

	access := NewAccessService(f.db)
	granted, err := access.Authorize(ctx, share.Slug, landed)
	require.NoError(t, err)

	assert.True(t, granted.DirectoryAllowed(reports.ID))
	assert.True(t, granted.DirectoryAllowed(year.ID))
	assert.False(t, granted.DirectoryAllowed(other.ID))
	assert.True(t, granted.FileAllowed(q1))
	assert.False(t, granted.FileAllowed(hidden))
	assert.False(t, granted.FileAllowed(loose))

	file, err := access.SharedFile(ctx, granted, q1.ID)
	require.NoError(t, err)
	assert.Equal(t, "q1.pdf", file.Name)

	_, err = access.SharedFile(ctx, granted, hidden.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	listing, err := access.ListDirectory(ctx, granted, year.ID)
	require.NoError(t, err)
	require.Len(t, listing.Files, 1)
	assert.Equal(t, q1.ID, listing.Files[0].ID)

	_, err = access.ListDirectory(ctx, granted, other.ID)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestAccess_DirectFileReference(t *testing.T) {
	ctx := context.Background()
	f := newShareFixture(t)

	dir := createDir(t, f.db, f.owner, "Legal", nil)
	nda := createFile(t, f.db, f.owner, "nda.pdf", dir)
	sibling := createFile(t, f.db, f.owner, "terms.pdf", dir)
	f.addFile(t, nda)
	share := f.share(t, nil)

	access := NewAccessService(f.db)
	granted, err := access.Authorize(ctx, share.Slug, landed)
	require.NoError(t, err)

	assert.True(t, granted.FileAllowed(nda))
	assert.False(t, granted.FileAllowed(sibling))
	assert.False(t, granted.DirectoryAllowed(dir.ID))
}

func TestAccess_UnknownOrInactiveShare(t *testing.T) {
	ctx := context.Background()
	f := newShareFixture(t)
	access := NewAccessService(f.db)

	_, err := access.Landing(ctx, "nope42", false)
	assert.ErrorIs(t, err, ErrShareNotFound)

	share := f.share(t, nil)
	require.NoError(t, f.shares.Deactivate(ctx, f.owner.ID, share.ID))

	_, err = access.Landing(ctx, share.Slug, false)
	assert.ErrorIs(t, err, ErrShareNotFound)
	_, err = access.Authorize(ctx, share.Slug, Proofs{PasswordVerified: true, LandingViewed: true})
	assert.ErrorIs(t, err, ErrShareNotFound)
}

func TestAccess_ExpiredShare(t *testing.T) {
	ctx := context.Background()
	f := newShareFixture(t)
	share := f.share(t, func(req *models.ShareCreateRequest) {
		req.Password = strPtr("letmein")
	})

	access := NewAccessService(f.db)
	access.now = func() time.Time { return share.ExpiresAt.Add(time.Second) }

	_, err := access.Landing(ctx, share.Slug, true)
	assert.ErrorIs(t, err, ErrShareExpired)

	// Expiry wins over a correct password.
	_, err = access.VerifyPassword(ctx, share.Slug, "letmein")
	assert.ErrorIs(t, err, ErrShareExpired)

	_, err = access.Authorize(ctx, share.Slug, Proofs{PasswordVerified: true, LandingViewed: true})
	assert.ErrorIs(t, err, ErrShareExpired)
}

func TestAccess_PasswordFlow(t *testing.T) {
	ctx := context.Background()
	f := newShareFixture(t)
	share := f.share(t, func(req *models.ShareCreateRequest) {
		req.Password = strPtr("letmein")
	})
	access := NewAccessService(f.db)

	prompt, err := access.Landing(ctx, share.Slug, false)
	assert.ErrorIs(t, err, ErrPasswordRequired)
	require.NotNil(t, prompt)
	assert.Equal(t, "Q1 update", prompt.Title)

	_, err = access.VerifyPassword(ctx, share.Slug, "wrong")
	assert.ErrorIs(t, err, ErrInvalidPassword)

	verified, err := access.VerifyPassword(ctx, share.Slug, "letmein")
	require.NoError(t, err)
	assert.Equal(t, share.ID, verified.ID)

	_, err = access.Authorize(ctx, share.Slug, landed)
	assert.ErrorIs(t, err, ErrPasswordRequired)

	landing, err := access.Landing(ctx, share.Slug, true)
	require.NoError(t, err)
	require.NotNil(t, landing.Deck)
	assert.Equal(t, f.deck.ID, landing.Deck.ID)
}

func TestAccess_PasswordOnOpenShare(t *testing.T) {
	f := newShareFixture(t)
	share := f.share(t, nil)

	_, err := NewAccessService(f.db).VerifyPassword(context.Background(), share.Slug, "anything")
	assert.ErrorIs(t, err, ErrNoSharePassword)
}

func TestAccess_RequiresLandingFirst(t *testing.T) {
	f := newShareFixture(t)
	share := f.share(t, nil)

	_, err := NewAccessService(f.db).Authorize(context.Background(), share.Slug, Proofs{})
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestAccess_LandingItemsInOrder(t *testing.T) {
	ctx := context.Background()
	f := newShareFixture(t)

	first := createFile(t, f.db, f.owner, "first.pdf", nil)
	dir := createDir(t, f.db, f.owner, "Appendix", nil)
	last := createFile(t, f.db, f.owner, "last.pdf", nil)
	f.addFile(t, first)
	f.addDir(t, dir)
	f.addFile(t, last)
	share := f.share(t, nil)

	landing, err := NewAccessService(f.db).Landing(ctx, share.Slug, false)
	require.NoError(t, err)

	items := landing.Deck.Items
	require.Len(t, items, 3)
	assert.Equal(t, []int{0, 1, 2}, []int{items[0].Order, items[1].Order, items[2].Order})
	require.NotNil(t, items[0].File)
	assert.Equal(t, "first.pdf", items[0].File.Name)
	require.NotNil(t, items[1].Directory)
	assert.Equal(t, "Appendix", items[1].Directory.Name)
	assert.Equal(t, last.ID, *items[2].FileID)
}

func TestAccess_DescendantsTerminateOnCycle(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	owner := createUser(t, db, "cycle@example.com")

	a := createDir(t, db, owner, "a", nil)
	b := createDir(t, db, owner, "b", a)
	c := createDir(t, db, owner, "c", b)
	require.NoError(t, db.Model(a).Update("parent_id", c.ID).Error)

	ids, err := NewAccessService(db).DescendantDirectoryIDs(ctx, []string{a.ID, a.ID})
	require.NoError(t, err)
	assert.Len(t, ids, 3)
	assert.Contains(t, ids, c.ID)
}

func TestAccess_DescendantsEmptyRoots(t *testing.T) {
	ids, err := NewAccessService(newTestDB(t)).DescendantDirectoryIDs(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, ids)
}
