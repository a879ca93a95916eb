package services

import (
	"bytes"
	"context"
	"io"
	"testing"

	"deckshare-backend/internal/models"
	"deckshare-backend/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")

func newSettingsService(t *testing.T) (*SettingsService, *storage.MemoryStore) {
	t.Helper()
	store := storage.NewMemoryStore()
	return NewSettingsService(newTestDB(t), store, testConfig()), store
}

func TestSettings_SiteDefaultsAndUpdate(t *testing.T) {
	ctx := context.Background()
	settings, _ := newSettingsService(t)

	site, err := settings.PublicSite(ctx)
	require.NoError(t, err)
	assert.Nil(t, site.WebsiteTitle)
	assert.NotNil(t, site.FooterLinks)
	assert.Empty(t, site.FooterLinks)
	assert.Nil(t, site.LogoURL)

	site, err = settings.UpdateSite(ctx, &models.SiteSettingsRequest{
		WebsiteTitle: strPtr(" Deckshare "),
		FooterLinks:  []models.FooterLink{{Label: "Imprint", URL: "https://example.com/imprint"}},
		AnalyticsKey: strPtr("phc_123"),
	})
	require.NoError(t, err)
	require.NotNil(t, site.WebsiteTitle)
	assert.Equal(t, "Deckshare", *site.WebsiteTitle)
	require.Len(t, site.FooterLinks, 1)
	assert.Equal(t, "Imprint", site.FooterLinks[0].Label)

	site, err = settings.UpdateSite(ctx, &models.SiteSettingsRequest{AnalyticsKey: strPtr("")})
	require.NoError(t, err)
	assert.Nil(t, site.AnalyticsKey)
	assert.NotNil(t, site.WebsiteTitle)
	assert.Len(t, site.FooterLinks, 1)
}

func TestSettings_CTAVisibility(t *testing.T) {
	ctx := context.Background()
	settings, _ := newSettingsService(t)

	public, err := settings.PublicCTA(ctx)
	require.NoError(t, err)
	assert.Nil(t, public)

	_, err = settings.UpdateCTA(ctx, &models.CTARequest{Description: strPtr("only a description")})
	require.NoError(t, err)
	public, err = settings.PublicCTA(ctx)
	require.NoError(t, err)
	assert.Nil(t, public)

	_, err = settings.UpdateCTA(ctx, &models.CTARequest{Link: strPtr("https://example.com/book")})
	require.NoError(t, err)
	public, err = settings.PublicCTA(ctx)
	require.NoError(t, err)
	require.NotNil(t, public)
	assert.Equal(t, "https://example.com/book", *public.Link)
	assert.Equal(t, "only a description", *public.Description)
}

func TestSettings_Logo(t *testing.T) {
	ctx := context.Background()
	settings, store := newSettingsService(t)

	_, _, err := settings.Logo(ctx)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = settings.SetLogo(ctx, "application/pdf", bytes.NewReader(pdfBytes), int64(len(pdfBytes)))
	assert.ErrorIs(t, err, ErrMimeNotAllowed)

	site, err := settings.SetLogo(ctx, "", bytes.NewReader(pngHeader), int64(len(pngHeader)))
	require.NoError(t, err)
	require.NotNil(t, site.LogoURL)
	assert.Contains(t, *site.LogoURL, "/api/settings/logo")

	mimeType, rc, err := settings.Logo(ctx)
	require.NoError(t, err)
	body, err := io.ReadAll(rc)
	rc.Close()
	require.NoError(t, err)
	assert.Equal(t, "image/png", mimeType)
	assert.Equal(t, pngHeader, body)

	require.NoError(t, settings.DeleteLogo(ctx))
	_, _, err = settings.Logo(ctx)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Zero(t, store.Len())
}
