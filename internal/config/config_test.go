package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	path := writeConfig(t, `
jwt:
  secret: "test-secret"
tracking:
  fingerprint_salt: "salt"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "local", cfg.Storage.Driver)
	assert.Equal(t, 6, cfg.Share.SlugLength)
	assert.Equal(t, 7*24*time.Hour, cfg.AuthProofTTL())
	assert.Equal(t, time.Hour, cfg.VisitedProofTTL())
	assert.True(t, cfg.IsAllowedMimeType("application/pdf"))
	assert.True(t, cfg.IsAllowedMimeType("Image/PNG"))
	assert.False(t, cfg.IsAllowedMimeType("application/x-msdownload"))
	assert.True(t, cfg.IsAllowedLogoType("image/x-icon"))
}

func TestLoad_MissingFileUsesEnv(t *testing.T) {
	t.Setenv("JWT_SECRET", "env-secret")
	t.Setenv("FINGERPRINT_SALT", "env-salt")
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DB_PATH", "/tmp/deckshare.db")

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "env-secret", cfg.JWT.Secret)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
}

func TestLoad_RequiresSecrets(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 8081
`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Secret")
}

func TestLoad_MinioNeedsBucket(t *testing.T) {
	path := writeConfig(t, `
jwt:
  secret: "s"
tracking:
  fingerprint_salt: "salt"
storage:
  driver: minio
  minio:
    endpoint: "localhost:9000"
`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bucket")
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeConfig(t, "server: [unterminated")

	_, err := Load(path)
	require.Error(t, err)
}

func TestGetDSN(t *testing.T) {
	cfg := &Config{Database: DatabaseConfig{
		Host: "db", Port: 5432, User: "u", Password: "p", DBName: "deckshare", SSLMode: "disable",
	}}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=deckshare sslmode=disable", cfg.GetDSN())

	cfg.Database.URL = "postgres://u:p@db/deckshare"
	assert.Equal(t, "postgres://u:p@db/deckshare", cfg.GetDSN())
}
