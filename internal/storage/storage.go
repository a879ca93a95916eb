package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"strings"
	"time"

	"deckshare-backend/internal/config"
	"deckshare-backend/internal/utils"
)

const LogoKey = "site/logo"

var (
	ErrInvalidKey = errors.New("invalid storage key")
	ErrNotFound   = errors.New("object not found")
)

// Store holds uploaded bytes addressed by storage key.
type Store interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}

// New builds the blob store selected by cfg.Driver.
func New(ctx context.Context, cfg config.StorageConfig) (Store, error) {
	switch cfg.Driver {
	case "minio":
		return NewMinIOStore(ctx, cfg.MinIO)
	case "local", "":
		return NewLocalStore(cfg.UploadPath)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}

// UniqueKey returns a fresh key for filename, grouped under its directory.
// Keys look like root/<ms>-<rand>-<name> or dir/<directoryID>/<ms>-<rand>-<name>.
func UniqueKey(directoryID *string, filename string) (string, error) {
	suffix, err := utils.GenerateSlug(7)
	if err != nil {
		return "", err
	}
	safe := fmt.Sprintf("%d-%s-%s", time.Now().UnixMilli(), suffix, baseName(filename))
	if directoryID != nil && *directoryID != "" {
		return path.Join("dir", baseName(*directoryID), safe), nil
	}
	return path.Join("root", safe), nil
}

// CleanKey normalises a key to a slash separated relative path and rejects
// anything that would climb out of the store root.
func CleanKey(key string) (string, error) {
	key = strings.TrimSpace(strings.ReplaceAll(key, "\\", "/"))
	if key == "" || strings.Contains(key, "\x00") {
		return "", ErrInvalidKey
	}
	if strings.HasPrefix(key, "/") {
		return "", ErrInvalidKey
	}
	cleaned := path.Clean(key)
	if cleaned == "." || cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", ErrInvalidKey
	}
	return cleaned, nil
}

func baseName(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	b := path.Base(name)
	if b == "." || b == "/" || b == ".." {
		return "file"
	}
	return b
}

// joinWithinRoot resolves rel under rootAbs, refusing escapes.
func joinWithinRoot(rootAbs, rel string) (string, error) {
	rel, err := CleanKey(rel)
	if err != nil {
		return "", err
	}
	abs := filepath.Clean(filepath.Join(rootAbs, filepath.FromSlash(rel)))
	root := filepath.Clean(rootAbs)
	if abs != root && !strings.HasPrefix(abs, root+string(filepath.Separator)) {
		return "", ErrInvalidKey
	}
	return abs, nil
}
