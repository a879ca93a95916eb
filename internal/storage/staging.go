package storage

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Staging collects chunked uploads on local disk before they are handed to
// the blob store. Chunks for one upload id are appended in arrival order;
// concurrent appends to the same id are not coordinated.
type Staging struct {
	root string
}

func NewStaging(uploadRoot string) (*Staging, error) {
	abs, err := filepath.Abs(filepath.Join(uploadRoot, "temp"))
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(abs, 0755); err != nil {
		return nil, fmt.Errorf("create staging dir: %w", err)
	}
	return &Staging{root: abs}, nil
}

func (s *Staging) path(uploadID string) (string, error) {
	if uploadID == "" || filepath.Base(uploadID) != uploadID {
		return "", ErrInvalidKey
	}
	return joinWithinRoot(s.root, uploadID)
}

func (s *Staging) Append(uploadID string, r io.Reader) (int64, error) {
	p, err := s.path(uploadID)
	if err != nil {
		return 0, err
	}
	f, err := os.OpenFile(p, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return 0, err
	}
	n, err := io.Copy(f, r)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	return n, err
}

// Size reports how many bytes are staged so far; zero when nothing is.
func (s *Staging) Size(uploadID string) (int64, error) {
	p, err := s.path(uploadID)
	if err != nil {
		return 0, err
	}
	info, err := os.Stat(p)
	if errors.Is(err, os.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}

// Open returns the staged bytes and their total size.
func (s *Staging) Open(uploadID string) (*os.File, int64, error) {
	p, err := s.path(uploadID)
	if err != nil {
		return nil, 0, err
	}
	f, err := os.Open(p)
	if errors.Is(err, os.ErrNotExist) {
		return nil, 0, ErrNotFound
	}
	if err != nil {
		return nil, 0, err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, 0, err
	}
	return f, info.Size(), nil
}

func (s *Staging) Remove(uploadID string) error {
	p, err := s.path(uploadID)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
