package services

import (
	"context"
	"errors"
	"fmt"
	"io"

	"deckshare-backend/internal/models"
	"deckshare-backend/internal/storage"
	"deckshare-backend/internal/utils"

	"github.com/sirupsen/logrus"
)

// UploadService assembles chunked uploads in the local staging area and
// hands the finished bytes to FileService.
type UploadService struct {
	staging *storage.Staging
	files   *FileService
}

func NewUploadService(staging *storage.Staging, files *FileService) *UploadService {
	return &UploadService{staging: staging, files: files}
}

// Init returns a fresh upload id of 32 hex characters.
func (s *UploadService) Init() (string, error) {
	return utils.RandomHex(16)
}

// Chunk appends to the staged upload. Once the staged size passes the
// upload limit the staged bytes are discarded and ErrFileTooLarge returned.
func (s *UploadService) Chunk(uploadID string, chunk io.Reader) (int64, error) {
	staged, err := s.staging.Size(uploadID)
	if errors.Is(err, storage.ErrInvalidKey) {
		return 0, fmt.Errorf("%w: bad upload id", ErrInvalidInput)
	}
	if err != nil {
		return 0, err
	}

	limit := s.files.cfg.Upload.MaxFileSize
	if limit > 0 {
		chunk = io.LimitReader(chunk, limit-staged+1)
	}
	n, err := s.staging.Append(uploadID, chunk)
	if err != nil {
		return 0, err
	}
	if limit > 0 && staged+n > limit {
		s.discard(uploadID)
		return 0, ErrFileTooLarge
	}
	return n, nil
}

func (s *UploadService) Complete(ctx context.Context, userID string, req *models.UploadCompleteRequest) (*models.File, error) {
	f, size, err := s.staging.Open(req.UploadID)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return nil, ErrUploadNotFound
	case errors.Is(err, storage.ErrInvalidKey):
		return nil, fmt.Errorf("%w: bad upload id", ErrInvalidInput)
	case err != nil:
		return nil, err
	}

	file, err := s.files.Store(ctx, userID, req.DirectoryID, req.Name, req.MimeType, f, size)
	f.Close()
	if err != nil {
		// the staged bytes themselves are unacceptable, a retry cannot succeed
		if errors.Is(err, ErrMimeNotAllowed) || errors.Is(err, ErrFileTooLarge) {
			s.discard(req.UploadID)
		}
		return nil, err
	}

	s.discard(req.UploadID)
	return file, nil
}

func (s *UploadService) discard(uploadID string) {
	if err := s.staging.Remove(uploadID); err != nil {
		logrus.WithError(err).WithField("upload_id", uploadID).Warn("failed to remove staged upload")
	}
}
