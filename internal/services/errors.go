package services

import "errors"

// Share admission outcomes. Each one is terminal for the request.
var (
	ErrShareNotFound      = errors.New("share not found")
	ErrShareExpired       = errors.New("share has expired")
	ErrPasswordRequired   = errors.New("password required")
	ErrInvalidPassword    = errors.New("invalid password")
	ErrForbidden          = errors.New("resource not in this share")
	ErrSingleUseExhausted = errors.New("single-use share already claimed")
	ErrNoSharePassword    = errors.New("share has no password")
)

var (
	ErrNotFound           = errors.New("not found")
	ErrInvalidInput       = errors.New("invalid input")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrMimeNotAllowed     = errors.New("file type not allowed")
	ErrUploadNotFound     = errors.New("upload not found or expired")
	ErrDirectoryNotEmpty  = errors.New("directory is not empty")
	ErrFileTooLarge       = errors.New("file exceeds the upload size limit")
)
