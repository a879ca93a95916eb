package handlers

import (
	"errors"
	"io"
	"mime"
	"net/http"
	"strconv"

	"deckshare-backend/internal/middleware"
	"deckshare-backend/internal/services"
	"deckshare-backend/internal/utils"
	"deckshare-backend/pkg/validator"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

func currentUserID(c *gin.Context) string {
	return c.GetString(middleware.ContextUserID)
}

// bindJSON decodes and validates the body, writing the 400 itself on failure.
func bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		utils.Error(c, http.StatusBadRequest, "invalid request body")
		return false
	}
	if err := validator.ValidateStruct(req); err != nil {
		utils.ValidationError(c, validator.Messages(err))
		return false
	}
	return true
}

func optionalQuery(c *gin.Context, key string) *string {
	v, ok := c.GetQuery(key)
	if !ok || v == "" || v == "null" {
		return nil
	}
	return &v
}

func optionalForm(c *gin.Context, key string) *string {
	v := c.PostForm(key)
	if v == "" || v == "null" {
		return nil
	}
	return &v
}

// respondError maps service errors onto the JSON envelope.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrShareNotFound):
		utils.NotFound(c, "share not found")
	case errors.Is(err, services.ErrNoSharePassword):
		utils.NotFound(c, "share has no password")
	case errors.Is(err, services.ErrNotFound), errors.Is(err, services.ErrUploadNotFound):
		utils.NotFound(c, err.Error())
	case errors.Is(err, services.ErrShareExpired):
		utils.Gone(c, "share has expired")
	case errors.Is(err, services.ErrPasswordRequired):
		utils.ErrorWithData(c, http.StatusUnauthorized, "password required", gin.H{"needsPassword": true})
	case errors.Is(err, services.ErrInvalidPassword), errors.Is(err, services.ErrInvalidCredentials):
		utils.Unauthorized(c, err.Error())
	case errors.Is(err, services.ErrSingleUseExhausted):
		utils.ErrorWithData(c, http.StatusForbidden, "this link has already been used", gin.H{"singleUseExhausted": true})
	case errors.Is(err, services.ErrForbidden):
		utils.Forbidden(c, "not part of this share")
	case errors.Is(err, services.ErrDirectoryNotEmpty):
		utils.Error(c, http.StatusConflict, err.Error())
	case errors.Is(err, services.ErrFileTooLarge):
		utils.Error(c, http.StatusRequestEntityTooLarge, err.Error())
	case errors.Is(err, services.ErrInvalidInput), errors.Is(err, services.ErrMimeNotAllowed):
		utils.Error(c, http.StatusBadRequest, err.Error())
	default:
		logrus.WithError(err).WithFields(logrus.Fields{
			"method": c.Request.Method,
			"path":   c.FullPath(),
		}).Error("request failed")
		utils.InternalError(c)
	}
}

// accessOutcome labels an admission result for the share access counter.
func accessOutcome(err error) string {
	switch {
	case err == nil:
		return "granted"
	case errors.Is(err, services.ErrShareNotFound):
		return "not_found"
	case errors.Is(err, services.ErrShareExpired):
		return "expired"
	case errors.Is(err, services.ErrPasswordRequired):
		return "password_required"
	case errors.Is(err, services.ErrInvalidPassword):
		return "invalid_password"
	case errors.Is(err, services.ErrForbidden):
		return "forbidden"
	case errors.Is(err, services.ErrSingleUseExhausted):
		return "single_use_exhausted"
	default:
		return "error"
	}
}

// streamBlob writes rc as the response body and closes it.
func streamBlob(c *gin.Context, rc io.ReadCloser, name, mimeType string, size int64, download bool) {
	defer rc.Close()

	disposition := "inline"
	if download {
		disposition = "attachment"
	}
	headers := map[string]string{
		"Content-Disposition":    mime.FormatMediaType(disposition, map[string]string{"filename": name}),
		"X-Content-Type-Options": "nosniff",
	}
	c.DataFromReader(http.StatusOK, size, mimeType, rc, headers)
}

func isTruthy(v string) bool {
	b, err := strconv.ParseBool(v)
	return err == nil && b
}
