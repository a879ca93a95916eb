package handlers

import (
	"errors"
	"mime/multipart"
	"net/http"

	"deckshare-backend/internal/config"
	"deckshare-backend/internal/metrics"
	"deckshare-backend/internal/models"
	"deckshare-backend/internal/services"
	"deckshare-backend/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// multipart parts above this size spill to temp files
const multipartMemory = 32 << 20

type FileHandler struct {
	fileService   *services.FileService
	uploadService *services.UploadService
	metrics       *metrics.Metrics
	config        *config.Config
}

func NewFileHandler(fileService *services.FileService, uploadService *services.UploadService, m *metrics.Metrics, cfg *config.Config) *FileHandler {
	return &FileHandler{
		fileService:   fileService,
		uploadService: uploadService,
		metrics:       m,
		config:        cfg,
	}
}

func (h *FileHandler) GetFiles(c *gin.Context) {
	files, err := h.fileService.List(c.Request.Context(), currentUserID(c), optionalQuery(c, "directoryId"))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, files)
}

// UploadFiles accepts one or more "files" parts. The whole batch stops at
// the first rejected part; parts stored before it are kept.
func (h *FileHandler) UploadFiles(c *gin.Context) {
	if err := c.Request.ParseMultipartForm(multipartMemory); err != nil {
		utils.Error(c, http.StatusBadRequest, "invalid multipart form")
		return
	}

	headers := c.Request.MultipartForm.File["files"]
	if len(headers) == 0 {
		utils.Error(c, http.StatusBadRequest, "no files uploaded")
		return
	}
	directoryID := optionalForm(c, "directoryId")

	uploaded := make([]*models.File, 0, len(headers))
	for _, header := range headers {
		file, err := h.storePart(c, directoryID, header)
		if err != nil {
			respondError(c, err)
			return
		}
		uploaded = append(uploaded, file)
	}

	utils.SuccessWithMessage(c, "files uploaded", uploaded)
}

func (h *FileHandler) storePart(c *gin.Context, directoryID *string, header *multipart.FileHeader) (*models.File, error) {
	if header.Size > h.config.Upload.MaxFileSize {
		return nil, services.ErrFileTooLarge
	}

	part, err := header.Open()
	if err != nil {
		return nil, err
	}
	defer part.Close()

	file, err := h.fileService.Upload(c.Request.Context(), currentUserID(c), directoryID,
		header.Filename, header.Header.Get("Content-Type"), part, header.Size)
	if err != nil {
		return nil, err
	}
	h.metrics.Uploaded(file.Size)
	return file, nil
}

func (h *FileHandler) GetFile(c *gin.Context) {
	file, err := h.fileService.Get(c.Request.Context(), currentUserID(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, file)
}

func (h *FileHandler) RenameFile(c *gin.Context) {
	var req models.RenameRequest
	if !bindJSON(c, &req) {
		return
	}

	file, err := h.fileService.Rename(c.Request.Context(), currentUserID(c), c.Param("id"), req.Name)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, file)
}

func (h *FileHandler) ViewFile(c *gin.Context) {
	file, rc, err := h.fileService.Open(c.Request.Context(), currentUserID(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	streamBlob(c, rc, file.Name, file.MimeType, file.Size, isTruthy(c.Query("download")))
}

func (h *FileHandler) DeleteFile(c *gin.Context) {
	if err := h.fileService.Delete(c.Request.Context(), currentUserID(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessWithMessage(c, "file deleted", nil)
}

func (h *FileHandler) InitUpload(c *gin.Context) {
	uploadID, err := h.uploadService.Init()
	if err != nil {
		utils.InternalError(c)
		return
	}
	utils.Success(c, gin.H{"uploadId": uploadID})
}

func (h *FileHandler) UploadChunk(c *gin.Context) {
	uploadID := c.PostForm("uploadId")
	chunk, _, err := c.Request.FormFile("chunk")
	if uploadID == "" || err != nil {
		utils.Error(c, http.StatusBadRequest, "uploadId and chunk are required")
		return
	}
	defer chunk.Close()

	n, err := h.uploadService.Chunk(uploadID, chunk)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, gin.H{"uploadId": uploadID, "received": n})
}

func (h *FileHandler) CompleteUpload(c *gin.Context) {
	var req models.UploadCompleteRequest
	if !bindJSON(c, &req) {
		return
	}

	file, err := h.uploadService.Complete(c.Request.Context(), currentUserID(c), &req)
	if err != nil {
		if !errors.Is(err, services.ErrMimeNotAllowed) {
			logrus.WithError(err).WithField("upload_id", req.UploadID).Warn("upload completion failed")
		}
		respondError(c, err)
		return
	}
	h.metrics.Uploaded(file.Size)
	utils.SuccessWithMessage(c, "file uploaded", file)
}
