package handlers

import (
	"deckshare-backend/internal/models"
	"deckshare-backend/internal/services"
	"deckshare-backend/internal/utils"

	"github.com/gin-gonic/gin"
)

type DirectoryHandler struct {
	directoryService *services.DirectoryService
}

func NewDirectoryHandler(directoryService *services.DirectoryService) *DirectoryHandler {
	return &DirectoryHandler{directoryService: directoryService}
}

// GetDirectories lists one level, or the whole tree with ?tree=true.
func (h *DirectoryHandler) GetDirectories(c *gin.Context) {
	var (
		dirs []models.Directory
		err  error
	)
	if isTruthy(c.Query("tree")) {
		dirs, err = h.directoryService.Tree(c.Request.Context(), currentUserID(c))
	} else {
		dirs, err = h.directoryService.List(c.Request.Context(), currentUserID(c), optionalQuery(c, "parentId"))
	}
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, dirs)
}

func (h *DirectoryHandler) CreateDirectory(c *gin.Context) {
	var req models.DirectoryCreateRequest
	if !bindJSON(c, &req) {
		return
	}

	dir, err := h.directoryService.Create(c.Request.Context(), currentUserID(c), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessWithMessage(c, "directory created", dir)
}

func (h *DirectoryHandler) RenameDirectory(c *gin.Context) {
	var req models.RenameRequest
	if !bindJSON(c, &req) {
		return
	}

	dir, err := h.directoryService.Rename(c.Request.Context(), currentUserID(c), c.Param("id"), req.Name)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, dir)
}

func (h *DirectoryHandler) DeleteDirectory(c *gin.Context) {
	if err := h.directoryService.Delete(c.Request.Context(), currentUserID(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessWithMessage(c, "directory deleted", nil)
}
