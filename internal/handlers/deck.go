package handlers

import (
	"net/http"

	"deckshare-backend/internal/models"
	"deckshare-backend/internal/services"
	"deckshare-backend/internal/utils"

	"github.com/gin-gonic/gin"
)

type DeckHandler struct {
	deckService  *services.DeckService
	shareService *services.ShareService
}

func NewDeckHandler(deckService *services.DeckService, shareService *services.ShareService) *DeckHandler {
	return &DeckHandler{deckService: deckService, shareService: shareService}
}

func (h *DeckHandler) GetDecks(c *gin.Context) {
	decks, err := h.deckService.List(c.Request.Context(), currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, decks)
}

func (h *DeckHandler) CreateDeck(c *gin.Context) {
	var req models.DeckCreateRequest
	if !bindJSON(c, &req) {
		return
	}

	deck, err := h.deckService.Create(c.Request.Context(), currentUserID(c), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessWithMessage(c, "deck created", deck)
}

func (h *DeckHandler) GetDeck(c *gin.Context) {
	deck, err := h.deckService.Get(c.Request.Context(), currentUserID(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, deck)
}

func (h *DeckHandler) UpdateDeck(c *gin.Context) {
	var req models.DeckUpdateRequest
	if !bindJSON(c, &req) {
		return
	}

	deck, err := h.deckService.Update(c.Request.Context(), currentUserID(c), c.Param("id"), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, deck)
}

func (h *DeckHandler) DeleteDeck(c *gin.Context) {
	if err := h.deckService.Delete(c.Request.Context(), currentUserID(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessWithMessage(c, "deck deleted", nil)
}

func (h *DeckHandler) GetItems(c *gin.Context) {
	items, err := h.deckService.Items(c.Request.Context(), currentUserID(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, items)
}

func (h *DeckHandler) AddItem(c *gin.Context) {
	var req models.DeckItemCreateRequest
	if !bindJSON(c, &req) {
		return
	}

	item, err := h.deckService.AddItem(c.Request.Context(), currentUserID(c), c.Param("id"), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessWithMessage(c, "item added", item)
}

func (h *DeckHandler) RemoveItem(c *gin.Context) {
	itemID := c.Query("itemId")
	if itemID == "" {
		utils.Error(c, http.StatusBadRequest, "itemId is required")
		return
	}

	if err := h.deckService.RemoveItem(c.Request.Context(), currentUserID(c), c.Param("id"), itemID); err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessWithMessage(c, "item removed", nil)
}

func (h *DeckHandler) GetHistory(c *gin.Context) {
	history, err := h.deckService.History(c.Request.Context(), currentUserID(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, history)
}

func (h *DeckHandler) CreateShare(c *gin.Context) {
	var req models.ShareCreateRequest
	if !bindJSON(c, &req) {
		return
	}

	share, err := h.shareService.Create(c.Request.Context(), currentUserID(c), c.Param("id"), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessWithMessage(c, "share created", share)
}
