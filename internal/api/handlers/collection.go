package handlers

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/LooWze/LooWzeIA/internal/models"
	"github.com/LooWze/LooWzeIA/internal/services"
)

type CollectionHandler struct {
	collection *services.CollectionService
	logger     *slog.Logger
}

func NewCollectionHandler(collection *services.CollectionService, logger *slog.Logger) *CollectionHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &CollectionHandler{collection: collection, logger: logger}
}

// ConfirmCard saves a card chosen from the suggestions (or entered by hand).
func (h *CollectionHandler) ConfirmCard(c *gin.Context) {
	var req models.ConfirmCardRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	card, err := h.collection.Confirm(c.Request.Context(), currentUserID(c), req)
	if err != nil {
		h.logger.Error("confirm card failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save card"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": fmt.Sprintf("Card %s (%s) added", card.Name, card.Finish),
		"card":    card,
	})
}

func (h *CollectionHandler) GetCollection(c *gin.Context) {
	var filter models.CollectionFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	cards, err := h.collection.List(c.Request.Context(), currentUserID(c), filter)
	if err != nil {
		h.logger.Error("list collection failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list collection"})
		return
	}

	c.JSON(http.StatusOK, cards)
}

func (h *CollectionHandler) GetValue(c *gin.Context) {
	value, err := h.collection.Value(c.Request.Context(), currentUserID(c))
	if err != nil {
		h.logger.Error("collection value failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute collection value"})
		return
	}

	c.JSON(http.StatusOK, value)
}

func (h *CollectionHandler) GetStats(c *gin.Context) {
	stats, err := h.collection.Stats(c.Request.Context(), currentUserID(c))
	if err != nil {
		h.logger.Error("collection stats failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute collection stats"})
		return
	}

	c.JSON(http.StatusOK, stats)
}
