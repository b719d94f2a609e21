package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"ndr-radio/internal/broadcast"
	"ndr-radio/internal/news"
)

// FeedHandler serves the public news and broadcast-log feeds.
type FeedHandler struct {
	news *news.Store
	logs *broadcast.LogStore
}

func NewFeedHandler(store *news.Store, logs *broadcast.LogStore) *FeedHandler {
	return &FeedHandler{news: store, logs: logs}
}

// News returns the retained stories, newest first.
func (h *FeedHandler) News(c *gin.Context) {
	items, err := h.news.Recent(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": items})
}

// Logs returns recent broadcast events. ?limit caps the page.
func (h *FeedHandler) Logs(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	entries, err := h.logs.Recent(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": entries})
}
