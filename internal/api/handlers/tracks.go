package handlers

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/dhowden/tag"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"ndr-radio/internal/catalog"
	"ndr-radio/internal/models"
	"ndr-radio/internal/storage"
	"ndr-radio/internal/utils"
)

// TrackHandler serves the media library and admin uploads.
type TrackHandler struct {
	catalog *catalog.Catalog
	storage *storage.Client
}

func NewTrackHandler(cat *catalog.Catalog, st *storage.Client) *TrackHandler {
	return &TrackHandler{catalog: cat, storage: st}
}

// List returns the full library, newest first. Public; the frontend
// renders its playlist from this.
func (h *TrackHandler) List(c *gin.Context) {
	items, err := h.catalog.All()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"data": items,
		"meta": gin.H{"total": len(items)},
	})
}

// Upload ingests one audio file into storage and the catalog. The
// display name comes from the ID3 title when present, else from the
// cleaned filename.
func (h *TrackHandler) Upload(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file uploaded"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Unable to open file"})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Unable to read file"})
		return
	}

	name := utils.CleanFilename(fileHeader.Filename)
	if meta, err := tag.ReadFrom(bytes.NewReader(data)); err == nil && meta.Title() != "" {
		name = meta.Title()
	}

	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	key := fmt.Sprintf("media/%s%s", utils.Sanitize(name, uuid.NewString()), ext)

	contentType := fileHeader.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "audio/mpeg"
	}
	if err := h.storage.UploadMediaFile(key, bytes.NewReader(data), contentType); err != nil {
		log.Printf("❌ Upload failed for %s: %v", key, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Storage upload failed"})
		return
	}

	item := models.MediaItem{
		ID:   uuid.NewString(),
		Name: name,
		Key:  key,
		URL:  h.storage.PublicURL(key),
		Type: models.MediaAudio,
	}
	if err := h.catalog.Upsert(&item); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	log.Printf("✅ Ingested %s as %s", fileHeader.Filename, name)
	c.JSON(http.StatusCreated, item)
}

// Stream proxies a media object to the client. This is what makes the
// local storage backend playable at all; against S3 the public CDN URL
// is usually the better path.
func (h *TrackHandler) Stream(c *gin.Context) {
	id := c.Param("id")

	item, err := h.catalog.Lookup(id)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Track not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	obj, err := h.storage.DownloadFile(item.Key)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Media object missing"})
		return
	}
	defer obj.Body.Close()

	contentType := obj.ContentType
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = "audio/mpeg"
	}
	c.DataFromReader(http.StatusOK, obj.ContentLength, contentType, obj.Body, nil)
}

// Delete removes a track from the catalog and storage.
func (h *TrackHandler) Delete(c *gin.Context) {
	id := c.Param("id")

	item, err := h.catalog.Lookup(id)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Track not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	if err := h.catalog.Remove(id); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	if item.Key != "" {
		if err := h.storage.DeleteMediaFile(item.Key); err != nil {
			// The row is already gone; an orphaned object is survivable.
			log.Printf("⚠️ Failed to delete storage object %s: %v", item.Key, err)
		}
	}

	c.JSON(http.StatusOK, gin.H{"status": "deleted", "id": id})
}
