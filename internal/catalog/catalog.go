package catalog

import (
	"errors"
	"sort"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"ndr-radio/internal/models"
)

var ErrNotFound = errors.New("catalog: item not found")

// Catalog is the read surface the sync engine builds its shared
// playlist from, plus the admin write operations behind it.
type Catalog struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Catalog {
	return &Catalog{db: db}
}

// Playlist returns the audio subset sorted case-insensitively by name.
// The sort happens here, in Go, NOT in SQL: database collations differ
// between sqlite and postgres, and the slot scheduler needs the exact
// same ordering on every client.
func (c *Catalog) Playlist() ([]models.MediaItem, error) {
	var items []models.MediaItem
	if err := c.db.Where("type = ?", models.MediaAudio).Find(&items).Error; err != nil {
		return nil, err
	}
	sort.SliceStable(items, func(i, j int) bool {
		a, b := strings.ToLower(items[i].Name), strings.ToLower(items[j].Name)
		if a == b {
			return items[i].ID < items[j].ID
		}
		return a < b
	})
	return items, nil
}

// All returns every catalog item regardless of type, newest first.
func (c *Catalog) All() ([]models.MediaItem, error) {
	var items []models.MediaItem
	err := c.db.Order("timestamp DESC").Find(&items).Error
	return items, err
}

func (c *Catalog) Lookup(id string) (*models.MediaItem, error) {
	if id == "" {
		return nil, ErrNotFound
	}
	var item models.MediaItem
	err := c.db.First(&item, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// LookupByName resolves a track by exact name. Listeners fall back to
// this when a synced track id doesn't exist in their local catalog.
func (c *Catalog) LookupByName(name string) (*models.MediaItem, error) {
	if name == "" {
		return nil, ErrNotFound
	}
	var item models.MediaItem
	err := c.db.First(&item, "name = ?", name).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (c *Catalog) Upsert(item *models.MediaItem) error {
	if item.Timestamp == 0 {
		item.Timestamp = time.Now().UnixMilli()
	}
	return c.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		UpdateAll: true,
	}).Create(item).Error
}

func (c *Catalog) Remove(id string) error {
	result := c.db.Delete(&models.MediaItem{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
