package news

import (
	"context"
	"log"
	"time"

	"gorm.io/gorm"

	"ndr-radio/internal/clock"
	"ndr-radio/internal/models"
)

const (
	// RetentionWindow is how long stories stay in the feed before
	// cleanup sweeps them out.
	RetentionWindow = 48 * time.Hour

	// FreshnessWindow is the quota guard: a feed younger than this is
	// served from the database instead of hitting the provider again.
	FreshnessWindow = 15 * time.Minute
)

// Store keeps fetched stories in the database so the feed survives
// restarts and provider outages.
type Store struct {
	db    *gorm.DB
	clock clock.Clock
}

func NewStore(db *gorm.DB, clk clock.Clock) *Store {
	return &Store{db: db, clock: clk}
}

// Save replaces nothing; it appends the batch, stamped now.
func (s *Store) Save(ctx context.Context, items []models.NewsItem) error {
	if len(items) == 0 {
		return nil
	}
	now := s.clock.Now().UnixMilli()
	for i := range items {
		if items[i].Timestamp == 0 {
			items[i].Timestamp = now
		}
	}
	return s.db.WithContext(ctx).Create(&items).Error
}

// Recent returns retained stories, newest first.
func (s *Store) Recent(ctx context.Context) ([]models.NewsItem, error) {
	var items []models.NewsItem
	err := s.db.WithContext(ctx).
		Order("timestamp DESC").
		Find(&items).Error
	return items, err
}

// Fresh reports whether the newest stored story is inside the quota
// guard window.
func (s *Store) Fresh(ctx context.Context) (bool, error) {
	var newest models.NewsItem
	err := s.db.WithContext(ctx).Order("timestamp DESC").First(&newest).Error
	if err == gorm.ErrRecordNotFound {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	age := s.clock.Now().UnixMilli() - newest.Timestamp
	return age >= 0 && age < FreshnessWindow.Milliseconds(), nil
}

// Cleanup drops stories older than the retention window.
func (s *Store) Cleanup(ctx context.Context) error {
	cutoff := s.clock.Now().Add(-RetentionWindow).UnixMilli()
	res := s.db.WithContext(ctx).
		Where("timestamp < ?", cutoff).
		Delete(&models.NewsItem{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		log.Printf("🔄 Swept %d expired news items", res.RowsAffected)
	}
	return nil
}
