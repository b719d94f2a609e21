package broadcast

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"ndr-radio/internal/clock"
	"ndr-radio/internal/models"
)

// LogStore persists broadcast events and serves the public log feed.
type LogStore struct {
	db    *gorm.DB
	clock clock.Clock
}

func NewLogStore(db *gorm.DB, clk clock.Clock) *LogStore {
	return &LogStore{db: db, clock: clk}
}

func (s *LogStore) Append(ctx context.Context, action string) error {
	entry := models.BroadcastLog{
		ID:        uuid.NewString(),
		Action:    action,
		Timestamp: s.clock.Now().UnixMilli(),
	}
	return s.db.WithContext(ctx).Create(&entry).Error
}

// Recent returns the newest entries first, capped at limit.
func (s *LogStore) Recent(ctx context.Context, limit int) ([]models.BroadcastLog, error) {
	if limit <= 0 {
		limit = 50
	}
	var logs []models.BroadcastLog
	err := s.db.WithContext(ctx).
		Order("timestamp DESC").
		Limit(limit).
		Find(&logs).Error
	return logs, err
}
