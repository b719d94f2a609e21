package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"ndr-radio/internal/config"
	"ndr-radio/internal/models"
)

// RedisChannel is the cloud binding: the canonical record is a single
// DB row (id=1) updated partially by the admin, and each write is
// fanned out to every station process through a Redis pub/sub channel
// carrying the full updated row. Subscribers read the row once on
// mount for their initial snapshot.
type RedisChannel struct {
	client  *redis.Client
	db      *gorm.DB
	channel string

	ctx    context.Context
	cancel context.CancelFunc

	now func() time.Time
}

func NewRedisChannel(cfg *config.Config, db *gorm.DB) (*RedisChannel, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Sync.RedisAddr,
		Password: cfg.Sync.RedisPassword,
		DB:       cfg.Sync.RedisDB,
	})

	ctx, cancel := context.WithCancel(context.Background())
	if err := client.Ping(ctx).Err(); err != nil {
		cancel()
		return nil, fmt.Errorf("realtime: redis unreachable: %w", err)
	}

	// Ensure the singleton row exists on startup
	seed := models.StationState{ID: 1}
	if err := db.FirstOrCreate(&seed, models.StationState{ID: 1}).Error; err != nil {
		cancel()
		return nil, err
	}

	return &RedisChannel{
		client:  client,
		db:      db,
		channel: cfg.Sync.ChannelName,
		ctx:     ctx,
		cancel:  cancel,
		now:     time.Now,
	}, nil
}

func (c *RedisChannel) Subscribe(fn Handler) (func(), error) {
	// 1. Point read for the initial snapshot.
	state, err := c.Snapshot()
	if err != nil {
		return nil, err
	}
	fn(state)

	// 2. Follow pushed updates.
	pubsub := c.client.Subscribe(c.ctx, c.channel)
	go func() {
		for msg := range pubsub.Channel() {
			var st models.StationState
			if err := json.Unmarshal([]byte(msg.Payload), &st); err != nil {
				log.Printf("⚠️ Bad station state payload: %v", err)
				continue
			}
			deliveries.Inc()
			fn(st)
		}
	}()

	return func() { _ = pubsub.Close() }, nil
}

func (c *RedisChannel) Publish(patch StatePatch) error {
	var state models.StationState

	// Merge-and-store is a single transaction so the row never holds a
	// half-applied patch, then the full row goes out on the wire.
	err := c.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&state, 1).Error; err != nil {
			return err
		}
		patch.Apply(&state, c.now().UnixMilli())
		return tx.Model(&models.StationState{ID: 1}).Updates(map[string]interface{}{
			"is_playing": state.IsPlaying,
			"track_id":   state.TrackID,
			"track_name": state.TrackName,
			"track_url":  state.TrackURL,
			"started_at": state.StartedAt,
			"duration":   state.Duration,
			"updated_at": state.UpdatedAt,
		}).Error
	})
	if err != nil {
		return err
	}

	payload, err := json.Marshal(state)
	if err != nil {
		return err
	}
	publishes.WithLabelValues("redis").Inc()
	return c.client.Publish(c.ctx, c.channel, payload).Err()
}

func (c *RedisChannel) Snapshot() (models.StationState, error) {
	var state models.StationState
	err := c.db.First(&state, 1).Error
	return state, err
}

func (c *RedisChannel) Close() error {
	c.cancel()
	return c.client.Close()
}
