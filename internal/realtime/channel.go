package realtime

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/gorm"

	"ndr-radio/internal/config"
	"ndr-radio/internal/models"
)

// Metrics
var (
	publishes = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "radio_state_publishes_total", Help: "Station state writes"},
		[]string{"transport"},
	)
	deliveries = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "radio_state_deliveries_total", Help: "State updates delivered to subscribers"},
	)
)

func RegisterMetrics() {
	prometheus.MustRegister(publishes, deliveries)
}

// Handler receives station state snapshots.
type Handler func(models.StationState)

// Channel is the single-writer/multi-reader station state primitive.
// Exactly one client (the admin role) publishes; every subscriber gets
// the current snapshot immediately, then each update in write order.
type Channel interface {
	// Subscribe registers a handler and returns an unsubscribe func.
	// The initial snapshot is delivered before Subscribe returns any
	// later update to the same handler.
	Subscribe(fn Handler) (func(), error)

	// Publish merges the patch into the shared record and stamps
	// UpdatedAt. Admin-only by convention; there is no server-side
	// enforcement (documented single-writer hazard).
	Publish(patch StatePatch) error

	// Snapshot returns the current shared record.
	Snapshot() (models.StationState, error)

	Close() error
}

// StatePatch is a typed partial update. Nil fields are left untouched;
// this is merged field-by-field against the canonical record, never a
// loose map.
type StatePatch struct {
	IsPlaying *bool
	TrackID   *string
	TrackName *string
	TrackURL  *string
	StartedAt *int64   // epoch millis
	Duration  *float64 // seconds
}

// Apply merges the patch into state and stamps UpdatedAt.
func (p StatePatch) Apply(state *models.StationState, nowMillis int64) {
	if p.IsPlaying != nil {
		state.IsPlaying = *p.IsPlaying
	}
	if p.TrackID != nil {
		state.TrackID = *p.TrackID
	}
	if p.TrackName != nil {
		state.TrackName = *p.TrackName
	}
	if p.TrackURL != nil {
		state.TrackURL = *p.TrackURL
	}
	if p.StartedAt != nil {
		state.StartedAt = *p.StartedAt
	}
	if p.Duration != nil {
		state.Duration = *p.Duration
	}
	state.UpdatedAt = nowMillis
}

// Helpers for building patches inline.
func Bool(v bool) *bool          { return &v }
func Str(v string) *string       { return &v }
func Int64(v int64) *int64       { return &v }
func Float64(v float64) *float64 { return &v }

// New selects the transport binding from config.
func New(cfg *config.Config, db *gorm.DB) (Channel, error) {
	switch cfg.Sync.Transport {
	case "redis":
		return NewRedisChannel(cfg, db)
	case "local", "":
		return NewLocalChannel(), nil
	default:
		return nil, fmt.Errorf("realtime: unknown sync transport %q", cfg.Sync.Transport)
	}
}
