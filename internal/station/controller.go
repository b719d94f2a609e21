package station

import (
	"context"
	"errors"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"ndr-radio/internal/catalog"
	"ndr-radio/internal/clock"
	"ndr-radio/internal/globalsync"
	"ndr-radio/internal/models"
	"ndr-radio/internal/player"
	"ndr-radio/internal/realtime"
)

// Role decides whether this process drives the station or follows it.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleListener Role = "listener"
)

// StalenessWindow is how old a broadcast start timestamp may be before
// a joining listener gives up on deriving an offset and starts at the
// track head.
const StalenessWindow = 2 * time.Hour

// Ephemeral URL schemes never resolve across processes, so a listener
// refuses to load them.
var ephemeralPrefixes = []string{"blob:", "data:"}

var ErrEmptyPlaylist = errors.New("station: playlist is empty")

var (
	tracksPushed = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "radio_tracks_pushed_total",
		Help: "Tracks pushed to air by the admin.",
	})
	reconciliations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "radio_reconciliations_total",
			Help: "Listener reconciliations against incoming station state, by outcome.",
		},
		[]string{"outcome"},
	)
)

// RegisterMetrics registers station metrics with the default registry.
func RegisterMetrics() {
	prometheus.MustRegister(tracksPushed)
	prometheus.MustRegister(reconciliations)
}

// Controller runs one station process. The admin instance is the single
// writer of shared state; listener instances subscribe and reconcile
// their local player against whatever arrives.
type Controller struct {
	role    Role
	catalog *catalog.Catalog
	channel realtime.Channel
	engine  *player.Engine
	clock   clock.Clock

	// playJingle runs a short voice sting before a track change. Nil
	// when the broadcast stack is disabled.
	playJingle func(ctx context.Context)

	mu          sync.Mutex
	unsubscribe func()
}

func NewController(role Role, cat *catalog.Catalog, ch realtime.Channel, eng *player.Engine, clk clock.Clock) *Controller {
	return &Controller{
		role:    role,
		catalog: cat,
		channel: ch,
		engine:  eng,
		clock:   clk,
	}
}

// SetJingle installs the transition sting played before admin track
// changes.
func (c *Controller) SetJingle(fn func(ctx context.Context)) {
	c.playJingle = fn
}

func (c *Controller) Role() Role { return c.role }

// Start wires the controller to the sync channel. Listeners subscribe
// and reconcile; the admin instead hooks track completion so the
// playlist advances.
func (c *Controller) Start(ctx context.Context) error {
	if c.role == RoleAdmin {
		c.engine.SetOnEnded(func() {
			if err := c.SkipNext(ctx); err != nil {
				log.Printf("⚠️ Auto-advance failed: %v", err)
			}
		})
		log.Printf("🚀 Station controller started as admin")
		return nil
	}

	unsub, err := c.channel.Subscribe(func(state models.StationState) {
		c.apply(state)
	})
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.unsubscribe = unsub
	c.mu.Unlock()
	log.Printf("🚀 Station controller started as listener")
	return nil
}

// Stop detaches from the sync channel.
func (c *Controller) Stop() {
	c.mu.Lock()
	unsub := c.unsubscribe
	c.unsubscribe = nil
	c.mu.Unlock()
	if unsub != nil {
		unsub()
	}
}

// apply reconciles the local player against an incoming state row.
// The admin wrote that row itself, so it ignores the echo.
func (c *Controller) apply(state models.StationState) {
	if c.role == RoleAdmin {
		return
	}

	if !state.IsPlaying {
		c.engine.Pause()
		reconciliations.WithLabelValues("paused").Inc()
		return
	}

	url := c.resolveSource(state)
	if url == "" {
		log.Printf("⚠️ Cannot resolve broadcast track %q (%s), keeping current source", state.TrackName, state.TrackID)
		reconciliations.WithLabelValues("unresolved").Inc()
		return
	}

	offset := state.Elapsed(c.clock.Now().UnixMilli(), StalenessWindow.Milliseconds())

	c.engine.SetSource(url)
	c.engine.Seek(offset)
	c.engine.Play()
	reconciliations.WithLabelValues("applied").Inc()
	log.Printf("▶️ Synced to broadcast: %s at %.1fs", state.TrackName, offset)
}

// resolveSource maps a state row to a playable URL: catalog id first,
// then exact name, then the broadcast URL itself unless it is an
// ephemeral scheme from another process.
func (c *Controller) resolveSource(state models.StationState) string {
	if state.TrackID != "" {
		if item, err := c.catalog.Lookup(state.TrackID); err == nil {
			return item.URL
		}
	}
	if state.TrackName != "" {
		if item, err := c.catalog.LookupByName(state.TrackName); err == nil {
			return item.URL
		}
	}
	if state.TrackURL == "" {
		return ""
	}
	for _, p := range ephemeralPrefixes {
		if strings.HasPrefix(state.TrackURL, p) {
			return ""
		}
	}
	return state.TrackURL
}

// Toggle flips play/pause. Pausing records the current offset so a
// later resume rewrites StartedAt to keep every listener's derived
// position continuous.
func (c *Controller) Toggle(ctx context.Context) (bool, error) {
	if c.role != RoleAdmin {
		return false, errors.New("station: only the admin can toggle playback")
	}

	now := c.clock.Now().UnixMilli()
	if c.engine.Playing() {
		pos := c.engine.Position()
		c.engine.Pause()
		err := c.channel.Publish(realtime.StatePatch{
			IsPlaying: realtime.Bool(false),
			StartedAt: realtime.Int64(now - int64(pos*1000)),
		})
		return false, err
	}

	if c.engine.Source() == "" {
		if err := c.CueGlobal(ctx); err != nil {
			return false, err
		}
		// Stays false when the playlist was empty and nothing cued.
		return c.engine.Playing(), nil
	}

	pos := c.engine.Position()
	c.engine.Play()
	err := c.channel.Publish(realtime.StatePatch{
		IsPlaying: realtime.Bool(true),
		StartedAt: realtime.Int64(now - int64(pos*1000)),
	})
	return true, err
}

// PushTrack puts a specific catalog track on air from its head.
func (c *Controller) PushTrack(ctx context.Context, id string) (*models.MediaItem, error) {
	if c.role != RoleAdmin {
		return nil, errors.New("station: only the admin can push tracks")
	}
	item, err := c.catalog.Lookup(id)
	if err != nil {
		return nil, err
	}
	return item, c.broadcast(item, 0)
}

// SkipNext plays the transition jingle, then cues whichever track the
// global wall-clock slot points at right now.
func (c *Controller) SkipNext(ctx context.Context) error {
	if c.role != RoleAdmin {
		return errors.New("station: only the admin can skip")
	}
	if c.playJingle != nil {
		c.playJingle(ctx)
	}
	return c.CueGlobal(ctx)
}

// CueGlobal derives the track every station on the planet should be
// playing this instant and puts it on air. An empty playlist is a
// silent no-op.
func (c *Controller) CueGlobal(ctx context.Context) error {
	playlist, err := c.catalog.Playlist()
	if err != nil {
		return err
	}
	slot, item := globalsync.PickSlot(c.clock.Now().UnixMilli(), playlist)
	if item == nil {
		log.Printf("⚠️ Playlist empty, nothing to cue")
		return nil
	}
	log.Printf("📥 Global slot %d: %s", slot, item.Name)
	return c.broadcast(item, 0)
}

// Seek moves the on-air position to an absolute offset in seconds.
func (c *Controller) Seek(ctx context.Context, seconds float64) error {
	if c.role != RoleAdmin {
		return errors.New("station: only the admin can seek")
	}
	if seconds < 0 {
		seconds = 0
	}
	c.engine.Seek(seconds)
	now := c.clock.Now().UnixMilli()
	return c.channel.Publish(realtime.StatePatch{
		StartedAt: realtime.Int64(now - int64(seconds*1000)),
	})
}

func (c *Controller) broadcast(item *models.MediaItem, offset float64) error {
	c.engine.SetSource(item.URL)
	c.engine.Seek(offset)
	c.engine.Play()

	now := c.clock.Now().UnixMilli()
	err := c.channel.Publish(realtime.StatePatch{
		IsPlaying: realtime.Bool(true),
		TrackID:   realtime.Str(item.ID),
		TrackName: realtime.Str(item.Name),
		TrackURL:  realtime.Str(item.URL),
		StartedAt: realtime.Int64(now - int64(offset*1000)),
		Duration:  realtime.Float64(item.Duration),
	})
	if err != nil {
		return err
	}
	tracksPushed.Inc()
	log.Printf("▶️ On air: %s", item.Name)
	return nil
}

// State returns the current shared station state.
func (c *Controller) State() (models.StationState, error) {
	return c.channel.Snapshot()
}
