package broadcast

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"ndr-radio/internal/clock"
	"ndr-radio/internal/news"
	"ndr-radio/internal/player"
)

// Synthesizer turns a narration script into raw PCM. A nil buffer with
// a nil error means the provider had nothing usable; the caller skips
// that segment.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) ([]byte, error)
}

// OverlayPlayer accepts synthesized audio for on-air playback. The
// player gate satisfies this.
type OverlayPlayer interface {
	RequestPlay(ctx context.Context, pcm []byte, kind string) error
}

// LogSink records broadcast events for the public log feed.
type LogSink interface {
	Append(ctx context.Context, action string) error
}

// ErrBulletinInFlight is returned to a manual trigger that collides
// with a bulletin already on air.
var ErrBulletinInFlight = errors.New("broadcast: a bulletin is already in flight")

var (
	bulletinsFired = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "radio_bulletins_fired_total",
			Help: "News bulletins put on air, by format.",
		},
		[]string{"format"},
	)
	bulletinsSkipped = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "radio_bulletins_skipped_total",
		Help: "Bulletin slots skipped because one was already in flight.",
	})
	bulletinFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "radio_bulletin_failures_total",
			Help: "Bulletin runs that aborted, by stage.",
		},
		[]string{"stage"},
	)
)

// RegisterMetrics registers broadcast metrics with the default
// Prometheus registry.
func RegisterMetrics() {
	prometheus.MustRegister(bulletinsFired)
	prometheus.MustRegister(bulletinsSkipped)
	prometheus.MustRegister(bulletinFailures)
}

// Scheduler drives the hourly broadcast clock. A one-second heartbeat
// watches for the grid's minutes; an in-flight guard shared with the
// manual trigger keeps at most one bulletin on air, and a fired-slot
// tag keeps a slot from firing twice within its minute.
type Scheduler struct {
	grid  Grid
	clock clock.Clock

	station    string
	newscaster string
	location   string

	provider news.Provider
	synth    Synthesizer
	player   OverlayPlayer
	logs     LogSink

	inFlight  atomic.Bool
	lastFired atomic.Value // "hour:minute" of the last fired slot
}

func NewScheduler(grid Grid, clk clock.Clock, station, newscaster, location string,
	provider news.Provider, synth Synthesizer, out OverlayPlayer, logs LogSink) *Scheduler {
	s := &Scheduler{
		grid:       grid,
		clock:      clk,
		station:    station,
		newscaster: newscaster,
		location:   location,
		provider:   provider,
		synth:      synth,
		player:     out,
		logs:       logs,
	}
	s.lastFired.Store("")
	return s
}

// Run blocks on the heartbeat until ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) {
	log.Printf("🚀 Broadcast scheduler running (full at :%02d, headlines at :%02d)",
		s.grid.FullMinute, s.grid.HeadlineMinute)
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			log.Printf("✅ Broadcast scheduler stopped")
			return
		case <-ticker.C:
			s.Tick(ctx)
		}
	}
}

// Tick checks the wall clock against the grid and fires a bulletin if
// its slot just arrived. Exported so tests can beat the clock by hand.
func (s *Scheduler) Tick(ctx context.Context) {
	now := s.clock.Now()
	minute := now.Minute()

	var brief bool
	switch minute {
	case s.grid.FullMinute:
		brief = false
	case s.grid.HeadlineMinute:
		brief = true
	default:
		return
	}

	tag := fmt.Sprintf("%d:%d", now.Hour(), minute)
	if s.lastFired.Load() == tag {
		return
	}

	if !s.inFlight.CompareAndSwap(false, true) {
		bulletinsSkipped.Inc()
		return
	}
	defer s.inFlight.Store(false)

	s.lastFired.Store(tag)
	s.fire(ctx, brief)
}

// Trigger runs a bulletin outside the grid, for the admin console.
// Unlike the heartbeat it reports a collision instead of silently
// skipping.
func (s *Scheduler) Trigger(ctx context.Context, brief bool) error {
	if !s.inFlight.CompareAndSwap(false, true) {
		return ErrBulletinInFlight
	}
	defer s.inFlight.Store(false)

	log.Printf("📥 Manual bulletin trigger (brief=%v)", brief)
	s.fire(ctx, brief)
	return nil
}

// fire runs one bulletin end to end. Nothing here propagates an error:
// a dead news provider or a mute synthesizer must never take the music
// down.
func (s *Scheduler) fire(ctx context.Context, brief bool) {
	format := "full"
	if brief {
		format = "headlines"
	}

	report, err := s.provider.Fetch(ctx, s.location)
	if err != nil {
		log.Printf("❌ Bulletin aborted, news fetch failed: %v", err)
		bulletinFailures.WithLabelValues("fetch").Inc()
		return
	}
	if report == nil || len(report.Items) == 0 {
		log.Printf("⚠️ No news available for %s bulletin", format)
		bulletinFailures.WithLabelValues("empty").Inc()
		return
	}

	items := report.Items
	max := s.grid.MaxFullItems
	if brief {
		max = s.grid.MaxHeadlineItems
	}
	if len(items) > max {
		items = items[:max]
	}

	s.playSegment(ctx, s.grid.JingleIntro, player.KindJingle)

	now := s.clock.Now()
	script := BuildScript(ScriptParams{
		Station:    s.station,
		Newscaster: s.newscaster,
		Location:   s.location,
		LocalTime:  now.Format("3:04 PM"),
		Items:      items,
		Weather:    report.Weather,
		Brief:      brief,
	})

	if s.playSegment(ctx, script, player.KindNews) {
		s.record(ctx, fmt.Sprintf("%s bulletin broadcast at %s", titleFor(brief), now.Format("3:04:05 PM")))
		bulletinsFired.WithLabelValues(format).Inc()
	}

	s.playSegment(ctx, s.grid.JingleOutro, player.KindJingle)
	log.Printf("✅ %s bulletin completed", titleFor(brief))
}

// playSegment synthesizes and plays one narration segment, reporting
// whether anything actually went on air.
func (s *Scheduler) playSegment(ctx context.Context, text, kind string) bool {
	pcm, err := s.synth.Synthesize(ctx, text)
	if err != nil {
		log.Printf("⚠️ Synthesis failed for %s segment: %v", kind, err)
		bulletinFailures.WithLabelValues("synth").Inc()
		return false
	}
	if len(pcm) == 0 {
		return false
	}
	if err := s.player.RequestPlay(ctx, pcm, kind); err != nil {
		log.Printf("⚠️ Playback failed for %s segment: %v", kind, err)
		bulletinFailures.WithLabelValues("play").Inc()
		return false
	}
	return true
}

// PlayJingle puts a station sting on air, sharing the in-flight guard
// with the bulletins. n selects 1 for the intro, 2 for the outro.
func (s *Scheduler) PlayJingle(ctx context.Context, n int) error {
	text := s.grid.JingleIntro
	if n == 2 {
		text = s.grid.JingleOutro
	}
	if !s.inFlight.CompareAndSwap(false, true) {
		return ErrBulletinInFlight
	}
	defer s.inFlight.Store(false)

	s.playSegment(ctx, text, player.KindJingle)
	return nil
}

// Announce reads an admin message on air, framed by the station
// jingles like a bulletin.
func (s *Scheduler) Announce(ctx context.Context, text string) error {
	if !s.inFlight.CompareAndSwap(false, true) {
		return ErrBulletinInFlight
	}
	defer s.inFlight.Store(false)

	s.playSegment(ctx, s.grid.JingleIntro, player.KindJingle)
	if s.playSegment(ctx, text, player.KindNews) {
		s.record(ctx, fmt.Sprintf("Announcement broadcast at %s", s.clock.Now().Format("3:04:05 PM")))
	}
	s.playSegment(ctx, s.grid.JingleOutro, player.KindJingle)
	return nil
}

func (s *Scheduler) record(ctx context.Context, action string) {
	if s.logs == nil {
		return
	}
	if err := s.logs.Append(ctx, action); err != nil {
		log.Printf("⚠️ Failed to record broadcast log: %v", err)
	}
}

func titleFor(brief bool) string {
	if brief {
		return "Headlines"
	}
	return "Full"
}
