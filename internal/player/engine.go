package player

import (
	"context"
	"encoding/binary"
	"log"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"ndr-radio/internal/clock"
)

// Status describes what the engine is doing with the current track.
type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusPlaying
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusLoading:
		return "loading"
	case StatusPlaying:
		return "playing"
	case StatusError:
		return "error"
	}
	return "unknown"
}

// Overlay kinds, used for metrics labels and log lines.
const (
	KindNews   = "news"
	KindJingle = "jingle"
)

const (
	// DuckRatio is the fraction of the user volume the music track is
	// lowered to while an overlay speaks over it.
	DuckRatio = 0.15

	// RampDuration is how long a gain transition takes. Gain moves
	// linearly, so at RampDuration past the transition start the gain
	// sits exactly on its target.
	RampDuration = 100 * time.Millisecond

	// MinOverlayBytes filters out empty or truncated synthesis results.
	// Anything shorter than this is silently dropped.
	MinOverlayBytes = 100
)

var (
	overlaysPlayed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "radio_overlays_played_total",
			Help: "Voice overlays mixed over the music bed, by kind.",
		},
		[]string{"kind"},
	)
	overlaySeconds = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "radio_overlay_seconds_total",
			Help: "Total seconds of overlay audio played.",
		},
	)
)

// RegisterMetrics registers the player metrics with the default
// Prometheus registry. Call once at startup.
func RegisterMetrics() {
	prometheus.MustRegister(overlaysPlayed)
	prometheus.MustRegister(overlaySeconds)
}

// Output is where decoded overlay audio goes. The default discards it,
// which is what a headless station process wants; a real frontend plugs
// its audio device in here.
type Output interface {
	PlayOverlay(samples []int16, kind string) error
}

type discardOutput struct{}

func (discardOutput) PlayOverlay([]int16, string) error { return nil }

// Engine models the audio element of a station: one music source with
// play/pause/seek/volume, plus voice overlays that duck the music while
// they run. It keeps no real audio pipeline; position advances against
// the injected clock so the whole thing is testable.
type Engine struct {
	mu sync.Mutex

	clock  clock.Clock
	status Status

	source  string
	playing bool

	// position is the seek offset at posStamp; the live position is
	// position plus wall time elapsed since posStamp while playing.
	position float64
	posStamp time.Time

	volume    float64
	ducking   bool
	rampFrom  float64
	rampStart time.Time

	sampleRate int
	output     Output

	onEnded func()

	// wait blocks for the overlay's duration. Tests override it.
	wait func(ctx context.Context, d time.Duration)
}

// NewEngine builds an engine at full volume with no source loaded.
func NewEngine(clk clock.Clock, sampleRate int) *Engine {
	if sampleRate <= 0 {
		sampleRate = 24000
	}
	return &Engine{
		clock:      clk,
		status:     StatusIdle,
		volume:     1.0,
		sampleRate: sampleRate,
		output:     discardOutput{},
		wait: func(ctx context.Context, d time.Duration) {
			select {
			case <-ctx.Done():
			case <-time.After(d):
			}
		},
	}
}

// SetOutput replaces the overlay sink. Pass nil to restore the discard
// sink.
func (e *Engine) SetOutput(out Output) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if out == nil {
		out = discardOutput{}
	}
	e.output = out
}

// SetOnEnded installs the callback invoked when FinishTrack is called.
func (e *Engine) SetOnEnded(fn func()) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.onEnded = fn
}

// SetSource loads a new track URL and rewinds to zero. Playback state
// is preserved: a playing engine keeps playing the new source.
func (e *Engine) SetSource(url string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if url == e.source {
		return
	}
	e.source = url
	e.position = 0
	e.posStamp = e.clock.Now()
	if e.playing {
		e.status = StatusPlaying
	} else {
		e.status = StatusLoading
	}
}

// Source returns the currently loaded track URL.
func (e *Engine) Source() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.source
}

// Play starts or resumes playback of the current source.
func (e *Engine) Play() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.playing {
		return
	}
	e.playing = true
	e.posStamp = e.clock.Now()
	if e.source != "" {
		e.status = StatusPlaying
	}
}

// Pause freezes playback, keeping the current position.
func (e *Engine) Pause() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.playing {
		return
	}
	e.position = e.positionLocked()
	e.posStamp = e.clock.Now()
	e.playing = false
	e.status = StatusIdle
}

// Playing reports whether the music bed is advancing.
func (e *Engine) Playing() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.playing
}

// Status reports the engine state.
func (e *Engine) Status() Status {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.status
}

// Seek jumps to an absolute offset in seconds. Negative offsets clamp
// to zero.
func (e *Engine) Seek(seconds float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if seconds < 0 {
		seconds = 0
	}
	e.position = seconds
	e.posStamp = e.clock.Now()
}

// Position returns the current playback offset in seconds.
func (e *Engine) Position() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.positionLocked()
}

func (e *Engine) positionLocked() float64 {
	if !e.playing {
		return e.position
	}
	return e.position + e.clock.Now().Sub(e.posStamp).Seconds()
}

// SetVolume sets the user volume in [0, 1]. If a duck is active the
// ducked gain tracks the new volume.
func (e *Engine) SetVolume(v float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	e.rampFrom = e.gainLocked()
	e.rampStart = e.clock.Now()
	e.volume = v
}

// Volume returns the user volume.
func (e *Engine) Volume() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.volume
}

// Gain returns the effective music gain right now, including any
// in-flight ramp. Once a ramp completes the gain sits exactly on the
// target: userVolume normally, DuckRatio*userVolume while ducked.
func (e *Engine) Gain() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.gainLocked()
}

func (e *Engine) gainLocked() float64 {
	target := e.volume
	if e.ducking {
		target = e.volume * DuckRatio
	}
	if e.rampStart.IsZero() {
		return target
	}
	elapsed := e.clock.Now().Sub(e.rampStart)
	if elapsed >= RampDuration {
		return target
	}
	frac := float64(elapsed) / float64(RampDuration)
	return e.rampFrom + (target-e.rampFrom)*frac
}

func (e *Engine) setDucking(on bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.ducking == on {
		return
	}
	e.rampFrom = e.gainLocked()
	e.rampStart = e.clock.Now()
	e.ducking = on
}

// Ducking reports whether the music bed is currently lowered for an
// overlay.
func (e *Engine) Ducking() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ducking
}

// PlayOverlay decodes raw little-endian mono 16-bit PCM and plays it
// over the music bed, ducking for its duration. Short buffers are
// dropped and output failures are swallowed; overlays must never take
// the station down.
func (e *Engine) PlayOverlay(ctx context.Context, pcm []byte, kind string) error {
	if len(pcm) < MinOverlayBytes {
		return nil
	}

	samples := make([]int16, len(pcm)/2)
	for i := range samples {
		samples[i] = int16(binary.LittleEndian.Uint16(pcm[i*2:]))
	}
	duration := time.Duration(float64(len(samples)) / float64(e.sampleRate) * float64(time.Second))

	e.setDucking(true)
	defer e.setDucking(false)

	e.mu.Lock()
	out := e.output
	e.mu.Unlock()

	if err := out.PlayOverlay(samples, kind); err != nil {
		log.Printf("⚠️ Overlay playback failed (%s): %v", kind, err)
		return nil
	}

	e.wait(ctx, duration)

	overlaysPlayed.WithLabelValues(kind).Inc()
	overlaySeconds.Add(duration.Seconds())
	return nil
}

// FinishTrack marks the current track as ended and fires the onEnded
// callback. The station controller uses this to advance the playlist.
func (e *Engine) FinishTrack() {
	e.mu.Lock()
	e.playing = false
	e.position = 0
	e.posStamp = e.clock.Now()
	e.status = StatusIdle
	fn := e.onEnded
	e.mu.Unlock()

	if fn != nil {
		fn()
	}
}
