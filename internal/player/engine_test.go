package player

import (
	"context"
	"encoding/binary"
	"math"
	"testing"
	"time"

	"ndr-radio/internal/clock"
)

func newTestEngine(t *testing.T) (*Engine, *clock.MockClock) {
	t.Helper()
	mc := clock.NewMock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	e := NewEngine(mc, 24000)
	e.wait = func(ctx context.Context, d time.Duration) { mc.Advance(d) }
	return e, mc
}

func pcmOfSeconds(seconds float64) []byte {
	n := int(seconds * 24000)
	buf := make([]byte, n*2)
	for i := 0; i < n; i++ {
		binary.LittleEndian.PutUint16(buf[i*2:], uint16(int16(i%100)))
	}
	return buf
}

func TestPositionAdvancesWithClock(t *testing.T) {
	e, mc := newTestEngine(t)
	e.SetSource("http://cdn/track.mp3")
	e.Play()

	mc.Advance(30 * time.Second)
	if got := e.Position(); math.Abs(got-30) > 0.001 {
		t.Errorf("position = %.3f, want 30", got)
	}

	e.Pause()
	mc.Advance(time.Minute)
	if got := e.Position(); math.Abs(got-30) > 0.001 {
		t.Errorf("paused position drifted to %.3f", got)
	}

	e.Seek(95)
	e.Play()
	mc.Advance(5 * time.Second)
	if got := e.Position(); math.Abs(got-100) > 0.001 {
		t.Errorf("position after seek+play = %.3f, want 100", got)
	}
}

func TestSetSourceRewindsAndKeepsPlayState(t *testing.T) {
	e, mc := newTestEngine(t)
	e.SetSource("a.mp3")
	e.Play()
	mc.Advance(10 * time.Second)

	e.SetSource("b.mp3")
	if got := e.Position(); got != 0 {
		t.Errorf("new source must start at 0, got %.3f", got)
	}
	if !e.Playing() {
		t.Error("play state must survive a source swap")
	}
	if e.Status() != StatusPlaying {
		t.Errorf("status = %v, want playing", e.Status())
	}
}

func TestDuckRampAndRestore(t *testing.T) {
	e, mc := newTestEngine(t)
	e.SetVolume(0.8)
	mc.Advance(RampDuration)

	if got := e.Gain(); math.Abs(got-0.8) > 1e-9 {
		t.Fatalf("steady gain = %v, want 0.8", got)
	}

	e.setDucking(true)
	mc.Advance(RampDuration / 2)
	mid := e.Gain()
	wantMid := 0.8 + (0.8*DuckRatio-0.8)/2
	if math.Abs(mid-wantMid) > 1e-9 {
		t.Errorf("mid-ramp gain = %v, want %v", mid, wantMid)
	}

	mc.Advance(RampDuration / 2)
	if got := e.Gain(); math.Abs(got-0.8*DuckRatio) > 1e-9 {
		t.Errorf("ducked gain = %v, want %v", got, 0.8*DuckRatio)
	}

	e.setDucking(false)
	mc.Advance(RampDuration)
	if got := e.Gain(); got != 0.8 {
		t.Errorf("gain after unduck = %v, want exactly 0.8", got)
	}
}

type captureOutput struct {
	samples []int16
	kind    string
	err     error
}

func (c *captureOutput) PlayOverlay(s []int16, kind string) error {
	c.samples = s
	c.kind = kind
	return c.err
}

func TestPlayOverlayDucksForDuration(t *testing.T) {
	e, mc := newTestEngine(t)
	out := &captureOutput{}
	e.SetOutput(out)

	start := mc.Now()
	if err := e.PlayOverlay(context.Background(), pcmOfSeconds(2), KindNews); err != nil {
		t.Fatalf("PlayOverlay: %v", err)
	}
	if out.kind != KindNews {
		t.Errorf("kind = %q, want news", out.kind)
	}
	if got := mc.Now().Sub(start); got != 2*time.Second {
		t.Errorf("overlay held for %v, want 2s", got)
	}
	if e.Ducking() {
		t.Error("duck must release after the overlay")
	}
	mc.Advance(RampDuration)
	if got := e.Gain(); got != 1.0 {
		t.Errorf("gain after overlay = %v, want exactly 1.0", got)
	}
}

func TestPlayOverlayDropsShortBuffers(t *testing.T) {
	e, _ := newTestEngine(t)
	out := &captureOutput{}
	e.SetOutput(out)

	if err := e.PlayOverlay(context.Background(), make([]byte, MinOverlayBytes-1), KindJingle); err != nil {
		t.Fatalf("PlayOverlay: %v", err)
	}
	if out.samples != nil {
		t.Error("short buffer must not reach the output")
	}
}

func TestPlayOverlaySwallowsOutputErrors(t *testing.T) {
	e, mc := newTestEngine(t)
	e.SetOutput(&captureOutput{err: context.DeadlineExceeded})

	if err := e.PlayOverlay(context.Background(), pcmOfSeconds(1), KindJingle); err != nil {
		t.Errorf("output failure must not propagate, got %v", err)
	}
	if e.Ducking() {
		t.Error("duck must release even when the output fails")
	}
	mc.Advance(RampDuration)
	if got := e.Gain(); got != 1.0 {
		t.Errorf("gain after failed overlay = %v, want 1.0", got)
	}
}

func TestFinishTrackInvokesCallback(t *testing.T) {
	e, _ := newTestEngine(t)
	e.SetSource("a.mp3")
	e.Play()

	fired := 0
	e.SetOnEnded(func() { fired++ })
	e.FinishTrack()

	if fired != 1 {
		t.Errorf("onEnded fired %d times, want 1", fired)
	}
	if e.Playing() || e.Position() != 0 {
		t.Error("finished track must reset to stopped at position 0")
	}
}
