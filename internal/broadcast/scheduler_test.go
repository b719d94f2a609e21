package broadcast

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"ndr-radio/internal/clock"
	"ndr-radio/internal/models"
	"ndr-radio/internal/news"
)

type stubProvider struct {
	report *news.Report
	err    error
	calls  int
}

func (p *stubProvider) Fetch(ctx context.Context, location string) (*news.Report, error) {
	p.calls++
	return p.report, p.err
}

type stubSynth struct {
	mu      sync.Mutex
	scripts []string
	failOn  string
}

func (s *stubSynth) Synthesize(ctx context.Context, text string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scripts = append(s.scripts, text)
	if s.failOn != "" && strings.Contains(text, s.failOn) {
		return nil, errors.New("synth down")
	}
	return []byte(text), nil
}

type stubOut struct {
	mu    sync.Mutex
	kinds []string
	pcms  []string
}

func (o *stubOut) RequestPlay(ctx context.Context, pcm []byte, kind string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.kinds = append(o.kinds, kind)
	o.pcms = append(o.pcms, string(pcm))
	return nil
}

type stubLogs struct {
	actions []string
}

func (l *stubLogs) Append(ctx context.Context, action string) error {
	l.actions = append(l.actions, action)
	return nil
}

func someNews(n int) *news.Report {
	items := make([]models.NewsItem, n)
	for i := range items {
		items[i] = models.NewsItem{ID: string(rune('a' + i)), Title: "Title " + string(rune('A'+i)), Content: "Body."}
	}
	return &news.Report{
		Items:   items,
		Weather: &news.Weather{Condition: "sunny", Temp: "31°C", Location: "Lagos"},
	}
}

func newTestScheduler(p *stubProvider, syn *stubSynth, out *stubOut, logs *stubLogs, mc *clock.MockClock) *Scheduler {
	return NewScheduler(DefaultGrid(), mc, "Nigeria Diaspora Radio", "Adaeze", "Lagos", p, syn, out, logs)
}

func TestTickFiresOnceAtTopOfHour(t *testing.T) {
	mc := clock.NewMock(time.Date(2025, 6, 1, 13, 0, 0, 0, time.UTC))
	p := &stubProvider{report: someNews(3)}
	out := &stubOut{}
	s := newTestScheduler(p, &stubSynth{}, out, &stubLogs{}, mc)
	ctx := context.Background()

	// Several heartbeats land inside the same minute.
	for i := 0; i < 5; i++ {
		s.Tick(ctx)
		mc.Advance(time.Second)
	}
	if p.calls != 1 {
		t.Errorf("full bulletin fired %d times within its minute, want 1", p.calls)
	}

	// Off-grid minutes stay quiet.
	mc.Set(time.Date(2025, 6, 1, 13, 17, 0, 0, time.UTC))
	s.Tick(ctx)
	if p.calls != 1 {
		t.Error("nothing may fire off the grid")
	}

	// The next hour's slot fires again.
	mc.Set(time.Date(2025, 6, 1, 14, 0, 0, 0, time.UTC))
	s.Tick(ctx)
	if p.calls != 2 {
		t.Errorf("next hour fired %d fetches, want 2", p.calls)
	}
}

func TestBulletinSequence(t *testing.T) {
	mc := clock.NewMock(time.Date(2025, 6, 1, 13, 0, 0, 0, time.UTC))
	out := &stubOut{}
	logs := &stubLogs{}
	syn := &stubSynth{}
	s := newTestScheduler(&stubProvider{report: someNews(3)}, syn, out, logs, mc)

	if err := s.Trigger(context.Background(), false); err != nil {
		t.Fatalf("Trigger: %v", err)
	}

	want := []string{"jingle", "news", "jingle"}
	if len(out.kinds) != 3 {
		t.Fatalf("played %d segments (%v), want 3", len(out.kinds), out.kinds)
	}
	for i := range want {
		if out.kinds[i] != want[i] {
			t.Errorf("segment %d kind = %q, want %q", i, out.kinds[i], want[i])
		}
	}
	if out.pcms[0] != DefaultJingleIntro || out.pcms[2] != DefaultJingleOutro {
		t.Error("jingle texts must frame the bulletin")
	}
	if !strings.Contains(out.pcms[1], "Detailed News Bulletin") {
		t.Errorf("narration = %q, want the full bulletin script", out.pcms[1])
	}
	if len(logs.actions) != 1 || !strings.Contains(logs.actions[0], "Full bulletin") {
		t.Errorf("log actions = %v, want one full bulletin entry", logs.actions)
	}
}

func TestHeadlinesClampAndBriefScript(t *testing.T) {
	mc := clock.NewMock(time.Date(2025, 6, 1, 13, 30, 0, 0, time.UTC))
	out := &stubOut{}
	s := newTestScheduler(&stubProvider{report: someNews(9)}, &stubSynth{}, out, &stubLogs{}, mc)

	if err := s.Trigger(context.Background(), true); err != nil {
		t.Fatalf("Trigger: %v", err)
	}

	script := out.pcms[1]
	if !strings.Contains(script, "Headline Update") {
		t.Errorf("script = %q, want the brief form", script)
	}
	if strings.Contains(script, "Body.") {
		t.Error("headlines must not read story content")
	}
	if !strings.Contains(script, "5: ") || strings.Contains(script, "6: ") {
		t.Error("headlines must clamp to 5 items")
	}
}

func TestEmptyNewsShortCircuits(t *testing.T) {
	mc := clock.NewMock(time.Now())
	out := &stubOut{}
	logs := &stubLogs{}
	s := newTestScheduler(&stubProvider{report: &news.Report{}}, &stubSynth{}, out, logs, mc)

	if err := s.Trigger(context.Background(), false); err != nil {
		t.Fatalf("Trigger: %v", err)
	}
	if len(out.kinds) != 0 {
		t.Errorf("empty news must play nothing, played %v", out.kinds)
	}
	if len(logs.actions) != 0 {
		t.Error("empty news must not be logged")
	}
}

func TestSynthFailureSkipsSegmentOnly(t *testing.T) {
	mc := clock.NewMock(time.Now())
	out := &stubOut{}
	logs := &stubLogs{}
	syn := &stubSynth{failOn: "Detailed News Bulletin"}
	s := newTestScheduler(&stubProvider{report: someNews(2)}, syn, out, logs, mc)

	if err := s.Trigger(context.Background(), false); err != nil {
		t.Fatalf("synth failure must not propagate: %v", err)
	}
	// Both jingles still play around the dead narration.
	if len(out.kinds) != 2 || out.kinds[0] != "jingle" || out.kinds[1] != "jingle" {
		t.Errorf("segments = %v, want the two jingles", out.kinds)
	}
	if len(logs.actions) != 0 {
		t.Error("a bulletin that never aired must not be logged")
	}
}

func TestTriggerReportsCollision(t *testing.T) {
	mc := clock.NewMock(time.Now())
	s := newTestScheduler(&stubProvider{report: someNews(1)}, &stubSynth{}, &stubOut{}, &stubLogs{}, mc)

	s.inFlight.Store(true)
	if err := s.Trigger(context.Background(), false); !errors.Is(err, ErrBulletinInFlight) {
		t.Errorf("err = %v, want ErrBulletinInFlight", err)
	}
	s.inFlight.Store(false)
	if err := s.Trigger(context.Background(), false); err != nil {
		t.Errorf("released guard must admit the next trigger: %v", err)
	}
}

func TestAnnounceFramesMessage(t *testing.T) {
	mc := clock.NewMock(time.Now())
	out := &stubOut{}
	logs := &stubLogs{}
	s := newTestScheduler(&stubProvider{}, &stubSynth{}, out, logs, mc)

	if err := s.Announce(context.Background(), "Signal maintenance at midnight."); err != nil {
		t.Fatalf("Announce: %v", err)
	}
	if len(out.pcms) != 3 || out.pcms[1] != "Signal maintenance at midnight." {
		t.Errorf("announce segments = %v", out.pcms)
	}
	if len(logs.actions) != 1 || !strings.Contains(logs.actions[0], "Announcement") {
		t.Errorf("log actions = %v", logs.actions)
	}
}
