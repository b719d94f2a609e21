package player

import (
	"context"
	"testing"
)

type recordingSink struct {
	calls []string
}

func (r *recordingSink) PlayOverlay(_ context.Context, pcm []byte, kind string) error {
	r.calls = append(r.calls, kind+":"+string(pcm))
	return nil
}

func TestGateQueuesUntilReady(t *testing.T) {
	sink := &recordingSink{}
	g := NewGate(sink)
	ctx := context.Background()

	if err := g.RequestPlay(ctx, []byte("bulletin-a"), KindNews); err != nil {
		t.Fatalf("RequestPlay: %v", err)
	}
	if len(sink.calls) != 0 {
		t.Fatal("nothing may play before the gate opens")
	}

	if err := g.Ready(ctx); err != nil {
		t.Fatalf("Ready: %v", err)
	}
	if len(sink.calls) != 1 || sink.calls[0] != "news:bulletin-a" {
		t.Errorf("flush = %v, want the queued bulletin", sink.calls)
	}
}

func TestGateLastWriteWins(t *testing.T) {
	sink := &recordingSink{}
	g := NewGate(sink)
	ctx := context.Background()

	g.RequestPlay(ctx, []byte("old"), KindNews)
	g.RequestPlay(ctx, []byte("new"), KindJingle)
	g.Ready(ctx)

	if len(sink.calls) != 1 {
		t.Fatalf("flushed %d buffers, want 1", len(sink.calls))
	}
	if sink.calls[0] != "jingle:new" {
		t.Errorf("flushed %q, want the newest buffer", sink.calls[0])
	}
}

func TestGateFlushesExactlyOnce(t *testing.T) {
	sink := &recordingSink{}
	g := NewGate(sink)
	ctx := context.Background()

	g.RequestPlay(ctx, []byte("x"), KindNews)
	g.Ready(ctx)
	g.Ready(ctx)

	if len(sink.calls) != 1 {
		t.Errorf("pending buffer flushed %d times, want 1", len(sink.calls))
	}
}

func TestGatePassesThroughWhenOpen(t *testing.T) {
	sink := &recordingSink{}
	g := NewGate(sink)
	ctx := context.Background()

	g.Ready(ctx)
	g.RequestPlay(ctx, []byte("live"), KindJingle)

	if len(sink.calls) != 1 || sink.calls[0] != "jingle:live" {
		t.Errorf("open gate must pass through immediately, got %v", sink.calls)
	}
}
