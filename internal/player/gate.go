package player

import (
	"context"
	"log"
	"sync"
)

// OverlaySink is the narrow surface the gate needs from the engine.
type OverlaySink interface {
	PlayOverlay(ctx context.Context, pcm []byte, kind string) error
}

// Gate holds back overlay audio while the audio path is not ready,
// typically before the first listener interaction unlocks playback.
// At most one buffer is pending; a newer request replaces the old one.
// The pending buffer is flushed exactly once when Ready fires.
type Gate struct {
	mu          sync.Mutex
	ready       bool
	pending     []byte
	pendingKind string
	sink        OverlaySink
}

func NewGate(sink OverlaySink) *Gate {
	return &Gate{sink: sink}
}

// RequestPlay plays the buffer immediately if the gate is open, or
// queues it (replacing any earlier pending buffer) if not.
func (g *Gate) RequestPlay(ctx context.Context, pcm []byte, kind string) error {
	g.mu.Lock()
	if !g.ready {
		if g.pending != nil {
			log.Printf("🔄 Replacing pending %s overlay with newer %s overlay", g.pendingKind, kind)
		}
		g.pending = pcm
		g.pendingKind = kind
		g.mu.Unlock()
		return nil
	}
	g.mu.Unlock()

	return g.sink.PlayOverlay(ctx, pcm, kind)
}

// Ready opens the gate and flushes the latest pending buffer, if any.
// Calling Ready again is a no-op.
func (g *Gate) Ready(ctx context.Context) error {
	g.mu.Lock()
	if g.ready {
		g.mu.Unlock()
		return nil
	}
	g.ready = true
	pcm, kind := g.pending, g.pendingKind
	g.pending, g.pendingKind = nil, ""
	g.mu.Unlock()

	if pcm == nil {
		return nil
	}
	log.Printf("▶️ Audio path ready, flushing pending %s overlay", kind)
	return g.sink.PlayOverlay(ctx, pcm, kind)
}

// IsReady reports whether the gate has been opened.
func (g *Gate) IsReady() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.ready
}
