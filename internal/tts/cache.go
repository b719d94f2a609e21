package tts

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"log"
	"os"
	"path/filepath"
	"sync"
)

// CachingSynthesizer wraps a Synthesizer with an on-disk cache keyed by
// the script text. Jingles and other repeated stings synthesize once;
// concurrent requests for the same text coalesce into one upstream
// call.
type CachingSynthesizer struct {
	inner   Synthesizer
	baseDir string

	mu      sync.Mutex
	pending map[string]chan struct{}
}

func NewCachingSynthesizer(inner Synthesizer, tmpDir string) *CachingSynthesizer {
	cacheDir := filepath.Join(tmpDir, "voice_cache")
	if err := os.MkdirAll(cacheDir, 0755); err != nil {
		log.Printf("⚠️ Failed to create voice cache dir: %v", err)
	}
	return &CachingSynthesizer{
		inner:   inner,
		baseDir: cacheDir,
		pending: make(map[string]chan struct{}),
	}
}

func (c *CachingSynthesizer) Synthesize(ctx context.Context, text string) ([]byte, error) {
	path := c.filePath(text)

	if pcm, ok := c.read(path); ok {
		return pcm, nil
	}

	c.mu.Lock()
	waitCh, inflight := c.pending[path]
	if inflight {
		c.mu.Unlock()
		select {
		case <-waitCh:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		if pcm, ok := c.read(path); ok {
			return pcm, nil
		}
		// The other caller failed; fall through and try ourselves.
		return c.inner.Synthesize(ctx, text)
	}

	done := make(chan struct{})
	c.pending[path] = done
	c.mu.Unlock()

	defer func() {
		close(done)
		c.mu.Lock()
		delete(c.pending, path)
		c.mu.Unlock()
	}()

	pcm, err := c.inner.Synthesize(ctx, text)
	if err != nil || len(pcm) == 0 {
		return pcm, err
	}

	if err := c.write(path, pcm); err != nil {
		log.Printf("⚠️ Failed to cache synthesized audio: %v", err)
	}
	return pcm, nil
}

func (c *CachingSynthesizer) filePath(text string) string {
	sum := sha256.Sum256([]byte(text))
	return filepath.Join(c.baseDir, hex.EncodeToString(sum[:16])+".pcm")
}

func (c *CachingSynthesizer) read(path string) ([]byte, bool) {
	pcm, err := os.ReadFile(path)
	if err != nil || len(pcm) == 0 {
		return nil, false
	}
	return pcm, true
}

// write lands the file atomically so a crashed process never leaves a
// half-written cache entry behind.
func (c *CachingSynthesizer) write(path string, pcm []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, pcm, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
