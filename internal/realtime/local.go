package realtime

import (
	"sync"
	"time"

	"ndr-radio/internal/models"
)

// LocalChannel is the same-process binding: an in-memory singleton
// record fanned out to subscribers over buffered channels, one pump
// goroutine per subscriber so delivery order matches write order.
type LocalChannel struct {
	mu     sync.Mutex
	state  models.StationState
	subs   map[int]chan models.StationState
	nextID int
	closed bool

	now func() time.Time // overridable in tests
}

func NewLocalChannel() *LocalChannel {
	return &LocalChannel{
		state: models.StationState{ID: 1},
		subs:  make(map[int]chan models.StationState),
		now:   time.Now,
	}
}

func (c *LocalChannel) Subscribe(fn Handler) (func(), error) {
	c.mu.Lock()
	id := c.nextID
	c.nextID++
	ch := make(chan models.StationState, 16)
	c.subs[id] = ch
	ch <- c.state // initial snapshot, delivered first
	c.mu.Unlock()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for st := range ch {
			deliveries.Inc()
			fn(st)
		}
	}()

	unsubscribe := func() {
		c.mu.Lock()
		if sub, ok := c.subs[id]; ok {
			delete(c.subs, id)
			close(sub)
		}
		c.mu.Unlock()
		wg.Wait()
	}
	return unsubscribe, nil
}

func (c *LocalChannel) Publish(patch StatePatch) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	patch.Apply(&c.state, c.now().UnixMilli())
	publishes.WithLabelValues("local").Inc()
	for _, ch := range c.subs {
		// Single writer, so blocking here preserves write order.
		ch <- c.state
	}
	return nil
}

func (c *LocalChannel) Snapshot() (models.StationState, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state, nil
}

func (c *LocalChannel) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	for id, ch := range c.subs {
		delete(c.subs, id)
		close(ch)
	}
	return nil
}
