package application

import (
	"sync"
	"time"

	"github.com/example/support-hours/internal/hours"
)

// snapshotCache holds the active configuration together with its compiled
// evaluator so status checks do not hit the store on every request. A single
// entry suffices because only one configuration is active at a time.
type snapshotCache struct {
	mu  sync.RWMutex
	now func() time.Time
	ttl time.Duration

	entry *snapshotEntry
}

type snapshotEntry struct {
	configID  string
	evaluator *hours.Evaluator
	config    HoursConfig
	expiresAt time.Time
}

func newSnapshotCache(ttl time.Duration, now func() time.Time) *snapshotCache {
	if ttl <= 0 {
		ttl = 15 * time.Second
	}
	if now == nil {
		now = time.Now
	}
	return &snapshotCache{now: now, ttl: ttl}
}

func (c *snapshotCache) Get() (*snapshotEntry, bool) {
	if c == nil {
		return nil, false
	}
	c.mu.RLock()
	entry := c.entry
	c.mu.RUnlock()
	if entry == nil {
		return nil, false
	}
	if c.now().After(entry.expiresAt) {
		c.mu.Lock()
		if c.entry == entry {
			c.entry = nil
		}
		c.mu.Unlock()
		return nil, false
	}
	return entry, true
}

func (c *snapshotCache) Store(config HoursConfig, evaluator *hours.Evaluator) {
	if c == nil {
		return
	}
	entry := &snapshotEntry{
		configID:  config.ID,
		evaluator: evaluator,
		config:    config,
		expiresAt: c.now().Add(c.ttl),
	}
	c.mu.Lock()
	c.entry = entry
	c.mu.Unlock()
}

func (c *snapshotCache) Invalidate() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.entry = nil
	c.mu.Unlock()
}
