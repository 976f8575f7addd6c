package service

import (
	"sync"
	"time"

	"stockcast/internal/domain"
)

// modelCache holds one trained model per symbol with an expiry. Each symbol
// gets its own lock so two requests never train the same symbol twice, while
// training different symbols proceeds in parallel.
type modelCache struct {
	ttl     time.Duration
	mu      sync.Mutex
	entries map[string]*modelEntry
}

type modelEntry struct {
	mu      sync.Mutex
	model   Predictor
	result  domain.TrainResult
	expires time.Time
}

func newModelCache(ttl time.Duration) *modelCache {
	return &modelCache{
		ttl:     ttl,
		entries: make(map[string]*modelEntry),
	}
}

// entry returns the per-symbol slot, creating it on first use. Callers hold
// entry.mu while reading or replacing the model.
func (c *modelCache) entry(symbol string) *modelEntry {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[symbol]
	if !ok {
		e = &modelEntry{}
		c.entries[symbol] = e
	}
	return e
}

// fresh reports whether the entry holds a usable model at the given instant.
// A zero TTL means models never expire.
func (e *modelEntry) fresh(now time.Time, ttl time.Duration) bool {
	if e.model == nil {
		return false
	}
	if ttl <= 0 {
		return true
	}
	return now.Before(e.expires)
}

func (e *modelEntry) store(model Predictor, result domain.TrainResult, now time.Time, ttl time.Duration) {
	e.model = model
	e.result = result
	e.expires = now.Add(ttl)
}
