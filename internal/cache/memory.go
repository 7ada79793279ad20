package cache

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/gridstats/gridstats/internal/utils"
)

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

func (e *memoryEntry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}

// Memory is an in-process cache with lazy expiry on read and a periodic sweep
type Memory struct {
	mu        sync.RWMutex
	entries   map[string]*memoryEntry
	stopCh    chan struct{}
	closeOnce sync.Once
	now       func() time.Time
}

// NewMemory creates a memory cache that sweeps expired entries every interval
func NewMemory(cleanupInterval time.Duration) *Memory {
	if cleanupInterval <= 0 {
		cleanupInterval = utils.DefaultCleanupInterval
	}

	c := &Memory{
		entries: make(map[string]*memoryEntry),
		stopCh:  make(chan struct{}),
		now:     time.Now,
	}

	go c.cleanup(cleanupInterval)

	return c
}

// Get retrieves a value from cache
func (c *Memory) Get(_ context.Context, key string) ([]byte, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, exists := c.entries[key]
	if !exists || entry.expired(c.now()) {
		return nil, ErrMiss
	}
	return entry.value, nil
}

// Set stores a value. A ttl of zero or less never expires.
func (c *Memory) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	entry := &memoryEntry{value: value}
	if ttl > 0 {
		entry.expiresAt = c.now().Add(ttl)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = entry
	return nil
}

// Delete removes a key from cache
func (c *Memory) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, key)
	return nil
}

// DeletePrefix removes all keys with given prefix
func (c *Memory) DeletePrefix(_ context.Context, prefix string) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for key := range c.entries {
		if strings.HasPrefix(key, prefix) {
			delete(c.entries, key)
			removed++
		}
	}
	return removed, nil
}

// Len returns the number of stored entries, expired ones included
func (c *Memory) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.entries)
}

// cleanup periodically removes expired entries
func (c *Memory) cleanup(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.sweep()
		case <-c.stopCh:
			return
		}
	}
}

func (c *Memory) sweep() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	removed := 0
	for key, entry := range c.entries {
		if entry.expired(now) {
			delete(c.entries, key)
			removed++
		}
	}
	return removed
}

// Close stops the cleanup goroutine
func (c *Memory) Close() error {
	c.closeOnce.Do(func() { close(c.stopCh) })
	return nil
}
