package cache

import (
	"context"
	"sync"
	"time"

	"github.com/LeventeLantos/sms-dashboard/internal/model"
)

type memoryEntry struct {
	records   []model.Record
	expiresAt time.Time
}

// MemorySessionCache is used when no Redis is configured. Expired sessions
// are dropped lazily on access.
type MemorySessionCache struct {
	ttl time.Duration
	now func() time.Time

	mu       sync.Mutex
	sessions map[string]memoryEntry
}

var _ SessionCache = (*MemorySessionCache)(nil)

func NewMemorySessionCache(ttl time.Duration) *MemorySessionCache {
	return &MemorySessionCache{
		ttl:      ttl,
		now:      time.Now,
		sessions: make(map[string]memoryEntry),
	}
}

func (c *MemorySessionCache) Get(ctx context.Context, sessionID string) ([]model.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.sessions[sessionID]
	if !ok {
		return nil, nil
	}
	if c.ttl > 0 && !c.now().Before(e.expiresAt) {
		delete(c.sessions, sessionID)
		return nil, nil
	}
	return append([]model.Record(nil), e.records...), nil
}

func (c *MemorySessionCache) Set(ctx context.Context, sessionID string, records []model.Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.sessions[sessionID] = memoryEntry{
		records:   append([]model.Record(nil), records...),
		expiresAt: c.now().Add(c.ttl),
	}
	return nil
}
