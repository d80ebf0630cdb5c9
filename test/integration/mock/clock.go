//go:build integration

package mock

import (
	"sync"
	"time"
)

// Clock reports a pinned instant plus the real time elapsed since it was pinned.
type Clock struct {
	mu       sync.Mutex
	pinned   time.Time
	pinnedAt time.Time
}

func NewClock() *Clock {
	now := time.Now()
	return &Clock{pinned: now, pinnedAt: now}
}

// Set pins the clock to at.
func (c *Clock) Set(at time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pinned, c.pinnedAt = at, time.Now()
}

func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pinned.Add(time.Since(c.pinnedAt))
}
