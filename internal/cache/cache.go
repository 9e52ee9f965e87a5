// Package cache provides an in-process LRU cache with TTL and a
// manager that sweeps registered caches on an interval.
package cache

import (
	"log/slog"
	"time"
)

// Cleaner is implemented by caches that can drop expired entries.
type Cleaner interface {
	CleanExpired() int
}

// Manager runs periodic cleanup for registered caches.
type Manager struct {
	caches      map[string]Cleaner
	stopCleanup chan struct{}
	cleanupDone chan struct{}
}

// NewManager creates an empty cache manager.
func NewManager() *Manager {
	return &Manager{
		caches:      make(map[string]Cleaner),
		stopCleanup: make(chan struct{}),
		cleanupDone: make(chan struct{}),
	}
}

// Register adds a named cache to the cleanup rotation. Register before
// StartCleanup; the manager does not lock the map.
func (m *Manager) Register(name string, c Cleaner) {
	m.caches[name] = c
}

// StartCleanup begins periodic cleanup of all registered caches.
func (m *Manager) StartCleanup(interval time.Duration) {
	go m.cleanup(interval)
}

func (m *Manager) cleanup(interval time.Duration) {
	defer close(m.cleanupDone)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			for name, c := range m.caches {
				if removed := c.CleanExpired(); removed > 0 {
					slog.Debug("Cleaned expired cache entries", "cache", name, "removed", removed)
				}
			}
		case <-m.stopCleanup:
			return
		}
	}
}

// Stop halts the cleanup routine started by StartCleanup and waits for
// it to exit.
func (m *Manager) Stop() {
	close(m.stopCleanup)
	<-m.cleanupDone
}
