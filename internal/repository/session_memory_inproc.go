package repository

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	value     string
	expiresAt time.Time
}

// inprocSessionMemory is the redis-less session store. Expired entries are
// purged lazily on read.
type inprocSessionMemory struct {
	mu       sync.Mutex
	sessions map[string]map[string]memoryEntry
	now      func() time.Time
}

// NewInprocSessionMemory builds the in-process store used when REDIS_ADDR is
// unset, and in tests.
func NewInprocSessionMemory() SessionMemoryStore {
	return &inprocSessionMemory{
		sessions: make(map[string]map[string]memoryEntry),
		now:      time.Now,
	}
}

// NewInprocSessionMemoryAt injects a clock for expiry tests.
func NewInprocSessionMemoryAt(now func() time.Time) SessionMemoryStore {
	return &inprocSessionMemory{
		sessions: make(map[string]map[string]memoryEntry),
		now:      now,
	}
}

func (m *inprocSessionMemory) Store(_ context.Context, sessionID, key, value string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	entries, ok := m.sessions[sessionID]
	if !ok {
		entries = make(map[string]memoryEntry)
		m.sessions[sessionID] = entries
	}
	// Re-storing an existing key replaces the value and re-arms expiry.
	entries[key] = memoryEntry{value: value, expiresAt: m.now().Add(ttl)}
	return nil
}

func (m *inprocSessionMemory) Get(_ context.Context, sessionID, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.purgeLocked(sessionID)
	entry, ok := m.sessions[sessionID][key]
	if !ok {
		return "", false, nil
	}
	return entry.value, true, nil
}

func (m *inprocSessionMemory) GetAll(_ context.Context, sessionID string) (map[string]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.purgeLocked(sessionID)
	out := make(map[string]string)
	for key, entry := range m.sessions[sessionID] {
		out[key] = entry.value
	}
	return out, nil
}

func (m *inprocSessionMemory) Delete(_ context.Context, sessionID, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entries, ok := m.sessions[sessionID]
	if !ok {
		return false, nil
	}
	if _, ok := entries[key]; !ok {
		return false, nil
	}
	delete(entries, key)
	return true, nil
}

func (m *inprocSessionMemory) DeleteAll(_ context.Context, sessionID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := len(m.sessions[sessionID])
	delete(m.sessions, sessionID)
	return n, nil
}

func (m *inprocSessionMemory) purgeLocked(sessionID string) {
	now := m.now()
	for key, entry := range m.sessions[sessionID] {
		if now.After(entry.expiresAt) {
			delete(m.sessions[sessionID], key)
		}
	}
}
