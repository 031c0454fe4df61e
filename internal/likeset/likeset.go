// Package likeset records which articles a visitor has already liked.
//
// The set is keyed by visitor, not by identity: a visitor that loses its
// visitor cookie starts with an empty set and may like an article again.
package likeset

import (
	"context"
	"sync"
)

// Namespace prefixes every visitor's set.
const Namespace = "likedPosts"

// Set is the per-visitor like store.
type Set interface {
	Contains(ctx context.Context, visitorID, articleKey string) (bool, error)
	Add(ctx context.Context, visitorID, articleKey string) error
}

// Memory keeps the sets in process memory. Contents are lost on restart.
type Memory struct {
	mu   sync.RWMutex
	sets map[string]map[string]struct{}
}

func NewMemory() *Memory {
	return &Memory{sets: make(map[string]map[string]struct{})}
}

func (m *Memory) Contains(_ context.Context, visitorID, articleKey string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, ok := m.sets[visitorID][articleKey]

	return ok, nil
}

func (m *Memory) Add(_ context.Context, visitorID, articleKey string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	set, ok := m.sets[visitorID]
	if !ok {
		set = make(map[string]struct{})
		m.sets[visitorID] = set
	}
	set[articleKey] = struct{}{}

	return nil
}
