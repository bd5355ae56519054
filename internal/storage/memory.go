package storage

import (
	"context"
	"strings"
	"sync"
	"time"
)

// MemoryStore keeps every namespace in process memory.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string]map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string]map[string]string)}
}

func (m *MemoryStore) Namespace(ns string) (Store, error) {
	if !validNamespace(ns) {
		return nil, ErrInvalidNamespace
	}
	return &memoryScope{parent: m, ns: ns}, nil
}

type memoryScope struct {
	parent *MemoryStore
	ns     string
}

func (s *memoryScope) Get(ctx context.Context, key string) (string, bool, error) {
	s.parent.mu.RLock()
	defer s.parent.mu.RUnlock()
	v, ok := s.parent.data[s.ns][key]
	return v, ok, nil
}

func (s *memoryScope) Set(ctx context.Context, key, value string) error {
	s.parent.mu.Lock()
	defer s.parent.mu.Unlock()
	bucket, ok := s.parent.data[s.ns]
	if !ok {
		bucket = make(map[string]string)
		s.parent.data[s.ns] = bucket
	}
	bucket[key] = value
	return nil
}

func (s *memoryScope) Delete(ctx context.Context, key string) error {
	s.parent.mu.Lock()
	defer s.parent.mu.Unlock()
	delete(s.parent.data[s.ns], key)
	return nil
}

func (m *MemoryStore) PurgeExpiredLogins(ctx context.Context, now time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var n int64
	for key, raw := range m.data[LoginNamespace] {
		if strings.HasPrefix(key, pendingLoginPrefix) && pendingLoginExpired(raw, now) {
			delete(m.data[LoginNamespace], key)
			n++
		}
	}
	return n, nil
}
