package service

import (
	"sync"
	"time"
)

// Registry keeps one AnalysisService per web client so that request
// numbering survives across HTTP requests from the same browser.
type Registry struct {
	mu      sync.Mutex
	idle    time.Duration
	now     func() time.Time
	build   func(clientID string) *AnalysisService
	entries map[string]*registryEntry
}

type registryEntry struct {
	svc      *AnalysisService
	lastUsed time.Time
}

func NewRegistry(idle time.Duration, build func(clientID string) *AnalysisService) *Registry {
	return &Registry{
		idle:    idle,
		now:     time.Now,
		build:   build,
		entries: make(map[string]*registryEntry),
	}
}

func (r *Registry) Get(clientID string) *AnalysisService {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	r.sweep(now)

	e, ok := r.entries[clientID]
	if !ok {
		e = &registryEntry{svc: r.build(clientID)}
		r.entries[clientID] = e
	}
	e.lastUsed = now
	return e.svc
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// Sweep evicts idle clients without waiting for the next Get.
func (r *Registry) Sweep() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sweep(r.now())
}

func (r *Registry) sweep(now time.Time) int {
	if r.idle <= 0 {
		return 0
	}
	n := 0
	for id, e := range r.entries {
		if now.Sub(e.lastUsed) > r.idle {
			delete(r.entries, id)
			n++
		}
	}
	return n
}
