// Package history keeps the most recent successful analyses for a client.
package history

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"sentiment-dashboard/internal/domain"
	"sentiment-dashboard/internal/storage"
	"sentiment-dashboard/pkg/logger"
)

const Limit = 10

var log = logger.WithComponent("history")

type Store struct {
	store storage.Store

	mu      sync.Mutex
	entries []domain.HistoryEntry
	loaded  bool
}

func New(store storage.Store) *Store {
	return &Store{store: store}
}

// Load replaces the in-memory list with the persisted one. Missing or
// unreadable data yields an empty list.
func (h *Store) Load(ctx context.Context) []domain.HistoryEntry {
	entries := h.read(ctx)

	h.mu.Lock()
	h.entries = entries
	h.loaded = true
	h.mu.Unlock()
	return h.Entries()
}

func (h *Store) read(ctx context.Context) []domain.HistoryEntry {
	raw, ok, err := h.store.Get(ctx, storage.HistoryKey)
	if err != nil {
		log.WithError(err).Warn("read search history")
		return nil
	}
	if !ok || raw == "" {
		return nil
	}

	var entries []domain.HistoryEntry
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		log.WithError(err).Warn("ignoring corrupt search history")
		return nil
	}
	if len(entries) > Limit {
		entries = entries[:Limit]
	}
	return entries
}

// Record prepends entry and persists the truncated list.
func (h *Store) Record(ctx context.Context, entry domain.HistoryEntry) error {
	h.mu.Lock()
	if !h.loaded {
		h.mu.Unlock()
		h.Load(ctx)
		h.mu.Lock()
	}
	next := make([]domain.HistoryEntry, 0, Limit)
	next = append(next, entry)
	next = append(next, h.entries...)
	if len(next) > Limit {
		next = next[:Limit]
	}
	h.entries = next
	raw, err := json.Marshal(next)
	h.mu.Unlock()

	if err != nil {
		return fmt.Errorf("marshal history: %w", err)
	}
	if err := h.store.Set(ctx, storage.HistoryKey, string(raw)); err != nil {
		return fmt.Errorf("persist history: %w", err)
	}
	return nil
}

// Entries returns a copy, most recent first.
func (h *Store) Entries() []domain.HistoryEntry {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]domain.HistoryEntry, len(h.entries))
	copy(out, h.entries)
	return out
}
