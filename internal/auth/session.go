package auth

import (
	"context"
	"errors"
	"sync"

	"sentiment-dashboard/internal/domain"
	"sentiment-dashboard/internal/storage"
	"sentiment-dashboard/pkg/logger"
)

var log = logger.WithComponent("session")

// Session tracks who is signed in for one client. Each browser, SSH
// connection and terminal owns its own Session.
type Session struct {
	store   storage.Store
	decoder Decoder

	mu       sync.RWMutex
	identity *domain.Identity
	loading  bool
}

func NewSession(store storage.Store, decoder Decoder) *Session {
	return &Session{store: store, decoder: decoder, loading: true}
}

// Refresh re-reads the persisted token. It is cheap and runs on every page
// load or focus event.
func (s *Session) Refresh(ctx context.Context) {
	identity := s.resolve(ctx)

	s.mu.Lock()
	s.identity = identity
	s.loading = false
	s.mu.Unlock()
}

func (s *Session) resolve(ctx context.Context) *domain.Identity {
	token, ok, err := s.store.Get(ctx, storage.TokenKey)
	if err != nil {
		log.WithError(err).Warn("read session token")
		return nil
	}
	if !ok || token == "" {
		return nil
	}

	identity, err := s.decoder.Decode(token)
	if err != nil {
		if !errors.Is(err, ErrNoToken) {
			log.WithError(err).Info("discarding undecodable session token")
		}
		if delErr := s.store.Delete(ctx, storage.TokenKey); delErr != nil {
			log.WithError(delErr).Warn("delete session token")
		}
		return nil
	}
	return identity
}

// Accept stores a token handed back by the auth service. The next Refresh
// decides whether it is usable.
func (s *Session) Accept(ctx context.Context, token string) error {
	if token == "" {
		return ErrNoToken
	}
	return s.store.Set(ctx, storage.TokenKey, token)
}

func (s *Session) Logout(ctx context.Context) error {
	err := s.store.Delete(ctx, storage.TokenKey)

	s.mu.Lock()
	s.identity = nil
	s.loading = false
	s.mu.Unlock()
	return err
}

func (s *Session) Identity() *domain.Identity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.identity == nil {
		return nil
	}
	id := *s.identity
	return &id
}

func (s *Session) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

func (s *Session) Authenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.identity != nil
}
