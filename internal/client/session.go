package client

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"tableease/internal/model"
)

// SessionStore is the single source of truth for the active identity.
// Every mutation writes through to the durable cache before listeners
// are told, so a reload lands on the same state.
type SessionStore struct {
	api    AuthAPI
	cache  *Cache
	logger *zap.Logger

	mu        sync.RWMutex
	current   *model.User
	token     string
	listeners []func(*model.User)
}

func NewSessionStore(api AuthAPI, cache *Cache, logger *zap.Logger) *SessionStore {
	return &SessionStore{
		api:    api,
		cache:  cache,
		logger: logger,
	}
}

// Initialize loads a previously persisted session, if any. A corrupt
// or missing record leaves the session anonymous.
func (s *SessionStore) Initialize() error {
	raw, err := s.cache.Get(cacheKeyIdentity)
	if err != nil {
		return err
	}
	if raw == nil {
		return nil
	}

	var u model.User
	if err := json.Unmarshal(raw, &u); err != nil {
		s.logger.Warn("Discarding unreadable session record", zap.Error(err))
		_ = s.cache.Delete(cacheKeyIdentity)
		_ = s.cache.Delete(cacheKeyToken)
		return nil
	}

	tok, err := s.cache.Get(cacheKeyToken)
	if err != nil {
		return err
	}
	if tok == nil {
		// A session without its token cannot make remote calls.
		s.logger.Warn("Session record present but token missing, starting anonymous")
		_ = s.cache.Delete(cacheKeyIdentity)
		return nil
	}

	s.mu.Lock()
	s.current = &u
	s.token = string(tok)
	s.mu.Unlock()

	s.notify(&u)
	return nil
}

// Login verifies credentials remotely and activates the session.
func (s *SessionStore) Login(ctx context.Context, email, password string) (*model.User, error) {
	u, token, err := s.api.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}

	if err := s.persist(u, token); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.current = u
	s.token = token
	s.mu.Unlock()

	s.logger.Info("Session started", zap.Int("user_id", u.ID), zap.String("role", u.Role))
	s.notify(u)
	return u, nil
}

// Register creates a new identity. The caller logs in separately; a
// successful registration does not activate a session.
func (s *SessionStore) Register(ctx context.Context, name, email, password, role string) (*model.User, error) {
	return s.api.Register(ctx, name, email, password, role)
}

// UpdateProfile merges the given fields into the active identity and
// persists the result. Fails when no session is active.
func (s *SessionStore) UpdateProfile(ctx context.Context, fields ProfileFields) (*model.User, error) {
	s.mu.RLock()
	token := s.token
	active := s.current != nil
	s.mu.RUnlock()

	if !active {
		return nil, ErrNotAuthenticated
	}

	u, err := s.api.UpdateProfile(ctx, token, fields)
	if err != nil {
		return nil, err
	}

	if err := s.persist(u, token); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.current = u
	s.mu.Unlock()

	s.notify(u)
	return u, nil
}

// Logout clears the active session. Idempotent.
func (s *SessionStore) Logout() error {
	s.mu.Lock()
	wasActive := s.current != nil
	s.current = nil
	s.token = ""
	s.mu.Unlock()

	if err := s.cache.Delete(cacheKeyIdentity); err != nil {
		return err
	}
	if err := s.cache.Delete(cacheKeyToken); err != nil {
		return err
	}

	if wasActive {
		s.logger.Info("Session cleared")
	}
	s.notify(nil)
	return nil
}

// Current returns the active identity, or nil when anonymous.
func (s *SessionStore) Current() *model.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Token returns the bearer token for the active session, empty when
// anonymous.
func (s *SessionStore) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// OnChange registers a listener invoked after every session change
// with the new identity (nil on logout). Listeners run synchronously
// on the mutating call.
func (s *SessionStore) OnChange(fn func(*model.User)) {
	s.mu.Lock()
	s.listeners = append(s.listeners, fn)
	s.mu.Unlock()
}

func (s *SessionStore) persist(u *model.User, token string) error {
	raw, err := json.Marshal(u)
	if err != nil {
		return fmt.Errorf("encoding session record: %w", err)
	}
	if err := s.cache.Put(cacheKeyIdentity, raw); err != nil {
		return err
	}
	return s.cache.Put(cacheKeyToken, []byte(token))
}

func (s *SessionStore) notify(u *model.User) {
	s.mu.RLock()
	listeners := make([]func(*model.User), len(s.listeners))
	copy(listeners, s.listeners)
	s.mu.RUnlock()

	for _, fn := range listeners {
		fn(u)
	}
}
