// Package session owns the persisted admin session. All reads and writes of
// the stored record go through Store; nothing else touches the storage key.
package session

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync"

	"storefront-admin/internal/pkg/logger"
	"storefront-admin/internal/repository/contract"
	"storefront-admin/pkg/apiclient"
)

const (
	ModuleName = "SESSION"
	DefaultKey = "info"
)

// Identity is the operator the credential belongs to.
type Identity struct {
	UserID   string `json:"userId"`
	Username string `json:"username,omitempty"`
	Type     string `json:"type,omitempty"`
}

// Session is stored as the remote login response: identity fields next to the
// bearer token.
type Session struct {
	Identity
	Token string `json:"token"`
}

// Listener is told about every change. s is nil after Clear.
type Listener func(s *Session)

type subscription struct {
	fn     Listener
	active bool
}

type Store struct {
	backend contract.KeyValueStore
	key     string
	logger  logger.ILogger

	mu   sync.Mutex
	subs []*subscription
}

func NewStore(backend contract.KeyValueStore, key string, log logger.ILogger) *Store {
	if key == "" {
		key = DefaultKey
	}
	return &Store{backend: backend, key: key, logger: log}
}

// Set overwrites any previous session. The error reports a storage failure;
// callers treat it as a failed login.
func (s *Store) Set(ctx context.Context, identity Identity, credential string) error {
	sess := &Session{Identity: identity, Token: credential}
	raw, err := json.Marshal(sess)
	if err != nil {
		return err
	}
	if err := s.backend.Set(ctx, s.key, string(raw)); err != nil {
		s.logger.Error(ModuleName, "Failed to persist session", map[string]interface{}{
			"error": err.Error(),
		})
		return err
	}
	s.logger.Info(ModuleName, "Session stored", map[string]interface{}{
		"user_id": identity.UserID,
	})
	s.notify(sess)
	return nil
}

// Get never fails: unreadable or malformed storage reads as absent.
func (s *Store) Get(ctx context.Context) (*Session, bool) {
	raw, found, err := s.backend.Get(ctx, s.key)
	if err != nil {
		s.logger.Warn(ModuleName, "Session storage unavailable, treating as logged out", map[string]interface{}{
			"error": err.Error(),
		})
		return nil, false
	}
	if !found {
		return nil, false
	}

	var sess Session
	if err := json.Unmarshal([]byte(raw), &sess); err != nil {
		s.logger.Warn(ModuleName, "Stored session is malformed, treating as logged out", map[string]interface{}{
			"error": err.Error(),
		})
		return nil, false
	}
	if strings.TrimSpace(sess.Token) == "" {
		return nil, false
	}
	return &sess, true
}

// Clear is idempotent.
func (s *Store) Clear(ctx context.Context) error {
	if err := s.backend.Delete(ctx, s.key); err != nil {
		s.logger.Error(ModuleName, "Failed to clear session", map[string]interface{}{
			"error": err.Error(),
		})
		return err
	}
	s.logger.Info(ModuleName, "Session cleared", nil)
	s.notify(nil)
	return nil
}

// Subscribe registers l and returns its unsubscribe func. l is never called
// after unsubscribe returns.
func (s *Store) Subscribe(l Listener) func() {
	sub := &subscription{fn: l, active: true}
	s.mu.Lock()
	s.subs = append(s.subs, sub)
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			sub.active = false
			for i, cur := range s.subs {
				if cur == sub {
					s.subs = append(s.subs[:i:i], s.subs[i+1:]...)
					break
				}
			}
		})
	}
}

// notify holds the lock while delivering so that an unsubscribe cannot
// return while its listener is still running. Listeners must not call back
// into Subscribe.
func (s *Store) notify(sess *Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sub := range s.subs {
		if sub.active {
			sub.fn(sess)
		}
	}
}

// AuthInterceptor attaches the current credential to every outgoing request.
// The session is re-read per request so a login or logout is picked up by
// the very next call.
func (s *Store) AuthInterceptor() apiclient.Interceptor {
	return func(ctx context.Context, req *http.Request) error {
		if sess, ok := s.Get(ctx); ok {
			req.Header.Set("Authorization", "Bearer "+sess.Token)
		}
		return nil
	}
}
