// Package session holds the client-side session state: the bearer token,
// the current user profile, and the loading/error flags the login surface
// renders. The store is constructed and injected explicitly; there is no
// process-wide singleton.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"relaterm/internal/api"
	"relaterm/internal/querycache"
)

// Store is the session state machine. All transitions go through Login,
// Logout and CheckAuth; reads go through the accessors.
type Store struct {
	client *api.Client
	tokens TokenStore
	cache  *querycache.Cache
	logger *zap.Logger

	mu        sync.RWMutex
	token     string
	user      *api.User
	isLoading bool
	err       string
}

// New creates a session store. The token persisted by a previous run, if
// any, is loaded into memory; call CheckAuth to validate it.
func New(client *api.Client, tokens TokenStore, cache *querycache.Cache, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Store{
		client: client,
		tokens: tokens,
		cache:  cache,
		logger: logger,
	}
	if tokens != nil {
		if token, err := tokens.Load(); err == nil {
			s.token = token
		}
	}
	return s
}

// Token returns the current bearer token, or "" when logged out.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// User returns the current user profile, or nil before login completes.
func (s *Store) User() *api.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user
}

// IsLoading reports whether a login or rehydration request is in flight.
func (s *Store) IsLoading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isLoading
}

// Err returns the last login error message, or "" when none.
func (s *Store) Err() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.err
}

// Login exchanges credentials for a token, persists it, then loads the
// user profile. On any failure the partial token is cleared and Err holds
// a human-readable message.
func (s *Store) Login(ctx context.Context, username, password string) error {
	s.mu.Lock()
	s.isLoading = true
	s.err = ""
	s.mu.Unlock()

	resp, err := s.client.Token(ctx, username, password)
	if err != nil {
		s.failLogin(err)
		return fmt.Errorf("login: %w", err)
	}

	s.mu.Lock()
	s.token = resp.AccessToken
	s.mu.Unlock()
	if s.tokens != nil {
		if err := s.tokens.Save(resp.AccessToken); err != nil {
			s.logger.Warn("persist token", zap.Error(err))
		}
	}

	user, err := s.client.Me(ctx)
	if err != nil {
		s.failLogin(err)
		return fmt.Errorf("load profile: %w", err)
	}

	s.mu.Lock()
	s.user = user
	s.isLoading = false
	s.mu.Unlock()
	s.logger.Info("logged in", zap.String("username", user.Username), zap.String("role", user.Role))
	return nil
}

// failLogin records the error shown on the login form and rolls back any
// partially established session.
func (s *Store) failLogin(err error) {
	msg := "Login failed. Please check your credentials."
	var apiErr *api.APIError
	if errors.As(err, &apiErr) && apiErr.Detail != "" {
		msg = apiErr.Detail
	}

	s.mu.Lock()
	s.token = ""
	s.user = nil
	s.isLoading = false
	s.err = msg
	s.mu.Unlock()
	if s.tokens != nil {
		_ = s.tokens.Clear()
	}
}

// Logout clears the session from memory and disk, and drops every cached
// query so no stale per-user data survives into the next session.
func (s *Store) Logout() {
	s.mu.Lock()
	s.token = ""
	s.user = nil
	s.err = ""
	s.isLoading = false
	s.mu.Unlock()

	if s.tokens != nil {
		_ = s.tokens.Clear()
	}
	if s.cache != nil {
		s.cache.Clear()
	}
	s.logger.Info("logged out")
}

// CheckAuth validates a persisted token on startup by fetching the user
// profile. Failures leave the session logged out without surfacing an
// error; this is a silent rehydration probe, not a user-facing action.
func (s *Store) CheckAuth(ctx context.Context) {
	s.mu.Lock()
	if s.token == "" || s.user != nil {
		s.isLoading = false
		s.mu.Unlock()
		return
	}
	s.isLoading = true
	s.mu.Unlock()

	user, err := s.client.Me(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.isLoading = false
	if err != nil {
		// A 401 already went through the unauthorized handler; anything else
		// leaves the session logged out with no user set.
		s.logger.Debug("rehydration probe failed", zap.Error(err))
		return
	}
	s.user = user
}
