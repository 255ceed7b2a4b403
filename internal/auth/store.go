// Package auth owns the client's credential state: the session token, the
// authenticated user, and the startup resolution flag. The token is
// persisted through the config file so a session survives restarts.
//
// The store is the only mutator of credential state. The transport holds it
// as a read-only TokenSource and signals authentication failure through
// Teardown rather than touching the state itself.
package auth

import (
	"context"
	"sync"

	"github.com/parley-chat/parley/internal/api"
	"github.com/parley-chat/parley/internal/config"
	"github.com/parley-chat/parley/internal/logger"
)

// Store holds the current session.
type Store struct {
	mu      sync.RWMutex
	cfg     *config.Config
	client  *api.Client
	user    *api.User
	loading bool
	lastErr string
}

// NewStore creates a session store backed by the given config. The store
// starts in the loading state: consumers must not decide between the login
// and dashboard surfaces until Resolve has completed.
func NewStore(cfg *config.Config) *Store {
	return &Store{cfg: cfg, loading: true}
}

// AttachClient wires the API client used for auth calls. Done after
// construction because the client needs the store as its TokenSource.
func (s *Store) AttachClient(client *api.Client) {
	s.client = client
}

// Token implements api.TokenSource. Returns empty string when logged out.
func (s *Store) Token() string {
	return s.cfg.GetToken()
}

// User returns a copy of the authenticated user, or nil if logged out.
func (s *Store) User() *api.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

// IsLoading reports whether the startup session resolution is still running.
func (s *Store) IsLoading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// LastError returns the most recent auth operation error message, or empty.
func (s *Store) LastError() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastErr
}

// IsAuthenticated reports whether a validated user is present.
func (s *Store) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user != nil
}

// Resolve validates the persisted token, if any, against the server. Runs
// once at startup. A missing token resolves to an empty session without a
// network call; any failure (including unauthorized) discards the token.
// The loading flag is cleared on every path out.
func (s *Store) Resolve(ctx context.Context) error {
	defer func() {
		s.mu.Lock()
		s.loading = false
		s.mu.Unlock()
	}()

	if !s.cfg.HasToken() {
		logger.Debug("Auth: no persisted token, starting logged out")
		return nil
	}

	user, err := s.client.Me(ctx)
	if err != nil {
		logger.Info("Auth: persisted token rejected, discarding: %v", err)
		s.discardSession()
		return err
	}

	s.mu.Lock()
	s.user = &user
	s.mu.Unlock()
	logger.Info("Auth: resolved session for %s", user.Username)
	return nil
}

// Login exchanges credentials for a session. On success the returned token
// is persisted and the user set; on failure the session is left unchanged
// and the error message retained for the login form. No retry.
func (s *Store) Login(ctx context.Context, email, password string) error {
	sess, err := s.client.Login(ctx, email, password)
	if err != nil {
		s.setError(err.Error())
		return err
	}
	s.adoptSession(sess)
	logger.Info("Auth: logged in as %s", sess.User.Username)
	return nil
}

// Register creates an account with the same session contract as Login.
func (s *Store) Register(ctx context.Context, req api.RegisterRequest) error {
	sess, err := s.client.Register(ctx, req)
	if err != nil {
		s.setError(err.Error())
		return err
	}
	s.adoptSession(sess)
	logger.Info("Auth: registered as %s", sess.User.Username)
	return nil
}

// UpdateProfile replaces the local user record with the server's canonical
// copy. On failure local user state is untouched.
func (s *Store) UpdateProfile(ctx context.Context, username string, image *api.ImageAttachment) error {
	user, err := s.client.UpdateProfile(ctx, username, image)
	if err != nil {
		s.setError(err.Error())
		return err
	}
	s.mu.Lock()
	s.user = &user
	s.lastErr = ""
	s.mu.Unlock()
	return nil
}

// Logout discards the persisted token and clears the user. Local only; no
// network call is issued.
func (s *Store) Logout() {
	logger.Info("Auth: logging out")
	s.discardSession()
}

// Teardown is the global unauthorized handler: identical to Logout but named
// for its trigger. The transport invokes it for any unauthorized response,
// regardless of which operation was in flight.
func (s *Store) Teardown() {
	logger.Info("Auth: session torn down after unauthorized response")
	s.discardSession()
}

// adoptSession persists the token and installs the user.
func (s *Store) adoptSession(sess api.Session) {
	s.cfg.SetToken(sess.Token)
	if err := s.cfg.Save(); err != nil {
		logger.Error("Auth: failed to persist token: %v", err)
	}
	s.mu.Lock()
	user := sess.User
	s.user = &user
	s.lastErr = ""
	s.mu.Unlock()
}

// discardSession clears the persisted token and the user.
func (s *Store) discardSession() {
	s.cfg.ClearToken()
	if err := s.cfg.Save(); err != nil {
		logger.Error("Auth: failed to clear persisted token: %v", err)
	}
	s.mu.Lock()
	s.user = nil
	s.mu.Unlock()
}

func (s *Store) setError(msg string) {
	s.mu.Lock()
	s.lastErr = msg
	s.mu.Unlock()
}
