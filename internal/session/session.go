// Package session holds the signed-in user's session for the client.
//
// A Store is constructed once per process and handed to every page. It
// persists the bearer token and the display email in a storage.Store, and
// rehydrates them exactly once at startup. Navigation after login and logout
// is a side effect of the Store, performed through the injected Navigator.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/mmynk/splitmint/internal/storage"
)

// Durable storage keys.
const (
	KeyToken     = "token"
	KeyUserEmail = "user_email"
)

// Navigation targets used by the session lifecycle.
const (
	RouteGroups = "/groups"
	RouteLogin  = "/login"
)

// Navigator moves the user to another view.
type Navigator interface {
	Navigate(ctx context.Context, to string)
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(ctx context.Context, to string)

// Navigate calls f(ctx, to).
func (f NavigatorFunc) Navigate(ctx context.Context, to string) {
	f(ctx, to)
}

// Store is the session state shared by all views.
type Store struct {
	storage storage.Store
	nav     Navigator

	mu      sync.RWMutex
	email   string
	token   string
	loading bool

	hydrateOnce sync.Once
	hydrateErr  error
}

// New creates a session store. IsLoading reports true until Hydrate completes.
func New(store storage.Store, nav Navigator) *Store {
	if nav == nil {
		nav = NavigatorFunc(func(context.Context, string) {})
	}
	return &Store{
		storage: store,
		nav:     nav,
		loading: true,
	}
}

// Hydrate loads the persisted session. Only the first call reads storage;
// later calls return the first result. A storage failure leaves the user
// signed out but still ends the loading phase.
func (s *Store) Hydrate(ctx context.Context) error {
	s.hydrateOnce.Do(func() {
		email, emailErr := s.read(ctx, KeyUserEmail)
		token, tokenErr := s.read(ctx, KeyToken)

		s.mu.Lock()
		s.email = email
		s.token = token
		s.loading = false
		s.mu.Unlock()

		s.hydrateErr = errors.Join(emailErr, tokenErr)
		if s.hydrateErr != nil {
			slog.Error("Session hydration failed", "error", s.hydrateErr)
			return
		}
		slog.Debug("Session hydrated", "authenticated", email != "")
	})
	return s.hydrateErr
}

func (s *Store) read(ctx context.Context, key string) (string, error) {
	value, err := s.storage.Get(ctx, key)
	if errors.Is(err, storage.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", key, err)
	}
	return value, nil
}

// Login persists the token and email, marks the user signed in and
// navigates to the groups view.
func (s *Store) Login(ctx context.Context, token, email string) error {
	if err := s.storage.Set(ctx, KeyToken, token); err != nil {
		slog.Error("Failed to persist session token", "error", err)
		return fmt.Errorf("failed to persist session: %w", err)
	}
	if err := s.storage.Set(ctx, KeyUserEmail, email); err != nil {
		slog.Error("Failed to persist session email", "error", err)
		return fmt.Errorf("failed to persist session: %w", err)
	}

	s.mu.Lock()
	s.token = token
	s.email = email
	s.mu.Unlock()

	logTokenClaims(token, email)
	slog.Info("User logged in", "email", email)

	s.nav.Navigate(ctx, RouteGroups)
	return nil
}

// Logout clears the persisted and in-memory session and navigates to the
// login view. The in-memory session is cleared even if storage fails.
func (s *Store) Logout(ctx context.Context) error {
	err := s.storage.Delete(ctx, KeyToken, KeyUserEmail)
	if err != nil {
		slog.Error("Failed to clear persisted session", "error", err)
		err = fmt.Errorf("failed to clear session: %w", err)
	}

	s.mu.Lock()
	email := s.email
	s.token = ""
	s.email = ""
	s.mu.Unlock()

	slog.Info("User logged out", "email", email)

	s.nav.Navigate(ctx, RouteLogin)
	return err
}

// IsAuthenticated reports whether an email is held in memory. It does not
// inspect or validate the token.
func (s *Store) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.email != ""
}

// IsLoading reports whether hydration has not completed yet. Callers must
// not make authorization decisions while it is true.
func (s *Store) IsLoading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// UserEmail returns the signed-in email, or "".
func (s *Store) UserEmail() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.email
}

// Token returns the bearer token for API requests, or "".
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}
