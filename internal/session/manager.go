package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/SidahmedSeg/arack-engine-search-sub003/internal/auth"
)

var (
	// ErrSessionNotFound means no record exists for the id. User-facing
	// as "not authenticated".
	ErrSessionNotFound = errors.New("session: not found")

	// ErrSessionExpired means the record exists but its embedded access
	// token is past expiry. Callers should attempt a refresh or force
	// re-authentication, not silently proceed.
	ErrSessionExpired = errors.New("session: expired")
)

// TokenRefresher renews upstream credential material from a refresh token.
// Local and OAuth providers implement the same capability.
type TokenRefresher interface {
	RefreshTokens(ctx context.Context, refreshToken string) (auth.TokenSet, error)
}

// Manager is the single place that decides whether a session's token is
// usable, stale, or dead. It owns session creation, retrieval, sliding
// lifetime, destruction, and delegation of token refresh to whichever
// provider issued the session.
type Manager struct {
	store      Store
	ttl        time.Duration
	threshold  time.Duration
	refreshers map[string]TokenRefresher
	now        func() time.Time
}

func NewManager(store Store, ttl, refreshThreshold time.Duration) *Manager {
	return &Manager{
		store:      store,
		ttl:        ttl,
		threshold:  refreshThreshold,
		refreshers: make(map[string]TokenRefresher),
		now:        time.Now,
	}
}

// RegisterRefresher wires the refresher for sessions created by provider.
// Whichever providers are configured at startup register here; sessions
// from an unregistered provider simply cannot be refreshed.
func (m *Manager) RegisterRefresher(provider string, r TokenRefresher) {
	m.refreshers[provider] = r
}

// Threshold is the configured refresh lookahead window.
func (m *Manager) Threshold() time.Duration {
	return m.threshold
}

// Create builds a session from the user snapshot and token bundle, assigns
// a fresh unguessable id, and persists it with the configured TTL. The
// caller's inputs are copied, never mutated.
func (m *Manager) Create(
	ctx context.Context,
	user auth.User,
	provider string,
	tokens auth.TokenSet,
) (*Session, error) {

	id, err := GenerateID()
	if err != nil {
		return nil, err
	}

	now := m.now()
	s := &Session{
		ID:             id,
		User:           user,
		Provider:       provider,
		AccessToken:    tokens.AccessToken,
		RefreshToken:   tokens.RefreshToken,
		IDToken:        tokens.IDToken,
		TokenExpiresAt: tokens.ExpiresAt,
		CreatedAt:      now,
		LastAccessedAt: now,
	}

	if err := m.store.Create(ctx, s, m.ttl); err != nil {
		return nil, err
	}

	return s, nil
}

// Get fetches the session. Absent records become ErrSessionNotFound;
// records whose access token is past expiry become ErrSessionExpired.
// All other store errors pass through unwrapped.
func (m *Manager) Get(ctx context.Context, id string) (*Session, error) {
	s, err := m.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, ErrSessionNotFound
	}
	if s.IsExpired() {
		return nil, ErrSessionExpired
	}
	return s, nil
}

// Touch slides the session record's TTL on activity.
func (m *Manager) Touch(ctx context.Context, id string) error {
	return m.store.Touch(ctx, id, m.ttl)
}

// Destroy deletes the session. Destroying an absent session is not an
// error, so logout stays idempotent.
func (m *Manager) Destroy(ctx context.Context, id string) error {
	return m.store.Delete(ctx, id)
}

// Refresh renews the session's token material through the provider that
// issued it and persists the result. It reads the raw record so a logically
// expired session with a live refresh token can still be renewed without
// forcing re-login.
func (m *Manager) Refresh(ctx context.Context, id string) (*Session, error) {
	s, err := m.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, ErrSessionNotFound
	}
	if s.RefreshToken == "" {
		return nil, ErrSessionExpired
	}

	refresher, ok := m.refreshers[s.Provider]
	if !ok {
		return nil, fmt.Errorf("session: no refresher for provider %q", s.Provider)
	}

	tokens, err := refresher.RefreshTokens(ctx, s.RefreshToken)
	if err != nil {
		return nil, err
	}

	s.UpdateTokens(tokens)
	s.Touch(m.now())

	if err := m.store.Update(ctx, s, m.ttl); err != nil {
		return nil, err
	}

	return s, nil
}
