package session

import (
	"time"

	"github.com/SidahmedSeg/arack-engine-search-sub003/internal/auth"
)

// Session binds a user snapshot to upstream credential material, addressed
// by an opaque id stored in a client cookie. The store TTL and the embedded
// token expiry are independent clocks: the record can outlive its token's
// usefulness, and callers must treat those states separately.
type Session struct {
	ID   string    `json:"id"`
	User auth.User `json:"user"`

	Provider string `json:"provider"` // which refresher can renew the tokens

	AccessToken    string    `json:"access_token"`
	RefreshToken   string    `json:"refresh_token,omitempty"`
	IDToken        string    `json:"id_token,omitempty"`
	TokenExpiresAt time.Time `json:"token_expires_at"`

	CreatedAt      time.Time `json:"created_at"`
	LastAccessedAt time.Time `json:"last_accessed_at"`
}

// IsExpired reports whether the embedded access token is past its expiry.
// The record may still be present in the store.
func (s *Session) IsExpired() bool {
	return time.Now().After(s.TokenExpiresAt)
}

// NeedsRefresh reports whether the access token dies within threshold,
// so a refresh should happen proactively before it actually expires.
func (s *Session) NeedsRefresh(threshold time.Duration) bool {
	return time.Now().Add(threshold).After(s.TokenExpiresAt)
}

// Touch advances LastAccessedAt. It never moves backwards.
func (s *Session) Touch(now time.Time) {
	if now.After(s.LastAccessedAt) {
		s.LastAccessedAt = now
	}
}

// UpdateTokens replaces the token material after a refresh. A refresh
// response with an empty refresh token or zero expiry keeps the previous
// non-empty value; providers commonly omit fields they did not rotate.
func (s *Session) UpdateTokens(tokens auth.TokenSet) {
	s.AccessToken = tokens.AccessToken
	if tokens.RefreshToken != "" {
		s.RefreshToken = tokens.RefreshToken
	}
	if tokens.IDToken != "" {
		s.IDToken = tokens.IDToken
	}
	if !tokens.ExpiresAt.IsZero() {
		s.TokenExpiresAt = tokens.ExpiresAt
	}
}
