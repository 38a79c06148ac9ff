package auth

import "time"

// TokenSet is the upstream credential material produced by a provider.
// RefreshToken and IDToken may be empty depending on the auth path.
type TokenSet struct {
	AccessToken  string
	RefreshToken string
	IDToken      string
	ExpiresAt    time.Time // when AccessToken stops being valid upstream
}
