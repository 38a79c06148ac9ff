package provider

import (
	"context"

	"github.com/SidahmedSeg/arack-engine-search-sub003/internal/auth"
)

// OAuthProvider defines the contract every external auth provider must
// implement. Implementations return identity facts and token material only;
// user creation, linking, and session management happen elsewhere.
type OAuthProvider interface {
	// Name returns the provider identifier (e.g. "google", "keycloak").
	Name() string

	// AuthCodeURL returns the OAuth authorization URL.
	// State and PKCE parameters are provided by the caller.
	AuthCodeURL(state string, codeChallenge string) string

	// ExchangeCode exchanges the authorization code for provider
	// credentials and returns a normalized identity plus the token bundle
	// to embed in the session.
	ExchangeCode(
		ctx context.Context,
		code string,
		codeVerifier string,
	) (*auth.Identity, auth.TokenSet, error)

	// RefreshTokens renews the token bundle from a refresh token.
	RefreshTokens(ctx context.Context, refreshToken string) (auth.TokenSet, error)
}

// TokenIssuer mints a token bundle for an already-verified user. The local
// credential path uses this where OAuth providers use ExchangeCode.
type TokenIssuer interface {
	Name() string
	IssueTokens(ctx context.Context, user auth.User) (auth.TokenSet, error)
}
