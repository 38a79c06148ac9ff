package keycloak

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/SidahmedSeg/arack-engine-search-sub003/internal/auth"
	"github.com/SidahmedSeg/arack-engine-search-sub003/internal/logger"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"
)

const providerName = "keycloak"

// Provider implements OAuth + OIDC authentication against the legacy
// Keycloak realm. It returns identity facts and token material only.
type Provider struct {
	oauthConfig *oauth2.Config
	verifier    *oidc.IDTokenVerifier
}

// New initializes a Keycloak OIDC provider using discovery.
// issuer must be the realm issuer URL, e.g.
// http://localhost:8081/realms/arack
func New(
	ctx context.Context,
	issuer string,
	clientID string,
	redirectURL string,
	publicBaseURL string,
) (*Provider, error) {

	if issuer == "" || clientID == "" || redirectURL == "" {
		return nil, errors.New("keycloak oauth config missing required fields")
	}

	oidcProvider, err := oidc.NewProvider(ctx, issuer)
	if err != nil {
		return nil, fmt.Errorf("failed to init keycloak oidc provider: %w", err)
	}

	verifier := oidcProvider.Verifier(&oidc.Config{
		ClientID: clientID,
	})

	ep := oidcProvider.Endpoint()
	if publicBaseURL != "" {
		// The browser-facing auth URL may differ from the discovery URL
		// when Keycloak sits behind an internal hostname.
		issuerURL, err := url.Parse(issuer)
		if err != nil {
			return nil, fmt.Errorf("invalid keycloak issuer: %w", err)
		}
		ep.AuthURL = publicBaseURL + issuerURL.Path + "/protocol/openid-connect/auth"
	}

	oauthCfg := &oauth2.Config{
		ClientID:    clientID,
		RedirectURL: redirectURL,
		Endpoint:    ep,
		Scopes: []string{
			oidc.ScopeOpenID,
			"email",
			"profile",
		},
	}

	return &Provider{
		oauthConfig: oauthCfg,
		verifier:    verifier,
	}, nil
}

// Name returns the provider identifier used by the registry.
func (p *Provider) Name() string {
	return providerName
}

// AuthCodeURL builds the OAuth authorization URL with PKCE parameters.
func (p *Provider) AuthCodeURL(state string, codeChallenge string) string {
	return p.oauthConfig.AuthCodeURL(
		state,
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("code_challenge", codeChallenge),
		oauth2.SetAuthURLParam("code_challenge_method", "S256"),
	)
}

// ExchangeCode exchanges the authorization code and returns a normalized
// identity plus the token bundle. No user or session decisions are made here.
func (p *Provider) ExchangeCode(
	ctx context.Context,
	code string,
	codeVerifier string,
) (*auth.Identity, auth.TokenSet, error) {

	token, err := p.oauthConfig.Exchange(
		ctx,
		code,
		oauth2.SetAuthURLParam("code_verifier", codeVerifier),
	)
	if err != nil {
		logger.Error("keycloak token exchange failed", map[string]any{
			"error": err.Error(),
		})
		return nil, auth.TokenSet{}, err
	}

	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok || rawIDToken == "" {
		return nil, auth.TokenSet{}, errors.New("keycloak did not return id_token")
	}

	idToken, err := p.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		logger.Error("keycloak id_token verification failed", map[string]any{
			"error": err.Error(),
		})
		return nil, auth.TokenSet{}, err
	}

	var claims struct {
		Subject           string `json:"sub"`
		Email             string `json:"email"`
		EmailVerified     bool   `json:"email_verified"`
		PreferredUsername string `json:"preferred_username"`
		Name              string `json:"name"`
		Picture           string `json:"picture"`
	}

	if err := idToken.Claims(&claims); err != nil {
		return nil, auth.TokenSet{}, fmt.Errorf("keycloak id_token claims parse failed: %w", err)
	}

	if claims.Subject == "" || claims.Email == "" {
		return nil, auth.TokenSet{}, errors.New("keycloak id_token missing required claims")
	}

	logger.Info("keycloak oidc verified", map[string]any{
		"issuer":         idToken.Issuer,
		"email_verified": claims.EmailVerified,
		"audience":       idToken.Audience,
		"expiry_unix":    idToken.Expiry.Unix(),
	})

	displayName := claims.Name
	if displayName == "" {
		displayName = claims.PreferredUsername
	}

	identity := &auth.Identity{
		Provider:       providerName,
		ProviderUserID: claims.Subject,
		Email:          claims.Email,
		EmailVerified:  claims.EmailVerified,
		DisplayName:    displayName,
		AvatarURL:      claims.Picture,
	}

	tokens := auth.TokenSet{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		IDToken:      rawIDToken,
		ExpiresAt:    token.Expiry,
	}

	return identity, tokens, nil
}

// RefreshTokens exchanges a refresh token for a new token bundle.
func (p *Provider) RefreshTokens(
	ctx context.Context,
	refreshToken string,
) (auth.TokenSet, error) {

	src := p.oauthConfig.TokenSource(ctx, &oauth2.Token{
		RefreshToken: refreshToken,
	})

	token, err := src.Token()
	if err != nil {
		return auth.TokenSet{}, fmt.Errorf("keycloak token refresh failed: %w", err)
	}

	rawIDToken, _ := token.Extra("id_token").(string)

	return auth.TokenSet{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		IDToken:      rawIDToken,
		ExpiresAt:    token.Expiry,
	}, nil
}
