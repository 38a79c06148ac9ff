package local

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/SidahmedSeg/arack-engine-search-sub003/internal/auth"

	"github.com/golang-jwt/jwt/v5"
)

const providerName = "local"

var ErrInvalidRefreshToken = errors.New("local: invalid refresh token")

// Provider issues and refreshes HS256 JWT pairs for accounts that
// authenticated against the local credential store. It fills the same
// session slots that OAuth providers populate with upstream tokens.
type Provider struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

func New(secret string, accessTTL, refreshTTL time.Duration) (*Provider, error) {
	if secret == "" {
		return nil, errors.New("local provider requires a signing secret")
	}
	if accessTTL <= 0 || refreshTTL <= 0 {
		return nil, errors.New("local provider token lifetimes must be positive")
	}
	return &Provider{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}, nil
}

func (p *Provider) Name() string {
	return providerName
}

type tokenClaims struct {
	Email       string `json:"email"`
	DisplayName string `json:"display_name,omitempty"`
	AvatarURL   string `json:"avatar_url,omitempty"`
	TokenType   string `json:"typ"`
	jwt.RegisteredClaims
}

// IssueTokens mints an access/refresh pair for a verified user. The refresh
// token carries the user snapshot so renewal needs no account lookup.
func (p *Provider) IssueTokens(ctx context.Context, user auth.User) (auth.TokenSet, error) {
	now := p.now()
	accessExpiry := now.Add(p.accessTTL)

	access, err := p.sign(user, "access", now, accessExpiry)
	if err != nil {
		return auth.TokenSet{}, err
	}

	refresh, err := p.sign(user, "refresh", now, now.Add(p.refreshTTL))
	if err != nil {
		return auth.TokenSet{}, err
	}

	return auth.TokenSet{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresAt:    accessExpiry,
	}, nil
}

// RefreshTokens validates a refresh JWT and reissues the pair. An expired
// or malformed refresh token is ErrInvalidRefreshToken; callers force
// re-authentication in that case.
func (p *Provider) RefreshTokens(ctx context.Context, refreshToken string) (auth.TokenSet, error) {
	var claims tokenClaims

	token, err := jwt.ParseWithClaims(
		refreshToken,
		&claims,
		func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return p.secret, nil
		},
	)
	if err != nil || !token.Valid {
		return auth.TokenSet{}, ErrInvalidRefreshToken
	}
	if claims.TokenType != "refresh" || claims.Subject == "" {
		return auth.TokenSet{}, ErrInvalidRefreshToken
	}

	user := auth.User{
		ID:          claims.Subject,
		Email:       claims.Email,
		DisplayName: claims.DisplayName,
		AvatarURL:   claims.AvatarURL,
	}

	return p.IssueTokens(ctx, user)
}

func (p *Provider) sign(user auth.User, typ string, issuedAt, expiresAt time.Time) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, tokenClaims{
		Email:       user.Email,
		DisplayName: user.DisplayName,
		AvatarURL:   user.AvatarURL,
		TokenType:   typ,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	})
	signed, err := token.SignedString(p.secret)
	if err != nil {
		return "", fmt.Errorf("local token signing failed: %w", err)
	}
	return signed, nil
}
