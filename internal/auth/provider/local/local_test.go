package local

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/SidahmedSeg/arack-engine-search-sub003/internal/auth"
)

func testProvider(t *testing.T) *Provider {
	t.Helper()
	p, err := New("unit-test-secret", 15*time.Minute, 24*time.Hour)
	if err != nil {
		t.Fatalf("new provider: %v", err)
	}
	return p
}

func TestNewValidation(t *testing.T) {
	t.Parallel()

	if _, err := New("", time.Minute, time.Hour); err == nil {
		t.Fatalf("empty secret must be rejected")
	}
	if _, err := New("secret", 0, time.Hour); err == nil {
		t.Fatalf("zero access ttl must be rejected")
	}
	if _, err := New("secret", time.Minute, -time.Hour); err == nil {
		t.Fatalf("negative refresh ttl must be rejected")
	}
}

func TestIssueAndRefreshTokens(t *testing.T) {
	t.Parallel()

	p := testProvider(t)
	ctx := context.Background()

	user := auth.User{
		ID:          "u1",
		Email:       "a@example.com",
		DisplayName: "Test User",
	}

	issued, err := p.IssueTokens(ctx, user)
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}
	if issued.AccessToken == "" || issued.RefreshToken == "" {
		t.Fatalf("issued pair must contain both tokens")
	}
	if issued.AccessToken == issued.RefreshToken {
		t.Fatalf("access and refresh tokens must differ")
	}
	if !issued.ExpiresAt.After(time.Now()) {
		t.Fatalf("access expiry must be in the future")
	}

	renewed, err := p.RefreshTokens(ctx, issued.RefreshToken)
	if err != nil {
		t.Fatalf("refresh failed: %v", err)
	}
	if renewed.AccessToken == "" || renewed.RefreshToken == "" {
		t.Fatalf("renewed pair must contain both tokens")
	}
}

func TestRefreshRejectsBadTokens(t *testing.T) {
	t.Parallel()

	p := testProvider(t)
	ctx := context.Background()

	issued, err := p.IssueTokens(ctx, auth.User{ID: "u1", Email: "a@example.com"})
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}

	other, err := New("different-secret", 15*time.Minute, 24*time.Hour)
	if err != nil {
		t.Fatalf("new provider: %v", err)
	}

	cases := []struct {
		name  string
		p     *Provider
		token string
	}{
		{name: "garbage", p: p, token: "not-a-jwt"},
		{name: "access token as refresh", p: p, token: issued.AccessToken},
		{name: "wrong secret", p: other, token: issued.RefreshToken},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			if _, err := tc.p.RefreshTokens(ctx, tc.token); !errors.Is(err, ErrInvalidRefreshToken) {
				t.Fatalf("want ErrInvalidRefreshToken, got %v", err)
			}
		})
	}
}
