package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/SidahmedSeg/arack-engine-search-sub003/internal/auth"
	"github.com/SidahmedSeg/arack-engine-search-sub003/internal/session"
)

type memStore struct {
	mu      sync.Mutex
	entries map[string][]byte
}

func newMemStore() *memStore {
	return &memStore{entries: make(map[string][]byte)}
}

func (m *memStore) Create(ctx context.Context, s *session.Session, ttl time.Duration) error {
	data, err := json.Marshal(s)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[s.ID] = data
	return nil
}

func (m *memStore) Get(ctx context.Context, id string) (*session.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.entries[id]
	if !ok {
		return nil, nil
	}
	var s session.Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, session.ErrCorruptData
	}
	return &s, nil
}

func (m *memStore) Update(ctx context.Context, s *session.Session, ttl time.Duration) error {
	return m.Create(ctx, s, ttl)
}

func (m *memStore) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, id)
	return nil
}

func (m *memStore) Touch(ctx context.Context, id string, ttl time.Duration) error {
	return nil
}

type staticRefresher struct {
	tokens auth.TokenSet
}

func (r *staticRefresher) RefreshTokens(ctx context.Context, refreshToken string) (auth.TokenSet, error) {
	return r.tokens, nil
}

func newAuthedRequest(t *testing.T, sessionID string) *http.Request {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.AddCookie(&http.Cookie{Name: session.CookieName, Value: sessionID})
	return req
}

func TestRequireAuth(t *testing.T) {
	t.Parallel()

	user := auth.User{ID: "u1", Email: "a@example.com"}

	t.Run("valid session passes user through", func(t *testing.T) {
		t.Parallel()

		mgr := session.NewManager(newMemStore(), time.Hour, time.Minute)
		sess, err := mgr.Create(context.Background(), user, "local", auth.TokenSet{
			AccessToken: "tok1",
			ExpiresAt:   time.Now().Add(time.Hour),
		})
		if err != nil {
			t.Fatalf("create session: %v", err)
		}

		var gotUser auth.User
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotUser, _ = UserFromContext(r.Context())
			w.WriteHeader(http.StatusOK)
		})

		rec := httptest.NewRecorder()
		NewAuthMiddleware(mgr).RequireAuth(next).ServeHTTP(rec, newAuthedRequest(t, sess.ID))

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
		if gotUser != user {
			t.Fatalf("context user = %+v, want %+v", gotUser, user)
		}
	})

	t.Run("missing cookie rejected", func(t *testing.T) {
		t.Parallel()

		mgr := session.NewManager(newMemStore(), time.Hour, time.Minute)
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Fatal("next handler must not run")
		})

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		NewAuthMiddleware(mgr).RequireAuth(next).ServeHTTP(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("status = %d, want 401", rec.Code)
		}
	})

	t.Run("unknown session rejected", func(t *testing.T) {
		t.Parallel()

		mgr := session.NewManager(newMemStore(), time.Hour, time.Minute)
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Fatal("next handler must not run")
		})

		rec := httptest.NewRecorder()
		NewAuthMiddleware(mgr).RequireAuth(next).ServeHTTP(rec, newAuthedRequest(t, "no-such-session"))

		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("status = %d, want 401", rec.Code)
		}
	})

	t.Run("expired session refreshed in place", func(t *testing.T) {
		t.Parallel()

		mgr := session.NewManager(newMemStore(), time.Hour, time.Minute)
		mgr.RegisterRefresher("keycloak", &staticRefresher{
			tokens: auth.TokenSet{
				AccessToken: "tok2",
				ExpiresAt:   time.Now().Add(time.Hour),
			},
		})

		sess, err := mgr.Create(context.Background(), user, "keycloak", auth.TokenSet{
			AccessToken:  "tok1",
			RefreshToken: "ref1",
			ExpiresAt:    time.Now().Add(-time.Minute),
		})
		if err != nil {
			t.Fatalf("create session: %v", err)
		}

		var gotToken string
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if s, ok := SessionFromContext(r.Context()); ok {
				gotToken = s.AccessToken
			}
			w.WriteHeader(http.StatusOK)
		})

		rec := httptest.NewRecorder()
		NewAuthMiddleware(mgr).RequireAuth(next).ServeHTTP(rec, newAuthedRequest(t, sess.ID))

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
		if gotToken != "tok2" {
			t.Fatalf("access token after refresh = %q, want tok2", gotToken)
		}
	})

	t.Run("expired session without refresh token rejected", func(t *testing.T) {
		t.Parallel()

		mgr := session.NewManager(newMemStore(), time.Hour, time.Minute)
		sess, err := mgr.Create(context.Background(), user, "local", auth.TokenSet{
			AccessToken: "tok1",
			ExpiresAt:   time.Now().Add(-time.Minute),
		})
		if err != nil {
			t.Fatalf("create session: %v", err)
		}

		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Fatal("next handler must not run")
		})

		rec := httptest.NewRecorder()
		NewAuthMiddleware(mgr).RequireAuth(next).ServeHTTP(rec, newAuthedRequest(t, sess.ID))

		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("status = %d, want 401", rec.Code)
		}
	})
}
