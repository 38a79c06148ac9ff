package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/SidahmedSeg/arack-engine-search-sub003/internal/auth"
	"github.com/SidahmedSeg/arack-engine-search-sub003/internal/logger"
	"github.com/SidahmedSeg/arack-engine-search-sub003/internal/session"
)

// unexported, collision-proof context keys
type userContextKeyType struct{}
type sessionContextKeyType struct{}

var (
	userKey    = userContextKeyType{}
	sessionKey = sessionContextKeyType{}
)

// UserFromContext extracts the authenticated user from context.
func UserFromContext(ctx context.Context) (auth.User, bool) {
	u, ok := ctx.Value(userKey).(auth.User)
	return u, ok
}

// SessionFromContext extracts the current session from context.
func SessionFromContext(ctx context.Context) (*session.Session, bool) {
	s, ok := ctx.Value(sessionKey).(*session.Session)
	return s, ok
}

type AuthMiddleware struct {
	Sessions *session.Manager
}

func NewAuthMiddleware(sessions *session.Manager) *AuthMiddleware {
	return &AuthMiddleware{Sessions: sessions}
}

// RequireAuth authenticates the request from its session cookie. Tokens
// within the refresh threshold of expiry are renewed proactively, and an
// already-expired session gets one refresh attempt before the request is
// rejected. Successful requests slide the session record's TTL.
func (a *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(session.CookieName)
		if err != nil || cookie.Value == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		sessionID := cookie.Value
		ctx := r.Context()

		sess, err := a.Sessions.Get(ctx, sessionID)
		switch {
		case err == nil:
			if sess.NeedsRefresh(a.Sessions.Threshold()) {
				if refreshed, rerr := a.Sessions.Refresh(ctx, sessionID); rerr == nil {
					sess = refreshed
				} else {
					// Token is still valid for now; log and continue.
					logger.Warn("proactive session refresh failed", map[string]any{
						"error": rerr.Error(),
					})
				}
			}
		case errors.Is(err, session.ErrSessionExpired):
			sess, err = a.Sessions.Refresh(ctx, sessionID)
			if err != nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
		default:
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		if err := a.Sessions.Touch(ctx, sessionID); err != nil {
			logger.Warn("session touch failed", map[string]any{
				"error": err.Error(),
			})
		}

		ctx = context.WithValue(ctx, userKey, sess.User)
		ctx = context.WithValue(ctx, sessionKey, sess)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
