package handler

import (
	"net/http"
	"time"

	"github.com/SidahmedSeg/arack-engine-search-sub003/internal/auth/credentials"
	"github.com/SidahmedSeg/arack-engine-search-sub003/internal/auth/provider"
	"github.com/SidahmedSeg/arack-engine-search-sub003/internal/auth/resolver"
	"github.com/SidahmedSeg/arack-engine-search-sub003/internal/logger"
	"github.com/SidahmedSeg/arack-engine-search-sub003/internal/session"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	providers         *provider.Registry
	sessions          *session.Manager
	resolver          resolver.Resolver
	credentialService *credentials.Service
	localIssuer       provider.TokenIssuer
	sessionTTL        time.Duration
	cookieOpts        session.CookieOptions
}

func NewHandler(
	registry *provider.Registry,
	sessions *session.Manager,
	resolver resolver.Resolver,
	credentialService *credentials.Service,
	localIssuer provider.TokenIssuer,
	sessionTTL time.Duration,
	cookieOpts session.CookieOptions,
) *Handler {
	return &Handler{
		providers:         registry,
		sessions:          sessions,
		resolver:          resolver,
		credentialService: credentialService,
		localIssuer:       localIssuer,
		sessionTTL:        sessionTTL,
		cookieOpts:        cookieOpts,
	}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/oauth/login/:provider", h.oauthLogin)
	r.GET("/oauth/callback/:provider", h.oauthCallback)
	r.POST("/auth/register", h.Register)
	r.POST("/auth/login", h.Login)
	r.POST("/auth/refresh", h.Refresh)
	r.POST("/auth/logout", h.Logout)
}

func (h *Handler) oauthLogin(c *gin.Context) {
	providerName := c.Param("provider")

	p, err := h.providers.Get(providerName)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "unknown oauth provider",
		})
		return
	}

	state := generateState(c)
	_, codeChallenge := generatePKCE(c)

	authURL := p.AuthCodeURL(state, codeChallenge)
	c.Redirect(http.StatusFound, authURL)
}

func (h *Handler) oauthCallback(c *gin.Context) {
	providerName := c.Param("provider")

	p, err := h.providers.Get(providerName)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "unknown oauth provider",
		})
		return
	}

	if !validateState(c) {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "invalid state",
		})
		return
	}

	errParam := c.Query("error")
	if errParam != "" {
		logger.Warn("oidc callback returned error", map[string]any{
			"provider": providerName,
			"error":    errParam,
			"desc":     c.Query("error_description"),
		})
		c.Redirect(http.StatusFound, "/login")
		return
	}

	code := c.Query("code")
	if code == "" {
		logger.Error("oidc callback missing code and error", nil)
		c.AbortWithStatus(http.StatusBadRequest)
		return
	}

	codeVerifier := getPKCEVerifier(c)
	if codeVerifier == "" {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "missing pkce verifier",
		})
		return
	}

	identity, tokens, err := p.ExchangeCode(
		c.Request.Context(),
		code,
		codeVerifier,
	)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "authentication failed",
		})
		return
	}

	user, err := h.resolver.Resolve(c.Request.Context(), identity)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "failed to resolve user",
		})
		return
	}

	sess, err := h.sessions.Create(c.Request.Context(), user, providerName, tokens)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "failed to create session",
		})
		return
	}

	h.issueCookie(c, sess.ID)

	logger.Info("oauth login succeeded", map[string]any{
		"provider": providerName,
		"user_id":  user.ID,
	})

	c.JSON(http.StatusOK, gin.H{
		"status": "authenticated",
	})
}

// Refresh renews the session's upstream tokens on demand. Downstream apps
// call this when they see the access token nearing expiry.
func (h *Handler) Refresh(c *gin.Context) {
	cookie, err := c.Request.Cookie(session.CookieName)
	if err != nil || cookie.Value == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	sess, err := h.sessions.Refresh(c.Request.Context(), cookie.Value)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "session expired"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":           "refreshed",
		"token_expires_at": sess.TokenExpiresAt,
	})
}

func (h *Handler) Logout(c *gin.Context) {
	cookie, err := c.Request.Cookie(session.CookieName)
	if err == nil && cookie.Value != "" {
		// Best-effort delete; an absent session is already logged out.
		_ = h.sessions.Destroy(c.Request.Context(), cookie.Value)
	}

	session.ClearCookie(c.Writer, h.cookieOpts)
	c.Status(http.StatusNoContent)
}

func (h *Handler) issueCookie(c *gin.Context, sessionID string) {
	session.SetCookie(
		c.Writer,
		sessionID,
		time.Now().Add(h.sessionTTL),
		h.cookieOpts,
	)
}
