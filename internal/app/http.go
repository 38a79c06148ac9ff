package app

import (
	"context"
	"net/http"

	"github.com/SidahmedSeg/arack-engine-search-sub003/internal/auth/credentials"
	"github.com/SidahmedSeg/arack-engine-search-sub003/internal/auth/handler"
	"github.com/SidahmedSeg/arack-engine-search-sub003/internal/auth/provider"
	"github.com/SidahmedSeg/arack-engine-search-sub003/internal/auth/provider/google"
	"github.com/SidahmedSeg/arack-engine-search-sub003/internal/auth/provider/keycloak"
	"github.com/SidahmedSeg/arack-engine-search-sub003/internal/auth/provider/local"
	"github.com/SidahmedSeg/arack-engine-search-sub003/internal/auth/resolver"
	"github.com/SidahmedSeg/arack-engine-search-sub003/internal/config"
	"github.com/SidahmedSeg/arack-engine-search-sub003/internal/middleware"
	"github.com/SidahmedSeg/arack-engine-search-sub003/internal/session"

	"github.com/gin-gonic/gin"
)

func setupHTTP(ctx context.Context, cfg config.Config) (*gin.Engine, func() error, error) {

	infra, err := setupInfra(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	// ----------------------------
	// Dependencies
	// ----------------------------

	sessionStore := session.NewRedisStore(infra.Redis.Client)
	sessionManager := session.NewManager(
		sessionStore,
		cfg.SessionTTL,
		cfg.SessionRefreshThreshold,
	)

	hasher := credentials.NewHasher(credentials.DefaultParams(), cfg.HashMaxConcurrent)
	credentialService := credentials.NewService(infra.DB, hasher)
	identityResolver := resolver.NewDBResolver(infra.DB)

	localProvider, err := local.New(cfg.JWTSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	if err != nil {
		return nil, nil, err
	}
	sessionManager.RegisterRefresher(localProvider.Name(), localProvider)

	// OAuth providers are optional; only configured ones are wired.
	var oauthProviders []provider.OAuthProvider

	if cfg.HasGoogle() {
		googleProvider, err := google.New(
			ctx,
			cfg.GoogleClientID,
			cfg.GoogleClientSecret,
			cfg.GoogleRedirectURL,
		)
		if err != nil {
			return nil, nil, err
		}
		oauthProviders = append(oauthProviders, googleProvider)
	}

	if cfg.HasKeycloak() {
		keycloakProvider, err := keycloak.New(
			ctx,
			cfg.KeycloakIssuer,
			cfg.KeycloakClientID,
			cfg.KeycloakRedirectURL,
			cfg.KeycloakPublicBaseURL,
		)
		if err != nil {
			return nil, nil, err
		}
		oauthProviders = append(oauthProviders, keycloakProvider)
	}

	registry := provider.NewRegistry(oauthProviders...)
	for _, p := range registry.All() {
		sessionManager.RegisterRefresher(p.Name(), p)
	}

	cookieOpts := session.CookieOptions{
		Domain:   cfg.CookieDomain,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	}

	authHandler := handler.NewHandler(
		registry,
		sessionManager,
		identityResolver,
		credentialService,
		localProvider,
		cfg.SessionTTL,
		cookieOpts,
	)

	authMiddleware := middleware.NewAuthMiddleware(sessionManager)

	// ----------------------------
	// Router
	// ----------------------------

	router := gin.New()
	router.Use(gin.Recovery())

	// ----------------------------
	// Public Routes
	// ----------------------------

	authHandler.RegisterRoutes(router)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// ----------------------------
	// Protected API Routes
	// ----------------------------

	api := router.Group("/api")
	api.Use(middleware.GinRequireAuth(authMiddleware))

	api.GET("/me", func(c *gin.Context) {
		user, ok := middleware.UserFromContext(c.Request.Context())
		if !ok {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"user": user,
		})
	})

	api.GET("/sessions/current", func(c *gin.Context) {
		sess, ok := middleware.SessionFromContext(c.Request.Context())
		if !ok {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"provider":         sess.Provider,
			"created_at":       sess.CreatedAt,
			"last_accessed_at": sess.LastAccessedAt,
			"token_expires_at": sess.TokenExpiresAt,
		})
	})

	// ----------------------------
	// Cleanup
	// ----------------------------

	return router, func() error {
		if err := infra.Redis.Close(); err != nil {
			return err
		}
		return infra.DB.Close()
	}, nil
}
