package router // package router wires HTTP routes to their handlers

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/Nota0515/bhakti/internal/config"
	"github.com/Nota0515/bhakti/internal/handler"
	"github.com/Nota0515/bhakti/internal/middleware"
	"github.com/Nota0515/bhakti/internal/session"
)

// Handlers bundles everything the router needs.
type Handlers struct {
	Session *session.Machine
	Auth    *handler.AuthHandler
	Email   *handler.EmailHandler
	Mandal  *handler.MandalHandler
	Order   *handler.OrderHandler
}

// Register wires all routes. Public directory reads sit behind the
// Redis response cache; auth and order mutations sit behind the rate
// limiter; everything under /v1 requiring a session uses the JWT
// middleware.
func Register(e *echo.Echo, cfg config.Config, rdb *redis.Client, h Handlers) {
	// Plain service endpoints.
	e.GET("/api/health", handler.Health)
	e.GET("/api/config", handler.ClientConfig(cfg.MapProviderKey))
	e.POST("/api/send-email", h.Email.Send)

	cache := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)
	limiter := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)

	// Public directory: guests browse the map without a session.
	e.GET("/v1/mandals", h.Mandal.List, cache)
	e.GET("/v1/mandals/:id", h.Mandal.Get)
	e.GET("/v1/prasad/items", h.Order.Catalog)

	// Authentication endpoints issue and exchange tokens; they are the
	// obvious brute-force target, hence the limiter.
	g := e.Group("/v1/auth", limiter)
	g.POST("/register", h.Auth.Register)
	g.POST("/login", h.Auth.Login)
	g.POST("/refresh", h.Auth.Refresh)
	g.POST("/logout", h.Auth.Logout)

	// Browser-facing pages go through the route guard, which answers
	// with a redirect or interstitial instead of a JSON 401. The guard
	// watches the process's session machine so requests arriving before
	// Activate settles get the interstitial rather than a redirect.
	e.GET("/account", handler.AccountPage, middleware.RouteGuard(h.Session, cfg.JWTSecret))

	// Protected endpoints require a valid access token.
	auth := e.Group("/v1")
	auth.Use(middleware.JWTAuth(cfg.JWTSecret))
	auth.GET("/me", h.Auth.Me)
	auth.PUT("/me/profile", h.Auth.UpdateProfile)
	auth.POST("/mandals", h.Mandal.Register)
	auth.POST("/orders", h.Order.Place, limiter)
	auth.GET("/my-orders", h.Order.ListMine)
}
