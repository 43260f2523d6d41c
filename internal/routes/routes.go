package routes

import (
	"time"

	"github.com/Codify-design/fingerprint-backend/internal/config"
	"github.com/Codify-design/fingerprint-backend/internal/handlers"
	"github.com/Codify-design/fingerprint-backend/internal/middleware"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"
)

func Setup(
	app *fiber.App,
	cfg *config.Config,
	db *gorm.DB,
	authHandler *handlers.AuthHandler,
	healthHandler *handlers.HealthHandler,
	fingerprintHandler *handlers.FingerprintHandler,
	ingestHandler *handlers.IngestHandler,
	adminHandler *handlers.AdminHandler,
	settingsHandler *handlers.SettingsHandler,
) {
	// Prometheus exposition (outside /api, no tenant or rate limit)
	if cfg.MetricsEnabled {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))
	}

	api := app.Group("/api")

	// General API rate limiter: 60 req/min per IP
	api.Use(limiter.New(limiter.Config{
		Max:               60,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))

	// Health (no tenant required)
	api.Get("/health", healthHandler.Check)

	// Auth — public (tenant middleware already applied globally)
	// Auth-specific rate limit: 10 req/min per IP (stricter)
	auth := api.Group("/auth")
	auth.Use(limiter.New(limiter.Config{
		Max:               10,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)
	auth.Post("/refresh", authHandler.Refresh)

	// Protected routes (JWT required) - apply middleware to individual routes
	// This prevents JWT middleware from affecting public routes
	api.Post("/auth/logout", middleware.JWTProtected(cfg), authHandler.Logout)
	api.Delete("/auth/account", middleware.JWTProtected(cfg), authHandler.DeleteAccount)

	// Client-submitted observations (protected)
	api.Post("/fingerprints", middleware.JWTProtected(cfg), fingerprintHandler.Record)

	// Server-to-server ingest — per-app token auth via :app_id path param (no JWT)
	api.Post("/ingest/:app_id", ingestHandler.HandleBatch)

	// Moderator review surface (protected + admin required)
	admin := api.Group("/admin", middleware.JWTProtected(cfg), middleware.AdminRequired(db, cfg))
	admin.Get("/dashboard", adminHandler.Dashboard)
	admin.Get("/users/:username/report", adminHandler.UserReport)
	admin.Post("/flags", adminHandler.SetFlag)
	admin.Put("/flags", adminHandler.SetFlag)
	admin.Post("/ignores", adminHandler.SetIgnore)
	admin.Put("/ignores", adminHandler.SetIgnore)

	// Per-app moderation settings (protected + admin required)
	admin.Get("/settings", settingsHandler.GetSettings)
	admin.Put("/settings/:key", settingsHandler.SetSetting)
	admin.Delete("/settings/:key", settingsHandler.DeleteSetting)
}
