package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/devrep/reputation-registry/internal/api/http/handlers"
	"github.com/devrep/reputation-registry/internal/auth"
	"github.com/devrep/reputation-registry/internal/observability"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Profiles       *handlers.ProfilesHandler
	Platform       *handlers.PlatformHandler
	AuthMiddleware *auth.AuthMiddleware
	Metrics        *observability.Metrics
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if cfg.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(cfg.Metrics.Handler()))
	}

	v1 := app.Group("/v1")
	requireAuth := cfg.AuthMiddleware.Handle

	profiles := v1.Group("/profiles")
	profiles.Post("/", requireAuth, cfg.Profiles.Create)
	profiles.Get("/:identity", cfg.Profiles.Get)
	profiles.Get("/:identity/exists", cfg.Profiles.Exists)
	profiles.Get("/:identity/reputation", cfg.Profiles.Reputation)
	profiles.Put("/:identity/reputation", requireAuth, cfg.Profiles.UpdateReputation)
	profiles.Post("/:identity/verify", requireAuth, cfg.Profiles.Verify)
	profiles.Post("/:identity/achievements", requireAuth, cfg.Profiles.AddAchievement)
	profiles.Get("/:identity/achievements/:id", cfg.Profiles.Achievement)

	v1.Get("/platform", cfg.Platform.Parameters)
	platform := v1.Group("/platform")
	platform.Get("/fee", cfg.Platform.Fee)
	platform.Put("/fee", requireAuth, cfg.Platform.SetFee)
	platform.Get("/owner", cfg.Platform.Owner)

	v1.Get("/stats/users", cfg.Platform.TotalUsers)
	v1.Get("/chain/height", cfg.Platform.Height)
}
