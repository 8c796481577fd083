package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/careteam-transfer/internal/api/http/handlers"
	"github.com/spec-kit/careteam-transfer/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Jobs           *handlers.JobsHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	jobs := app.Group("/jobs", cfg.AuthMiddleware.Handle)
	jobs.Post("/transfer/run", cfg.Jobs.RunTransfer)
}
