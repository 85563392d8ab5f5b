package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/ecomarket-assistant/internal/api/http/handlers"
	"github.com/spec-kit/ecomarket-assistant/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Chat           *handlers.ChatHandler
	Tools          *handlers.ToolsHandler
	Admin          *handlers.AdminHandler
	AuthMiddleware *auth.Middleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	app.Post("/chat", cfg.Chat.Handle)

	toolsGroup := app.Group("/tools/returns")
	toolsGroup.Post("/eligibility", cfg.Tools.CheckEligibility)
	toolsGroup.Post("/estimate", cfg.Tools.EstimateRefund)
	toolsGroup.Post("/register", cfg.Tools.RegisterReturn)

	app.Post("/admin/login", cfg.Admin.Login)

	adminGroup := app.Group("/admin", cfg.AuthMiddleware.Handle)
	adminGroup.Get("/traces", cfg.Admin.Traces)
	adminGroup.Get("/traces/stats", cfg.Admin.TraceStats)
	adminGroup.Delete("/traces", cfg.Admin.ClearTraces)
	adminGroup.Get("/tickets", cfg.Admin.Tickets)
}
