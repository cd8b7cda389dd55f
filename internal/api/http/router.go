package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/kaveyan18/resolve-desk/internal/api/http/handlers"
	"github.com/kaveyan18/resolve-desk/internal/auth"
	"github.com/kaveyan18/resolve-desk/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Complaints     *handlers.ComplaintsHandler
	Notifications  *handlers.NotificationsHandler
	Settings       *handlers.SettingsHandler
	Users          *handlers.UsersHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	api := app.Group("/api")

	authGroup := api.Group("/auth")
	authGroup.Post("/register", cfg.Auth.Register)
	authGroup.Post("/login", cfg.Auth.Login)

	protected := api.Group("", cfg.AuthMiddleware.Handle)

	complaints := protected.Group("/complaints")
	complaints.Post("", cfg.Complaints.Create)
	complaints.Get("", cfg.Complaints.List)
	complaints.Get("/track/:code", cfg.Complaints.Track)
	complaints.Get("/:id", cfg.Complaints.Get)
	complaints.Put("/:id", cfg.Complaints.Update)
	complaints.Get("/:id/messages", cfg.Complaints.ListMessages)
	complaints.Post("/:id/messages", cfg.Complaints.SendMessage)

	notifications := protected.Group("/notifications")
	notifications.Get("", cfg.Notifications.List)
	notifications.Put("/:id/read", cfg.Notifications.MarkRead)

	admin := protected.Group("/admin", auth.RequireRole(domain.RoleAdmin))
	admin.Get("/settings", cfg.Settings.Get)
	admin.Put("/settings", cfg.Settings.Update)
	admin.Get("/users", cfg.Users.List)
	admin.Put("/users/:id", cfg.Users.Update)
}
