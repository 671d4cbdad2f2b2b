package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ahmedabdul/staff-portal/internal/api/http/handlers"
	"github.com/ahmedabdul/staff-portal/internal/auth"
	"github.com/ahmedabdul/staff-portal/internal/observability"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health            *handlers.HealthHandler
	Session           *handlers.SessionHandler
	Staff             *handlers.StaffHandler
	Reports           *handlers.ReportsHandler
	Portal            *handlers.PortalHandler
	SessionMiddleware *auth.SessionMiddleware
	Metrics           *observability.Metrics
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if cfg.Metrics != nil {
		app.Get("/metrics", cfg.Metrics.Handler())
	}

	api := app.Group("/api", cfg.SessionMiddleware.Handle)

	sessions := api.Group("/session")
	sessions.Get("", cfg.Session.Get)
	sessions.Post("/login", cfg.Session.Login)
	sessions.Post("/logout", cfg.Session.Logout)

	staff := api.Group("/staff", auth.RequireAuthenticated())
	staff.Get("", cfg.Staff.List)
	staff.Get("/partners", cfg.Staff.Partners)
	staff.Patch("/:id", cfg.Staff.Update)
	staff.Post("", auth.RequireAdmin(), cfg.Staff.Create)
	staff.Delete("/:id", auth.RequireAdmin(), cfg.Staff.Delete)

	reports := api.Group("/reports", auth.RequireAuthenticated())
	reports.Get("", cfg.Reports.List)
	reports.Post("", cfg.Reports.Create)
	reports.Get("/stats", cfg.Reports.Stats)
	reports.Get("/:id", cfg.Reports.Get)
	reports.Get("/:id/file", cfg.Reports.Download)
	reports.Post("/:id/comments", cfg.Reports.AddComment)
	reports.Post("/:id/approve", auth.RequireReviewer(), cfg.Reports.Approve)
	reports.Post("/:id/reject", auth.RequireReviewer(), cfg.Reports.Reject)

	app.Get("/", cfg.SessionMiddleware.Handle, cfg.Portal.Page)
	app.Get("/staffportal", cfg.SessionMiddleware.Handle, cfg.Portal.Page)
	app.Get("/staffportal/:page", cfg.SessionMiddleware.Handle, cfg.Portal.Page)
}
