package routes

import (
	"github.com/torsore/storefront/internal/middleware"
	"github.com/torsore/storefront/internal/router"
)

// RegisterAdminRoutes registers the back-office order routes.
// All routes require the admin API key.
func RegisterAdminRoutes(r *router.Router, deps AdminDeps) {
	admin := r.Group(middleware.RequireAPIKey(deps.APIKey))

	// Order fulfillment
	admin.Get("/api/admin/orders", deps.OrderHandler.List)
	admin.Get("/api/admin/orders/{id}", deps.OrderHandler.Get)
	admin.Patch("/api/admin/orders/{id}/status", deps.OrderHandler.SetStatus)
}
