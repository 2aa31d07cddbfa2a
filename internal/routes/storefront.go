package routes

import (
	"github.com/torsore/storefront/internal/middleware"
	"github.com/torsore/storefront/internal/router"
)

// RegisterStorefrontRoutes registers all shopper-facing routes. They are
// public: guests shop anonymously and checkout identifies them by email.
func RegisterStorefrontRoutes(r *router.Router, deps StorefrontDeps) {
	// Shopping cart
	r.Get("/api/cart", deps.CartHandler.View)
	r.Post("/api/cart/lines", deps.CartHandler.AddLine)
	r.Put("/api/cart/lines", deps.CartHandler.UpdateLine)
	r.Delete("/api/cart/lines", deps.CartHandler.RemoveLine)
	r.Delete("/api/cart", deps.CartHandler.Clear)
	r.Get("/api/cart/estimate", deps.CartHandler.Estimate)

	// Checkout flow. Session creation is rate limited; it is the only
	// storefront route that reaches the payment gateway.
	checkoutLimiter := middleware.NewRateLimiter(middleware.DefaultRateLimiterConfig())
	r.Post("/api/checkout/session", deps.CheckoutHandler.CreateSession,
		checkoutLimiter.Middleware)
	r.Get("/api/checkout/confirmation", deps.OrderConfirmationHandler.View)
}
