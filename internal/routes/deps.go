package routes

import (
	"github.com/torsore/storefront/internal/handler/admin"
	"github.com/torsore/storefront/internal/handler/storefront"
	"github.com/torsore/storefront/internal/handler/webhook"
)

// StorefrontDeps contains dependencies for shopper-facing routes
type StorefrontDeps struct {
	// Cart (view, add/update/remove lines, estimate)
	CartHandler *storefront.CartHandler

	// Checkout session creation
	CheckoutHandler *storefront.CheckoutHandler

	// Post-payment confirmation view
	OrderConfirmationHandler *storefront.OrderConfirmationHandler
}

// AdminDeps contains dependencies for back-office routes
type AdminDeps struct {
	OrderHandler *admin.OrderHandler

	// APIKey guards all admin routes
	APIKey string
}

// WebhookDeps contains dependencies for webhook routes
type WebhookDeps struct {
	StripeHandler *webhook.StripeHandler
}
