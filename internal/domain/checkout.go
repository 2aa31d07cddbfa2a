package domain

import (
	"context"

	"github.com/torsore/storefront/internal/billing"
)

// =============================================================================
// CHECKOUT DOMAIN ERRORS
// =============================================================================

var (
	ErrEmptyCart      = &Error{Code: EINVALID, Message: "Cart is empty"}
	ErrMissingContact = &Error{Code: EINVALID, Message: "Customer email required for guest checkout"}
)

// CheckoutService initiates hosted payment sessions with the gateway.
type CheckoutService interface {
	// CreateSession validates the cart and contact, then creates a hosted
	// checkout session. Returns the redirect URL and session ID.
	// The gateway is never called for an empty cart or a missing contact.
	CreateSession(ctx context.Context, params CreateSessionParams) (*billing.CheckoutSession, error)
}

// Contact identifies the shopper initiating checkout. For authenticated
// shoppers UserID and Email come from the session; guests supply Email only.
type Contact struct {
	UserID string
	Email  string
	Name   string
	Phone  string
}

// HasEmail reports whether the contact can receive a receipt.
func (c Contact) HasEmail() bool {
	return c.Email != ""
}

// CreateSessionParams carries everything needed to open a checkout session.
type CreateSessionParams struct {
	Cart    Cart
	Contact Contact
}
