package service

import (
	"context"
	"log/slog"

	"github.com/torsore/storefront/internal/billing"
	"github.com/torsore/storefront/internal/domain"
	"github.com/torsore/storefront/internal/pricing"
)

// CheckoutConfig contains the redirect targets for hosted checkout.
type CheckoutConfig struct {
	// SuccessURL is the confirmation page; the gateway appends the session
	// ID so the storefront can reconcile the order.
	SuccessURL string

	// CancelURL returns the shopper to the checkout page.
	CancelURL string
}

type checkoutService struct {
	provider  billing.Provider
	estimator *pricing.Estimator
	config    CheckoutConfig
	logger    *slog.Logger
}

// Compile-time check that checkoutService implements domain.CheckoutService.
var _ domain.CheckoutService = (*checkoutService)(nil)

// NewCheckoutService creates a CheckoutService instance.
func NewCheckoutService(
	provider billing.Provider,
	estimator *pricing.Estimator,
	config CheckoutConfig,
	logger *slog.Logger,
) domain.CheckoutService {
	if logger == nil {
		logger = slog.Default()
	}
	return &checkoutService{
		provider:  provider,
		estimator: estimator,
		config:    config,
		logger:    logger.With("service", "checkout"),
	}
}

// CreateSession validates the cart and contact, then opens a hosted checkout
// session. Precondition failures return before any gateway call is made.
func (s *checkoutService) CreateSession(ctx context.Context, params domain.CreateSessionParams) (*billing.CheckoutSession, error) {
	if params.Cart.IsEmpty() {
		return nil, ErrEmptyCart
	}
	if !params.Contact.HasEmail() {
		return nil, ErrMissingContact
	}

	// Reuse an existing gateway customer record when one matches the email.
	// Lookup failures degrade to email-only prefill rather than blocking
	// checkout.
	customerID := ""
	existing, err := s.provider.GetCustomerByEmail(ctx, params.Contact.Email)
	if err != nil {
		s.logger.Warn("customer lookup failed, continuing as new customer",
			"error", err)
	} else if existing != nil {
		customerID = existing.ID
	}

	lineItems := make([]billing.CheckoutLineItem, len(params.Cart.Lines))
	for i, line := range params.Cart.Lines {
		lineItems[i] = billing.CheckoutLineItem{
			ProductID:       line.ProductID,
			Name:            line.Name,
			Size:            line.Size,
			Color:           line.Color,
			ImageURL:        line.ImageURL,
			UnitAmountCents: line.UnitPriceCents,
			Quantity:        int64(line.Quantity),
		}
	}

	options := s.estimator.ShippingOptions(params.Cart)
	shippingOptions := make([]billing.ShippingChoice, len(options))
	for i, opt := range options {
		shippingOptions[i] = billing.ShippingChoice{
			DisplayName: opt.ServiceName,
			AmountCents: opt.CostCents,
			DaysMin:     int64(opt.DaysMin),
			DaysMax:     int64(opt.DaysMax),
		}
	}

	metadata := map[string]string{
		"cart_id": params.Cart.ID,
	}
	if params.Contact.UserID != "" {
		metadata["user_id"] = params.Contact.UserID
	}

	session, err := s.provider.CreateCheckoutSession(ctx, billing.CreateCheckoutSessionParams{
		LineItems:       lineItems,
		ShippingOptions: shippingOptions,
		CustomerID:      customerID,
		CustomerEmail:   params.Contact.Email,
		SuccessURL:      s.config.SuccessURL,
		CancelURL:       s.config.CancelURL,
		Metadata:        metadata,
	})
	if err != nil {
		s.logger.Error("failed to create checkout session",
			"cart_id", params.Cart.ID,
			"error", err)
		return nil, domain.Internal(err, "checkout.create_session", "Payment processing is temporarily unavailable")
	}

	s.logger.Info("checkout session created",
		"session_id", session.ID,
		"cart_id", params.Cart.ID,
		"line_count", len(lineItems))

	return session, nil
}
