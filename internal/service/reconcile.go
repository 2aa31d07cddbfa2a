package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/torsore/storefront/internal/billing"
	"github.com/torsore/storefront/internal/domain"
	"github.com/torsore/storefront/internal/repository"
)

type reconcileService struct {
	provider billing.Provider
	repo     repository.Querier
	logger   *slog.Logger
}

// Compile-time check that reconcileService implements domain.OrderReconciler.
var _ domain.OrderReconciler = (*reconcileService)(nil)

// NewReconcileService creates an OrderReconciler instance.
func NewReconcileService(provider billing.Provider, repo repository.Querier, logger *slog.Logger) domain.OrderReconciler {
	if logger == nil {
		logger = slog.Default()
	}
	return &reconcileService{
		provider: provider,
		repo:     repo,
		logger:   logger.With("service", "reconcile"),
	}
}

// GetOrderDetails resolves a checkout session to the confirmation view. The
// gateway's answer is authoritative; the durable order record only lends its
// ID as the displayed reference when the webhook has already created it.
// Unknown and unpaid sessions both produce the same neutral not-found error.
func (s *reconcileService) GetOrderDetails(ctx context.Context, sessionID string) (*domain.OrderDetailsView, error) {
	if strings.TrimSpace(sessionID) == "" {
		return nil, ErrOrderNotFound
	}

	outcome, err := s.provider.GetCheckoutSession(ctx, sessionID)
	if err != nil {
		if errors.Is(err, billing.ErrSessionNotFound) {
			return nil, ErrOrderNotFound
		}
		s.logger.Error("failed to retrieve checkout session",
			"session_id", sessionID,
			"error", err)
		return nil, domain.Internal(err, "reconcile.get_order_details", "Payment processing is temporarily unavailable")
	}

	if !outcome.Paid() {
		return nil, ErrOrderNotFound
	}

	view := &domain.OrderDetailsView{
		OrderRef:       s.orderRef(ctx, sessionID),
		CustomerEmail:  outcome.CustomerEmail,
		CustomerName:   outcome.CustomerName,
		CustomerPhone:  outcome.CustomerPhone,
		ShippingMethod: outcome.ShippingMethod,
		SubtotalCents:  outcome.Totals.SubtotalCents,
		ShippingCents:  outcome.Totals.ShippingCents,
		TaxCents:       outcome.Totals.TaxCents,
		TotalCents:     outcome.Totals.TotalCents,
	}

	if outcome.ShippingAddress != nil {
		view.ShippingAddress = &domain.Address{
			Name:       outcome.ShippingAddress.Name,
			Line1:      outcome.ShippingAddress.Line1,
			Line2:      outcome.ShippingAddress.Line2,
			City:       outcome.ShippingAddress.City,
			State:      outcome.ShippingAddress.State,
			PostalCode: outcome.ShippingAddress.PostalCode,
			Country:    outcome.ShippingAddress.Country,
		}
	}

	view.LineItems = make([]domain.ChargedLineItem, len(outcome.LineItems))
	for i, li := range outcome.LineItems {
		view.LineItems[i] = domain.ChargedLineItem{
			Name:        li.Name,
			Quantity:    int(li.Quantity),
			AmountCents: li.AmountCents,
		}
	}

	return view, nil
}

// orderRef returns the shortened reference shown on the confirmation page.
// When the webhook-created order exists its ID fragment is used; until then
// a fragment of the session ID stands in, so the page renders either way.
func (s *reconcileService) orderRef(ctx context.Context, sessionID string) string {
	if s.repo != nil {
		order, err := s.repo.GetOrderBySessionID(ctx, sessionID)
		if err == nil {
			if ref := shortRef(uuidString(order.ID)); ref != "" {
				return ref
			}
		} else if !errors.Is(err, pgx.ErrNoRows) {
			s.logger.Warn("failed to look up order for session",
				"session_id", sessionID,
				"error", err)
		}
	}
	return shortRef(strings.TrimPrefix(sessionID, "cs_test_"))
}

// shortRef uppercases the first eight characters of an identifier.
func shortRef(id string) string {
	id = strings.TrimSpace(id)
	if id == "" {
		return ""
	}
	if len(id) > 8 {
		id = id[:8]
	}
	return strings.ToUpper(id)
}
