package webhook

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/torsore/storefront/internal/billing"
	"github.com/torsore/storefront/internal/domain"
	"github.com/torsore/storefront/internal/handler"
	"github.com/torsore/storefront/internal/repository"
	"github.com/torsore/storefront/internal/telemetry"
)

// maxPayloadBytes bounds webhook request bodies. Stripe events are small;
// anything larger is not ours.
const maxPayloadBytes = 1 << 16

// StripeHandler handles Stripe webhook events
type StripeHandler struct {
	provider     billing.Provider
	orderService domain.OrderService
	repo         repository.Querier
	logger       *slog.Logger
}

// NewStripeHandler creates a new Stripe webhook handler
func NewStripeHandler(provider billing.Provider, orderService domain.OrderService, repo repository.Querier, logger *slog.Logger) *StripeHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &StripeHandler{
		provider:     provider,
		orderService: orderService,
		repo:         repo,
		logger:       logger.With("handler", "stripe_webhook"),
	}
}

// HandleWebhook processes incoming Stripe webhook events.
//
// Stripe CLI testing:
//
//	stripe listen --forward-to localhost:3000/webhooks/stripe
//	stripe trigger checkout.session.completed
func (h *StripeHandler) HandleWebhook(w http.ResponseWriter, r *http.Request) {
	startTime := time.Now()
	defer func() {
		if telemetry.Business != nil {
			telemetry.Business.WebhookLatency.Observe(time.Since(startTime).Seconds())
		}
	}()

	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxPayloadBytes))
	if err != nil {
		handler.ErrorResponse(w, r, domain.Errorf(domain.EINVALID, "", "Error reading request body"))
		return
	}

	signature := r.Header.Get("Stripe-Signature")
	if signature == "" {
		handler.ErrorResponse(w, r, domain.Errorf(domain.EINVALID, "", "Missing signature"))
		return
	}

	event, err := h.provider.VerifyWebhook(payload, signature)
	if err != nil {
		h.logger.Warn("webhook signature verification failed", "error", err)
		if telemetry.Business != nil {
			telemetry.Business.WebhookFailed.WithLabelValues("unknown", "signature").Inc()
		}
		handler.ErrorResponse(w, r, domain.Errorf(domain.EUNAUTHORIZED, "", "Invalid signature"))
		return
	}

	h.logger.Info("webhook event received",
		"event_id", event.ID,
		"event_type", event.Type)
	if telemetry.Business != nil {
		telemetry.Business.WebhookReceived.WithLabelValues(event.Type).Inc()
	}

	switch event.Type {
	case billing.EventCheckoutCompleted:
		if err := h.handleCheckoutCompleted(r, event); err != nil {
			if telemetry.Business != nil {
				telemetry.Business.WebhookFailed.WithLabelValues(event.Type, "processing").Inc()
			}
			// A non-2xx response makes Stripe retry the delivery.
			handler.ErrorResponse(w, r, err)
			return
		}
		if telemetry.Business != nil {
			telemetry.Business.WebhookProcessed.WithLabelValues(event.Type).Inc()
		}

	default:
		h.logger.Info("unhandled event type", "event_type", event.Type)
	}

	// Record the event only after it has been handled, so a delivery that
	// failed above leaves no row behind and Stripe's retry gets processed
	// instead of being mistaken for a duplicate. Redelivery of a recorded
	// event is harmless either way: the order's unique session ID resolves
	// it to the existing order.
	if _, err := h.repo.InsertWebhookEvent(r.Context(), repository.InsertWebhookEventParams{
		ID:        event.ID,
		EventType: event.Type,
	}); err != nil {
		// The order is already durable; a missing event row only costs an
		// extra lookup on the next delivery.
		h.logger.Error("failed to record webhook event",
			"event_id", event.ID,
			"error", err)
	}

	acknowledge(w)
}

// handleCheckoutCompleted creates the durable order for a completed checkout
// session. A session that already produced an order is treated as success.
func (h *StripeHandler) handleCheckoutCompleted(r *http.Request, event *billing.WebhookEvent) error {
	if event.SessionID == "" {
		h.logger.Warn("checkout completed event without session id", "event_id", event.ID)
		return nil
	}

	detail, err := h.orderService.CreateOrderFromCheckoutSession(r.Context(), event.SessionID)
	if err != nil {
		if errors.Is(err, domain.ErrSessionAlreadyProcessed) {
			h.logger.Info("order already exists for session", "session_id", event.SessionID)
			return nil
		}
		h.logger.Error("failed to create order from checkout session",
			"session_id", event.SessionID,
			"error", err)
		return err
	}

	h.logger.Info("order created from webhook",
		"session_id", event.SessionID,
		"total_cents", detail.Order.TotalCents)
	if telemetry.Business != nil {
		telemetry.Business.CheckoutCompleted.Inc()
		telemetry.Business.OrdersCreated.Inc()
		telemetry.Business.OrderValue.Observe(float64(detail.Order.TotalCents))
		telemetry.Business.OrderItemCount.Observe(float64(len(detail.Items)))
	}
	return nil
}

// acknowledge returns 200 so Stripe stops redelivering the event.
func acknowledge(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"received": true}`))
}
