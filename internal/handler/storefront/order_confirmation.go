package storefront

import (
	"log/slog"
	"net/http"

	"github.com/torsore/storefront/internal/cookie"
	"github.com/torsore/storefront/internal/domain"
	"github.com/torsore/storefront/internal/handler"
)

// OrderConfirmationHandler renders the post-payment confirmation view.
type OrderConfirmationHandler struct {
	reconciler   domain.OrderReconciler
	carts        *CartSelector
	cookieConfig *cookie.Config
	logger       *slog.Logger
}

// NewOrderConfirmationHandler creates a new order confirmation handler
func NewOrderConfirmationHandler(
	reconciler domain.OrderReconciler,
	carts *CartSelector,
	cookieConfig *cookie.Config,
	logger *slog.Logger,
) *OrderConfirmationHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &OrderConfirmationHandler{
		reconciler:   reconciler,
		carts:        carts,
		cookieConfig: cookieConfig,
		logger:       logger,
	}
}

type addressResponse struct {
	Name       string `json:"name,omitempty"`
	Line1      string `json:"line1"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city"`
	State      string `json:"state,omitempty"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
}

type confirmationLineItem struct {
	Name        string `json:"name"`
	Quantity    int    `json:"quantity"`
	AmountCents int64  `json:"amountCents"`
}

type confirmationResponse struct {
	OrderRef        string                 `json:"orderRef"`
	CustomerEmail   string                 `json:"customerEmail"`
	CustomerName    string                 `json:"customerName,omitempty"`
	CustomerPhone   string                 `json:"customerPhone,omitempty"`
	ShippingAddress *addressResponse       `json:"shippingAddress,omitempty"`
	ShippingMethod  string                 `json:"shippingMethod,omitempty"`
	LineItems       []confirmationLineItem `json:"lineItems"`
	SubtotalCents   int64                  `json:"subtotalCents"`
	ShippingCents   int64                  `json:"shippingCents"`
	TaxCents        int64                  `json:"taxCents"`
	TotalCents      int64                  `json:"totalCents"`
}

// View handles GET /api/checkout/confirmation?session_id=...
// The shopper lands here from the gateway's success redirect. The view is
// reconciled against the gateway, so it renders even when the webhook that
// creates the durable order is still in flight.
func (h *OrderConfirmationHandler) View(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	sessionID := r.URL.Query().Get("session_id")
	view, err := h.reconciler.GetOrderDetails(ctx, sessionID)
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	// The cart is normally cleared when the session is created; this catches
	// shoppers who land here with a cart cookie from an older tab. Failures
	// are logged and ignored so a stale cart never blocks the confirmation.
	if cartID := GetCartIDFromCookie(r); cartID != "" {
		if err := h.carts.ForRequest(r).ClearCart(ctx, cartID); err != nil {
			h.logger.Error("failed to clear cart after checkout",
				"cart_id", cartID,
				"error", err)
		}
		ClearCartCookie(w, h.cookieConfig)
	}

	resp := confirmationResponse{
		OrderRef:       view.OrderRef,
		CustomerEmail:  view.CustomerEmail,
		CustomerName:   view.CustomerName,
		CustomerPhone:  view.CustomerPhone,
		ShippingMethod: view.ShippingMethod,
		SubtotalCents:  view.SubtotalCents,
		ShippingCents:  view.ShippingCents,
		TaxCents:       view.TaxCents,
		TotalCents:     view.TotalCents,
	}
	if view.ShippingAddress != nil {
		resp.ShippingAddress = &addressResponse{
			Name:       view.ShippingAddress.Name,
			Line1:      view.ShippingAddress.Line1,
			Line2:      view.ShippingAddress.Line2,
			City:       view.ShippingAddress.City,
			State:      view.ShippingAddress.State,
			PostalCode: view.ShippingAddress.PostalCode,
			Country:    view.ShippingAddress.Country,
		}
	}
	for _, li := range view.LineItems {
		resp.LineItems = append(resp.LineItems, confirmationLineItem{
			Name:        li.Name,
			Quantity:    li.Quantity,
			AmountCents: li.AmountCents,
		})
	}

	handler.RespondJSON(w, http.StatusOK, resp)
}
