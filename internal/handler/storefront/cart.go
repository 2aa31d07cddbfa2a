package storefront

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/torsore/storefront/internal/cookie"
	"github.com/torsore/storefront/internal/domain"
	"github.com/torsore/storefront/internal/handler"
	"github.com/torsore/storefront/internal/pricing"
	"github.com/torsore/storefront/internal/telemetry"
)

// CartHandler handles all cart-related storefront routes
type CartHandler struct {
	carts        *CartSelector
	estimator    *pricing.Estimator
	cookieConfig *cookie.Config
	logger       *slog.Logger
}

// NewCartHandler creates a new cart handler
func NewCartHandler(carts *CartSelector, estimator *pricing.Estimator, cookieConfig *cookie.Config, logger *slog.Logger) *CartHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &CartHandler{
		carts:        carts,
		estimator:    estimator,
		cookieConfig: cookieConfig,
		logger:       logger,
	}
}

type cartLineRequest struct {
	ProductID      string `json:"productId"`
	Name           string `json:"name"`
	Size           string `json:"size"`
	Color          string `json:"color"`
	UnitPriceCents int64  `json:"unitPriceCents"`
	Quantity       int    `json:"quantity"`
	ImageURL       string `json:"imageUrl"`
}

type cartLineKeyRequest struct {
	ProductID string `json:"productId"`
	Size      string `json:"size"`
	Color     string `json:"color"`
	Quantity  int    `json:"quantity"`
}

type cartResponse struct {
	Cart          domain.Cart `json:"cart"`
	SubtotalCents int64       `json:"subtotalCents"`
	ItemCount     int         `json:"itemCount"`
}

// View handles GET /api/cart
func (h *CartHandler) View(w http.ResponseWriter, r *http.Request) {
	cartID := GetCartIDFromCookie(r)
	if cartID == "" {
		// No cart yet; an empty summary avoids minting a cookie on reads.
		handler.RespondJSON(w, http.StatusOK, cartResponse{
			Cart: domain.Cart{Lines: []domain.CartLine{}},
		})
		return
	}

	summary, err := h.carts.ForRequest(r).GetCartSummary(r.Context(), cartID)
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	handler.RespondJSON(w, http.StatusOK, toCartResponse(summary))
}

// AddLine handles POST /api/cart/lines
func (h *CartHandler) AddLine(w http.ResponseWriter, r *http.Request) {
	var req cartLineRequest
	if err := handler.DecodeJSON(r, &req, 1<<16); err != nil {
		handler.ErrorResponse(w, r, domain.Invalid("cart.add", "Invalid request body"))
		return
	}

	cartID := GetCartIDFromCookie(r)
	if cartID == "" {
		cartID = uuid.New().String()
		SetCartCookie(w, cartID, h.cookieConfig)
	}

	summary, err := h.carts.ForRequest(r).AddLine(r.Context(), cartID, domain.CartLine{
		ProductID:      req.ProductID,
		Name:           req.Name,
		Size:           req.Size,
		Color:          req.Color,
		UnitPriceCents: req.UnitPriceCents,
		Quantity:       req.Quantity,
		ImageURL:       req.ImageURL,
	})
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	if telemetry.Business != nil {
		telemetry.Business.CartLinesAdded.WithLabelValues(req.ProductID).Inc()
		telemetry.Business.CartValue.Observe(float64(summary.SubtotalCents))
	}

	handler.RespondJSON(w, http.StatusOK, toCartResponse(summary))
}

// UpdateLine handles PUT /api/cart/lines. A quantity of zero or less
// removes the line.
func (h *CartHandler) UpdateLine(w http.ResponseWriter, r *http.Request) {
	var req cartLineKeyRequest
	if err := handler.DecodeJSON(r, &req, 1<<16); err != nil {
		handler.ErrorResponse(w, r, domain.Invalid("cart.update", "Invalid request body"))
		return
	}

	cartID := GetCartIDFromCookie(r)
	if cartID == "" {
		handler.ErrorResponse(w, r, domain.ErrCartNotFound)
		return
	}

	key := domain.LineKey{ProductID: req.ProductID, Size: req.Size, Color: req.Color}
	summary, err := h.carts.ForRequest(r).SetQuantity(r.Context(), cartID, key, req.Quantity)
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	if telemetry.Business != nil {
		telemetry.Business.CartUpdated.Inc()
	}

	handler.RespondJSON(w, http.StatusOK, toCartResponse(summary))
}

// RemoveLine handles DELETE /api/cart/lines
func (h *CartHandler) RemoveLine(w http.ResponseWriter, r *http.Request) {
	var req cartLineKeyRequest
	if err := handler.DecodeJSON(r, &req, 1<<16); err != nil {
		handler.ErrorResponse(w, r, domain.Invalid("cart.remove", "Invalid request body"))
		return
	}

	cartID := GetCartIDFromCookie(r)
	if cartID == "" {
		handler.ErrorResponse(w, r, domain.ErrCartNotFound)
		return
	}

	key := domain.LineKey{ProductID: req.ProductID, Size: req.Size, Color: req.Color}
	summary, err := h.carts.ForRequest(r).RemoveLine(r.Context(), cartID, key)
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	handler.RespondJSON(w, http.StatusOK, toCartResponse(summary))
}

// Clear handles DELETE /api/cart
func (h *CartHandler) Clear(w http.ResponseWriter, r *http.Request) {
	cartID := GetCartIDFromCookie(r)
	if cartID != "" {
		if err := h.carts.ForRequest(r).ClearCart(r.Context(), cartID); err != nil {
			handler.ErrorResponse(w, r, err)
			return
		}
		if telemetry.Business != nil {
			telemetry.Business.CartCleared.Inc()
		}
	}
	ClearCartCookie(w, h.cookieConfig)
	handler.RespondJSON(w, http.StatusNoContent, nil)
}

type estimateResponse struct {
	SubtotalCents   int64            `json:"subtotalCents"`
	ShippingCents   int64            `json:"shippingCents"`
	TaxCents        int64            `json:"taxCents"`
	TotalCents      int64            `json:"totalCents"`
	ShippingOptions []shippingOption `json:"shippingOptions"`
	Estimate        bool             `json:"estimate"`
}

type shippingOption struct {
	ServiceName string `json:"serviceName"`
	ServiceCode string `json:"serviceCode"`
	CostCents   int64  `json:"costCents"`
	DaysMin     int    `json:"daysMin"`
	DaysMax     int    `json:"daysMax"`
}

// Estimate handles GET /api/cart/estimate. The returned figures preview the
// checkout totals; the payment gateway decides the amounts actually charged.
func (h *CartHandler) Estimate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	cart := &domain.Cart{Lines: []domain.CartLine{}}
	if cartID := GetCartIDFromCookie(r); cartID != "" {
		loaded, err := h.carts.ForRequest(r).GetCart(ctx, cartID)
		if err != nil && !errors.Is(err, domain.ErrCartNotFound) {
			handler.ErrorResponse(w, r, err)
			return
		}
		if loaded != nil {
			cart = loaded
		}
	}

	totals, err := h.estimator.Estimate(ctx, *cart)
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	resp := estimateResponse{
		SubtotalCents: totals.SubtotalCents,
		ShippingCents: totals.ShippingCents,
		TaxCents:      totals.TaxCents,
		TotalCents:    totals.TotalCents,
		Estimate:      true,
	}
	for _, opt := range h.estimator.ShippingOptions(*cart) {
		resp.ShippingOptions = append(resp.ShippingOptions, shippingOption{
			ServiceName: opt.ServiceName,
			ServiceCode: opt.ServiceCode,
			CostCents:   opt.CostCents,
			DaysMin:     opt.DaysMin,
			DaysMax:     opt.DaysMax,
		})
	}

	handler.RespondJSON(w, http.StatusOK, resp)
}

func toCartResponse(summary *domain.CartSummary) cartResponse {
	return cartResponse{
		Cart:          summary.Cart,
		SubtotalCents: summary.SubtotalCents,
		ItemCount:     summary.ItemCount,
	}
}
